package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/climavet/climavet/internal/handler"
	"github.com/climavet/climavet/internal/middleware"
	"github.com/climavet/climavet/internal/store"
	ws "github.com/climavet/climavet/internal/websocket"
	"github.com/climavet/climavet/web"
)

// Deps are the collaborators the web server is assembled from.
type Deps struct {
	Backend       handler.Backend
	SettingsStore *store.SettingsStore
	FilterStore   *store.FilterStore
	// DefaultClinic is used when no clinic has been picked in settings.
	DefaultClinic int64
	// WSOrigins are extra hosts allowed to open the websocket.
	WSOrigins []string
	Logger    *slog.Logger
}

type Server struct {
	hub         *ws.Hub
	dashboardH  *handler.DashboardHandler
	planH       *handler.PlanHandler
	checklistH  *handler.ChecklistHandler
	exportH     *handler.ExportHandler
	settingsH   *handler.SettingsHandler
	settings    *store.SettingsStore
	fallback    int64
	wsOrigins   []string
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(d Deps) (*Server, error) {
	logger := d.Logger
	hub := ws.NewHub(logger.With("component", "websocket"))

	rr, err := handler.NewRenderer(web.Templates(), logger.With("component", "template"))
	if err != nil {
		return nil, err
	}

	return &Server{
		hub:         hub,
		dashboardH:  handler.NewDashboardHandler(d.Backend, rr, logger.With("component", "dashboard")),
		planH:       handler.NewPlanHandler(d.Backend, rr, logger.With("component", "plan")),
		checklistH:  handler.NewChecklistHandler(d.Backend, d.FilterStore, hub, rr, logger.With("component", "checklist")),
		exportH:     handler.NewExportHandler(d.Backend, rr, logger.With("component", "export")),
		settingsH:   handler.NewSettingsHandler(d.SettingsStore, d.DefaultClinic, rr, logger.With("component", "settings")),
		settings:    d.SettingsStore,
		fallback:    d.DefaultClinic,
		wsOrigins:   d.WSOrigins,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}, nil
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Routes that work without a clinic
	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Static())))
	outerMux.HandleFunc("GET /health", handler.Health)
	outerMux.HandleFunc("GET /{$}", s.dashboardH.Dashboard)
	outerMux.HandleFunc("GET /plans", s.planH.Plans)
	outerMux.HandleFunc("GET /plans/generate", s.planH.Generator)
	outerMux.HandleFunc("GET /partials/plans/generate", s.rateLimitedHandler(s.planH.Generate))
	outerMux.HandleFunc("GET /settings/clinic", s.settingsH.Clinic)
	outerMux.HandleFunc("PUT /settings/clinic", s.settingsH.UpdateClinic)
	outerMux.HandleFunc("POST /settings/clinic", s.settingsH.UpdateClinic)
	outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.wsOrigins, s.logger.With("component", "websocket")))

	// Checklist routes need a clinic
	clinicMux := http.NewServeMux()
	s.registerChecklistRoutes(clinicMux)
	outerMux.Handle("/", middleware.RequireClinic(clinicMux))

	h := middleware.ResolveClinic(s.settings, s.fallback, s.logger.With("component", "clinic"))(outerMux)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return middleware.RequestID(h)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ByRouteAndIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerChecklistRoutes(mux *http.ServeMux) {
	// Page routes
	mux.HandleFunc("GET /checklists/new", s.checklistH.New)
	mux.HandleFunc("POST /checklists", s.rateLimitedHandler(s.checklistH.Create))
	mux.HandleFunc("GET /checklists/{id}", s.checklistH.View)

	// Downloads
	mux.HandleFunc("GET /checklists/{id}/export.json", s.exportH.JSON)
	mux.HandleFunc("GET /checklists/{id}/export.csv", s.exportH.CSV)
	mux.HandleFunc("POST /checklists/{id}/export.sealed", s.exportH.Sealed)

	// Checklist partials (HTMX)
	mux.HandleFunc("GET /partials/checklists/{id}/items", s.checklistH.Items)
	mux.HandleFunc("POST /partials/checklists/{id}/items/{item}/toggle", s.checklistH.ToggleItem)
	mux.HandleFunc("PUT /partials/checklists/{id}/items/{item}", s.checklistH.UpdateItem)
}
