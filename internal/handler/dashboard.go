package handler

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/climavet/climavet/internal/api"
	"github.com/climavet/climavet/internal/clinic"
	"github.com/climavet/climavet/internal/model"
)

type DashboardHandler struct {
	backend  Backend
	renderer *Renderer
	logger   *slog.Logger
}

func NewDashboardHandler(b Backend, rr *Renderer, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{backend: b, renderer: rr, logger: logger}
}

type dashboardPage struct {
	Page
	Types      []model.DisasterType
	Checklists []model.Checklist
}

// Dashboard lists the disaster types and the clinic's checklists. Both are
// fetched concurrently; whatever loaded is shown alongside the first error.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	clinicID := clinic.ID(r.Context())
	data := dashboardPage{Page: Page{ClinicID: clinicID}}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		types, err := h.backend.ListDisasterTypes(ctx)
		data.Types = types
		return err
	})
	if clinicID > 0 {
		g.Go(func() error {
			list, err := h.backend.ListChecklists(ctx, clinicID)
			data.Checklists = list
			return err
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Error("load dashboard", "error", err)
		data.Error = api.Message(err, "Failed to load the dashboard. Please try again later.")
	}

	h.renderer.Page(w, http.StatusOK, "dashboard", data)
}
