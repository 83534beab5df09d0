package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/climavet/climavet/internal/clinic"
	"github.com/climavet/climavet/internal/store"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	fallback      int64
	renderer      *Renderer
	logger        *slog.Logger
}

// NewSettingsHandler builds the clinic settings handler. fallback is the
// configured default clinic, used when the stored choice is cleared.
func NewSettingsHandler(ss *store.SettingsStore, fallback int64, rr *Renderer, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, fallback: fallback, renderer: rr, logger: logger}
}

type clinicPage struct {
	Page
	Source clinic.Source
	Saved  bool
}

func (h *SettingsHandler) Clinic(w http.ResponseWriter, r *http.Request) {
	cc, _ := clinic.FromContext(r.Context())
	h.renderer.Page(w, http.StatusOK, "settings", clinicPage{
		Page:   Page{ClinicID: cc.ID},
		Source: cc.Source,
	})
}

// UpdateClinic stores the clinic id. An empty value clears the stored
// choice and falls back to the configured default.
func (h *SettingsHandler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	raw := strings.TrimSpace(r.FormValue("clinic_id"))
	var id int64
	if raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			cc, _ := clinic.FromContext(r.Context())
			h.renderClinic(w, r, http.StatusUnprocessableEntity, clinicPage{
				Page:   Page{ClinicID: cc.ID, Error: "Clinic ID must be a positive whole number."},
				Source: cc.Source,
			})
			return
		}
		id = v
	}

	if err := h.settingsStore.SetClinicID(id); err != nil {
		h.logger.Error("save clinic id", "error", err)
		h.renderClinic(w, r, http.StatusInternalServerError, clinicPage{
			Page: Page{ClinicID: id, Error: "Failed to save clinic."},
		})
		return
	}
	h.logger.Info("clinic updated", "clinic", id)

	if !isHTMX(r) {
		http.Redirect(w, r, "/settings/clinic", http.StatusSeeOther)
		return
	}

	data := clinicPage{Page: Page{ClinicID: id}, Source: clinic.SourceSettings, Saved: true}
	if id == 0 {
		data.ClinicID = h.fallback
		data.Source = clinic.SourceConfig
	}
	h.renderer.Partial(w, "clinic-form", data)
}

func (h *SettingsHandler) renderClinic(w http.ResponseWriter, r *http.Request, status int, data clinicPage) {
	if isHTMX(r) {
		h.renderer.Partial(w, "clinic-form", data)
		return
	}
	h.renderer.Page(w, status, "settings", data)
}

// Health reports that the server is up.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
