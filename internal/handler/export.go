package handler

import (
	"bytes"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/climavet/climavet/internal/api"
	"github.com/climavet/climavet/internal/clinic"
	"github.com/climavet/climavet/internal/export"
	"github.com/climavet/climavet/internal/model"
)

// ExportHandler serves checklist downloads.
type ExportHandler struct {
	backend  Backend
	renderer *Renderer
	logger   *slog.Logger
}

func NewExportHandler(b Backend, rr *Renderer, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{backend: b, renderer: rr, logger: logger}
}

func (h *ExportHandler) JSON(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatJSON)
}

func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatCSV)
}

// Sealed encrypts the JSON export with the posted passphrase.
func (h *ExportHandler) Sealed(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatSealed)
}

func (h *ExportHandler) serve(w http.ResponseWriter, r *http.Request, f export.Format) {
	clinicID := clinic.ID(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		h.renderer.Error(w, http.StatusBadRequest, clinicID, "Export", "Invalid checklist id.")
		return
	}

	c, err := h.backend.GetChecklist(r.Context(), id, clinicID)
	if err != nil {
		h.logger.Error("fetch checklist for export", "id", id, "error", err)
		h.renderer.Error(w, http.StatusBadGateway, clinicID, "Export", api.Message(err, "Failed to fetch checklists"))
		return
	}
	if c == nil {
		h.renderer.Error(w, http.StatusNotFound, clinicID, "Export", "No checklists found.")
		return
	}

	var buf bytes.Buffer
	if f == export.FormatSealed {
		passphrase := r.PostFormValue("passphrase")
		if len(passphrase) < export.MinPassphraseLen {
			h.renderer.Error(w, http.StatusBadRequest, clinicID, "Export",
				"Passphrase must be at least "+strconv.Itoa(export.MinPassphraseLen)+" characters.")
			return
		}
		err = export.WriteSealed(&buf, *c, passphrase)
	} else {
		err = export.Write(&buf, *c, f)
	}
	if err != nil {
		h.logger.Error("export checklist", "id", id, "format", f, "error", err)
		h.renderer.Error(w, http.StatusInternalServerError, clinicID, "Export", "Failed to export checklist.")
		return
	}

	h.logger.Info("checklist exported", "id", id, "format", f, "bytes", buf.Len())
	setDownloadHeaders(w, *c, f)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func setDownloadHeaders(w http.ResponseWriter, c model.Checklist, f export.Format) {
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(c, f)}))
	w.Header().Set("Cache-Control", "no-store")
}
