package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/climavet/climavet/internal/model"
	"github.com/climavet/climavet/internal/websocket"
)

// Backend is the subset of the REST client the web handlers use.
type Backend interface {
	ListPlans(ctx context.Context, risk string) ([]model.PlanSummary, error)
	ListDisasterTypes(ctx context.Context) ([]model.DisasterType, error)
	GeneratePlan(ctx context.Context, disasterTypeID int64) (*model.DisasterPlan, error)
	GetChecklist(ctx context.Context, checklistID, clinicID int64) (*model.Checklist, error)
	ListChecklists(ctx context.Context, clinicID int64) ([]model.Checklist, error)
	CreateChecklist(ctx context.Context, in model.NewChecklist) (*model.Checklist, error)
	UpdateItem(ctx context.Context, checklistID, itemID int64, u model.ItemUpdate) (*model.ChecklistItem, error)
}

// Broadcaster fans change notifications out to connected browsers.
type Broadcaster interface {
	Broadcast(msg websocket.Message)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends the browser to url, using HX-Redirect for HTMX requests.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
