// Package apitest provides an in-memory fake of the REST backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/climavet/climavet/internal/model"
)

// Backend serves the checklist and disaster-plan endpoints from memory.
type Backend struct {
	mu         sync.Mutex
	Types      []model.DisasterType
	Plans      map[string][]model.PlanSummary
	Generated  map[int64]model.DisasterPlan
	Checklists map[int64][]model.Checklist // keyed by clinic id

	// Fail makes every request answer with this status and message.
	// FailMethod limits the failure to one HTTP method.
	FailStatus  int
	FailMessage string
	FailMethod  string

	Requests []*http.Request
	server   *httptest.Server
}

// New starts a fake backend that is closed when the test ends.
func New(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		Plans:      map[string][]model.PlanSummary{},
		Generated:  map[int64]model.DisasterPlan{},
		Checklists: map[int64][]model.Checklist{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/disaster-plans/", b.listPlans)
	mux.HandleFunc("GET /api/disaster-plans/types/", b.listTypes)
	mux.HandleFunc("GET /api/disaster-plans/plans/generate/", b.generate)
	mux.HandleFunc("GET /api/checklists/", b.listChecklists)
	mux.HandleFunc("POST /api/checklists/", b.createChecklist)
	mux.HandleFunc("PATCH /api/checklists/{id}/items/{item}/", b.updateItem)

	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.Requests = append(b.Requests, r.Clone(r.Context()))
		status, msg, method := b.FailStatus, b.FailMessage, b.FailMethod
		b.mu.Unlock()
		if status != 0 && (method == "" || method == r.Method) {
			writeJSON(w, status, map[string]string{"error": msg})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.server.Close)
	return b
}

// URL is the base URL of the fake.
func (b *Backend) URL() string { return b.server.URL }

// Fail switches the backend into failure mode. A zero status restores it.
func (b *Backend) Fail(status int, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.FailStatus = status
	b.FailMessage = msg
	b.FailMethod = ""
}

// FailOn is Fail restricted to requests with the given method.
func (b *Backend) FailOn(method string, status int, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.FailStatus = status
	b.FailMessage = msg
	b.FailMethod = method
}

// AddChecklist stores c under clinic.
func (b *Backend) AddChecklist(clinic int64, c model.Checklist) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Checklists[clinic] = append(b.Checklists[clinic], c)
}

// Checklist returns the stored checklist, or false.
func (b *Backend) Checklist(clinic, id int64) (model.Checklist, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.Checklists[clinic] {
		if c.ID == id {
			return c, true
		}
	}
	return model.Checklist{}, false
}

// LastRequest returns the most recent request the fake saw.
func (b *Backend) LastRequest() *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Requests) == 0 {
		return nil
	}
	return b.Requests[len(b.Requests)-1]
}

func (b *Backend) listPlans(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	plans := b.Plans[r.URL.Query().Get("risk")]
	if plans == nil {
		plans = []model.PlanSummary{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (b *Backend) listTypes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := b.Types
	if types == nil {
		types = []model.DisasterType{}
	}
	writeJSON(w, http.StatusOK, types)
}

func (b *Backend) generate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("disaster_type"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "disaster_type is required"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	plan, ok := b.Generated[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (b *Backend) listChecklists(w http.ResponseWriter, r *http.Request) {
	clinic, _ := strconv.ParseInt(r.URL.Query().Get("clinic"), 10, 64)
	idParam := r.URL.Query().Get("id")

	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Checklist{}
	for _, c := range b.Checklists[clinic] {
		if idParam != "" && strconv.FormatInt(c.ID, 10) != idParam {
			continue
		}
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createChecklist(w http.ResponseWriter, r *http.Request) {
	var in model.NewChecklist
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var maxID int64
	for _, list := range b.Checklists {
		for _, c := range list {
			maxID = max(maxID, c.ID)
		}
	}
	names := make([]string, 0, len(in.DisasterTypes))
	for _, id := range in.DisasterTypes {
		for _, dt := range b.Types {
			if dt.ID == id {
				names = append(names, dt.Name)
			}
		}
	}
	c := model.Checklist{
		ID:                maxID + 1,
		Name:              in.Name,
		Description:       in.Description,
		Items:             []model.ChecklistItem{},
		DisasterTypeNames: names,
	}
	b.Checklists[in.ClinicID] = append(b.Checklists[in.ClinicID], c)
	writeJSON(w, http.StatusCreated, c)
}

func (b *Backend) updateItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	itemID, _ := strconv.ParseInt(r.PathValue("item"), 10, 64)
	var u model.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for clinic, list := range b.Checklists {
		for ci := range list {
			if list[ci].ID != id {
				continue
			}
			for ii := range list[ci].Items {
				item := &b.Checklists[clinic][ci].Items[ii]
				if item.ID != itemID {
					continue
				}
				if u.Status != nil {
					item.Status = *u.Status
				}
				if u.QuantityCurrent != nil {
					item.QuantityCurrent = *u.QuantityCurrent
				}
				if u.Location != nil {
					item.Location = *u.Location
				}
				if u.Supplier != nil {
					item.Supplier = *u.Supplier
				}
				if u.Notes != nil {
					item.Notes = *u.Notes
				}
				writeJSON(w, http.StatusOK, item)
				return
			}
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
