package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/climavet/climavet/internal/api"
	"github.com/climavet/climavet/internal/api/apitest"
	"github.com/climavet/climavet/internal/database"
	"github.com/climavet/climavet/internal/logging"
	"github.com/climavet/climavet/internal/model"
	"github.com/climavet/climavet/internal/requestid"
	"github.com/climavet/climavet/internal/store"
)

func setupTestServer(t *testing.T, defaultClinic int64) (http.Handler, *apitest.Backend, *store.SettingsStore) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := logging.Discard()
	b := apitest.New(t)
	ss := store.NewSettingsStore(db)
	srv, err := New(Deps{
		Backend:       api.NewClient(api.Config{BaseURL: b.URL()}, logger),
		SettingsStore: ss,
		FilterStore:   store.NewFilterStore(db),
		DefaultClinic: defaultClinic,
		Logger:        logger,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv.Router(), b, ss
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	h, _, _ := setupTestServer(t, 0)

	rec := get(h, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(requestid.Header) == "" {
		t.Error("response has no request id")
	}
}

func TestStaticAssets(t *testing.T) {
	h, _, _ := setupTestServer(t, 0)

	rec := get(h, "/static/app.js")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChecklistRoutesNeedClinic(t *testing.T) {
	h, _, _ := setupTestServer(t, 0)

	rec := get(h, "/checklists/1")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/settings/clinic" {
		t.Errorf("Location = %q", loc)
	}

	// Pages that don't need a clinic still render.
	if rec := get(h, "/"); rec.Code != http.StatusOK {
		t.Errorf("dashboard status = %d", rec.Code)
	}
}

func TestStoredClinicOverridesDefault(t *testing.T) {
	h, b, ss := setupTestServer(t, 1)
	b.AddChecklist(1, model.Checklist{ID: 10, Name: "Default Clinic Kit"})
	b.AddChecklist(2, model.Checklist{ID: 20, Name: "Stored Clinic Kit"})

	rec := get(h, "/checklists/10")
	if rec.Code != http.StatusOK {
		t.Fatalf("default clinic status = %d", rec.Code)
	}

	if err := ss.SetClinicID(2); err != nil {
		t.Fatalf("set clinic: %v", err)
	}
	if rec := get(h, "/checklists/10"); rec.Code != http.StatusNotFound {
		t.Errorf("other clinic's checklist status = %d, want 404", rec.Code)
	}
	rec = get(h, "/checklists/20")
	if rec.Code != http.StatusOK {
		t.Fatalf("stored clinic status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Stored Clinic Kit") {
		t.Error("stored clinic's checklist not rendered")
	}
}

func TestGenerateRateLimited(t *testing.T) {
	h, b, _ := setupTestServer(t, 0)
	b.Generated[1] = model.DisasterPlan{Name: "Flood Plan"}

	for i := 0; i < 10; i++ {
		if rec := get(h, "/partials/plans/generate?disaster_type=1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
	rec := get(h, "/partials/plans/generate?disaster_type=1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}
