package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/climavet/climavet/internal/api"
	"github.com/climavet/climavet/internal/api/apitest"
	"github.com/climavet/climavet/internal/model"
	"github.com/climavet/climavet/internal/requestid"
)

func newClient(t *testing.T) (*api.Client, *apitest.Backend) {
	t.Helper()
	b := apitest.New(t)
	return api.NewClient(api.Config{BaseURL: b.URL() + "/"}, nil), b
}

func TestListPlans(t *testing.T) {
	c, b := newClient(t)
	want := []model.PlanSummary{{ID: 1, Name: "Flood Response", DisasterType: "Flood"}}
	b.Plans["Flood"] = want

	got, err := c.ListPlans(context.Background(), "Flood")
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("plans (-want +got):\n%s", diff)
	}

	req := b.LastRequest()
	if req.URL.Path != "/api/disaster-plans/" || req.URL.Query().Get("risk") != "Flood" {
		t.Errorf("request = %s", req.URL)
	}
}

func TestListDisasterTypes(t *testing.T) {
	c, b := newClient(t)
	b.Types = []model.DisasterType{{ID: 1, Name: "Wildfire"}, {ID: 2, Name: "Hurricane"}}

	got, err := c.ListDisasterTypes(context.Background())
	if err != nil {
		t.Fatalf("list types: %v", err)
	}
	if diff := cmp.Diff(b.Types, got); diff != "" {
		t.Errorf("types (-want +got):\n%s", diff)
	}
}

func TestGeneratePlan(t *testing.T) {
	c, b := newClient(t)
	b.Generated[3] = model.DisasterPlan{
		Name:             "Hurricane Plan",
		PreparationSteps: []string{"Board windows"},
		SuppliesNeeded:   []model.Supply{{Item: "Water", Quantity: 20, Unit: "gallons"}},
	}

	plan, err := c.GeneratePlan(context.Background(), 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff(b.Generated[3], *plan); diff != "" {
		t.Errorf("plan (-want +got):\n%s", diff)
	}
	if got := b.LastRequest().URL.Query().Get("disaster_type"); got != "3" {
		t.Errorf("disaster_type = %q, want 3", got)
	}
}

func TestFetchChecklistsSendsClinic(t *testing.T) {
	c, b := newClient(t)
	b.AddChecklist(9, model.Checklist{ID: 4, Name: "Flood kit"})
	b.AddChecklist(9, model.Checklist{ID: 5, Name: "Fire kit"})
	b.AddChecklist(10, model.Checklist{ID: 6, Name: "Other clinic"})

	list, err := c.FetchChecklists(context.Background(), 5, 9)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Fire kit" {
		t.Errorf("list = %+v", list)
	}
	q := b.LastRequest().URL.Query()
	if q.Get("id") != "5" || q.Get("clinic") != "9" {
		t.Errorf("query = %v", q)
	}

	missing, err := c.GetChecklist(context.Background(), 6, 9)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for checklist of another clinic, got %+v", missing)
	}

	all, err := c.ListChecklists(context.Background(), 9)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}
}

func TestCreateChecklist(t *testing.T) {
	c, b := newClient(t)
	b.Types = []model.DisasterType{{ID: 2, Name: "Blizzard"}}

	created, err := c.CreateChecklist(context.Background(), model.NewChecklist{
		ClinicID:      1,
		Name:          "Winter Emergency Supplies",
		DisasterTypes: []int64{2},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Name != "Winter Emergency Supplies" {
		t.Errorf("created = %+v", created)
	}
	if diff := cmp.Diff([]string{"Blizzard"}, created.DisasterTypeNames); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	if ct := b.LastRequest().Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestUpdateItem(t *testing.T) {
	c, b := newClient(t)
	b.AddChecklist(1, model.Checklist{ID: 7, Items: []model.ChecklistItem{{ID: 3, Status: model.StatusOutOfStock}}})

	status := model.StatusInStock
	item, err := c.UpdateItem(context.Background(), 7, 3, model.ItemUpdate{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if item.Status != model.StatusInStock {
		t.Errorf("status = %q", item.Status)
	}
	req := b.LastRequest()
	if req.Method != http.MethodPatch || req.URL.Path != "/api/checklists/7/items/3/" {
		t.Errorf("request = %s %s", req.Method, req.URL.Path)
	}
}

func TestRequestIDForwarded(t *testing.T) {
	c, b := newClient(t)
	ctx := requestid.With(context.Background(), "req-123")

	if _, err := c.ListDisasterTypes(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := b.LastRequest().Header.Get(requestid.Header); got != "req-123" {
		t.Errorf("request id = %q, want %q", got, "req-123")
	}

	if _, err := c.ListDisasterTypes(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := b.LastRequest().Header.Get(requestid.Header); got == "" {
		t.Error("expected a minted request id")
	}
}

func TestStatusErrorCarriesBackendMessage(t *testing.T) {
	c, b := newClient(t)
	b.Fail(http.StatusBadRequest, "Clinic not found")

	_, err := c.ListChecklists(context.Background(), 1)
	var se *api.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusBadRequest {
		t.Errorf("code = %d", se.Code)
	}
	if got := api.Message(err, "Failed to fetch checklists"); got != "Clinic not found" {
		t.Errorf("Message = %q", got)
	}
}

func TestDetailAndNotFound(t *testing.T) {
	c, _ := newClient(t)

	_, err := c.GeneratePlan(context.Background(), 99)
	if !api.IsNotFound(err) {
		t.Fatalf("err = %v, want 404", err)
	}
	if got := api.Message(err, "x"); got != "Not found." {
		t.Errorf("Message = %q, want %q", got, "Not found.")
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("dial tcp: refused"), "fallback"},
		{"status without body", &api.StatusError{Code: 502}, "Request failed with status code 502"},
		{"wrapped", errors.Join(errors.New("ctx"), &api.StatusError{Code: 400, Message: "bad"}), "bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := api.Message(tt.err, "fallback"); got != tt.want {
				t.Errorf("Message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	c := api.NewClient(api.Config{BaseURL: srv.URL}, nil)
	_, err := c.ListDisasterTypes(context.Background())
	if err == nil {
		t.Fatal("expected decode error")
	}
	if got := api.Message(err, "Failed to load disaster types"); got != "Failed to load disaster types" {
		t.Errorf("Message = %q", got)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := api.NewClient(api.Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	if _, err := c.ListDisasterTypes(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}
