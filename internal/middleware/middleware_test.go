package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/climavet/climavet/internal/clinic"
	"github.com/climavet/climavet/internal/logging"
	"github.com/climavet/climavet/internal/requestid"
)

type stubClinic struct {
	id  int64
	err error
}

func (s stubClinic) ClinicID() (int64, error) { return s.id, s.err }

func TestResolveClinic(t *testing.T) {
	tests := []struct {
		name       string
		src        stubClinic
		fallback   int64
		wantID     int64
		wantSource clinic.Source
	}{
		{"stored wins", stubClinic{id: 5}, 2, 5, clinic.SourceSettings},
		{"fallback", stubClinic{}, 2, 2, clinic.SourceConfig},
		{"store error uses fallback", stubClinic{err: errors.New("db locked")}, 3, 3, clinic.SourceConfig},
		{"none", stubClinic{}, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got clinic.ClinicContext
			h := ResolveClinic(tt.src, tt.fallback, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = clinic.FromContext(r.Context())
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

			if got.ID != tt.wantID || got.Source != tt.wantSource {
				t.Errorf("clinic = %+v, want id %d source %q", got, tt.wantID, tt.wantSource)
			}
		})
	}
}

func TestRequireClinic(t *testing.T) {
	reached := false
	h := RequireClinic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/checklists/1", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/settings/clinic" {
		t.Errorf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}

	req := httptest.NewRequest("GET", "/partials/checklists/1/items", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("HX-Redirect") != "/settings/clinic" {
		t.Errorf("HX-Redirect = %q", rec.Header().Get("HX-Redirect"))
	}
	if reached {
		t.Fatal("handler reached without clinic")
	}

	req = httptest.NewRequest("GET", "/checklists/1", nil)
	req = req.WithContext(clinic.WithClinic(req.Context(), clinic.ClinicContext{ID: 1}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !reached {
		t.Error("handler not reached with clinic set")
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.From(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if seen == "" || rec.Header().Get(requestid.Header) != seen {
		t.Errorf("minted id %q, header %q", seen, rec.Header().Get(requestid.Header))
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(requestid.Header, "upstream-42")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "upstream-42" {
		t.Errorf("seen = %q, want upstream id", seen)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(requestid.Header, "bad id\n")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "bad id\n" {
		t.Error("malformed incoming id was kept")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("info", &buf)

	h := RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/plans", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "path=/plans", "status=418", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}
