package middleware

import (
	"log/slog"
	"net/http"

	"github.com/climavet/climavet/internal/clinic"
)

// ClinicSource returns the clinic id a user picked, or 0 if none.
type ClinicSource interface {
	ClinicID() (int64, error)
}

// ResolveClinic puts the active clinic in the request context. The stored
// preference wins over fallback. Requests proceed without a clinic when
// neither is set; handlers that need one check clinic.Configured.
func ResolveClinic(src ClinicSource, fallback int64, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cc := clinic.ClinicContext{ID: fallback, Source: clinic.SourceConfig}

			id, err := src.ClinicID()
			if err != nil {
				logger.Error("resolve clinic", "error", err)
			} else if id > 0 {
				cc = clinic.ClinicContext{ID: id, Source: clinic.SourceSettings}
			}

			ctx := r.Context()
			if cc.ID > 0 {
				ctx = clinic.WithClinic(ctx, cc)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireClinic sends requests without a clinic to the clinic settings page.
// HTMX-aware: returns HX-Redirect header instead of 303 redirect for HTMX requests.
func RequireClinic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !clinic.Configured(r.Context()) {
			redirectToSettings(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func redirectToSettings(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/settings/clinic")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/settings/clinic", http.StatusSeeOther)
}
