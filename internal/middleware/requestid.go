package middleware

import (
	"net/http"
	"regexp"

	"github.com/climavet/climavet/internal/requestid"
)

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID puts a request id in the context and echoes it in the response.
// A well-formed incoming X-Request-ID is kept so ids chain across proxies.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.Header)
		if !validRequestID.MatchString(id) {
			id = requestid.New()
		}
		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.With(r.Context(), id)))
	})
}
