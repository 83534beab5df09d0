package websocket

import (
	"log/slog"
	"net/http"
	"strconv"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades connections and runs them as Hub clients. An
// optional ?checklist=<id> narrows the stream to that checklist.
// Cross-origin pages are refused unless their host matches originPatterns.
func HandleWebSocket(hub *Hub, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var checklistID int64
		if v := r.URL.Query().Get("checklist"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil || id < 0 {
				http.Error(w, "invalid checklist id", http.StatusBadRequest)
				return
			}
			checklistID = id
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		NewClient(hub, conn, checklistID).Run(r.Context())
	}
}
