package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/climavet/climavet/internal/logging"
	"github.com/climavet/climavet/internal/model"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, checklistID int64) *Client {
	return &Client{
		hub:         hub,
		send:        make(chan []byte, sendBufferSize),
		checklistID: checklistID,
	}
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got, true
	case <-time.After(50 * time.Millisecond):
		return Message{}, false
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(logging.Discard())

	c1 := mockClient(hub, 0)
	c2 := mockClient(hub, 0)
	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}
	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestItemUpdatedScopedToChecklist(t *testing.T) {
	hub := NewHub(logging.Discard())
	watching := mockClient(hub, 7)
	other := mockClient(hub, 8)
	dashboard := mockClient(hub, 0)
	for _, c := range []*Client{watching, other, dashboard} {
		hub.Register(c)
	}

	c := model.Checklist{ID: 7, TotalItems: 4, ItemsInStock: 3, CompletionPercentage: 75}
	hub.Broadcast(ItemUpdated(c, model.ChecklistItem{ID: 42, Status: model.StatusInStock}))

	got, ok := receive(t, watching)
	if !ok {
		t.Fatal("watching client got nothing")
	}
	if got.Type != "checklist_item_updated" || got.ID != 42 || got.ChecklistID != 7 {
		t.Errorf("message = %+v", got)
	}
	if got.Extra["completion_percentage"] != float64(75) {
		t.Errorf("completion_percentage = %v", got.Extra["completion_percentage"])
	}
	if _, ok := receive(t, dashboard); !ok {
		t.Error("unscoped client should receive every message")
	}
	if _, ok := receive(t, other); ok {
		t.Error("client of another checklist received message")
	}
}

func TestChecklistCreatedReachesEveryone(t *testing.T) {
	hub := NewHub(logging.Discard())
	a := mockClient(hub, 3)
	b := mockClient(hub, 0)
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(ChecklistCreated(model.Checklist{ID: 9, Name: "Flood kit"}))

	for _, c := range []*Client{a, b} {
		got, ok := receive(t, c)
		if !ok {
			t.Fatal("client got nothing")
		}
		if got.Type != "checklist_created" || got.Extra["name"] != "Flood kit" {
			t.Errorf("message = %+v", got)
		}
	}
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(logging.Discard())
	c := mockClient(hub, 0)
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(NewMessage("test", "fill", int64(i), nil))
	}
	hub.Broadcast(NewMessage("test", "dropped", 999, nil))

	if got := len(c.send); got != sendBufferSize {
		t.Errorf("buffered = %d, want %d", got, sendBufferSize)
	}
	if got := hub.Dropped(); got != 1 {
		t.Errorf("Dropped = %d, want 1", got)
	}
	hub.Unregister(c)
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(logging.Discard())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			c := mockClient(hub, id%3)
			hub.Register(c)
			hub.Broadcast(ItemUpdated(model.Checklist{ID: id % 3}, model.ChecklistItem{ID: id}))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}(int64(i))
	}
	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandleWebSocketDelivers(t *testing.T) {
	hub := NewHub(logging.Discard())
	srv := httptest.NewServer(HandleWebSocket(hub, nil, logging.Discard()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?checklist=7"
	conn, _, err := ws.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast(ItemUpdated(model.Checklist{ID: 7}, model.ChecklistItem{ID: 1}))

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "checklist_item_updated" || got.ChecklistID != 7 {
		t.Errorf("message = %+v", got)
	}
}

func TestHandleWebSocketBadChecklist(t *testing.T) {
	hub := NewHub(logging.Discard())
	rec := httptest.NewRecorder()
	HandleWebSocket(hub, nil, logging.Discard())(rec, httptest.NewRequest("GET", "/ws?checklist=abc", nil))
	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleWebSocketOrigin(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		origin   string
		wantOK   bool
	}{
		{name: "no origin header", wantOK: true},
		{name: "foreign origin", origin: "http://evil.example", wantOK: false},
		{name: "allowed pattern", patterns: []string{"clinic.example"}, origin: "http://clinic.example", wantOK: true},
		{name: "other host with patterns", patterns: []string{"clinic.example"}, origin: "http://evil.example", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(logging.Discard())
			srv := httptest.NewServer(HandleWebSocket(hub, tt.patterns, logging.Discard()))
			defer srv.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			opts := &ws.DialOptions{HTTPHeader: http.Header{}}
			if tt.origin != "" {
				opts.HTTPHeader.Set("Origin", tt.origin)
			}
			conn, resp, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), opts)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("dial: %v", err)
				}
				conn.CloseNow()
				return
			}
			if err == nil {
				conn.CloseNow()
				t.Fatal("dial succeeded, want origin rejected")
			}
			if resp != nil && resp.StatusCode != http.StatusForbidden {
				t.Errorf("status = %d, want 403", resp.StatusCode)
			}
		})
	}
}
