package stream

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func startStreamApp(t *testing.T, hub *Hub) string {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/api/stream"), hub)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "ws://" + ln.Addr().String()
}

func TestStreamHandlersUpgradeRequired(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api/stream"), NewHub(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/stream/tours/1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Fatalf("expected 426 for non-websocket request, got %d", resp.StatusCode)
	}
}

func TestStreamHandlersInvalidTourID(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api/stream"), NewHub(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/stream/tours/abc", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func waitForSubscribers(t *testing.T, hub *Hub, key string, want int) {
	t.Helper()
	// The handler registers after the upgrade completes.
	deadline := time.Now().Add(time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.clients[key])
		hub.mu.RUnlock()
		if n == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers on %q, got %d", want, key, n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStreamHandlersNonCanonicalTourID(t *testing.T) {
	hub := NewHub(nil, nil)
	base := startStreamApp(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/api/stream/tours/007", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()
	waitForSubscribers(t, hub, "7", 1)

	hub.Publish(7, Event{Type: TourUpdated})
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if !strings.Contains(string(msg), `"tourId":7`) {
		t.Fatalf("unexpected message %s", msg)
	}
}

func TestStreamHandlersNonPositiveTourID(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api/stream"), NewHub(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/stream/tours/0", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestStreamHandlersWebsocketEvents(t *testing.T) {
	hub := NewHub(nil, nil)
	base := startStreamApp(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/api/stream/tours/3", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	waitForSubscribers(t, hub, "3", 1)

	hub.Publish(3, Event{Type: TourUpdated})
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if !strings.Contains(string(msg), `"type":"tour.updated"`) || !strings.Contains(string(msg), `"tourId":3`) {
		t.Fatalf("unexpected message %s", msg)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	deadline := time.Now().Add(time.Second)
	for {
		hub.mu.RLock()
		_, still := hub.clients["3"]
		hub.mu.RUnlock()
		if !still {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected subscriber to be removed after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
