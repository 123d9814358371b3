package stream

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register("1")
	defer hub.Unregister(client)

	hub.Broadcast("1", []byte("hello"))

	select {
	case msg := <-client.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubPublishEncodesEvent(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register(TourKey(42))
	defer hub.Unregister(client)

	hub.Publish(42, Event{Type: PointCreated, Data: map[string]any{"name": "Tower"}})

	select {
	case msg := <-client.Send:
		var ev struct {
			Type   string         `json:"type"`
			TourID int64          `json:"tourId"`
			Data   map[string]any `json:"data"`
		}
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.Type != PointCreated || ev.TourID != 42 || ev.Data["name"] != "Tower" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for event")
	}
}

func TestHubOtherTourNotDelivered(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register("1")
	defer hub.Unregister(client)

	hub.Broadcast("2", []byte("elsewhere"))

	select {
	case <-client.Send:
		t.Fatalf("unexpected delivery")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("17")
	if ch != "tours:17:events" {
		t.Fatalf("unexpected channel %q", ch)
	}
	if tourKeyFromChannel(ch) != "17" {
		t.Fatalf("unexpected tour key")
	}
	if tourKeyFromChannel("bad") != "" {
		t.Fatalf("expected empty tour key")
	}
	if tourKeyFromChannel("points:1:events") != "" {
		t.Fatalf("expected empty tour key for foreign prefix")
	}
}

func TestUnregisterClosesOnce(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register("2")
	hub.Unregister(client)
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestHubRedisFanOut(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	hub := NewHub(rdb, nil)
	defer hub.Close()
	<-hub.subReady

	local := hub.Register("5")
	defer hub.Unregister(local)

	hub.Broadcast("5", []byte("ping"))
	select {
	case msg := <-local.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for broadcast")
	}

	// Own messages echoed back through redis must not be delivered twice.
	select {
	case msg := <-local.Send:
		t.Fatalf("duplicate delivery %q", msg)
	case <-time.After(50 * time.Millisecond):
	}

	// A message from another instance is delivered.
	remote, _ := json.Marshal(envelope{Origin: "other-instance", Payload: json.RawMessage(`"pong"`)})
	if err := rdb.Publish(context.Background(), "tours:5:events", remote).Err(); err != nil {
		t.Fatalf("publish error: %v", err)
	}
	select {
	case msg := <-local.Send:
		if string(msg) != `"pong"` {
			t.Fatalf("unexpected message from redis: %q", msg)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for redis message")
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client, nil)
	defer hub.Close()
	node := hub.Register("9")
	defer hub.Unregister(node)

	hub.Broadcast("9", []byte("ping"))

	select {
	case msg := <-node.Send:
		if string(msg) != "ping" {
			t.Fatalf("local delivery should not depend on redis")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for local delivery")
	}
}
