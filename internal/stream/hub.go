package stream

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"backend-travelcompanion/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix  = "tours:"
	channelSuffix  = ":events"
	channelPattern = channelPrefix + "*" + channelSuffix
)

// Event is a change notification for one tour.
type Event struct {
	Type   string `json:"type"`
	TourID int64  `json:"tourId"`
	Data   any    `json:"data,omitempty"`
}

const (
	TourCreated  = "tour.created"
	TourUpdated  = "tour.updated"
	TourDeleted  = "tour.deleted"
	PointCreated = "point.created"
	PointUpdated = "point.updated"
	PointDeleted = "point.deleted"
)

// Publisher is implemented by *Hub; services depend on it so they can run without one.
type Publisher interface {
	Publish(tourID int64, event Event)
}

type Hub struct {
	redis    *redis.Client
	log      *zap.Logger
	origin   string
	clients  map[string]map[*Client]struct{}
	mu       sync.RWMutex
	cancel   context.CancelFunc
	subReady chan struct{}
}

type Client struct {
	TourKey string
	Send    chan []byte
}

// envelope carries the publishing instance id so a hub skips its own messages.
type envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

func NewHub(redisClient *redis.Client, log *zap.Logger) *Hub {
	h := &Hub{
		redis:    redisClient,
		log:      logger.OrNop(log),
		origin:   uuid.NewString(),
		clients:  map[string]map[*Client]struct{}{},
		subReady: make(chan struct{}),
	}

	if redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		go h.subscribeRedis(ctx)
	} else {
		close(h.subReady)
	}
	return h
}

// Close stops the Redis subscription.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *Hub) Register(tourKey string) *Client {
	client := &Client{
		TourKey: tourKey,
		Send:    make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[tourKey] == nil {
		h.clients[tourKey] = map[*Client]struct{}{}
	}
	h.clients[tourKey][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if tourClients, ok := h.clients[client.TourKey]; ok {
		if _, registered := tourClients[client]; !registered {
			return
		}
		delete(tourClients, client)
		if len(tourClients) == 0 {
			delete(h.clients, client.TourKey)
		}
		close(client.Send)
	}
}

// Publish encodes event and broadcasts it to subscribers of tourID.
func (h *Hub) Publish(tourID int64, event Event) {
	event.TourID = tourID
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("encode tour event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	h.Broadcast(TourKey(tourID), payload)
}

func (h *Hub) Broadcast(tourKey string, payload []byte) {
	h.deliver(tourKey, payload)

	if h.redis != nil {
		msg, _ := json.Marshal(envelope{Origin: h.origin, Payload: payload})
		if err := h.redis.Publish(context.Background(), redisChannel(tourKey), msg).Err(); err != nil {
			h.log.Warn("redis publish failed", zap.String("tour", tourKey), zap.Error(err))
		}
	}
}

func (h *Hub) deliver(tourKey string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[tourKey] {
		select {
		case client.Send <- payload:
		default:
			h.log.Debug("dropping event for slow subscriber", zap.String("tour", tourKey))
		}
	}
}

func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.redis.PSubscribe(ctx, channelPattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Warn("redis subscribe failed", zap.Error(err))
		close(h.subReady)
		return
	}
	close(h.subReady)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.log.Warn("malformed tour event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if env.Origin == h.origin {
				continue
			}
			h.deliver(tourKeyFromChannel(msg.Channel), env.Payload)
		}
	}
}

// TourKey is the subscription key for a tour id.
func TourKey(tourID int64) string {
	return strconv.FormatInt(tourID, 10)
}

func redisChannel(tourKey string) string {
	return channelPrefix + tourKey + channelSuffix
}

func tourKeyFromChannel(ch string) string {
	// tours:{id}:events
	if len(ch) <= len(channelPrefix)+len(channelSuffix) ||
		!strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
