package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ModerationChannel is the Redis channel every instance publishes to.
const ModerationChannel = "moderation:events"

const (
	EventCommentPending  = "comment.pending"
	EventCommentApproved = "comment.approved"
	EventCommentRejected = "comment.rejected"
	EventContentFlagged  = "content.flagged"
	EventContentUnflag   = "content.unflagged"
	EventContentAlert    = "content.alert"
	EventUserWarned      = "user.warned"
	EventUserSuspended   = "user.suspended"
)

// ModerationEvent is broadcast to moderators over the websocket feed.
type ModerationEvent struct {
	Type        string      `json:"type"`
	ContentType models.Kind `json:"contentType,omitempty"`
	ContentID   string      `json:"contentId,omitempty"`
	CommentID   string      `json:"commentId,omitempty"`
	UserID      string      `json:"userId,omitempty"`
	ActorID     string      `json:"actorId,omitempty"`
	Keywords    []string    `json:"keywords,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event ModerationEvent)
}

// Subscription receives events until it is closed with Unsubscribe.
type Subscription struct {
	C  <-chan ModerationEvent
	ch chan ModerationEvent
}

// EventHub fans moderation events out to local subscribers. With Redis
// configured, events travel through ModerationChannel so every instance
// sees them; without it they are delivered in process.
type EventHub struct {
	client *redis.Client
	log    *zap.Logger

	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewEventHub(client *redis.Client, log *zap.Logger) *EventHub {
	return &EventHub{
		client: client,
		log:    log.Named("events"),
		subs:   make(map[*Subscription]struct{}),
	}
}

func (h *EventHub) Subscribe() *Subscription {
	ch := make(chan ModerationEvent, 32)
	sub := &Subscription{C: ch, ch: ch}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *EventHub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// fanOut delivers without blocking; slow subscribers drop events.
func (h *EventHub) fanOut(event ModerationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			h.log.Warn("dropping event for slow subscriber", zap.String("type", event.Type))
		}
	}
}

func (h *EventHub) Publish(ctx context.Context, event ModerationEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if h.client == nil {
		h.fanOut(event)
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("encode event", zap.Error(err))
		return
	}
	if err := h.client.Publish(ctx, ModerationChannel, data).Err(); err != nil {
		h.log.Warn("redis publish failed, delivering locally", zap.Error(err))
		h.fanOut(event)
	}
}

// Run relays ModerationChannel to local subscribers until ctx ends,
// reconnecting with capped exponential backoff.
func (h *EventHub) Run(ctx context.Context) {
	if h.client == nil {
		return
	}
	backoff := time.Second
	for ctx.Err() == nil {
		err := h.relay(ctx, func() { backoff = time.Second })
		if ctx.Err() != nil {
			return
		}
		h.log.Warn("moderation subscriber stopped", zap.Error(err), zap.Duration("retry_in", backoff))
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}

func (h *EventHub) relay(ctx context.Context, connected func()) error {
	pubsub := h.client.Subscribe(ctx, ModerationChannel)
	defer pubsub.Close()

	h.log.Info("moderation subscriber started", zap.String("channel", ModerationChannel))
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return err
		}
		connected()

		var event ModerationEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			h.log.Warn("bad moderation event", zap.Error(err))
			continue
		}
		h.fanOut(event)
	}
}
