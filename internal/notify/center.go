package notify

import (
	"context"
	"sync"
	"time"

	"storefront-gateway/internal/observability"
)

// Level is the visual severity of a user-facing notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is one user-visible message scoped to a session. The UI
// shell renders these as toasts.
type Notification struct {
	SessionID string    `json:"session_id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink receives every notification published on this instance. The
// RabbitMQ publisher is a sink; so is the local websocket forwarder.
type Sink interface {
	Deliver(ctx context.Context, n Notification)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, n Notification)

func (f SinkFunc) Deliver(ctx context.Context, n Notification) { f(ctx, n) }

// Center is the single point user-visible notifications flow through.
// The catalog client reports transport failures here; state mirrors
// report happy-path cart and wishlist outcomes.
type Center struct {
	mu    sync.RWMutex
	sinks []Sink
}

func NewCenter() *Center {
	return &Center{}
}

// AddSink registers a delivery target. Not safe to call concurrently
// with publishing; wire sinks at startup.
func (c *Center) AddSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// NotifyError publishes an error notification scoped to the session in ctx.
func (c *Center) NotifyError(ctx context.Context, message string) {
	c.publish(ctx, LevelError, message)
}

// NotifySuccess publishes a success notification scoped to the session in ctx.
func (c *Center) NotifySuccess(ctx context.Context, message string) {
	c.publish(ctx, LevelSuccess, message)
}

// NotifyInfo publishes an informational notification scoped to the session in ctx.
func (c *Center) NotifyInfo(ctx context.Context, message string) {
	c.publish(ctx, LevelInfo, message)
}

func (c *Center) publish(ctx context.Context, level Level, message string) {
	sessionID, _ := observability.SessionIDFromContext(ctx)

	n := Notification{
		SessionID: sessionID,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}

	observability.NotificationsSent.WithLabelValues(string(level)).Inc()

	c.mu.RLock()
	sinks := c.sinks
	c.mu.RUnlock()

	for _, sink := range sinks {
		sink.Deliver(ctx, n)
	}
}
