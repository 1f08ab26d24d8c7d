package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"storefront-gateway/internal/notify"
)

// notificationsExchange fans each notification out to every gateway
// replica, so a session's push connection can live on a different
// replica than the one that handled the triggering request.
const notificationsExchange = "storefront.notifications"

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	rmq := &RabbitMQ{
		conn:    conn,
		channel: ch,
	}

	if err := rmq.Setup(); err != nil {
		rmq.Close()
		return nil, err
	}

	return rmq, nil
}

// NewRabbitMQWithRetry dials the broker until it succeeds or ctx
// expires. Used at startup, where the broker may come up after us.
func NewRabbitMQWithRetry(ctx context.Context, url string) (*RabbitMQ, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		rmq, err := NewRabbitMQ(url)
		if err == nil {
			return rmq, nil
		}
		lastErr = err

		slog.Warn("rabbitmq connection failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("giving up on RabbitMQ after %d attempts: %w", attempt, lastErr)
		case <-time.After(2 * time.Second):
		}
	}
}

func (r *RabbitMQ) Setup() error {
	if err := r.channel.ExchangeDeclare(
		notificationsExchange, // name
		"fanout",              // type
		true,                  // durable
		false,                 // auto-deleted
		false,                 // internal
		false,                 // no-wait
		nil,                   // arguments
	); err != nil {
		return fmt.Errorf("failed to declare notifications exchange: %w", err)
	}

	slog.Info("rabbitmq setup completed successfully")
	return nil
}

// PublishNotification publishes a notification to the fan-out exchange.
func (r *RabbitMQ) PublishNotification(ctx context.Context, n *notify.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		notificationsExchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Transient,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	slog.Debug("published notification",
		slog.String("level", string(n.Level)),
		slog.String("session_id", n.SessionID))
	return nil
}

// Deliver implements notify.Sink. Publish failures are logged rather
// than surfaced; a lost toast must never fail the request that caused it.
func (r *RabbitMQ) Deliver(ctx context.Context, n notify.Notification) {
	if err := r.PublishNotification(ctx, &n); err != nil {
		slog.Error("failed to deliver notification to broker",
			slog.String("error", err.Error()),
			slog.String("session_id", n.SessionID))
	}
}

func (r *RabbitMQ) IsClosed() bool {
	return r.conn == nil || r.conn.IsClosed()
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
