package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"storefront-gateway/internal/notify"
)

// Pusher delivers a payload to every live connection of a session.
// The websocket hub implements it.
type Pusher interface {
	Push(sessionID string, message []byte)
}

// NotificationConsumer binds a per-replica queue to the notifications
// exchange and forwards each notification to the local websocket hub.
// Sessions connected to other replicas are simply not in this hub's
// client map, so their copies are dropped here and delivered there.
type NotificationConsumer struct {
	rmq *RabbitMQ
	hub Pusher
}

func NewNotificationConsumer(rmq *RabbitMQ, hub Pusher) *NotificationConsumer {
	return &NotificationConsumer{
		rmq: rmq,
		hub: hub,
	}
}

func (c *NotificationConsumer) Start(ctx context.Context) error {
	queue, err := c.rmq.channel.QueueDeclare(
		"",    // auto-generated name
		false, // durable
		true,  // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	if err := c.rmq.channel.QueueBind(
		queue.Name,            // queue name
		"",                    // routing key
		notificationsExchange, // exchange
		false,
		nil,
	); err != nil {
		return err
	}

	msgs, err := c.rmq.channel.Consume(
		queue.Name, // queue
		"",         // consumer
		true,       // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return err
	}

	slog.Info("started consuming notifications",
		slog.String("queue", queue.Name),
		slog.String("exchange", notificationsExchange))

	go func() {
		for {
			select {
			case <-ctx.Done():
				slog.Info("stopping notification consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Warn("notification consumer channel closed")
					return
				}

				var n notify.Notification
				if err := json.Unmarshal(msg.Body, &n); err != nil {
					slog.Error("error unmarshaling notification",
						slog.String("error", err.Error()),
						slog.String("body", string(msg.Body)))
					continue
				}

				c.forward(&n)
			}
		}
	}()

	return nil
}

func (c *NotificationConsumer) forward(n *notify.Notification) {
	if n.SessionID == "" {
		// Nothing to address it to. Unauthenticated failures are
		// returned in the HTTP response body instead.
		return
	}

	if data, err := json.Marshal(n); err == nil {
		c.hub.Push(n.SessionID, data)
	} else {
		slog.Error("error marshaling notification for push",
			slog.String("error", err.Error()))
	}
}
