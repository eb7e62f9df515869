package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"venue-staff/internal/domain/notification"
	"venue-staff/internal/logging"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	QueueName = "notifications"
	prefetch  = 10
)

type outcome int

const (
	outcomeAck outcome = iota
	outcomeRequeue
	outcomeDrop
)

type dispatcher interface {
	Dispatch(ctx context.Context, n notification.Notification) error
}

// Consumer drains the notification queue. A message whose delivery fails is
// requeued once; on redelivery it is logged and dropped.
type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	dispatch dispatcher
	log      *zap.Logger
}

func NewConsumer(url, exchange string, d dispatcher, log *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	c := &Consumer{conn: conn, ch: ch, exchange: exchange, dispatch: d, log: logging.OrNop(log).Named("worker")}
	if err := c.setup(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Consumer) setup() error {
	if err := declareExchange(c.ch, c.exchange); err != nil {
		return err
	}
	if _, err := c.ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := c.ch.QueueBind(QueueName, "#", c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	return nil
}

// Run consumes until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.Consume(
		QueueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	c.log.Info("consuming", zap.String("queue", QueueName), zap.String("exchange", c.exchange))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var err error
	switch c.decide(ctx, d.Body, d.Redelivered) {
	case outcomeAck:
		err = d.Ack(false)
	case outcomeRequeue:
		err = d.Nack(false, true)
	case outcomeDrop:
		err = d.Nack(false, false)
	}
	if err != nil {
		c.log.Error("acknowledge failed", zap.String("message_id", d.MessageId), zap.Error(err))
	}
}

func (c *Consumer) decide(ctx context.Context, body []byte, redelivered bool) outcome {
	var n notification.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		c.log.Warn("dropping undecodable message", zap.Error(err))
		return outcomeDrop
	}
	if err := n.Validate(); err != nil {
		c.log.Warn("dropping invalid notification", zap.Stringer("id", n.ID), zap.Error(err))
		return outcomeDrop
	}

	if err := c.dispatch.Dispatch(ctx, n); err != nil {
		if redelivered {
			c.log.Error("dropping notification after retry",
				zap.Stringer("id", n.ID),
				zap.String("kind", string(n.Kind)),
				zap.Error(err),
			)
			return outcomeDrop
		}
		return outcomeRequeue
	}
	return outcomeAck
}

func (c *Consumer) Close() error {
	chErr := c.ch.Close()
	if err := c.conn.Close(); err != nil {
		return err
	}
	return chErr
}
