package mq

import (
	"CloudVault/config"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeNotify = "notify.exchange"
	ExchangeRetry  = "notify.retry.exchange"
	ExchangeDLQ    = "notify.dlq.exchange"

	QueueNotify = "notify.queue"
	QueueRetry  = "notify.retry.queue"
	QueueDLQ    = "notify.dlq.queue"

	RoutingNotify = "notify"
	RoutingRetry  = "notify.retry"
	RoutingDLQ    = "notify.dlq"
)

// NotifyMessage is the payload carried for one notification task.
type NotifyMessage struct {
	TaskID  uint64 `json:"task_id"`
	Attempt int    `json:"attempt"`
}

// Client wraps one connection and channel.
type Client struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	publishMu sync.Mutex
}

var publisherMu sync.Mutex
var publisher *Client

// Dial opens a connection to the configured broker.
func Dial() (*Client, error) {
	conn, err := amqp.Dial(config.AppConfig.RabbitMQURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{Conn: conn, Channel: ch}, nil
}

// GetPublisher returns the shared publisher, reconnecting when the
// previous connection was closed.
func GetPublisher() (*Client, error) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	if publisher != nil {
		if !publisher.Conn.IsClosed() && !publisher.Channel.IsClosed() {
			return publisher, nil
		}
		publisher.Close()
		publisher = nil
	}
	client, err := Dial()
	if err != nil {
		return nil, err
	}
	if err := client.DeclareTopology(); err != nil {
		client.Close()
		return nil, err
	}
	publisher = client
	return publisher, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

// DeclareTopology declares the notify, retry and dead-letter queues.
// Retry messages expire back into the notify exchange.
func (c *Client) DeclareTopology() error {
	for _, name := range []string{ExchangeNotify, ExchangeRetry, ExchangeDLQ} {
		if err := c.Channel.ExchangeDeclare(name, "direct", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", name, err)
		}
	}
	queues := []struct {
		name     string
		exchange string
		key      string
		args     amqp.Table
	}{
		{QueueNotify, ExchangeNotify, RoutingNotify, nil},
		{QueueRetry, ExchangeRetry, RoutingRetry, amqp.Table{
			"x-dead-letter-exchange":    ExchangeNotify,
			"x-dead-letter-routing-key": RoutingNotify,
		}},
		{QueueDLQ, ExchangeDLQ, RoutingDLQ, nil},
	}
	for _, q := range queues {
		if _, err := c.Channel.QueueDeclare(q.name, true, false, false, false, q.args); err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
		if err := c.Channel.QueueBind(q.name, q.key, q.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q.name, err)
		}
	}
	return nil
}

// Publish sends a message to the notify queue.
func (c *Client) Publish(ctx context.Context, msg NotifyMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.publish(ctx, ExchangeNotify, RoutingNotify, body, "")
}

// PublishRetry parks a message in the retry queue for delay.
func (c *Client) PublishRetry(ctx context.Context, msg NotifyMessage, delay time.Duration) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if delay < 0 {
		delay = 0
	}
	expiration := fmt.Sprintf("%d", delay.Milliseconds())
	return c.publish(ctx, ExchangeRetry, RoutingRetry, body, expiration)
}

// PublishDLQ moves a raw message to the dead-letter queue.
func (c *Client) PublishDLQ(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeDLQ, RoutingDLQ, body, "")
}

func (c *Client) publish(ctx context.Context, exchange, key string, body []byte, expiration string) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}
	if expiration != "" {
		msg.Expiration = expiration
	}
	return c.Channel.PublishWithContext(
		ctx,
		exchange,
		key,
		false,
		false,
		msg,
	)
}
