package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/SalonenTeemu/sandwich-store/internal/shared/config"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
)

// ErrNotConnected is returned when an operation needs a live connection.
var ErrNotConnected = errors.New("rabbitmq: connection is not open")

// Client owns the single shared RabbitMQ connection of a process side.
// The connection is created lazily on first use and guarded by a mutex, so
// concurrent callers observe exactly one connection. Connection failures are
// surfaced to the caller and never retried internally; callers are expected
// to fail startup on them.
type Client struct {
	url        string
	logger     *logger.Logger
	taskQueue  string
	readyQueue string

	mu          sync.Mutex
	conn        *amqp.Connection
	pubChan     *amqp.Channel // plain publishes (worker results)
	confirmChan *amqp.Channel // publisher-confirm mode (task hand-off)
	closeHooks  []func(context.Context)
}

// NewClient builds a client from config. No connection is made yet.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		url: fmt.Sprintf("amqp://%s:%s@%s:%d/",
			cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port),
		logger:     log,
		taskQueue:  cfg.RabbitMQ.TaskQueue,
		readyQueue: cfg.RabbitMQ.ReadyQueue,
	}
}

// TaskQueue returns the durable task queue name.
func (client *Client) TaskQueue() string { return client.taskQueue }

// ReadyQueue returns the durable result queue name.
func (client *Client) ReadyQueue() string { return client.readyQueue }

// Connect establishes the shared connection if it does not exist yet and
// declares the durable queues. Safe for concurrent use; reuses a live
// connection.
func (client *Client) Connect(ctx context.Context) error {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.connectLocked(ctx)
}

func (client *Client) connectLocked(ctx context.Context) error {
	if client.conn != nil && !client.conn.IsClosed() {
		return nil
	}

	start := time.Now().UTC()
	conn, err := amqp.DialConfig(client.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := declareQueues(ch, client.taskQueue, client.readyQueue); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("rabbitmq declare queues: %w", err)
	}

	client.conn = conn
	client.pubChan = ch
	client.confirmChan = nil // opened on demand

	client.logger.Info(ctx, "rabbitmq_connected", "Connected to RabbitMQ",
		map[string]any{
			"task_queue":  client.taskQueue,
			"ready_queue": client.readyQueue,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	return nil
}

// NewConsumerChannel returns a fresh channel with prefetch (QoS) applied,
// connecting lazily if needed.
func (client *Client) NewConsumerChannel(ctx context.Context, prefetch int) (*amqp.Channel, error) {
	client.mu.Lock()
	defer client.mu.Unlock()

	if err := client.connectLocked(ctx); err != nil {
		return nil, err
	}

	ch, err := client.conn.Channel()
	if err != nil {
		return nil, err
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			ch.Close()
			return nil, err
		}
	}
	return ch, nil
}

// PublishTask publishes an order payload to the durable task queue on a
// publisher-confirm channel. The returned channel reports the broker's
// ack/nack asynchronously; the error covers only the publish call itself.
func (client *Client) PublishTask(ctx context.Context, body []byte) (<-chan bool, error) {
	client.mu.Lock()
	if err := client.connectLocked(ctx); err != nil {
		client.mu.Unlock()
		return nil, err
	}
	if client.confirmChan == nil || client.confirmChan.IsClosed() {
		ch, err := client.conn.Channel()
		if err != nil {
			client.mu.Unlock()
			return nil, err
		}
		if err := ch.Confirm(false); err != nil {
			ch.Close()
			client.mu.Unlock()
			return nil, err
		}
		client.confirmChan = ch
	}
	ch := client.confirmChan
	client.mu.Unlock()

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conf, err := ch.PublishWithDeferredConfirmWithContext(pubCtx,
		"", client.taskQueue, false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
	if err != nil {
		return nil, err
	}

	confirmed := make(chan bool, 1)
	go func() {
		confirmed <- conf.Wait()
	}()
	return confirmed, nil
}

// PublishResult publishes a processing outcome to the durable result queue.
func (client *Client) PublishResult(ctx context.Context, body []byte) error {
	client.mu.Lock()
	if err := client.connectLocked(ctx); err != nil {
		client.mu.Unlock()
		return err
	}
	ch := client.pubChan
	client.mu.Unlock()

	if ch == nil || ch.IsClosed() {
		return ErrNotConnected
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(pubCtx,
		"", client.readyQueue, false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
}

// RegisterCloseHook adds a function run by Close before the connection is
// released. The producer uses this to mark in-flight orders failed on
// teardown.
func (client *Client) RegisterCloseHook(fn func(context.Context)) {
	client.mu.Lock()
	client.closeHooks = append(client.closeHooks, fn)
	client.mu.Unlock()
}

// Close tears the connection down. Idempotent: a second call is a no-op.
// The connection handle is cleared so a later Connect would start fresh.
func (client *Client) Close(ctx context.Context) {
	client.mu.Lock()
	conn := client.conn
	hooks := client.closeHooks
	client.conn = nil
	client.pubChan = nil
	client.confirmChan = nil
	client.mu.Unlock()

	if conn == nil {
		return
	}

	for _, fn := range hooks {
		fn(ctx)
	}

	if err := conn.Close(); err != nil {
		client.logger.Error(ctx, "rabbitmq_close_failed", "Failed to close RabbitMQ connection", err)
		return
	}
	client.logger.Info(ctx, "rabbitmq_closed", "RabbitMQ connection closed", nil)
}

// declareQueues declares the durable task and result queues idempotently.
func declareQueues(ch *amqp.Channel, names ...string) error {
	for _, name := range names {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return err
		}
	}
	return nil
}
