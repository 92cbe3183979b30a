package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/compoundrx/storefront/internal/config"
	"github.com/compoundrx/storefront/internal/constants"
)

// Client wraps the asynq client and hides the disabled (no redis) case.
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

func queueRedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	host := strings.TrimSpace(cfg.Queue.Host)
	if host == "" {
		host = cfg.Redis.Host
	}
	port := cfg.Queue.Port
	if port == 0 {
		port = cfg.Redis.Port
	}
	password := cfg.Queue.Password
	if password == "" {
		password = cfg.Redis.Password
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       cfg.Queue.DB,
	}
}

// NewClient builds an asynq client from queue configuration. When the queue
// is disabled the returned client reports Enabled() false and every enqueue
// fails fast.
func NewClient(cfg *config.Config) *Client {
	if cfg == nil || !cfg.Queue.Enabled {
		return &Client{enabled: false}
	}

	return &Client{
		client:       asynq.NewClient(queueRedisOpt(cfg)),
		enabled:      true,
		defaultQueue: constants.QueueDefault,
	}
}

// Enabled reports whether the queue backend is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close releases the underlying redis connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderTimeoutCancel schedules a cancel task to run after delay.
func (c *Client) EnqueueOrderTimeoutCancel(payload OrderTimeoutCancelPayload, delay time.Duration) error {
	if !c.Enabled() {
		return fmt.Errorf("queue disabled")
	}

	task, err := NewOrderTimeoutCancelTask(payload)
	if err != nil {
		return err
	}

	opts := []asynq.Option{
		asynq.Queue(c.defaultQueue),
		asynq.MaxRetry(5),
	}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	_, err = c.client.Enqueue(task, opts...)
	return err
}

// BuildServerConfig derives asynq server settings from app configuration.
func BuildServerConfig(cfg *config.Config) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := cfg.Queue.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	queues := cfg.Queue.Queues
	if len(queues) == 0 {
		queues = map[string]int{constants.QueueDefault: 1}
	}

	return queueRedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}
