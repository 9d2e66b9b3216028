package enrichment

import (
	"context"
	"crypto/tls"
	"fmt"

	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues summarize jobs on the durable queue.
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient creates an enqueue client for the configured Redis queue.
func NewClient(cfg config.QueueConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  cfg.GetQueueName(),
	}, nil
}

// Close releases the underlying queue connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueSummarize appends a summarize job for leadID and returns once the
// queue acknowledges receipt. A failed job is never redelivered: the worker
// swallows failures and MaxRetry is pinned to zero.
func (c *Client) EnqueueSummarize(ctx context.Context, leadID uuid.UUID) error {
	task, err := NewLeadSummarizeTask(LeadSummarizePayload{LeadID: leadID.String()})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("build summarize task: %v", err), err).WithOp("enrichment.EnqueueSummarize")
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(0))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("enqueue summarize job: %v", err), err).WithOp("enrichment.EnqueueSummarize")
	}

	return nil
}

func redisClientOpt(cfg config.RedisConfig) (asynq.RedisClientOpt, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if cfg.GetRedisTLSInsecure() {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if cfg.GetRedisTLSInsecure() {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
