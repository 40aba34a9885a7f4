package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/braindler/braindler-multimodal/internal/metrics"
	"github.com/braindler/braindler-multimodal/internal/models"
)

// Processor runs analysis jobs read from the stream.
type Processor interface {
	Analyze(ctx context.Context, job *models.AnalysisJob) error
	// Fail is called once a job will not be retried any more.
	Fail(ctx context.Context, job *models.AnalysisJob, err error)
}

const (
	readCount      = 10
	readBlock      = time.Second
	claimMinIdle   = time.Minute
	claimBatchSize = 100
)

// Consumer reads analysis jobs through a consumer group. Jobs left pending
// by a crashed consumer are claimed after claimMinIdle, and entries older
// than the retention are trimmed.
type Consumer struct {
	client          redis.Cmdable
	streamKey       string
	group           string
	name            string
	processor       Processor
	retryHandler    *RetryHandler
	retention       time.Duration
	reclaimInterval time.Duration
	trimInterval    time.Duration
	lastReclaim     time.Time
}

func NewConsumer(
	client redis.Cmdable,
	streamKey string,
	group string,
	name string,
	processor Processor,
	retryHandler *RetryHandler,
	retention time.Duration,
) *Consumer {
	return &Consumer{
		client:          client,
		streamKey:       streamKey,
		group:           group,
		name:            name,
		processor:       processor,
		retryHandler:    retryHandler,
		retention:       retention,
		reclaimInterval: 30 * time.Second,
		trimInterval:    time.Hour,
	}
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		log.Warn().Err(err).Str("group", c.group).Msg("Failed to create consumer group")
	}

	c.reclaim(ctx)
	go c.trimLoop(ctx)

	log.Info().
		Str("stream", c.streamKey).
		Str("group", c.group).
		Str("consumer", c.name).
		Dur("retention", c.retention).
		Msg("Consuming analysis jobs")

	for ctx.Err() == nil {
		if time.Since(c.lastReclaim) >= c.reclaimInterval {
			c.reclaim(ctx)
		}
		if err := c.readBatch(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Failed to read analysis jobs")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
	return ctx.Err()
}

// ensureGroup creates the group at the end of the stream, creating the
// stream too. An existing group is not an error.
func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s: %w", c.group, err)
	}
	return nil
}

func (c *Consumer) readBatch(ctx context.Context) error {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.streamKey, ">"},
		Count:    readCount,
		Block:    readBlock,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		c.handleAll(ctx, stream.Messages)
	}
	return nil
}

// reclaim takes over entries another consumer left idle in the pending list.
func (c *Consumer) reclaim(ctx context.Context) {
	c.lastReclaim = time.Now()

	start := "0-0"
	for {
		msgs, next, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   c.streamKey,
			Group:    c.group,
			Consumer: c.name,
			MinIdle:  claimMinIdle,
			Start:    start,
			Count:    claimBatchSize,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Msg("Failed to claim pending analysis jobs")
			}
			return
		}

		if len(msgs) > 0 {
			log.Info().Int("claimed", len(msgs)).Msg("Claimed pending analysis jobs")
			c.handleAll(ctx, msgs)
		}
		if next == "0-0" || next == "" || ctx.Err() != nil {
			return
		}
		start = next
	}
}

func (c *Consumer) handleAll(ctx context.Context, msgs []redis.XMessage) {
	for i := range msgs {
		if err := c.processMessage(ctx, &msgs[i]); err != nil {
			log.Error().Err(err).Str("message_id", msgs[i].ID).Msg("Analysis job failed")
		}
	}
}

// processMessage runs one job. Unparseable messages and jobs that exhausted
// their retries are acked; a job interrupted by shutdown stays pending.
func (c *Consumer) processMessage(ctx context.Context, msg *redis.XMessage) error {
	fields := make(map[string]string, len(msg.Values))
	deadLetterFields := make(map[string]interface{}, len(msg.Values))
	for key, val := range msg.Values {
		if value, ok := val.(string); ok {
			fields[key] = value
			deadLetterFields[key] = value
		}
	}

	job, err := ParseJob(&StreamMessage{ID: msg.ID, Fields: fields})
	if err != nil {
		metrics.ObserveStreamMessage("invalid")
		if ackErr := c.ack(ctx, msg.ID); ackErr != nil {
			return ackErr
		}
		return err
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		return c.processor.Analyze(ctx, job)
	}, msg.ID, deadLetterFields)
	if err == nil {
		metrics.ObserveStreamMessage("acked")
		return c.ack(ctx, msg.ID)
	}
	if ctx.Err() != nil {
		return err
	}

	c.processor.Fail(ctx, job, err)
	metrics.ObserveStreamMessage("dead_lettered")
	if ackErr := c.ack(ctx, msg.ID); ackErr != nil {
		return ackErr
	}
	return err
}

func (c *Consumer) ack(ctx context.Context, messageID string) error {
	if err := c.client.XAck(ctx, c.streamKey, c.group, messageID).Err(); err != nil {
		return fmt.Errorf("failed to ack %s: %w", messageID, err)
	}
	return nil
}

// trim drops entries older than the retention.
func (c *Consumer) trim(ctx context.Context) error {
	minID := fmt.Sprintf("%d-0", time.Now().Add(-c.retention).UnixMilli())
	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}
	if trimmed > 0 {
		log.Debug().Int64("trimmed", trimmed).Str("min_id", minID).Msg("Trimmed analysis stream")
	}
	return nil
}

func (c *Consumer) trimLoop(ctx context.Context) {
	ticker := time.NewTicker(c.trimInterval)
	defer ticker.Stop()

	for {
		if err := c.trim(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Failed to trim analysis stream")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
