package stream

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RetryHandler retries failed jobs with exponential backoff and moves jobs
// that still fail to a dead-letter stream.
type RetryHandler struct {
	client          redis.Cmdable
	deadLetterKey   string
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
	retryable       func(error) bool
}

// NewRetryHandler builds a handler. retryable may be nil, in which case
// every error is retried; a nil client disables dead-lettering.
func NewRetryHandler(client redis.Cmdable, deadLetterKey string, maxRetries int, retryable func(error) bool) *RetryHandler {
	return &RetryHandler{
		client:          client,
		deadLetterKey:   deadLetterKey,
		maxRetries:      maxRetries,
		initialInterval: 1 * time.Second,
		maxInterval:     30 * time.Second,
		multiplier:      2.0,
		retryable:       retryable,
	}
}

// WithBackoff overrides the backoff intervals.
func (h *RetryHandler) WithBackoff(initial, maxInterval time.Duration) *RetryHandler {
	h.initialInterval = initial
	h.maxInterval = maxInterval
	return h
}

// RetryWithBackoff runs fn until it succeeds, fails with a non-retryable
// error or exhausts the retries. The final error is dead-lettered together
// with the original message fields.
func (h *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			delay := h.backoff(attempt)
			log.Warn().
				Err(lastErr).
				Str("message_id", messageID).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying message")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if h.retryable != nil && !h.retryable(err) {
			break
		}
	}

	if dlqErr := h.sendToDeadLetter(ctx, messageID, fields, lastErr); dlqErr != nil {
		log.Error().Err(dlqErr).Str("message_id", messageID).Msg("Failed to send message to dead-letter stream")
	}
	return lastErr
}

// backoff returns initial * multiplier^(attempt-1) with up to 25% jitter,
// capped at maxInterval.
func (h *RetryHandler) backoff(attempt int) time.Duration {
	delay := float64(h.initialInterval)
	for i := 1; i < attempt; i++ {
		delay *= h.multiplier
	}
	delay += delay * 0.25 * rand.Float64()
	return min(time.Duration(delay), h.maxInterval)
}

func (h *RetryHandler) sendToDeadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error) error {
	if h.client == nil || h.deadLetterKey == "" {
		return nil
	}

	values := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		values[k] = v
	}
	values["originalId"] = messageID
	values["error"] = cause.Error()
	values["failedAt"] = time.Now().UTC().Format(time.RFC3339)

	if err := h.client.XAdd(ctx, &redis.XAddArgs{Stream: h.deadLetterKey, Values: values}).Err(); err != nil {
		return fmt.Errorf("failed to add to dead-letter stream: %w", err)
	}

	log.Warn().
		Str("message_id", messageID).
		Str("stream", h.deadLetterKey).
		Msg("Message moved to dead-letter stream")
	return nil
}
