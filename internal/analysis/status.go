package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/braindler/braindler-multimodal/internal/models"
)

const (
	statusKeyPrefix = "copydetect_case_status:"
	statusTTL       = 12 * time.Hour
)

var validSteps = map[models.Step]bool{
	models.StepIdle:      true,
	models.StepQueued:    true,
	models.StepFetching:  true,
	models.StepMerging:   true,
	models.StepMatching:  true,
	models.StepVerdict:   true,
	models.StepNarrating: true,
	models.StepCompleted: true,
	models.StepFailed:    true,
}

// StatusStore tracks the current pipeline step of each case.
type StatusStore interface {
	SetStatus(ctx context.Context, caseID string, step models.Step) error
	// GetStatus returns StepIdle when nothing is recorded for the case.
	GetStatus(ctx context.Context, caseID string) (models.Step, error)
}

// RedisStatusStore keeps case steps in Redis keys that expire after 12 hours.
type RedisStatusStore struct {
	client redis.UniversalClient
}

func NewRedisStatusStore(client redis.UniversalClient) *RedisStatusStore {
	return &RedisStatusStore{client: client}
}

func (s *RedisStatusStore) SetStatus(ctx context.Context, caseID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKeyPrefix + caseID

	err := s.client.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("caseId", caseID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("caseId", caseID).
		Msg("Status updated in Redis")

	return nil
}

func (s *RedisStatusStore) GetStatus(ctx context.Context, caseID string) (models.Step, error) {
	val, err := s.client.Get(ctx, statusKeyPrefix+caseID).Result()
	if err == redis.Nil {
		return models.StepIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(val), nil
}
