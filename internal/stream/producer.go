package stream

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/braindler/braindler-multimodal/internal/models"
)

// Producer appends analysis jobs to the stream.
type Producer struct {
	client    redis.Cmdable
	streamKey string
}

func NewProducer(client redis.Cmdable, streamKey string) *Producer {
	return &Producer{client: client, streamKey: streamKey}
}

// Enqueue adds the job and returns the stream entry ID.
func (p *Producer) Enqueue(ctx context.Context, job models.AnalysisJob) (string, error) {
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.streamKey,
		Values: jobValues(job),
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add job to stream: %w", err)
	}

	log.Debug().
		Str("caseId", job.CaseID).
		Str("message_id", id).
		Msg("Analysis job enqueued")

	return id, nil
}
