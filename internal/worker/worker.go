package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/carecircle/backend/internal/auth"
	"github.com/carecircle/backend/pkg/queue"
)

// ProfileSyncProcessor applies identity-provider profile sync jobs: upsert
// the profile row keyed by external id.
type ProfileSyncProcessor struct {
	profileRepo *auth.Repository
	queue       *queue.Queue
	logger      *zap.Logger
}

// NewProfileSyncProcessor creates a profile sync processor.
func NewProfileSyncProcessor(profileRepo *auth.Repository, q *queue.Queue, logger *zap.Logger) *ProfileSyncProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileSyncProcessor{profileRepo: profileRepo, queue: q, logger: logger}
}

// Process executes one profile sync job.
func (p *ProfileSyncProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeProfileSync {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ProfileSyncPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	user, err := p.profileRepo.UpsertByExternalID(ctx, payload.ExternalID, payload.Email, payload.FullName, payload.Role)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	p.logger.Info("profile synced",
		zap.String("external_id", payload.ExternalID),
		zap.String("profile_id", user.ID.String()),
	)
	return nil
}

// Run consumes jobs until ctx is cancelled. Failed jobs are retried with a
// cap, then moved to the dead-letter queue.
func (p *ProfileSyncProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.Error(err), zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
			if err := p.queue.Retry(ctx, job); err != nil {
				p.logger.Error("retry failed", zap.Error(err), zap.String("job_id", job.ID))
			}
		}
	}
}
