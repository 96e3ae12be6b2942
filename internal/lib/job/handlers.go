package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deppfellow/vistual/internal/lib/email"
	"github.com/deppfellow/vistual/internal/lib/storage"
	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// ImageStore is the part of the image store the cleanup needs.
type ImageStore interface {
	Walk(fn func(storage.Object) error) error
	Remove(userID uuid.UUID, key string) error
}

// ImageRefLister reports which images are still attached to a garment.
type ImageRefLister interface {
	ListImageRefs(ctx context.Context) ([]garment.ImageRef, error)
}

type welcomeSender interface {
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

// Dependencies are handed to the job handlers once the repositories exist.
type Dependencies struct {
	Images ImageStore
	Refs   ImageRefLister
}

// InitHandlers wires the email client and the cleanup dependencies.
// It must be called before Start.
func (j *JobService) InitHandlers(deps Dependencies) {
	j.email = email.NewClient(j.cfg, j.logger)
	j.deps = deps
}

func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w", err)
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("Processing welcome email task")

	if err := j.email.SendWelcomeEmail(ctx, p.To, p.Name); err != nil {
		j.logger.Error().
			Str("type", "welcome").
			Str("to", p.To).
			Err(err).
			Msg("Failed to send welcome email")
		return err
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("Successfully sent welcome email")

	return nil
}

func (j *JobService) handleImagesCleanupTask(ctx context.Context, _ *asynq.Task) error {
	removed, err := CleanupOrphans(ctx, j.deps, j.cfg.Storage.OrphanGracePeriod, time.Now(), j.logger)
	if err != nil {
		j.logger.Error().Err(err).Str("type", "cleanup").Msg("Image cleanup failed")
		return err
	}

	j.logger.Info().Str("type", "cleanup").Int("removed", removed).Msg("Image cleanup finished")
	return nil
}

// CleanupOrphans removes stored images no garment references that were
// last modified before now minus grace. It returns how many it removed.
func CleanupOrphans(ctx context.Context, deps Dependencies, grace time.Duration, now time.Time, logger *zerolog.Logger) (int, error) {
	if deps.Images == nil || deps.Refs == nil {
		return 0, fmt.Errorf("cleanup dependencies not initialized")
	}

	refs, err := deps.Refs.ListImageRefs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list image refs: %w", err)
	}

	referenced := make(map[garment.ImageRef]struct{}, len(refs))
	for _, ref := range refs {
		referenced[ref] = struct{}{}
	}

	cutoff := now.Add(-grace)
	var orphans []storage.Object

	err = deps.Images.Walk(func(o storage.Object) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := referenced[garment.ImageRef{UserID: o.UserID, ImageKey: o.Key}]; ok {
			return nil
		}
		if o.ModTime.After(cutoff) {
			return nil
		}
		orphans = append(orphans, o)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk image store: %w", err)
	}

	removed := 0
	for _, o := range orphans {
		if err := deps.Images.Remove(o.UserID, o.Key); err != nil {
			logger.Warn().Err(err).Str("user_id", o.UserID.String()).Str("key", o.Key).Msg("failed to remove orphaned image")
			continue
		}
		removed++
	}

	return removed, nil
}
