// Package job runs background work on asynq.
//
// The API enqueues tasks through Client; the same process consumes them
// with a weighted-queue asynq.Server. A cron scheduler enqueues the
// periodic image cleanup.
package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/vistual/internal/config"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type JobService struct {
	Client *asynq.Client

	server    *asynq.Server
	scheduler *cron.Cron
	logger    *zerolog.Logger
	cfg       *config.Config

	email welcomeSender
	deps  Dependencies
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Jobs.Concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	return &JobService{
		Client:    client,
		server:    server,
		scheduler: cron.New(),
		logger:    logger,
		cfg:       cfg,
	}
}

// Start registers the handlers, starts the workers and the cleanup schedule.
// It does not block.
func (j *JobService) Start() error {
	if j.email == nil {
		return fmt.Errorf("job handlers not initialized")
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcome, j.handleWelcomeEmailTask)
	mux.HandleFunc(TaskImagesCleanup, j.handleImagesCleanupTask)

	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(mux); err != nil {
		return err
	}

	if _, err := j.scheduler.AddFunc(j.cfg.Jobs.CleanupSchedule, func() {
		if err := j.EnqueueImagesCleanup(context.Background()); err != nil {
			j.logger.Warn().Err(err).Msg("failed to enqueue image cleanup")
		}
	}); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", j.cfg.Jobs.CleanupSchedule, err)
	}
	j.scheduler.Start()

	return nil
}

// EnqueueWelcomeEmail queues the welcome email for a new account.
func (j *JobService) EnqueueWelcomeEmail(ctx context.Context, to, name string) error {
	task, err := NewWelcomeEmailTask(to, name)
	if err != nil {
		return fmt.Errorf("failed to build welcome email task: %w", err)
	}

	if _, err := j.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue welcome email: %w", err)
	}
	return nil
}

// EnqueueImagesCleanup queues an orphan sweep. A sweep already queued is not an error.
func (j *JobService) EnqueueImagesCleanup(ctx context.Context) error {
	_, err := j.Client.EnqueueContext(ctx, NewImagesCleanupTask())
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		return fmt.Errorf("failed to enqueue image cleanup: %w", err)
	}
	return nil
}

// Stop halts the schedule, drains the workers and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	<-j.scheduler.Stop().Done()
	j.server.Shutdown()
	j.Client.Close()
}
