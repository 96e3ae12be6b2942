package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskWelcome       = "email:welcome"
	TaskImagesCleanup = "images:cleanup"
)

type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

// NewWelcomeEmailTask builds the task sent after registration.
func NewWelcomeEmailTask(to, name string) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{
		To:   to,
		Name: name,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// NewImagesCleanupTask builds the orphan sweep. Unique keeps overlapping
// schedules from queueing it twice.
func NewImagesCleanupTask() *asynq.Task {
	return asynq.NewTask(
		TaskImagesCleanup,
		nil,
		asynq.MaxRetry(1),
		asynq.Queue("low"),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(time.Hour),
	)
}
