package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/vistual/internal/lib/storage"
	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	objects []storage.Object
	removed []string
	failOn  string
}

func (f *fakeImages) Walk(fn func(storage.Object) error) error {
	for _, o := range f.objects {
		if err := fn(o); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeImages) Remove(_ uuid.UUID, key string) error {
	if key == f.failOn {
		return errors.New("permission denied")
	}
	f.removed = append(f.removed, key)
	return nil
}

type fakeRefs struct {
	refs []garment.ImageRef
	err  error
}

func (f *fakeRefs) ListImageRefs(context.Context) ([]garment.ImageRef, error) {
	return f.refs, f.err
}

type fakeWelcome struct {
	to, name string
}

func (f *fakeWelcome) SendWelcomeEmail(_ context.Context, to, name string) error {
	f.to, f.name = to, name
	return nil
}

func TestCleanupOrphans(t *testing.T) {
	logger := zerolog.Nop()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ana, ben := uuid.New(), uuid.New()

	images := &fakeImages{objects: []storage.Object{
		{UserID: ana, Key: "kept.png", ModTime: now.Add(-48 * time.Hour)},
		{UserID: ana, Key: "orphan.png", ModTime: now.Add(-48 * time.Hour)},
		{UserID: ana, Key: "fresh.png", ModTime: now.Add(-time.Minute)},
		{UserID: ben, Key: "kept.png", ModTime: now.Add(-48 * time.Hour)},
		{UserID: ben, Key: "locked.png", ModTime: now.Add(-48 * time.Hour)},
	}, failOn: "locked.png"}

	refs := &fakeRefs{refs: []garment.ImageRef{{UserID: ana, ImageKey: "kept.png"}}}

	removed, err := CleanupOrphans(context.Background(), Dependencies{Images: images, Refs: refs}, time.Hour, now, &logger)
	require.NoError(t, err)

	assert.Equal(t, 2, removed)
	assert.ElementsMatch(t, []string{"orphan.png", "kept.png"}, images.removed)
}

func TestCleanupOrphansRefsError(t *testing.T) {
	logger := zerolog.Nop()
	deps := Dependencies{Images: &fakeImages{}, Refs: &fakeRefs{err: errors.New("db down")}}

	_, err := CleanupOrphans(context.Background(), deps, time.Hour, time.Now(), &logger)
	assert.ErrorContains(t, err, "db down")
}

func TestCleanupOrphansUninitialized(t *testing.T) {
	logger := zerolog.Nop()
	_, err := CleanupOrphans(context.Background(), Dependencies{}, time.Hour, time.Now(), &logger)
	assert.Error(t, err)
}

func TestHandleWelcomeEmailTask(t *testing.T) {
	logger := zerolog.Nop()
	sender := &fakeWelcome{}
	j := &JobService{logger: &logger, email: sender}

	task, err := NewWelcomeEmailTask("ana@example.com", "Ana")
	require.NoError(t, err)
	require.NoError(t, j.handleWelcomeEmailTask(context.Background(), task))
	assert.Equal(t, "ana@example.com", sender.to)
	assert.Equal(t, "Ana", sender.name)

	bad := asynq.NewTask(TaskWelcome, []byte("{"))
	assert.Error(t, j.handleWelcomeEmailTask(context.Background(), bad))
}

func TestNewWelcomeEmailTaskPayload(t *testing.T) {
	task, err := NewWelcomeEmailTask("ana@example.com", "Ana")
	require.NoError(t, err)
	assert.Equal(t, TaskWelcome, task.Type())

	var p WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "Ana", p.Name)
}
