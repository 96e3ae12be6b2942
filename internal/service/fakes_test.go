package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/deppfellow/vistual/internal/model"
	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/deppfellow/vistual/internal/model/user"
	"github.com/deppfellow/vistual/internal/sqlerr"
	"github.com/google/uuid"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uuid.UUID]*user.User{}}
}

func (f *fakeUsers) Create(_ context.Context, name, email, hash string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	u := &user.User{
		Base:         model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, sqlerr.NotFound("users")
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sqlerr.NotFound("users")
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

type fakeGarments struct {
	items []garment.Garment
	clock time.Time
}

func newFakeGarments() *fakeGarments {
	return &fakeGarments{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeGarments) Create(_ context.Context, userID uuid.UUID, p *garment.CreateGarmentPayload) (*garment.Garment, error) {
	f.clock = f.clock.Add(time.Minute)
	g := garment.Garment{
		Base:     model.Base{ID: uuid.New(), CreatedAt: f.clock, UpdatedAt: f.clock},
		UserID:   userID,
		Name:     p.Name,
		Category: p.Category,
		Color:    p.Color,
		ImageKey: p.ImageKey,
	}
	g.Decorate()
	f.items = append(f.items, g)
	return &g, nil
}

func (f *fakeGarments) GetByID(_ context.Context, userID, id uuid.UUID) (*garment.Garment, error) {
	for _, g := range f.items {
		if g.ID == id && g.UserID == userID {
			return &g, nil
		}
	}
	return nil, sqlerr.NotFound("garments")
}

func (f *fakeGarments) owned(userID uuid.UUID) []garment.Garment {
	var out []garment.Garment
	for _, g := range f.items {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeGarments) List(_ context.Context, userID uuid.UUID, q *garment.ListGarmentsQuery) ([]garment.Garment, int, error) {
	all := f.owned(userID)
	start := min(q.Offset(), len(all))
	end := min(start+q.Limit, len(all))
	return all[start:end], len(all), nil
}

func (f *fakeGarments) ListAll(_ context.Context, userID uuid.UUID) ([]garment.Garment, error) {
	return f.owned(userID), nil
}

func (f *fakeGarments) Delete(_ context.Context, userID, id uuid.UUID) (string, error) {
	for i, g := range f.items {
		if g.ID == id && g.UserID == userID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return g.ImageKey, nil
		}
	}
	return "", sqlerr.NotFound("garments")
}

func (f *fakeGarments) ImageInUse(_ context.Context, userID uuid.UUID, key string) (bool, error) {
	for _, g := range f.items {
		if g.UserID == userID && g.ImageKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGarments) CountByCategory(_ context.Context, userID uuid.UUID) ([]garment.CategoryCount, error) {
	counts := map[garment.Category]int{}
	for _, g := range f.owned(userID) {
		counts[g.Category]++
	}
	var out []garment.CategoryCount
	for _, info := range garment.GetCatalog().Categories {
		if n, ok := counts[info.Code]; ok {
			out = append(out, garment.CategoryCount{Category: info.Code, Name: info.Name, Count: n})
		}
	}
	return out, nil
}

func (f *fakeGarments) Facets(_ context.Context, userID uuid.UUID) (*garment.Facets, error) {
	return &garment.Facets{}, nil
}

type mapCache struct {
	entries map[string][]byte
	gets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (m *mapCache) Get(_ context.Context, key string, dst any) bool {
	m.gets++
	raw, ok := m.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (m *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

type fakeJobs struct {
	welcomed []string
	err      error
}

func (f *fakeJobs) EnqueueWelcomeEmail(_ context.Context, to, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.welcomed = append(f.welcomed, to)
	return nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(userID uuid.UUID, _ string) (string, time.Time, error) {
	return "token-" + userID.String(), time.Now().Add(time.Hour), nil
}

var errBoom = errors.New("boom")

func sqlerrHandle(err error) error {
	return sqlerr.HandleError(err)
}
