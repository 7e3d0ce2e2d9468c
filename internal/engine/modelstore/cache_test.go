// internal/engine/modelstore/cache_test.go
package modelstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-engine/internal/common/errors"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/models"
)

// fakeStore is an in-memory Store tracking call counts, enforcing the
// exclusive-active invariant per scope.
type fakeStore struct {
	models      map[string]*models.TrainedModel // by ID
	activeCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{models: map[string]*models.TrainedModel{}}
}

func (f *fakeStore) SaveAndActivate(_ context.Context, model *models.TrainedModel) error {
	for _, m := range f.models {
		if m.Scope == model.Scope {
			m.IsActive = false
		}
	}
	model.IsActive = true
	f.models[model.ID] = model
	return nil
}

func (f *fakeStore) ActiveModel(_ context.Context, scope models.Scope) (*models.TrainedModel, error) {
	f.activeCalls++
	for _, m := range f.models {
		if m.Scope == scope && m.IsActive {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Deactivate(_ context.Context, modelID string) (models.Scope, error) {
	m, ok := f.models[modelID]
	if !ok {
		return models.Scope{}, errors.NewModelNotFoundError(modelID)
	}
	m.IsActive = false
	return m.Scope, nil
}

func (f *fakeStore) ListByScope(_ context.Context, scope models.Scope) ([]models.TrainedModel, error) {
	var out []models.TrainedModel
	for _, m := range f.models {
		if m.Scope == scope {
			out = append(out, *m)
		}
	}
	return out, nil
}

func newCachedStore(t *testing.T) (*CachedStore, *fakeStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := newFakeStore()
	cached := NewCachedStore(store, rdb, 10*time.Minute, logger.NewTestLogger(t))
	return cached, store, mr
}

func TestCachedStore_ReadThrough(t *testing.T) {
	cached, store, mr := newCachedStore(t)
	ctx := context.Background()

	model := testModel(models.GlobalScope())
	require.NoError(t, cached.Activate(ctx, model))

	// First read misses the cache and populates it.
	got, err := cached.ActiveModel(ctx, models.GlobalScope())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.ID, got.ID)
	assert.Equal(t, 1, store.activeCalls)
	assert.True(t, mr.Exists("model:active:global"))

	// Second read is served from the cache.
	got, err = cached.ActiveModel(ctx, models.GlobalScope())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.ID, got.ID)
	assert.Equal(t, 1, store.activeCalls)
}

func TestCachedStore_CacheEntryExpires(t *testing.T) {
	cached, store, mr := newCachedStore(t)
	ctx := context.Background()

	require.NoError(t, cached.Activate(ctx, testModel(models.GlobalScope())))

	_, err := cached.ActiveModel(ctx, models.GlobalScope())
	require.NoError(t, err)
	assert.Equal(t, 1, store.activeCalls)

	mr.FastForward(11 * time.Minute)

	_, err = cached.ActiveModel(ctx, models.GlobalScope())
	require.NoError(t, err)
	assert.Equal(t, 2, store.activeCalls)
}

func TestCachedStore_ActivateEvictsStaleEntry(t *testing.T) {
	cached, _, mr := newCachedStore(t)
	ctx := context.Background()

	old := testModel(models.GlobalScope())
	require.NoError(t, cached.Activate(ctx, old))

	_, err := cached.ActiveModel(ctx, models.GlobalScope())
	require.NoError(t, err)
	require.True(t, mr.Exists("model:active:global"))

	replacement := testModel(models.GlobalScope())
	replacement.ID = "33333333-3333-3333-3333-333333333333"
	require.NoError(t, cached.Activate(ctx, replacement))

	// Activation evicted the cached entry; the next read sees the new model.
	assert.False(t, mr.Exists("model:active:global"))

	got, err := cached.ActiveModel(ctx, models.GlobalScope())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, replacement.ID, got.ID)
}

func TestCachedStore_DeactivateEvictsScopeEntry(t *testing.T) {
	cached, _, mr := newCachedStore(t)
	ctx := context.Background()

	model := testModel(models.ScholarshipScope("sch-1"))
	require.NoError(t, cached.Activate(ctx, model))

	_, err := cached.ActiveModel(ctx, models.ScholarshipScope("sch-1"))
	require.NoError(t, err)
	require.True(t, mr.Exists("model:active:scholarship:sch-1"))

	require.NoError(t, cached.Deactivate(ctx, model.ID))
	assert.False(t, mr.Exists("model:active:scholarship:sch-1"))

	got, err := cached.ActiveModel(ctx, models.ScholarshipScope("sch-1"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCachedStore_AbsenceIsNotCached(t *testing.T) {
	cached, store, mr := newCachedStore(t)
	ctx := context.Background()

	got, err := cached.ActiveModel(ctx, models.GlobalScope())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("model:active:global"))
	assert.Equal(t, 1, store.activeCalls)

	// Absence goes back to storage every time, so a freshly activated model
	// is visible immediately.
	got, err = cached.ActiveModel(ctx, models.GlobalScope())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 2, store.activeCalls)
}

func TestCachedStore_ScopeKeysAreIndependent(t *testing.T) {
	cached, _, _ := newCachedStore(t)
	ctx := context.Background()

	global := testModel(models.GlobalScope())
	scoped := testModel(models.ScholarshipScope("sch-1"))
	scoped.ID = "44444444-4444-4444-4444-444444444444"

	require.NoError(t, cached.Activate(ctx, global))
	require.NoError(t, cached.Activate(ctx, scoped))

	gotGlobal, err := cached.ActiveModel(ctx, models.GlobalScope())
	require.NoError(t, err)
	require.NotNil(t, gotGlobal)
	assert.Equal(t, global.ID, gotGlobal.ID)

	gotScoped, err := cached.ActiveModel(ctx, models.ScholarshipScope("sch-1"))
	require.NoError(t, err)
	require.NotNil(t, gotScoped)
	assert.Equal(t, scoped.ID, gotScoped.ID)
}

func TestCachedStore_ListByScopePassesThrough(t *testing.T) {
	cached, _, _ := newCachedStore(t)
	ctx := context.Background()

	first := testModel(models.GlobalScope())
	second := testModel(models.GlobalScope())
	second.ID = "55555555-5555-5555-5555-555555555555"

	require.NoError(t, cached.Activate(ctx, first))
	require.NoError(t, cached.Activate(ctx, second))

	listed, err := cached.ListByScope(ctx, models.GlobalScope())
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	activeCount := 0
	for _, m := range listed {
		if m.IsActive {
			activeCount++
			assert.Equal(t, second.ID, m.ID)
		}
	}
	assert.Equal(t, 1, activeCount)
}
