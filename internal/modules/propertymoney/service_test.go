// README: Service tests against in-memory store and cache doubles.
package propertymoney

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertyapi/internal/logger"
	"propertyapi/internal/types"
)

type memStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]PropertyMoney
	err    error
}

func newMemStore() *memStore {
	return &memStore{rows: map[int64]PropertyMoney{}}
}

func (m *memStore) Create(_ context.Context, pm *PropertyMoney) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	id := m.nextID
	pm.ID = &id
	m.rows[id] = *pm
	return nil
}

func (m *memStore) Update(_ context.Context, pm *PropertyMoney) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.rows[*pm.ID]; !ok {
		return false, nil
	}
	m.rows[*pm.ID] = *pm
	return true, nil
}

func (m *memStore) Get(_ context.Context, id int64) (PropertyMoney, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return PropertyMoney{}, false, m.err
	}
	pm, ok := m.rows[id]
	return pm, ok, nil
}

func (m *memStore) List(_ context.Context, p types.Pageable) ([]PropertyMoney, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []PropertyMoney{}
	for i := p.Offset(); i < len(ids) && len(out) < p.Size; i++ {
		out = append(out, m.rows[ids[i]])
	}
	return out, nil
}

func (m *memStore) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.rows, id)
	return nil
}

type memCache struct {
	mu       sync.Mutex
	entries  map[int64]PropertyMoney
	versions map[int64]int64
	err      error
	gets     int
	hits     int
}

func newMemCache() *memCache {
	return &memCache{entries: map[int64]PropertyMoney{}, versions: map[int64]int64{}}
}

func (c *memCache) Get(_ context.Context, id int64) (PropertyMoney, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return PropertyMoney{}, false, c.err
	}
	pm, ok := c.entries[id]
	if ok {
		c.hits++
	}
	return pm, ok, nil
}

func (c *memCache) Version(_ context.Context, id int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.versions[id], nil
}

func (c *memCache) Set(_ context.Context, pm PropertyMoney, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.versions[*pm.ID] != version {
		return nil
	}
	c.entries[*pm.ID] = pm
	return nil
}

func (c *memCache) Evict(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.versions[id]++
	delete(c.entries, id)
	return nil
}

func (c *memCache) cached(id int64) (PropertyMoney, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pm, ok := c.entries[id]
	return pm, ok
}

// gatedStore pauses the first Get after it has read the row, until released.
type gatedStore struct {
	*memStore
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{memStore: newMemStore(), read: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) Get(ctx context.Context, id int64) (PropertyMoney, bool, error) {
	pm, ok, err := g.memStore.Get(ctx, id)
	g.once.Do(func() {
		close(g.read)
		<-g.release
	})
	return pm, ok, err
}

func newPM(amount string) PropertyMoney {
	d := decimal.RequireFromString(amount)
	return PropertyMoney{Amount: &d, Currency: "EUR", Description: "rent"}
}

func TestSaveAssignsIDOnCreate(t *testing.T) {
	svc := NewService(newMemStore(), nil, logger.NewNop())

	got, err := svc.Save(context.Background(), newPM("100.50"))
	require.NoError(t, err)
	require.NotNil(t, got.ID)
	assert.Equal(t, int64(1), *got.ID)
	assert.Equal(t, "100.5", got.Amount.String())
}

func TestSaveUpdatesExisting(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	svc := NewService(store, cache, logger.NewNop())
	ctx := context.Background()

	created, err := svc.Save(ctx, newPM("10"))
	require.NoError(t, err)

	// warm the cache so we can observe eviction
	_, ok, err := svc.FindOne(ctx, *created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	_, cached := cache.cached(*created.ID)
	require.True(t, cached)

	changed := created
	changed.Currency = "USD"
	updated, err := svc.Save(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, "USD", updated.Currency)
	_, cached = cache.cached(*created.ID)
	assert.False(t, cached)

	got, ok, err := svc.FindOne(ctx, *created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "USD", got.Currency)
}

func TestSaveUnknownIDReturnsNotFound(t *testing.T) {
	svc := NewService(newMemStore(), nil, logger.NewNop())
	pm := newPM("1")
	id := int64(42)
	pm.ID = &id

	_, err := svc.Save(context.Background(), pm)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveWrapsStoreError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	svc := NewService(store, nil, logger.NewNop())

	_, err := svc.Save(context.Background(), newPM("1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFindOneMissingIsNotAnError(t *testing.T) {
	svc := NewService(newMemStore(), newMemCache(), logger.NewNop())

	_, ok, err := svc.FindOne(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindOneReadsThroughCache(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	svc := NewService(store, cache, logger.NewNop())
	ctx := context.Background()

	created, err := svc.Save(ctx, newPM("7.25"))
	require.NoError(t, err)

	_, ok, err := svc.FindOne(ctx, *created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, cache.hits)

	got, ok, err := svc.FindOne(ctx, *created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, "7.25", got.Amount.String())
}

func TestFindOneSurvivesCacheFailure(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	svc := NewService(store, cache, logger.NewNop())
	ctx := context.Background()

	created, err := svc.Save(ctx, newPM("3"))
	require.NoError(t, err)

	cache.err = errors.New("redis down")
	got, ok, err := svc.FindOne(ctx, *created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, *created.ID, *got.ID)
}

func TestDeleteIsIdempotentAndEvicts(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	svc := NewService(store, cache, logger.NewNop())
	ctx := context.Background()

	created, err := svc.Save(ctx, newPM("5"))
	require.NoError(t, err)
	_, _, err = svc.FindOne(ctx, *created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, *created.ID))
	_, cached := cache.cached(*created.ID)
	assert.False(t, cached)
	require.NoError(t, svc.Delete(ctx, *created.ID))
	require.NoError(t, svc.Delete(ctx, 12345))

	_, ok, err := svc.FindOne(ctx, *created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindOneDoesNotCacheRowOverwrittenMidRead(t *testing.T) {
	cases := []struct {
		name  string
		write func(ctx context.Context, svc *Service, created PropertyMoney) error
		check func(t *testing.T, got PropertyMoney, found bool)
	}{
		{
			name: "delete",
			write: func(ctx context.Context, svc *Service, created PropertyMoney) error {
				return svc.Delete(ctx, *created.ID)
			},
			check: func(t *testing.T, _ PropertyMoney, found bool) {
				assert.False(t, found)
			},
		},
		{
			name: "update",
			write: func(ctx context.Context, svc *Service, created PropertyMoney) error {
				changed := created
				changed.Currency = "USD"
				_, err := svc.Save(ctx, changed)
				return err
			},
			check: func(t *testing.T, got PropertyMoney, found bool) {
				require.True(t, found)
				assert.Equal(t, "USD", got.Currency)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newGatedStore()
			cache := newMemCache()
			svc := NewService(store, cache, logger.NewNop())
			ctx := context.Background()

			created, err := svc.Save(ctx, newPM("20"))
			require.NoError(t, err)
			id := *created.ID

			done := make(chan error, 1)
			go func() {
				_, _, err := svc.FindOne(ctx, id)
				done <- err
			}()

			<-store.read
			require.NoError(t, tc.write(ctx, svc, created))
			close(store.release)
			require.NoError(t, <-done)

			if pm, ok := cache.cached(id); ok {
				assert.NotEqual(t, "EUR", pm.Currency, "stale row cached")
			}
			got, found, err := svc.FindOne(ctx, id)
			require.NoError(t, err)
			tc.check(t, got, found)
		})
	}
}

func TestFindAllPageNeverExceedsSize(t *testing.T) {
	svc := NewService(newMemStore(), nil, logger.NewNop())
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		_, err := svc.Save(ctx, newPM("1"))
		require.NoError(t, err)
	}

	cases := []struct {
		page, size int
		wantLen    int
	}{
		{0, 3, 3},
		{1, 3, 3},
		{2, 3, 1},
		{3, 3, 0},
		{0, 20, 7},
	}
	for _, tc := range cases {
		page, err := svc.FindAll(ctx, types.Pageable{Page: tc.page, Size: tc.size})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Content), tc.size)
		assert.Len(t, page.Content, tc.wantLen, "page=%d size=%d", tc.page, tc.size)
		assert.Equal(t, int64(7), page.Total)
	}
}

func TestFindAllRejectsUnknownSort(t *testing.T) {
	svc := NewService(newMemStore(), nil, logger.NewNop())

	_, err := svc.FindAll(context.Background(), types.Pageable{
		Size: 10,
		Sort: []types.Order{{Property: "amount; DROP TABLE property_money", Direction: types.Asc}},
	})
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestOrderByClause(t *testing.T) {
	got, err := orderByClause([]types.Order{
		{Property: "amount", Direction: types.Desc},
		{Property: "propertyId", Direction: types.Asc},
	})
	require.NoError(t, err)
	assert.Equal(t, "amount DESC, property_id ASC, id ASC", got)

	got, err = orderByClause([]types.Order{{Property: "id", Direction: types.Desc}})
	require.NoError(t, err)
	assert.Equal(t, "id DESC", got)

	got, err = orderByClause(nil)
	require.NoError(t, err)
	assert.Equal(t, "id ASC", got)
}
