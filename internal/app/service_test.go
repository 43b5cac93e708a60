package app

import (
	"context"
	"errors"
	"testing"

	"stayscape/internal/domain"
	"stayscape/internal/storage/memory"
)

// ---- fakes ----

type fakeNotify struct{ msgs []string }

func (f *fakeNotify) Notify(msg string) { f.msgs = append(f.msgs, msg) }

var errBackendDown = errors.New("backend down")

// failStore fails every operation, for exercising the degraded read paths.
type failStore struct{}

func (failStore) Fetch(ctx context.Context, table string, q domain.Query) ([]domain.Record, error) {
	return nil, errBackendDown
}
func (failStore) Get(ctx context.Context, table string, id int, q domain.Query) (domain.Record, error) {
	return nil, errBackendDown
}
func (failStore) Create(ctx context.Context, table string, records []domain.Record) ([]domain.WriteResult, error) {
	return nil, errBackendDown
}
func (failStore) Update(ctx context.Context, table string, records []domain.Record) ([]domain.WriteResult, error) {
	return nil, errBackendDown
}
func (failStore) Delete(ctx context.Context, table string, ids []int) ([]domain.WriteResult, error) {
	return nil, errBackendDown
}

type fakeCache struct {
	store map[string]domain.HotelStats
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	*(dst.(*domain.HotelStats)) = v
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]domain.HotelStats{}
	}
	c.store[key] = v.(domain.HotelStats)
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

type fakeStats struct {
	stats domain.HotelStats
	err   error
}

func (f fakeStats) HotelStats(ctx context.Context, hotelID int) (domain.HotelStats, error) {
	return f.stats, f.err
}

// seedRecords inserts raw wire records and returns the assigned ids.
func seedRecords(t *testing.T, store *memory.Store, table string, recs ...domain.Record) []int {
	t.Helper()
	results, err := store.Create(context.Background(), table, recs)
	if err != nil {
		t.Fatalf("seed %s: %v", table, err)
	}
	ids := make([]int, 0, len(results))
	for _, res := range results {
		if !res.Success {
			t.Fatalf("seed %s rejected: %s", table, res.Message)
		}
		ids = append(ids, res.Data["Id"].(int))
	}
	return ids
}
