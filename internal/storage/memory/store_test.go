package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayscape/internal/domain"
)

const table = "hotel_c"

func seed(t *testing.T, s *Store, recs ...domain.Record) []int {
	t.Helper()
	results, err := s.Create(context.Background(), table, recs)
	require.NoError(t, err)
	ids := make([]int, 0, len(results))
	for _, res := range results {
		require.True(t, res.Success, res.Message)
		ids = append(ids, res.Data["Id"].(int))
	}
	return ids
}

func TestStore_CreateAssignsSequentialIDs(t *testing.T) {
	s := New()
	ids := seed(t, s,
		domain.Record{"name_c": "A"},
		domain.Record{"name_c": "B"},
	)
	assert.Equal(t, []int{1, 2}, ids)

	rec, err := s.Get(context.Background(), table, 2, domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, "B", rec["name_c"])
}

func TestStore_GetNotFound(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), table, 7, domain.Query{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_FetchPredicates(t *testing.T) {
	s := New()
	seed(t, s,
		domain.Record{"name_c": "Harborview Suites", "city_c": "Seattle", "price_per_night_c": 199.0, "star_rating_c": 4},
		domain.Record{"name_c": "Desert Bloom Inn", "city_c": "Phoenix", "price_per_night_c": 129.0, "star_rating_c": 3},
		domain.Record{"name_c": "Bayfront Boutique", "city_c": "Miami", "price_per_night_c": 249.0, "star_rating_c": 5},
	)
	ctx := context.Background()

	out, err := s.Fetch(ctx, table, domain.Query{Where: []domain.Condition{
		{Field: "city_c", Op: domain.EqualTo, Values: []any{"Phoenix"}},
	}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Desert Bloom Inn", out[0]["name_c"])

	out, err = s.Fetch(ctx, table, domain.Query{Where: []domain.Condition{
		{Field: "price_per_night_c", Op: domain.GreaterThanOrEqualTo, Values: []any{150.0}},
		{Field: "price_per_night_c", Op: domain.LessThanOrEqualTo, Values: []any{200.0}},
	}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Harborview Suites", out[0]["name_c"])

	out, err = s.Fetch(ctx, table, domain.Query{Where: []domain.Condition{
		{Field: "name_c", Op: domain.Contains, Values: []any{"BOUTIQUE"}},
	}})
	require.NoError(t, err)
	require.Len(t, out, 1)

	out, err = s.Fetch(ctx, table, domain.Query{Where: []domain.Condition{
		{Field: "star_rating_c", Op: domain.ExactMatch, Values: []any{3, 5}},
	}})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestStore_FetchOrGroups(t *testing.T) {
	s := New()
	seed(t, s,
		domain.Record{"name_c": "A", "city_c": "Seattle", "state_c": "WA"},
		domain.Record{"name_c": "B", "city_c": "Miami", "state_c": "FL"},
		domain.Record{"name_c": "Seattle House", "city_c": "Austin", "state_c": "TX"},
	)

	out, err := s.Fetch(context.Background(), table, domain.Query{
		WhereGroups: []domain.ConditionGroup{{
			Operator: "OR",
			Groups: []domain.ConditionGroup{{
				Operator: "OR",
				Conditions: []domain.Condition{
					{Field: "city_c", Op: domain.Contains, Values: []any{"seattle"}},
					{Field: "name_c", Op: domain.Contains, Values: []any{"seattle"}},
				},
			}},
		}},
	})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestStore_FetchLookupForeignKey(t *testing.T) {
	s := New()
	results, err := s.Create(context.Background(), "review_c", []domain.Record{
		{"title_c": "a", "hotel_id_c": map[string]any{"Id": 5, "Name": "H"}},
		{"title_c": "b", "hotel_id_c": 6},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	out, err := s.Fetch(context.Background(), "review_c", domain.Query{Where: []domain.Condition{
		{Field: "hotel_id_c", Op: domain.EqualTo, Values: []any{5}},
	}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0]["title_c"])
}

func TestStore_FetchSortAndPaging(t *testing.T) {
	s := New()
	seed(t, s,
		domain.Record{"name_c": "A", "price_per_night_c": 300.0},
		domain.Record{"name_c": "B", "price_per_night_c": 100.0},
		domain.Record{"name_c": "C", "price_per_night_c": 200.0},
	)

	out, err := s.Fetch(context.Background(), table, domain.Query{
		OrderBy: []domain.Sort{{Field: "price_per_night_c", Desc: true}},
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0]["name_c"])
	assert.Equal(t, "C", out[1]["name_c"])

	out, err = s.Fetch(context.Background(), table, domain.Query{
		OrderBy: []domain.Sort{{Field: "price_per_night_c"}},
		Limit:   2,
		Offset:  2,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0]["name_c"])

	out, err = s.Fetch(context.Background(), table, domain.Query{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStore_UpdateMergesPatch(t *testing.T) {
	s := New()
	ids := seed(t, s, domain.Record{"name_c": "A", "city_c": "Seattle"})

	results, err := s.Update(context.Background(), table, []domain.Record{
		{"Id": ids[0], "city_c": "Tacoma"},
	})
	require.NoError(t, err)
	require.True(t, results[0].Success)
	assert.Equal(t, "Tacoma", results[0].Data["city_c"])
	assert.Equal(t, "A", results[0].Data["name_c"])
}

func TestStore_UpdateMissingRecordFailsSoftly(t *testing.T) {
	s := New()
	results, err := s.Update(context.Background(), table, []domain.Record{{"Id": 77, "name_c": "x"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Message, "does not exist")
}

func TestStore_DeleteReportsPerID(t *testing.T) {
	s := New()
	ids := seed(t, s, domain.Record{"name_c": "A"})

	results, err := s.Delete(context.Background(), table, []int{ids[0], 99})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)

	_, err = s.Get(context.Background(), table, ids[0], domain.Query{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_FetchReturnsCopies(t *testing.T) {
	s := New()
	ids := seed(t, s, domain.Record{"name_c": "A"})

	out, err := s.Fetch(context.Background(), table, domain.Query{})
	require.NoError(t, err)
	out[0]["name_c"] = "mutated"

	rec, err := s.Get(context.Background(), table, ids[0], domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, "A", rec["name_c"])
}
