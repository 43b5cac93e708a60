package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"stayscape/internal/domain"
	"stayscape/internal/storage/memory"
)

func seedHotel(t *testing.T, store *memory.Store, name, city, state string, price float64, stars int, featured bool) int {
	t.Helper()
	ids := seedRecords(t, store, hotelTable, domain.Record{
		"name_c":            name,
		"city_c":            city,
		"state_c":           state,
		"country_c":         "USA",
		"available_c":       true,
		"featured_c":        featured,
		"price_per_night_c": price,
		"rating_c":          4.0,
		"star_rating_c":     stars,
	})
	return ids[0]
}

func TestHotels_List_DestinationMatchesCityStateOrName(t *testing.T) {
	store := memory.New()
	seedHotel(t, store, "The Meridian Grand", "New York", "NY", 289, 5, true)
	seedHotel(t, store, "Pacific Shores Resort", "San Diego", "CA", 215, 4, false)
	seedHotel(t, store, "New Amsterdam Inn", "Boston", "MA", 150, 3, false)
	s := NewHotels(store, nil, nil, nil, 0)

	out, err := s.List(context.Background(), domain.HotelFilter{Destination: "new"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("destination should match city OR name, got %+v", out)
	}
}

func TestHotels_List_PriceAndStars(t *testing.T) {
	store := memory.New()
	seedHotel(t, store, "A", "X", "XX", 100, 3, false)
	seedHotel(t, store, "B", "X", "XX", 200, 4, false)
	seedHotel(t, store, "C", "X", "XX", 300, 5, false)
	s := NewHotels(store, nil, nil, nil, 0)

	out, err := s.List(context.Background(), domain.HotelFilter{
		MinPrice: 150, MaxPrice: 250, StarRatings: []int{4, 5},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 1 || out[0].Name != "B" {
		t.Fatalf("unexpected filter result: %+v", out)
	}
}

func TestHotels_List_SortPriceLow(t *testing.T) {
	store := memory.New()
	seedHotel(t, store, "B", "X", "XX", 200, 4, false)
	seedHotel(t, store, "A", "X", "XX", 100, 3, false)
	s := NewHotels(store, nil, nil, nil, 0)

	out, err := s.List(context.Background(), domain.HotelFilter{SortBy: "price-low"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 || out[0].Name != "A" {
		t.Fatalf("expected cheapest first, got %+v", out)
	}
}

func TestHotels_GetByID_EnrichesWithStats(t *testing.T) {
	store := memory.New()
	id := seedHotel(t, store, "A", "X", "XX", 100, 3, false)
	stats := fakeStats{stats: domain.HotelStats{
		AverageRating: 4.6, TotalReviews: 12,
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 1, 4: 3, 5: 8},
	}}
	s := NewHotels(store, stats, nil, nil, 0)

	h, err := s.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if h.Rating != 4.6 || h.ReviewCount != 12 {
		t.Fatalf("expected live aggregates, got rating=%v count=%d", h.Rating, h.ReviewCount)
	}
	if h.ReviewStats[5] != 8 {
		t.Fatalf("distribution missing: %+v", h.ReviewStats)
	}
}

func TestHotels_GetByID_SkipsEnrichmentOnStatsFailure(t *testing.T) {
	store := memory.New()
	id := seedHotel(t, store, "A", "X", "XX", 100, 3, false)
	s := NewHotels(store, fakeStats{err: errBackendDown}, nil, nil, 0)

	h, err := s.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("stats failure must not fail the read: %v", err)
	}
	if h.Rating != 4.0 {
		t.Fatalf("base rating should survive, got %v", h.Rating)
	}
	if h.ReviewStats != nil {
		t.Fatalf("no distribution expected on skip, got %+v", h.ReviewStats)
	}
}

type viewCache struct{ store map[string]domain.Hotel }

func (c *viewCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	*(dst.(*domain.Hotel)) = v
	return true, nil
}

func (c *viewCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]domain.Hotel{}
	}
	c.store[key] = v.(domain.Hotel)
	return nil
}

func (c *viewCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func TestHotels_GetByID_CachesTheView(t *testing.T) {
	store := memory.New()
	id := seedHotel(t, store, "A", "X", "XX", 100, 3, false)
	cache := &viewCache{}
	s := NewHotels(store, nil, cache, nil, time.Minute)
	ctx := context.Background()

	if _, err := s.GetByID(ctx, id); err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	// rename behind the cache's back; the TTL window still serves the old view
	if _, err := store.Update(ctx, hotelTable, []domain.Record{{"Id": id, "name_c": "Renamed"}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	h, err := s.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if h.Name != "A" {
		t.Fatalf("expected the cached view, got %q", h.Name)
	}
}

func TestHotels_GetByID_DegradedViewNotCached(t *testing.T) {
	store := memory.New()
	id := seedHotel(t, store, "A", "X", "XX", 100, 3, false)
	cache := &viewCache{}
	s := NewHotels(store, fakeStats{err: errBackendDown}, cache, nil, time.Minute)

	if _, err := s.GetByID(context.Background(), id); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(cache.store) != 0 {
		t.Fatalf("stats-less views must not be pinned in the cache: %+v", cache.store)
	}
}

func TestHotels_GetByID_NotFound(t *testing.T) {
	s := NewHotels(memory.New(), nil, nil, nil, 0)
	if _, err := s.GetByID(context.Background(), 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHotels_GetFeatured_CapsAtFour(t *testing.T) {
	store := memory.New()
	for i := 0; i < 6; i++ {
		seedHotel(t, store, "F", "X", "XX", 100, 4, true)
	}
	seedHotel(t, store, "plain", "X", "XX", 100, 4, false)
	s := NewHotels(store, nil, nil, nil, 0)

	out, err := s.GetFeatured(context.Background())
	if err != nil {
		t.Fatalf("GetFeatured: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected four featured hotels, got %d", len(out))
	}
}

func TestHotels_Search_EmptyQueryShortCircuits(t *testing.T) {
	notify := &fakeNotify{}
	s := NewHotels(failStore{}, nil, nil, notify, 0)

	out, err := s.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %+v", out)
	}
	if len(notify.msgs) != 0 {
		t.Fatal("empty query must not reach the store")
	}
}

func TestHotels_CheckAvailability(t *testing.T) {
	store := memory.New()
	id := seedHotel(t, store, "A", "X", "XX", 200, 4, false)
	s := NewHotels(store, nil, nil, nil, 0)
	checkIn := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 3)

	s.chance = func() float64 { return 1.0 }
	avail, err := s.CheckAvailability(context.Background(), id, checkIn, checkOut)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !avail.Available || len(avail.Rooms) != 2 {
		t.Fatalf("expected two synthesized offers, got %+v", avail)
	}
	if avail.Rooms[0].PricePerNight != 200 || avail.Rooms[1].PricePerNight != 300 {
		t.Fatalf("suite should price at 1.5x base: %+v", avail.Rooms)
	}
	if avail.Rooms[1].Capacity != 4 {
		t.Fatalf("suite capacity: %d", avail.Rooms[1].Capacity)
	}

	s.chance = func() float64 { return 0.05 }
	avail, err = s.CheckAvailability(context.Background(), id, checkIn, checkOut)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if avail.Available || len(avail.Rooms) != 0 {
		t.Fatalf("gated-out check must return no offers, got %+v", avail)
	}
}
