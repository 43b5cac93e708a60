package redisad

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"stayscape/internal/domain"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return New(mr.Addr(), "", 0), mr
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	in := domain.HotelStats{
		AverageRating:      4.7,
		TotalReviews:       3,
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 2},
	}
	if err := c.Set(ctx, "reviewstats:1", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out domain.HotelStats
	ok, err := c.Get(ctx, "reviewstats:1", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if out.AverageRating != 4.7 || out.RatingDistribution[5] != 2 {
		t.Fatalf("round trip mangled the value: %+v", out)
	}
}

func TestCache_MissIsNotAnError(t *testing.T) {
	c, _ := newTestCache(t)

	var out domain.HotelStats
	ok, err := c.Get(context.Background(), "missing", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected a miss")
	}
}

func TestCache_Del(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", domain.HotelStats{TotalReviews: 1}, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	var out domain.HotelStats
	ok, _ := c.Get(ctx, "k", &out)
	if ok {
		t.Fatal("expected a miss after delete")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", domain.HotelStats{TotalReviews: 1}, 30); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var out domain.HotelStats
	ok, _ := c.Get(ctx, "k", &out)
	if ok {
		t.Fatal("expected expiry after the TTL")
	}
}
