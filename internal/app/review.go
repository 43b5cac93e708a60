package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"stayscape/internal/domain"
)

// Reviews wraps the review_c table and owns the rating aggregation the
// hotel read path is enriched with. Stats are cached per hotel; review
// writes evict the touched hotel's entry.
type Reviews struct {
	store    domain.TableStore
	cache    domain.Cache
	notify   domain.Notifier
	cacheTTL time.Duration
	now      func() time.Time
}

func NewReviews(store domain.TableStore, cache domain.Cache, notify domain.Notifier, ttl time.Duration) *Reviews {
	if notify == nil {
		notify = domain.NopNotifier{}
	}
	return &Reviews{store: store, cache: cache, notify: notify, cacheTTL: ttl, now: time.Now}
}

func reviewSortOrder(sortBy string) []domain.Sort {
	switch sortBy {
	case "oldest":
		return []domain.Sort{{Field: "created_at_c"}}
	case "rating-high":
		return []domain.Sort{{Field: "rating_c", Desc: true}}
	case "rating-low":
		return []domain.Sort{{Field: "rating_c"}}
	default: // newest
		return []domain.Sort{{Field: "created_at_c", Desc: true}}
	}
}

// List returns reviews matching f; unrecognized filter keys don't exist by
// construction. A store failure degrades to an empty list.
func (s *Reviews) List(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	q := domain.Query{Fields: reviewFields, OrderBy: reviewSortOrder(f.SortBy)}
	if f.HotelID != 0 {
		q.Where = append(q.Where, domain.Condition{Field: "hotel_id_c", Op: domain.EqualTo, Values: []any{f.HotelID}})
	}
	if f.UserID != 0 {
		q.Where = append(q.Where, domain.Condition{Field: "user_id_c", Op: domain.EqualTo, Values: []any{f.UserID}})
	}
	if f.MinRating != 0 {
		q.Where = append(q.Where, domain.Condition{Field: "rating_c", Op: domain.GreaterThanOrEqualTo, Values: []any{f.MinRating}})
	}
	if f.Search != "" {
		q.Where = append(q.Where, domain.Condition{Field: "title_c", Op: domain.Contains, Values: []any{f.Search}})
	}
	recs, err := s.store.Fetch(ctx, reviewTable, q)
	if err != nil {
		notifyErr(s.notify, "reviews.list", err)
		return []domain.Review{}, nil
	}
	out := make([]domain.Review, 0, len(recs))
	for _, rec := range recs {
		out = append(out, mapReview(rec))
	}
	return out, nil
}

func (s *Reviews) GetByID(ctx context.Context, id int) (domain.Review, error) {
	rec, err := s.store.Get(ctx, reviewTable, id, domain.Query{Fields: reviewFields})
	if err != nil {
		notifyErr(s.notify, "reviews.get", err)
		return domain.Review{}, err
	}
	return mapReview(rec), nil
}

func (s *Reviews) GetByHotel(ctx context.Context, hotelID int) ([]domain.Review, error) {
	return s.List(ctx, domain.ReviewFilter{HotelID: hotelID})
}

func (s *Reviews) GetByUser(ctx context.Context, userID int) ([]domain.Review, error) {
	return s.List(ctx, domain.ReviewFilter{UserID: userID})
}

// Create validates the required fields locally, then stores the review with
// generated defaults (timestamps, helpful count, verified flag).
func (s *Reviews) Create(ctx context.Context, d domain.ReviewDraft) (domain.Review, error) {
	if d.HotelID == 0 || d.UserID == 0 || d.Rating == 0 || d.Title == "" {
		return domain.Review{}, fmt.Errorf("review: missing required fields: %w", domain.ErrInvalidInput)
	}
	results, err := s.store.Create(ctx, reviewTable, []domain.Record{reviewRecord(d, s.now())})
	if err != nil {
		notifyErr(s.notify, "reviews.create", err)
		return domain.Review{}, err
	}
	if failed := reportFailures(s.notify, "reviews.create", results); len(failed) > 0 {
		return domain.Review{}, fmt.Errorf("review: %w", errCreateFailed)
	}
	rec, ok := firstSuccess(results)
	if !ok {
		return domain.Review{}, fmt.Errorf("review: %w", errCreateFailed)
	}
	s.invalidateStats(ctx, d.HotelID)
	return mapReview(rec), nil
}

// Update applies a partial update, refreshing updated_at_c, then re-reads
// the record for the authoritative shape.
func (s *Reviews) Update(ctx context.Context, id int, u domain.ReviewUpdate) (domain.Review, error) {
	results, err := s.store.Update(ctx, reviewTable, []domain.Record{reviewPatch(id, u, s.now())})
	if err != nil {
		notifyErr(s.notify, "reviews.update", err)
		return domain.Review{}, err
	}
	reportFailures(s.notify, "reviews.update", results)
	if _, ok := firstSuccess(results); ok {
		rv, err := s.GetByID(ctx, id)
		if err == nil {
			s.invalidateStats(ctx, rv.HotelID)
		}
		return rv, err
	}
	return domain.Review{}, fmt.Errorf("review: %w", errUpdateFailed)
}

func (s *Reviews) Delete(ctx context.Context, ids ...int) error {
	// Look up hotel ids first so their stats can be evicted after the write.
	hotels := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if rv, err := s.GetByID(ctx, id); err == nil {
			hotels[rv.HotelID] = struct{}{}
		}
	}
	results, err := s.store.Delete(ctx, reviewTable, ids)
	if err != nil {
		notifyErr(s.notify, "reviews.delete", err)
		return err
	}
	if failed := reportFailures(s.notify, "reviews.delete", results); len(failed) > 0 {
		return fmt.Errorf("review: %w", errDeleteFailed)
	}
	for hotelID := range hotels {
		s.invalidateStats(ctx, hotelID)
	}
	return nil
}

// HotelStats aggregates a hotel's reviews: average rating rounded to one
// decimal, total count, and a histogram that always carries buckets 1..5.
// Zero reviews yield zeroed stats, never a division by zero.
func (s *Reviews) HotelStats(ctx context.Context, hotelID int) (domain.HotelStats, error) {
	key := statsKey(hotelID)
	if s.cache != nil {
		var cached domain.HotelStats
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	reviews, err := s.GetByHotel(ctx, hotelID)
	if err != nil {
		return domain.HotelStats{}, err
	}

	stats := domain.HotelStats{
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	if len(reviews) == 0 {
		return stats, nil
	}

	total := 0
	for _, rv := range reviews {
		total += rv.Rating
		stats.RatingDistribution[rv.Rating]++
	}
	stats.TotalReviews = len(reviews)
	stats.AverageRating = math.Round(float64(total)/float64(len(reviews))*10) / 10

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, stats, int(s.cacheTTL.Seconds()))
	}
	return stats, nil
}

func statsKey(hotelID int) string { return fmt.Sprintf("reviewstats:%d", hotelID) }

func (s *Reviews) invalidateStats(ctx context.Context, hotelID int) {
	if s.cache != nil && hotelID != 0 {
		_ = s.cache.Del(ctx, statsKey(hotelID))
	}
}
