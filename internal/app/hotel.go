package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"stayscape/internal/domain"
)

// StatsProvider supplies review aggregates for the hotel read path.
// *Reviews implements it; tests inject fakes.
type StatsProvider interface {
	HotelStats(ctx context.Context, hotelID int) (domain.HotelStats, error)
}

// Hotels wraps the hotel_c table. Search and filtering are pushed to the
// store; the by-id read is enriched with review stats, best effort, and
// cached under a TTL (hotels have no write path here, so TTL is enough).
type Hotels struct {
	store    domain.TableStore
	stats    StatsProvider
	cache    domain.Cache
	notify   domain.Notifier
	cacheTTL time.Duration
	chance   func() float64 // availability gate, injectable
}

func NewHotels(store domain.TableStore, stats StatsProvider, cache domain.Cache, notify domain.Notifier, ttl time.Duration) *Hotels {
	if notify == nil {
		notify = domain.NopNotifier{}
	}
	return &Hotels{store: store, stats: stats, cache: cache, notify: notify, cacheTTL: ttl, chance: rand.Float64}
}

func hotelSortOrder(sortBy string) []domain.Sort {
	switch sortBy {
	case "price-low":
		return []domain.Sort{{Field: "price_per_night_c"}}
	case "price-high":
		return []domain.Sort{{Field: "price_per_night_c", Desc: true}}
	case "rating":
		return []domain.Sort{{Field: "rating_c", Desc: true}}
	case "name":
		return []domain.Sort{{Field: "name_c"}}
	default:
		return nil
	}
}

// List returns hotels matching f. The destination filter is an OR-contains
// over city, state and name; the rest are range and set predicates. A store
// failure degrades to an empty list.
func (s *Hotels) List(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	q := domain.Query{Fields: hotelFields, OrderBy: hotelSortOrder(f.SortBy)}

	if f.Destination != "" {
		q.WhereGroups = append(q.WhereGroups, domain.ConditionGroup{
			Operator: "OR",
			Groups: []domain.ConditionGroup{{
				Operator: "OR",
				Conditions: []domain.Condition{
					{Field: "city_c", Op: domain.Contains, Values: []any{f.Destination}},
					{Field: "state_c", Op: domain.Contains, Values: []any{f.Destination}},
					{Field: "name_c", Op: domain.Contains, Values: []any{f.Destination}},
				},
			}},
		})
	}
	if f.MinPrice != 0 {
		q.Where = append(q.Where, domain.Condition{Field: "price_per_night_c", Op: domain.GreaterThanOrEqualTo, Values: []any{f.MinPrice}})
	}
	if f.MaxPrice != 0 {
		q.Where = append(q.Where, domain.Condition{Field: "price_per_night_c", Op: domain.LessThanOrEqualTo, Values: []any{f.MaxPrice}})
	}
	if len(f.StarRatings) > 0 {
		values := make([]any, 0, len(f.StarRatings))
		for _, star := range f.StarRatings {
			values = append(values, star)
		}
		q.Where = append(q.Where, domain.Condition{Field: "star_rating_c", Op: domain.ExactMatch, Values: values})
	}
	if f.MinRating != 0 {
		q.Where = append(q.Where, domain.Condition{Field: "rating_c", Op: domain.GreaterThanOrEqualTo, Values: []any{f.MinRating}})
	}

	recs, err := s.store.Fetch(ctx, hotelTable, q)
	if err != nil {
		notifyErr(s.notify, "hotels.list", err)
		return []domain.Hotel{}, nil
	}
	out := make([]domain.Hotel, 0, len(recs))
	for _, rec := range recs {
		out = append(out, mapHotel(rec))
	}
	return out, nil
}

// GetByID reads one hotel and enriches it with review stats. If the stats
// call fails for any reason the enrichment is skipped, the base record is
// returned unchanged and the degraded view is not cached.
func (s *Hotels) GetByID(ctx context.Context, id int) (domain.Hotel, error) {
	key := hotelKey(id)
	if s.cache != nil {
		var cached domain.Hotel
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	rec, err := s.store.Get(ctx, hotelTable, id, domain.Query{Fields: hotelFields})
	if err != nil {
		notifyErr(s.notify, "hotels.get", err)
		return domain.Hotel{}, err
	}
	hotel := mapHotel(rec)

	if s.stats != nil {
		stats, err := s.stats.HotelStats(ctx, id)
		if err != nil {
			log.Warn().Int("hotel", id).Err(err).Msg("stats enrichment skipped")
			return hotel, nil
		}
		if stats.AverageRating != 0 {
			hotel.Rating = stats.AverageRating
		}
		if stats.TotalReviews != 0 {
			hotel.ReviewCount = stats.TotalReviews
		}
		hotel.ReviewStats = stats.RatingDistribution
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, hotel, int(s.cacheTTL.Seconds()))
	}
	return hotel, nil
}

func hotelKey(id int) string { return fmt.Sprintf("hotelview:%d", id) }

// GetFeatured returns up to four featured hotels.
func (s *Hotels) GetFeatured(ctx context.Context) ([]domain.Hotel, error) {
	q := domain.Query{
		Fields: hotelFields,
		Where: []domain.Condition{
			{Field: "featured_c", Op: domain.EqualTo, Values: []any{true}},
		},
		Limit: 4,
	}
	recs, err := s.store.Fetch(ctx, hotelTable, q)
	if err != nil {
		notifyErr(s.notify, "hotels.featured", err)
		return []domain.Hotel{}, nil
	}
	out := make([]domain.Hotel, 0, len(recs))
	for _, rec := range recs {
		out = append(out, mapHotel(rec))
	}
	return out, nil
}

// Search matches query against name, city, state and description. An empty
// query short-circuits to an empty result without a remote call.
func (s *Hotels) Search(ctx context.Context, query string) ([]domain.Hotel, error) {
	if query == "" {
		return []domain.Hotel{}, nil
	}
	q := domain.Query{
		Fields: hotelFields,
		WhereGroups: []domain.ConditionGroup{{
			Operator: "OR",
			Groups: []domain.ConditionGroup{{
				Operator: "OR",
				Conditions: []domain.Condition{
					{Field: "name_c", Op: domain.Contains, Values: []any{query}},
					{Field: "city_c", Op: domain.Contains, Values: []any{query}},
					{Field: "state_c", Op: domain.Contains, Values: []any{query}},
					{Field: "description_c", Op: domain.Contains, Values: []any{query}},
				},
			}},
		}},
	}
	recs, err := s.store.Fetch(ctx, hotelTable, q)
	if err != nil {
		notifyErr(s.notify, "hotels.search", err)
		return []domain.Hotel{}, nil
	}
	out := make([]domain.Hotel, 0, len(recs))
	for _, rec := range recs {
		out = append(out, mapHotel(rec))
	}
	return out, nil
}

// CheckAvailability is SIMULATED: it combines the hotel's availability flag
// with a 90% random gate and, when available, synthesizes two fixed room
// offers priced off the hotel's base rate. It is not a booking hold and the
// offers are not read from any inventory system.
func (s *Hotels) CheckAvailability(ctx context.Context, hotelID int, checkIn, checkOut time.Time) (domain.Availability, error) {
	hotel, err := s.GetByID(ctx, hotelID)
	if err != nil {
		return domain.Availability{}, err
	}

	available := hotel.Available && s.chance() > 0.1
	out := domain.Availability{
		Available: available,
		HotelID:   hotel.ID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Rooms:     []domain.RoomOffer{},
	}
	if available {
		out.Rooms = []domain.RoomOffer{
			{
				ID:            fmt.Sprintf("%d_deluxe", hotel.ID),
				Type:          "Deluxe Room",
				Capacity:      2,
				PricePerNight: hotel.PricePerNight,
				Amenities:     []string{"Free WiFi", "Mini Bar", "City View"},
				Available:     true,
			},
			{
				ID:            fmt.Sprintf("%d_suite", hotel.ID),
				Type:          "Executive Suite",
				Capacity:      4,
				PricePerNight: hotel.PricePerNight * 1.5,
				Amenities:     []string{"Free WiFi", "Mini Bar", "Ocean View", "Living Area"},
				Available:     true,
			},
		}
	}
	return out, nil
}
