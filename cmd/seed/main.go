// Command seed loads a demo dataset (hotels, users, reviews, bookings) into
// the configured backend so a fresh environment has something to browse.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stayscape/internal/adapters/observability"
	"stayscape/internal/app"
	"stayscape/internal/domain"
	"stayscape/internal/shared"
	mysqlrepo "stayscape/internal/storage/mysql"
)

var tables = []string{"booking_c", "hotel_c", "review_c", "user_c"}

type demoHotel struct {
	name, city, state, country string
	price                      float64
	stars                      int
	featured                   bool
}

var demoHotels = []demoHotel{
	{"The Meridian Grand", "New York", "NY", "USA", 289, 5, true},
	{"Pacific Shores Resort", "San Diego", "CA", "USA", 215, 4, true},
	{"Lakeside Manor", "Chicago", "IL", "USA", 179, 4, true},
	{"Desert Bloom Inn", "Phoenix", "AZ", "USA", 129, 3, true},
	{"Harborview Suites", "Seattle", "WA", "USA", 199, 4, false},
	{"Magnolia House", "Austin", "TX", "USA", 155, 3, false},
	{"Summit Lodge", "Denver", "CO", "USA", 189, 4, false},
	{"Bayfront Boutique", "Miami", "FL", "USA", 249, 5, false},
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	log.Info().Int("workers", cfg.SeedWorkers).Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	repo := mysqlrepo.New(db)
	if err := repo.EnsureSchema(ctx, tables...); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	userID := seedUser(ctx, repo)
	hotelIDs := seedHotels(ctx, repo)

	reviews := app.NewReviews(repo, nil, nil, cfg.CacheTTL)
	bookings := app.NewBookings(repo, nil)

	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for i, hotelID := range hotelIDs {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func(i, hotelID int) {
			defer wg.Done()
			defer sem.Release(1)
			seedActivity(ctx, reviews, bookings, i, hotelID, userID)
		}(i, hotelID)
	}

	wg.Wait()
	log.Info().Int("hotels", len(hotelIDs)).Msg("seeding completed")
}

func seedUser(ctx context.Context, store domain.TableStore) int {
	results, err := store.Create(ctx, "user_c", []domain.Record{{
		"name_c":           "Jordan Reyes",
		"first_name_c":     "Jordan",
		"last_name_c":      "Reyes",
		"email_c":          "jordan.reyes@example.com",
		"phone_c":          "+1 (555) 010-7733",
		"loyalty_status_c": "Gold",
		"member_since_c":   "2021",
		"total_bookings_c": 0,
		"room_type_c":      "King Room",
		"bed_type_c":       "King",
		"newsletter_c":     true,
	}})
	if err != nil {
		log.Fatal().Err(err).Msg("seed user failed")
	}
	if len(results) == 0 || !results[0].Success {
		log.Fatal().Msg("seed user rejected")
	}
	return recordID(results[0].Data)
}

func seedHotels(ctx context.Context, store domain.TableStore) []int {
	recs := make([]domain.Record, 0, len(demoHotels))
	for _, h := range demoHotels {
		recs = append(recs, domain.Record{
			"name_c":            h.name,
			"address_c":         fmt.Sprintf("100 Main St, %s, %s", h.city, h.state),
			"available_c":       true,
			"description_c":     fmt.Sprintf("%s in the heart of %s.", h.name, h.city),
			"featured_c":        h.featured,
			"city_c":            h.city,
			"state_c":           h.state,
			"country_c":         h.country,
			"price_per_night_c": h.price,
			"rating_c":          0.0,
			"review_count_c":    0,
			"star_rating_c":     h.stars,
		})
	}
	results, err := store.Create(ctx, "hotel_c", recs)
	if err != nil {
		log.Fatal().Err(err).Msg("seed hotels failed")
	}
	ids := make([]int, 0, len(results))
	for _, res := range results {
		if !res.Success {
			log.Warn().Str("msg", res.Message).Msg("hotel rejected")
			continue
		}
		ids = append(ids, recordID(res.Data))
	}
	return ids
}

func seedActivity(ctx context.Context, reviews *app.Reviews, bookings *app.Bookings, i, hotelID, userID int) {
	h := demoHotels[i%len(demoHotels)]

	_, err := reviews.Create(ctx, domain.ReviewDraft{
		HotelID:  hotelID,
		UserID:   userID,
		Rating:   3 + i%3,
		Title:    "Great stay at " + h.name,
		Comment:  "Clean rooms, friendly staff, would come back.",
		StayDate: "2026-06",
		UserName: "Jordan Reyes",
	})
	if err != nil {
		log.Warn().Int("hotel", hotelID).Err(err).Msg("seed review failed")
	}

	checkIn := time.Now().AddDate(0, 1, i)
	_, err = bookings.Create(ctx, domain.BookingDraft{
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDate(0, 0, 3),
		Guests:     2,
		HotelID:    hotelID,
		HotelName:  h.name,
		Location:   h.city + ", " + h.state,
		Nights:     3,
		RoomType:   "Deluxe Room",
		TotalPrice: h.price * 3,
		UserID:     userID,
	})
	if err != nil {
		log.Warn().Int("hotel", hotelID).Err(err).Msg("seed booking failed")
	}

	log.Info().Int("hotel", hotelID).Msg("seeded")
}

func recordID(rec domain.Record) int {
	switch t := rec["Id"].(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	}
	return 0
}
