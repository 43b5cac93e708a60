package app

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"stayscape/internal/domain"
)

// Bookings wraps the booking_c table.
type Bookings struct {
	store  domain.TableStore
	notify domain.Notifier
	now    func() time.Time
	seq    func(n int) int // confirmation-number randomness, injectable
}

func NewBookings(store domain.TableStore, notify domain.Notifier) *Bookings {
	if notify == nil {
		notify = domain.NopNotifier{}
	}
	return &Bookings{store: store, notify: notify, now: time.Now, seq: rand.Intn}
}

// List returns the bookings visible to userID (all bookings when userID is
// zero). Read path: a store failure degrades to an empty list after logging
// and notifying, it never propagates.
func (s *Bookings) List(ctx context.Context, userID int) ([]domain.Booking, error) {
	q := domain.Query{Fields: bookingFields}
	if userID != 0 {
		q.Where = append(q.Where, domain.Condition{
			Field: "user_id_c", Op: domain.EqualTo, Values: []any{userID},
		})
	}
	recs, err := s.store.Fetch(ctx, bookingTable, q)
	if err != nil {
		notifyErr(s.notify, "bookings.list", err)
		return []domain.Booking{}, nil
	}
	out := make([]domain.Booking, 0, len(recs))
	for _, rec := range recs {
		out = append(out, mapBooking(rec))
	}
	return out, nil
}

func (s *Bookings) GetByID(ctx context.Context, id int) (domain.Booking, error) {
	rec, err := s.store.Get(ctx, bookingTable, id, domain.Query{Fields: bookingFields})
	if err != nil {
		notifyErr(s.notify, "bookings.get", err)
		return domain.Booking{}, err
	}
	return mapBooking(rec), nil
}

// Create stores a new booking. Confirmation number, creation timestamp and
// the initial "confirmed" status are generated here; the returned booking is
// mapped from the record the store actually wrote.
func (s *Bookings) Create(ctx context.Context, d domain.BookingDraft) (domain.Booking, error) {
	now := s.now()
	conf := fmt.Sprintf("STY-%03d-%d", s.seq(1000), now.Year())
	results, err := s.store.Create(ctx, bookingTable, []domain.Record{bookingRecord(d, now, conf)})
	if err != nil {
		notifyErr(s.notify, "bookings.create", err)
		return domain.Booking{}, err
	}
	if failed := reportFailures(s.notify, "bookings.create", results); len(failed) > 0 {
		return domain.Booking{}, fmt.Errorf("booking: %w", errCreateFailed)
	}
	if rec, ok := firstSuccess(results); ok {
		return mapBooking(rec), nil
	}
	return domain.Booking{}, fmt.Errorf("booking: %w", errCreateFailed)
}

// Update applies a partial update; only fields present on u are sent. On
// success the booking is re-read through GetByID so callers always observe
// the authoritative record, not the write response.
func (s *Bookings) Update(ctx context.Context, id int, u domain.BookingUpdate) (domain.Booking, error) {
	results, err := s.store.Update(ctx, bookingTable, []domain.Record{bookingPatch(id, u)})
	if err != nil {
		notifyErr(s.notify, "bookings.update", err)
		return domain.Booking{}, err
	}
	reportFailures(s.notify, "bookings.update", results)
	if _, ok := firstSuccess(results); ok {
		return s.GetByID(ctx, id)
	}
	return domain.Booking{}, fmt.Errorf("booking: %w", errUpdateFailed)
}

// Cancel is sugar over Update. Nothing guards re-cancelling an already
// cancelled booking.
func (s *Bookings) Cancel(ctx context.Context, id int) (domain.Booking, error) {
	status := domain.BookingCancelled
	return s.Update(ctx, id, domain.BookingUpdate{Status: &status})
}

// Delete removes the given bookings. Any per-id failure is notified
// individually and fails the whole call, even if other ids succeeded.
func (s *Bookings) Delete(ctx context.Context, ids ...int) error {
	results, err := s.store.Delete(ctx, bookingTable, ids)
	if err != nil {
		notifyErr(s.notify, "bookings.delete", err)
		return err
	}
	if failed := reportFailures(s.notify, "bookings.delete", results); len(failed) > 0 {
		return fmt.Errorf("booking: %w", errDeleteFailed)
	}
	return nil
}

func (s *Bookings) GetByStatus(ctx context.Context, status string, userID int) ([]domain.Booking, error) {
	bookings, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}

// GetUpcoming returns bookings whose check-in is today or later, excluding
// cancelled ones regardless of date.
func (s *Bookings) GetUpcoming(ctx context.Context, userID int) ([]domain.Booking, error) {
	bookings, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if !b.CheckIn.Before(now) && b.Status != domain.BookingCancelled {
			out = append(out, b)
		}
	}
	return out, nil
}

// GetRecent returns the latest bookings by creation time, newest first.
func (s *Bookings) GetRecent(ctx context.Context, userID, limit int) ([]domain.Booking, error) {
	bookings, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	if limit > 0 && len(bookings) > limit {
		bookings = bookings[:limit]
	}
	return bookings, nil
}
