package app

import (
	"context"
	"fmt"

	"stayscape/internal/domain"
)

// Users wraps the user_c table: profile reads and partial updates, with the
// preferences sub-object flattened onto the record.
type Users struct {
	store  domain.TableStore
	notify domain.Notifier
}

func NewUsers(store domain.TableStore, notify domain.Notifier) *Users {
	if notify == nil {
		notify = domain.NopNotifier{}
	}
	return &Users{store: store, notify: notify}
}

func (s *Users) GetByID(ctx context.Context, id int) (domain.User, error) {
	rec, err := s.store.Get(ctx, userTable, id, domain.Query{Fields: userFields})
	if err != nil {
		notifyErr(s.notify, "users.get", err)
		return domain.User{}, err
	}
	return mapUser(rec), nil
}

// GetCurrent returns the first profile row. Session-based resolution lives
// in the hosted auth layer; this mirrors its single-profile behavior.
func (s *Users) GetCurrent(ctx context.Context) (domain.User, error) {
	recs, err := s.store.Fetch(ctx, userTable, domain.Query{Fields: userFields, Limit: 1})
	if err != nil {
		notifyErr(s.notify, "users.current", err)
		return domain.User{}, err
	}
	if len(recs) == 0 {
		return domain.User{}, fmt.Errorf("users: no profile rows: %w", domain.ErrNotFound)
	}
	return mapUser(recs[0]), nil
}

// UpdateProfile applies a partial update (nested preferences included) and
// re-reads the profile for the authoritative shape.
func (s *Users) UpdateProfile(ctx context.Context, id int, u domain.UserUpdate) (domain.User, error) {
	results, err := s.store.Update(ctx, userTable, []domain.Record{userPatch(id, u)})
	if err != nil {
		notifyErr(s.notify, "users.update", err)
		return domain.User{}, err
	}
	reportFailures(s.notify, "users.update", results)
	if _, ok := firstSuccess(results); ok {
		return s.GetByID(ctx, id)
	}
	return domain.User{}, fmt.Errorf("user: %w", errUpdateFailed)
}

func (s *Users) UpdatePreferences(ctx context.Context, id int, p domain.PreferencesUpdate) (domain.User, error) {
	return s.UpdateProfile(ctx, id, domain.UserUpdate{Preferences: &p})
}

func (s *Users) UploadAvatar(ctx context.Context, id int, avatarURL string) (domain.User, error) {
	return s.UpdateProfile(ctx, id, domain.UserUpdate{Avatar: &avatarURL})
}

// Authenticate is owned by the hosted auth UI.
func (s *Users) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	return domain.User{}, fmt.Errorf("authentication is handled by the hosted login component: %w", domain.ErrNotImplemented)
}

// Register is owned by the hosted auth UI.
func (s *Users) Register(ctx context.Context, u domain.User) (domain.User, error) {
	return domain.User{}, fmt.Errorf("registration is handled by the hosted signup component: %w", domain.ErrNotImplemented)
}
