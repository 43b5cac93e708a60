package app

import (
	"context"
	"errors"
	"testing"

	"stayscape/internal/domain"
	"stayscape/internal/storage/memory"
)

func seedUser(t *testing.T, store *memory.Store) int {
	t.Helper()
	ids := seedRecords(t, store, userTable, domain.Record{
		"name_c":           "Jordan Reyes",
		"first_name_c":     "Jordan",
		"last_name_c":      "Reyes",
		"email_c":          "jordan.reyes@example.com",
		"loyalty_status_c": "Gold",
		"room_type_c":      "King Room",
		"bed_type_c":       "King",
		"newsletter_c":     true,
	})
	return ids[0]
}

func TestUsers_GetByID(t *testing.T) {
	store := memory.New()
	id := seedUser(t, store)
	s := NewUsers(store, nil)

	u, err := s.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.Name != "Jordan Reyes" || u.LoyaltyStatus != "Gold" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Preferences.RoomType != "King Room" || !u.Preferences.Newsletter {
		t.Fatalf("flattened preferences not rebuilt: %+v", u.Preferences)
	}
}

func TestUsers_GetCurrent(t *testing.T) {
	store := memory.New()
	s := NewUsers(store, nil)

	if _, err := s.GetCurrent(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no profile rows, got %v", err)
	}

	id := seedUser(t, store)
	u, err := s.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if u.ID != id {
		t.Fatalf("expected the first profile row, got %+v", u)
	}
}

func TestUsers_UpdateProfile_Partial(t *testing.T) {
	store := memory.New()
	id := seedUser(t, store)
	s := NewUsers(store, nil)

	phone := "+1 (555) 010-7733"
	u, err := s.UpdateProfile(context.Background(), id, domain.UserUpdate{Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u.Phone != phone {
		t.Fatalf("phone: %q", u.Phone)
	}
	if u.Email != "jordan.reyes@example.com" {
		t.Fatalf("omitted field was clobbered: %q", u.Email)
	}
}

func TestUsers_UpdatePreferences_OnlyTouchedKeys(t *testing.T) {
	store := memory.New()
	id := seedUser(t, store)
	s := NewUsers(store, nil)

	off := false
	u, err := s.UpdatePreferences(context.Background(), id, domain.PreferencesUpdate{Newsletter: &off})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if u.Preferences.Newsletter {
		t.Fatal("newsletter should be off")
	}
	if u.Preferences.RoomType != "King Room" || u.Preferences.BedType != "King" {
		t.Fatalf("untouched preferences changed: %+v", u.Preferences)
	}
}

func TestUsers_UploadAvatar(t *testing.T) {
	store := memory.New()
	id := seedUser(t, store)
	s := NewUsers(store, nil)

	u, err := s.UploadAvatar(context.Background(), id, "https://cdn.example.com/a.png")
	if err != nil {
		t.Fatalf("UploadAvatar: %v", err)
	}
	if u.Avatar != "https://cdn.example.com/a.png" {
		t.Fatalf("avatar: %q", u.Avatar)
	}
}

func TestUsers_AuthIsDelegated(t *testing.T) {
	s := NewUsers(memory.New(), nil)

	if _, err := s.Authenticate(context.Background(), "a@b.c", "pw"); !errors.Is(err, domain.ErrNotImplemented) {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := s.Register(context.Background(), domain.User{}); !errors.Is(err, domain.ErrNotImplemented) {
		t.Fatalf("Register: %v", err)
	}
}
