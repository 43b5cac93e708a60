package domain

import "time"

// Booking statuses. The only modeled transition is confirmed -> cancelled.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

type Booking struct {
	ID                 int            `json:"Id"`
	CheckIn            time.Time      `json:"checkIn"`
	CheckOut           time.Time      `json:"checkOut"`
	ConfirmationNumber string         `json:"confirmationNumber"`
	CreatedAt          time.Time      `json:"createdAt"`
	GuestDetails       map[string]any `json:"guestDetails"`
	Guests             int            `json:"guests"`
	HotelID            int            `json:"hotelId"`
	HotelImage         string         `json:"hotelImage"`
	HotelName          string         `json:"hotelName"`
	Location           string         `json:"location"`
	Nights             int            `json:"nights"`
	RoomType           string         `json:"roomType"`
	Status             string         `json:"status"`
	TotalPrice         float64        `json:"totalPrice"`
	UserID             int            `json:"userId"`
}

// BookingDraft is the caller-supplied payload for Create. Id, confirmation
// number, createdAt and status are generated server-side.
type BookingDraft struct {
	CheckIn      time.Time      `json:"checkIn"`
	CheckOut     time.Time      `json:"checkOut"`
	GuestDetails map[string]any `json:"guestDetails"`
	Guests       int            `json:"guests"`
	HotelID      int            `json:"hotelId"`
	HotelImage   string         `json:"hotelImage"`
	HotelName    string         `json:"hotelName"`
	Location     string         `json:"location"`
	Nights       int            `json:"nights"`
	RoomType     string         `json:"roomType"`
	TotalPrice   float64        `json:"totalPrice"`
	UserID       int            `json:"userId"`
}

// BookingUpdate carries a partial update. Nil means "leave unchanged",
// which is distinct from setting a field to its zero value.
type BookingUpdate struct {
	CheckIn            *time.Time      `json:"checkIn"`
	CheckOut           *time.Time      `json:"checkOut"`
	ConfirmationNumber *string         `json:"confirmationNumber"`
	GuestDetails       *map[string]any `json:"guestDetails"`
	Guests             *int            `json:"guests"`
	HotelID            *int            `json:"hotelId"`
	HotelImage         *string         `json:"hotelImage"`
	HotelName          *string         `json:"hotelName"`
	Location           *string         `json:"location"`
	Nights             *int            `json:"nights"`
	RoomType           *string         `json:"roomType"`
	Status             *string         `json:"status"`
	TotalPrice         *float64        `json:"totalPrice"`
	UserID             *int            `json:"userId"`
}
