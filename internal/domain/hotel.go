package domain

import "time"

type Hotel struct {
	ID            int           `json:"Id"`
	Name          string        `json:"name"`
	Address       string        `json:"address"`
	Available     bool          `json:"available"`
	Description   string        `json:"description"`
	Featured      bool          `json:"featured"`
	Location      HotelLocation `json:"location"`
	PricePerNight float64       `json:"pricePerNight"`
	Rating        float64       `json:"rating"`
	ReviewCount   int           `json:"reviewCount"`
	StarRating    int           `json:"starRating"`
	Images        []string      `json:"images"`
	Amenities     []string      `json:"amenities"`

	// ReviewStats is filled by the stats enrichment on by-id reads.
	// Empty when enrichment was skipped.
	ReviewStats map[int]int `json:"reviewStats,omitempty"`
}

type HotelLocation struct {
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	Coordinates string `json:"coordinates"`
}

// HotelFilter selects and orders hotel listings. Zero values mean "no filter".
// SortBy accepts price-low, price-high, rating and name.
type HotelFilter struct {
	Destination string
	MinPrice    float64
	MaxPrice    float64
	StarRatings []int
	MinRating   float64
	SortBy      string
}

// Availability is the result of a simulated availability check. It is not a
// booking hold; the room offers are synthesized, not read from inventory.
type Availability struct {
	Available bool        `json:"available"`
	HotelID   int         `json:"hotelId"`
	CheckIn   time.Time   `json:"checkIn"`
	CheckOut  time.Time   `json:"checkOut"`
	Rooms     []RoomOffer `json:"rooms"`
}

type RoomOffer struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Capacity      int      `json:"capacity"`
	PricePerNight float64  `json:"pricePerNight"`
	Amenities     []string `json:"amenities"`
	Available     bool     `json:"available"`
}
