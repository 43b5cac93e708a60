package domain

import "time"

type Review struct {
	ID         int       `json:"Id"`
	HotelID    int       `json:"hotelId"`
	UserID     int       `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title"`
	Comment    string    `json:"comment"`
	Photos     []string  `json:"photos"`
	StayDate   string    `json:"stayDate"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Helpful    int       `json:"helpful"`
	Verified   bool      `json:"verified"`
}

// ReviewDraft is the caller-supplied payload for Create.
// HotelID, UserID, Rating and Title are required.
type ReviewDraft struct {
	HotelID    int      `json:"hotelId"`
	UserID     int      `json:"userId"`
	Rating     int      `json:"rating"`
	Title      string   `json:"title"`
	Comment    string   `json:"comment"`
	Photos     []string `json:"photos"`
	StayDate   string   `json:"stayDate"`
	UserName   string   `json:"userName"`
	UserAvatar string   `json:"userAvatar"`
}

// ReviewUpdate carries a partial update; nil means "leave unchanged".
type ReviewUpdate struct {
	Comment    *string   `json:"comment"`
	Helpful    *int      `json:"helpful"`
	Photos     *[]string `json:"photos"`
	Rating     *int      `json:"rating"`
	StayDate   *string   `json:"stayDate"`
	Title      *string   `json:"title"`
	UserAvatar *string   `json:"userAvatar"`
	UserName   *string   `json:"userName"`
	Verified   *bool     `json:"verified"`
}

// ReviewFilter selects and orders review listings. Zero values mean
// "no filter". SortBy accepts newest, oldest, rating-high and rating-low;
// the default is newest first.
type ReviewFilter struct {
	HotelID   int
	UserID    int
	MinRating int
	Search    string
	SortBy    string
}

// HotelStats aggregates a hotel's reviews. RatingDistribution always carries
// all five buckets, zero-filled when a rating is absent.
type HotelStats struct {
	AverageRating      float64     `json:"averageRating"`
	TotalReviews       int         `json:"totalReviews"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}
