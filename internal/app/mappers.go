package app

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stayscape/internal/domain"
)

/********** table names & projections **********/

const (
	bookingTable = "booking_c"
	hotelTable   = "hotel_c"
	reviewTable  = "review_c"
	userTable    = "user_c"
)

var bookingFields = []string{
	"Id", "Name", "check_in_c", "check_out_c", "confirmation_number_c",
	"created_at_c", "guest_details_c", "guests_c", "hotel_id_c",
	"hotel_image_c", "hotel_name_c", "location_c", "nights_c",
	"room_type_c", "status_c", "total_price_c", "user_id_c",
}

var hotelFields = []string{
	"Id", "Name", "address_c", "available_c", "description_c", "featured_c",
	"city_c", "state_c", "country_c", "coordinates_c", "name_c",
	"price_per_night_c", "rating_c", "review_count_c", "star_rating_c",
}

var reviewFields = []string{
	"Id", "Name", "comment_c", "created_at_c", "helpful_c", "hotel_id_c",
	"photos_c", "rating_c", "stay_date_c", "title_c", "updated_at_c",
	"user_avatar_c", "user_id_c", "user_name_c", "verified_c",
}

var userFields = []string{
	"Id", "Name", "avatar_c", "email_c", "first_name_c", "last_name_c",
	"loyalty_status_c", "member_since_c", "name_c", "phone_c",
	"room_type_c", "bed_type_c", "smoking_preference_c",
	"floor_preference_c", "newsletter_c", "total_bookings_c",
}

/********** tiny value coercions **********/

// asInt: int from the shapes a JSON decoder or SQL scan can hand back.
func asInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return 0
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return 0
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	}
	return ""
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t == "true" || t == "1"
	}
	return false
}

// refID normalizes a foreign-key value: the store may send either a bare id
// or a lookup object carrying an Id field.
func refID(v any) int {
	if m, ok := v.(map[string]any); ok {
		return asInt(m["Id"])
	}
	return asInt(v)
}

// asTime parses the timestamp formats seen on the wire; zero time on failure.
func asTime(v any) time.Time {
	s := asString(v)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// jsonObject decodes an embedded JSON object field. Malformed payloads
// degrade to an empty map, never to an error.
func jsonObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(t), &m); err == nil && m != nil {
			return m
		}
	}
	return map[string]any{}
}

// jsonStrings decodes an embedded JSON string list; empty slice on anything
// malformed.
func jsonStrings(v any) []string {
	decode := func(raw []any) []string {
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			if s, ok := it.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		return decode(t)
	case string:
		var raw []any
		if err := json.Unmarshal([]byte(t), &raw); err == nil {
			return decode(raw)
		}
	}
	return []string{}
}

func marshalOrEmpty(v any, context string) string {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("context", context).Msg("marshal embedded JSON failed")
		return "{}"
	}
	return string(b)
}

/********** booking mapping **********/

func mapBooking(rec domain.Record) domain.Booking {
	return domain.Booking{
		ID:                 asInt(rec["Id"]),
		CheckIn:            asTime(rec["check_in_c"]),
		CheckOut:           asTime(rec["check_out_c"]),
		ConfirmationNumber: asString(rec["confirmation_number_c"]),
		CreatedAt:          asTime(rec["created_at_c"]),
		GuestDetails:       jsonObject(rec["guest_details_c"]),
		Guests:             asInt(rec["guests_c"]),
		HotelID:            refID(rec["hotel_id_c"]),
		HotelImage:         asString(rec["hotel_image_c"]),
		HotelName:          asString(rec["hotel_name_c"]),
		Location:           asString(rec["location_c"]),
		Nights:             asInt(rec["nights_c"]),
		RoomType:           asString(rec["room_type_c"]),
		Status:             asString(rec["status_c"]),
		TotalPrice:         asFloat(rec["total_price_c"]),
		UserID:             refID(rec["user_id_c"]),
	}
}

func bookingRecord(d domain.BookingDraft, createdAt time.Time, confirmation string) domain.Record {
	details := d.GuestDetails
	if details == nil {
		details = map[string]any{}
	}
	return domain.Record{
		"Name":                  "Booking - " + d.HotelName,
		"check_in_c":            d.CheckIn.Format(time.RFC3339),
		"check_out_c":           d.CheckOut.Format(time.RFC3339),
		"confirmation_number_c": confirmation,
		"created_at_c":          createdAt.Format(time.RFC3339),
		"guest_details_c":       marshalOrEmpty(details, "bookingRecord"),
		"guests_c":              d.Guests,
		"hotel_id_c":            d.HotelID,
		"hotel_image_c":         d.HotelImage,
		"hotel_name_c":          d.HotelName,
		"location_c":            d.Location,
		"nights_c":              d.Nights,
		"room_type_c":           d.RoomType,
		"status_c":              domain.BookingConfirmed,
		"total_price_c":         d.TotalPrice,
		"user_id_c":             d.UserID,
	}
}

// bookingPatch forwards only the fields explicitly present in the update.
func bookingPatch(id int, u domain.BookingUpdate) domain.Record {
	rec := domain.Record{"Id": id}
	if u.CheckIn != nil {
		rec["check_in_c"] = u.CheckIn.Format(time.RFC3339)
	}
	if u.CheckOut != nil {
		rec["check_out_c"] = u.CheckOut.Format(time.RFC3339)
	}
	if u.ConfirmationNumber != nil {
		rec["confirmation_number_c"] = *u.ConfirmationNumber
	}
	if u.GuestDetails != nil {
		rec["guest_details_c"] = marshalOrEmpty(*u.GuestDetails, "bookingPatch")
	}
	if u.Guests != nil {
		rec["guests_c"] = *u.Guests
	}
	if u.HotelID != nil {
		rec["hotel_id_c"] = *u.HotelID
	}
	if u.HotelImage != nil {
		rec["hotel_image_c"] = *u.HotelImage
	}
	if u.HotelName != nil {
		rec["hotel_name_c"] = *u.HotelName
	}
	if u.Location != nil {
		rec["location_c"] = *u.Location
	}
	if u.Nights != nil {
		rec["nights_c"] = *u.Nights
	}
	if u.RoomType != nil {
		rec["room_type_c"] = *u.RoomType
	}
	if u.Status != nil {
		rec["status_c"] = *u.Status
	}
	if u.TotalPrice != nil {
		rec["total_price_c"] = *u.TotalPrice
	}
	if u.UserID != nil {
		rec["user_id_c"] = *u.UserID
	}
	return rec
}

/********** hotel mapping **********/

// Placeholder gallery and amenity list; the content backend does not carry
// hotel media yet, so reads ship these fixed values like the UI expects.
var (
	stockHotelImages = []string{
		"https://images.unsplash.com/photo-1566073771259-6a8506099945?w=800&h=600&fit=crop",
		"https://images.unsplash.com/photo-1564013799919-ab600027ffc6?w=800&h=600&fit=crop",
	}
	stockHotelAmenities = []string{"Free WiFi", "Pool", "Spa", "Gym", "Restaurant"}
)

func mapHotel(rec domain.Record) domain.Hotel {
	name := asString(rec["name_c"])
	if name == "" {
		name = asString(rec["Name"])
	}
	return domain.Hotel{
		ID:          asInt(rec["Id"]),
		Name:        name,
		Address:     asString(rec["address_c"]),
		Available:   asBool(rec["available_c"]),
		Description: asString(rec["description_c"]),
		Featured:    asBool(rec["featured_c"]),
		Location: domain.HotelLocation{
			City:        asString(rec["city_c"]),
			State:       asString(rec["state_c"]),
			Country:     asString(rec["country_c"]),
			Coordinates: asString(rec["coordinates_c"]),
		},
		PricePerNight: asFloat(rec["price_per_night_c"]),
		Rating:        asFloat(rec["rating_c"]),
		ReviewCount:   asInt(rec["review_count_c"]),
		StarRating:    asInt(rec["star_rating_c"]),
		Images:        stockHotelImages,
		Amenities:     stockHotelAmenities,
	}
}

/********** review mapping **********/

func mapReview(rec domain.Record) domain.Review {
	return domain.Review{
		ID:         asInt(rec["Id"]),
		HotelID:    refID(rec["hotel_id_c"]),
		UserID:     refID(rec["user_id_c"]),
		UserName:   asString(rec["user_name_c"]),
		UserAvatar: asString(rec["user_avatar_c"]),
		Rating:     asInt(rec["rating_c"]),
		Title:      asString(rec["title_c"]),
		Comment:    asString(rec["comment_c"]),
		Photos:     jsonStrings(rec["photos_c"]),
		StayDate:   asString(rec["stay_date_c"]),
		CreatedAt:  asTime(rec["created_at_c"]),
		UpdatedAt:  asTime(rec["updated_at_c"]),
		Helpful:    asInt(rec["helpful_c"]),
		Verified:   asBool(rec["verified_c"]),
	}
}

func reviewRecord(d domain.ReviewDraft, now time.Time) domain.Record {
	stayDate := d.StayDate
	if stayDate == "" {
		stayDate = now.Format("2006-01-02")
	}
	userName := d.UserName
	if userName == "" {
		userName = "Anonymous"
	}
	photos := d.Photos
	if photos == nil {
		photos = []string{}
	}
	return domain.Record{
		"Name":          "Review - " + d.Title,
		"comment_c":     d.Comment,
		"created_at_c":  now.Format(time.RFC3339),
		"helpful_c":     0,
		"hotel_id_c":    d.HotelID,
		"photos_c":      marshalOrEmpty(photos, "reviewRecord"),
		"rating_c":      d.Rating,
		"stay_date_c":   stayDate,
		"title_c":       d.Title,
		"updated_at_c":  now.Format(time.RFC3339),
		"user_avatar_c": d.UserAvatar,
		"user_id_c":     d.UserID,
		"user_name_c":   userName,
		"verified_c":    true,
	}
}

// reviewPatch forwards only the fields present in the update and always
// refreshes updated_at_c.
func reviewPatch(id int, u domain.ReviewUpdate, now time.Time) domain.Record {
	rec := domain.Record{"Id": id}
	if u.Comment != nil {
		rec["comment_c"] = *u.Comment
	}
	if u.Helpful != nil {
		rec["helpful_c"] = *u.Helpful
	}
	if u.Photos != nil {
		rec["photos_c"] = marshalOrEmpty(*u.Photos, "reviewPatch")
	}
	if u.Rating != nil {
		rec["rating_c"] = *u.Rating
	}
	if u.StayDate != nil {
		rec["stay_date_c"] = *u.StayDate
	}
	if u.Title != nil {
		rec["title_c"] = *u.Title
	}
	if u.UserAvatar != nil {
		rec["user_avatar_c"] = *u.UserAvatar
	}
	if u.UserName != nil {
		rec["user_name_c"] = *u.UserName
	}
	if u.Verified != nil {
		rec["verified_c"] = *u.Verified
	}
	rec["updated_at_c"] = now.Format(time.RFC3339)
	return rec
}

/********** user mapping **********/

func mapUser(rec domain.Record) domain.User {
	name := asString(rec["name_c"])
	if name == "" {
		name = asString(rec["Name"])
	}
	return domain.User{
		ID:            asInt(rec["Id"]),
		Name:          name,
		FirstName:     asString(rec["first_name_c"]),
		LastName:      asString(rec["last_name_c"]),
		Email:         asString(rec["email_c"]),
		Phone:         asString(rec["phone_c"]),
		Avatar:        asString(rec["avatar_c"]),
		LoyaltyStatus: asString(rec["loyalty_status_c"]),
		MemberSince:   asString(rec["member_since_c"]),
		TotalBookings: asInt(rec["total_bookings_c"]),
		Preferences: domain.Preferences{
			RoomType:          asString(rec["room_type_c"]),
			BedType:           asString(rec["bed_type_c"]),
			SmokingPreference: asString(rec["smoking_preference_c"]),
			FloorPreference:   asString(rec["floor_preference_c"]),
			Newsletter:        asBool(rec["newsletter_c"]),
		},
	}
}

// userPatch flattens the nested preferences sub-object onto the record and
// forwards only the fields present in the update.
func userPatch(id int, u domain.UserUpdate) domain.Record {
	rec := domain.Record{"Id": id}
	if u.FirstName != nil {
		rec["first_name_c"] = *u.FirstName
	}
	if u.LastName != nil {
		rec["last_name_c"] = *u.LastName
	}
	if u.Name != nil {
		rec["name_c"] = *u.Name
	}
	if u.Email != nil {
		rec["email_c"] = *u.Email
	}
	if u.Phone != nil {
		rec["phone_c"] = *u.Phone
	}
	if u.Avatar != nil {
		rec["avatar_c"] = *u.Avatar
	}
	if u.LoyaltyStatus != nil {
		rec["loyalty_status_c"] = *u.LoyaltyStatus
	}
	if u.MemberSince != nil {
		rec["member_since_c"] = *u.MemberSince
	}
	if u.TotalBookings != nil {
		rec["total_bookings_c"] = *u.TotalBookings
	}
	if p := u.Preferences; p != nil {
		if p.RoomType != nil {
			rec["room_type_c"] = *p.RoomType
		}
		if p.BedType != nil {
			rec["bed_type_c"] = *p.BedType
		}
		if p.SmokingPreference != nil {
			rec["smoking_preference_c"] = *p.SmokingPreference
		}
		if p.FloorPreference != nil {
			rec["floor_preference_c"] = *p.FloorPreference
		}
		if p.Newsletter != nil {
			rec["newsletter_c"] = *p.Newsletter
		}
	}
	return rec
}
