package domain

type User struct {
	ID            int         `json:"Id"`
	Name          string      `json:"name"`
	FirstName     string      `json:"firstName"`
	LastName      string      `json:"lastName"`
	Email         string      `json:"email"`
	Phone         string      `json:"phone"`
	Avatar        string      `json:"avatar"`
	LoyaltyStatus string      `json:"loyaltyStatus"`
	MemberSince   string      `json:"memberSince"`
	TotalBookings int         `json:"totalBookings"`
	Preferences   Preferences `json:"preferences"`
}

// Preferences is stored flattened on the user record and nested on the
// domain object.
type Preferences struct {
	RoomType          string `json:"roomType"`
	BedType           string `json:"bedType"`
	SmokingPreference string `json:"smokingPreference"`
	FloorPreference   string `json:"floorPreference"`
	Newsletter        bool   `json:"newsletter"`
}

// UserUpdate carries a partial profile update; nil means "leave unchanged".
type UserUpdate struct {
	FirstName     *string            `json:"firstName"`
	LastName      *string            `json:"lastName"`
	Name          *string            `json:"name"`
	Email         *string            `json:"email"`
	Phone         *string            `json:"phone"`
	Avatar        *string            `json:"avatar"`
	LoyaltyStatus *string            `json:"loyaltyStatus"`
	MemberSince   *string            `json:"memberSince"`
	TotalBookings *int               `json:"totalBookings"`
	Preferences   *PreferencesUpdate `json:"preferences"`
}

type PreferencesUpdate struct {
	RoomType          *string `json:"roomType"`
	BedType           *string `json:"bedType"`
	SmokingPreference *string `json:"smokingPreference"`
	FloorPreference   *string `json:"floorPreference"`
	Newsletter        *bool   `json:"newsletter"`
}
