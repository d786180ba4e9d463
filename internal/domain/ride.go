package domain

import "time"

// RideKind tells passenger requests apart from driver invites. Both share
// one table and one set of operations.
type RideKind string

const (
	RideKindPassenger RideKind = "passenger"
	RideKindDriver    RideKind = "driver"
)

// Valid reports whether k is a known posting kind.
func (k RideKind) Valid() bool {
	return k == RideKindPassenger || k == RideKindDriver
}

// RideStatus is the lifecycle state of a posting.
type RideStatus int

const (
	RideStatusCancelled RideStatus = 0
	RideStatusOpen      RideStatus = 1
	RideStatusCompleted RideStatus = 2
)

// Valid reports whether s is a known status.
func (s RideStatus) Valid() bool {
	switch s {
	case RideStatusCancelled, RideStatusOpen, RideStatusCompleted:
		return true
	}
	return false
}

// Ride is a passenger request or a driver invite. Passenger requests carry a
// price range; driver invites carry a fixed price and the car.
type Ride struct {
	ID             int64      `json:"id"`
	Kind           RideKind   `json:"kind"`
	UserID         int64      `json:"user_id"`
	TravelDate     string     `json:"travel_date"` // YYYY-MM-DD
	TimeStart      string     `json:"time_start"`  // HH:MM
	TimeEnd        string     `json:"time_end"`
	Origin         string     `json:"origin"`
	OriginLat      *float64   `json:"origin_latitude,omitempty"`
	OriginLng      *float64   `json:"origin_longitude,omitempty"`
	Destination    string     `json:"destination"`
	DestinationLat *float64   `json:"destination_latitude,omitempty"`
	DestinationLng *float64   `json:"destination_longitude,omitempty"`
	Seats          int        `json:"seats"`
	PriceMin       *float64   `json:"price_min,omitempty"`
	PriceMax       *float64   `json:"price_max,omitempty"`
	Price          *float64   `json:"price,omitempty"`
	CarModel       *string    `json:"car_model,omitempty"`
	CarPlate       *string    `json:"car_plate,omitempty"`
	Remarks        *string    `json:"remarks,omitempty"`
	Status         RideStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// RidePublisher is the public face of the user behind a posting.
type RidePublisher struct {
	ID          int64   `json:"id"`
	RealName    *string `json:"real_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}

// RideView is a posting with its publisher.
type RideView struct {
	Ride
	Publisher RidePublisher `json:"user"`
}

// RidePage is one page of postings, newest first.
type RidePage struct {
	List  []*RideView `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// RideFilter selects postings of one kind. A zero UserID means any publisher
// and restricts matches to open and completed postings. Origin and
// Destination match as substrings.
type RideFilter struct {
	Kind        RideKind
	UserID      int64
	TravelDate  string
	Origin      string
	Destination string
	Status      *RideStatus
	Offset      int
	Limit       int
}
