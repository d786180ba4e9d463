package service

import (
	"context"
	"regexp"
	"time"
	"unicode/utf8"

	"rideshare_go/internal/domain"
)

const (
	defaultRidePageLimit = 10
	maxRidePageLimit     = 100
	maxSeats             = 20
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// RideInput carries the posting fields a publisher may set. On update nil
// fields are left unchanged and an empty string clears an optional text
// field. Price range fields apply to passenger requests, Price and the car
// fields to driver invites; the others are ignored for the respective kind.
type RideInput struct {
	TravelDate     *string            `json:"travel_date"`
	TimeStart      *string            `json:"time_start"`
	TimeEnd        *string            `json:"time_end"`
	Origin         *string            `json:"origin"`
	OriginLat      *float64           `json:"origin_latitude"`
	OriginLng      *float64           `json:"origin_longitude"`
	Destination    *string            `json:"destination"`
	DestinationLat *float64           `json:"destination_latitude"`
	DestinationLng *float64           `json:"destination_longitude"`
	Seats          *int               `json:"seats"`
	PriceMin       *float64           `json:"price_min"`
	PriceMax       *float64           `json:"price_max"`
	Price          *float64           `json:"price"`
	CarModel       *string            `json:"car_model"`
	CarPlate       *string            `json:"car_plate"`
	Remarks        *string            `json:"remarks"`
	Status         *domain.RideStatus `json:"status"`
}

// RideQuery filters a listing. Zero values mean no filter.
type RideQuery struct {
	Page        int
	Limit       int
	TravelDate  string
	Origin      string
	Destination string
	Status      *domain.RideStatus
}

// RideService manages passenger requests and driver invites.
type RideService struct {
	rides domain.RideRepository
}

func NewRideService(rides domain.RideRepository) *RideService {
	return &RideService{rides: rides}
}

// Publish creates an open posting of kind owned by userID.
func (s *RideService) Publish(ctx context.Context, kind domain.RideKind, userID int64, in RideInput) (*domain.RideView, error) {
	if !kind.Valid() {
		return nil, domain.ValidationError("unknown ride kind %q", kind)
	}
	for _, f := range []struct {
		name    string
		missing bool
	}{
		{"travel_date", in.TravelDate == nil},
		{"time_start", in.TimeStart == nil},
		{"time_end", in.TimeEnd == nil},
		{"origin", in.Origin == nil},
		{"destination", in.Destination == nil},
		{"seats", in.Seats == nil},
	} {
		if f.missing {
			return nil, domain.ValidationError("%s is required", f.name)
		}
	}
	if in.Status != nil {
		return nil, domain.ValidationError("status cannot be set on publish")
	}

	ride := &domain.Ride{Kind: kind, UserID: userID, Status: domain.RideStatusOpen}
	in.applyTo(ride)
	if err := validateRide(ride); err != nil {
		return nil, err
	}
	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, domain.PersistenceError("create ride", err)
	}
	return s.rides.GetByID(ctx, ride.ID)
}

// Get returns one posting of kind. A posting of the other kind is not found.
func (s *RideService) Get(ctx context.Context, kind domain.RideKind, id int64) (*domain.RideView, error) {
	if id <= 0 {
		return nil, domain.ValidationError("invalid ride id")
	}
	v, err := s.rides.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Kind != kind {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

// Update patches a posting owned by userID.
func (s *RideService) Update(ctx context.Context, kind domain.RideKind, userID, id int64, in RideInput) (*domain.RideView, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, domain.ValidationError("invalid status")
	}
	v, err := s.owned(ctx, kind, userID, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(&v.Ride)
	if err := validateRide(&v.Ride); err != nil {
		return nil, err
	}
	if err := s.rides.Update(ctx, &v.Ride); err != nil {
		return nil, err
	}
	return v, nil
}

// Cancel marks a posting owned by userID as cancelled. Cancelling twice is
// not an error.
func (s *RideService) Cancel(ctx context.Context, kind domain.RideKind, userID, id int64) error {
	v, err := s.owned(ctx, kind, userID, id)
	if err != nil {
		return err
	}
	if v.Status == domain.RideStatusCancelled {
		return nil
	}
	v.Status = domain.RideStatusCancelled
	return s.rides.Update(ctx, &v.Ride)
}

// List returns the open and completed postings of kind, newest first.
func (s *RideService) List(ctx context.Context, kind domain.RideKind, q RideQuery) (*domain.RidePage, error) {
	return s.list(ctx, kind, 0, q)
}

// Mine returns every posting of kind published by userID, newest first.
func (s *RideService) Mine(ctx context.Context, kind domain.RideKind, userID int64, q RideQuery) (*domain.RidePage, error) {
	return s.list(ctx, kind, userID, q)
}

func (s *RideService) list(ctx context.Context, kind domain.RideKind, userID int64, q RideQuery) (*domain.RidePage, error) {
	if q.TravelDate != "" && !validDate(q.TravelDate) {
		return nil, domain.ValidationError("travel_date must be YYYY-MM-DD")
	}
	if q.Status != nil && !q.Status.Valid() {
		return nil, domain.ValidationError("invalid status")
	}
	page, limit := normalizePage(q.Page, q.Limit, defaultRidePageLimit, maxRidePageLimit)

	list, total, err := s.rides.List(ctx, domain.RideFilter{
		Kind:        kind,
		UserID:      userID,
		TravelDate:  q.TravelDate,
		Origin:      q.Origin,
		Destination: q.Destination,
		Status:      q.Status,
		Offset:      offset(page, limit),
		Limit:       limit,
	})
	if err != nil {
		return nil, domain.PersistenceError("list rides", err)
	}
	return &domain.RidePage{List: list, Total: total, Page: page, Limit: limit}, nil
}

func (s *RideService) owned(ctx context.Context, kind domain.RideKind, userID, id int64) (*domain.RideView, error) {
	v, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if v.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return v, nil
}

func (in RideInput) applyTo(r *domain.Ride) {
	setString(&r.TravelDate, in.TravelDate)
	setString(&r.TimeStart, in.TimeStart)
	setString(&r.TimeEnd, in.TimeEnd)
	setString(&r.Origin, in.Origin)
	setString(&r.Destination, in.Destination)
	setFloat(&r.OriginLat, in.OriginLat)
	setFloat(&r.OriginLng, in.OriginLng)
	setFloat(&r.DestinationLat, in.DestinationLat)
	setFloat(&r.DestinationLng, in.DestinationLng)
	if in.Seats != nil {
		r.Seats = *in.Seats
	}
	setOptional(&r.Remarks, in.Remarks)
	if in.Status != nil {
		r.Status = *in.Status
	}

	switch r.Kind {
	case domain.RideKindPassenger:
		setFloat(&r.PriceMin, in.PriceMin)
		setFloat(&r.PriceMax, in.PriceMax)
	case domain.RideKindDriver:
		setFloat(&r.Price, in.Price)
		setOptional(&r.CarModel, in.CarModel)
		setOptional(&r.CarPlate, in.CarPlate)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst **float64, v *float64) {
	if v != nil {
		f := *v
		*dst = &f
	}
}

// setOptional treats an empty string as a request to clear the field.
func setOptional(dst **string, v *string) {
	switch {
	case v == nil:
	case *v == "":
		*dst = nil
	default:
		s := *v
		*dst = &s
	}
}

func validateRide(r *domain.Ride) error {
	if !validDate(r.TravelDate) {
		return domain.ValidationError("travel_date must be YYYY-MM-DD")
	}
	if !clockPattern.MatchString(r.TimeStart) || !clockPattern.MatchString(r.TimeEnd) {
		return domain.ValidationError("time_start and time_end must be HH:MM")
	}
	if !between(r.Origin, 2, 255) || !between(r.Destination, 2, 255) {
		return domain.ValidationError("origin and destination must be 2 to 255 characters")
	}
	if !inRange(r.OriginLat, -90, 90) || !inRange(r.DestinationLat, -90, 90) {
		return domain.ValidationError("latitude must be between -90 and 90")
	}
	if !inRange(r.OriginLng, -180, 180) || !inRange(r.DestinationLng, -180, 180) {
		return domain.ValidationError("longitude must be between -180 and 180")
	}
	if r.Seats < 1 || r.Seats > maxSeats {
		return domain.ValidationError("seats must be between 1 and %d", maxSeats)
	}
	for _, p := range []*float64{r.PriceMin, r.PriceMax, r.Price} {
		if p != nil && *p < 0 {
			return domain.ValidationError("price must not be negative")
		}
	}
	if r.PriceMin != nil && r.PriceMax != nil && *r.PriceMin > *r.PriceMax {
		return domain.ValidationError("price_min must not exceed price_max")
	}
	if r.CarModel != nil && utf8.RuneCountInString(*r.CarModel) > 100 {
		return domain.ValidationError("car_model must be at most 100 characters")
	}
	if r.CarPlate != nil && utf8.RuneCountInString(*r.CarPlate) > 20 {
		return domain.ValidationError("car_plate must be at most 20 characters")
	}
	if r.Remarks != nil && utf8.RuneCountInString(*r.Remarks) > 500 {
		return domain.ValidationError("remarks must be at most 500 characters")
	}
	if !r.Status.Valid() {
		return domain.ValidationError("invalid status")
	}
	return nil
}

func validDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func between(s string, lo, hi int) bool {
	n := utf8.RuneCountInString(s)
	return n >= lo && n <= hi
}

func inRange(v *float64, lo, hi float64) bool {
	return v == nil || (*v >= lo && *v <= hi)
}
