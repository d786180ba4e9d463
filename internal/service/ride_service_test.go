package service_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/service"
	"rideshare_go/internal/store"
)

type rideFixture struct {
	rides   *service.RideService
	reviews *service.ReviewService
	repos   *store.Repositories
	alice   int64
	bob     int64
}

func newRideFixture(t *testing.T) *rideFixture {
	t.Helper()
	repos, err := store.Open("sqlite", filepath.Join(t.TempDir(), "rides.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	f := &rideFixture{
		rides:   service.NewRideService(repos.Rides),
		reviews: service.NewReviewService(repos.Reviews),
		repos:   repos,
	}
	user := func(phone, name string) int64 {
		u := &domain.User{Phone: phone, HashedPassword: "h", RealName: &name, Rating: 5, Status: domain.UserStatusActive}
		require.NoError(t, repos.Users.Create(context.Background(), u))
		return u.ID
	}
	f.alice = user("13900000001", "Alice")
	f.bob = user("13900000002", "Bob")
	return f
}

func ptr[T any](v T) *T { return &v }

func rideInput() service.RideInput {
	return service.RideInput{
		TravelDate:  ptr("2026-11-02"),
		TimeStart:   ptr("07:30"),
		TimeEnd:     ptr("08:15"),
		Origin:      ptr("Hongqiao Station"),
		Destination: ptr("Zhangjiang Hi-Tech Park"),
		Seats:       ptr(2),
	}
}

func TestRidePublishAndGet(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t)

	in := rideInput()
	in.Price = ptr(40.0)
	in.CarModel = ptr("BYD Han")
	in.PriceMin = ptr(10.0) // passenger-only, dropped for invites
	v, err := f.rides.Publish(ctx, domain.RideKindDriver, f.alice, in)
	require.NoError(t, err)
	assert.Equal(t, domain.RideStatusOpen, v.Status)
	assert.Equal(t, 40.0, *v.Price)
	assert.Nil(t, v.PriceMin)
	assert.Equal(t, "Alice", *v.Publisher.RealName)
	assert.Equal(t, 5.0, v.Publisher.Rating)

	got, err := f.rides.Get(ctx, domain.RideKindDriver, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "BYD Han", *got.CarModel)

	_, err = f.rides.Get(ctx, domain.RideKindPassenger, v.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "kinds do not mix")
}

func TestRidePublishValidation(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t)

	cases := map[string]func(*service.RideInput){
		"missing date":   func(in *service.RideInput) { in.TravelDate = nil },
		"bad date":       func(in *service.RideInput) { in.TravelDate = ptr("02/11/2026") },
		"bad time":       func(in *service.RideInput) { in.TimeEnd = ptr("24:00") },
		"short origin":   func(in *service.RideInput) { in.Origin = ptr("A") },
		"latitude":       func(in *service.RideInput) { in.OriginLat = ptr(91.0) },
		"longitude":      func(in *service.RideInput) { in.DestinationLng = ptr(-181.0) },
		"no seats":       func(in *service.RideInput) { in.Seats = ptr(0) },
		"too many seats": func(in *service.RideInput) { in.Seats = ptr(21) },
		"negative price": func(in *service.RideInput) { in.PriceMax = ptr(-1.0) },
		"inverted range": func(in *service.RideInput) { in.PriceMin, in.PriceMax = ptr(30.0), ptr(20.0) },
		"status":         func(in *service.RideInput) { in.Status = ptr(domain.RideStatusCompleted) },
	}
	for name, mutate := range cases {
		in := rideInput()
		mutate(&in)
		_, err := f.rides.Publish(ctx, domain.RideKindPassenger, f.alice, in)
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}

	_, err := f.rides.Publish(ctx, domain.RideKind("taxi"), f.alice, rideInput())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRideUpdateAndCancel(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t)

	in := rideInput()
	in.Remarks = ptr("two suitcases")
	v, err := f.rides.Publish(ctx, domain.RideKindPassenger, f.alice, in)
	require.NoError(t, err)

	_, err = f.rides.Update(ctx, domain.RideKindPassenger, f.bob, v.ID, service.RideInput{Seats: ptr(3)})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.rides.Cancel(ctx, domain.RideKindPassenger, f.bob, v.ID), domain.ErrForbidden)

	updated, err := f.rides.Update(ctx, domain.RideKindPassenger, f.alice, v.ID, service.RideInput{
		Seats:   ptr(3),
		Remarks: ptr(""),
		Status:  ptr(domain.RideStatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Seats)
	assert.Nil(t, updated.Remarks, "empty string clears")
	assert.Equal(t, "Hongqiao Station", updated.Origin, "unset fields are kept")
	assert.Equal(t, domain.RideStatusCompleted, updated.Status)

	_, err = f.rides.Update(ctx, domain.RideKindPassenger, f.alice, v.ID, service.RideInput{Status: ptr(domain.RideStatus(7))})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.rides.Update(ctx, domain.RideKindPassenger, f.alice, 404, service.RideInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.rides.Cancel(ctx, domain.RideKindPassenger, f.alice, v.ID))
	require.NoError(t, f.rides.Cancel(ctx, domain.RideKindPassenger, f.alice, v.ID), "cancel is idempotent")

	page, err := f.rides.List(ctx, domain.RideKindPassenger, service.RideQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "cancelled postings leave the public listing")

	mine, err := f.rides.Mine(ctx, domain.RideKindPassenger, f.alice, service.RideQuery{})
	require.NoError(t, err)
	require.Len(t, mine.List, 1)
	assert.Equal(t, domain.RideStatusCancelled, mine.List[0].Status)
}

func TestRideListPaging(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.rides.Publish(ctx, domain.RideKindPassenger, f.alice, rideInput())
		require.NoError(t, err)
	}

	page, err := f.rides.List(ctx, domain.RideKindPassenger, service.RideQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.List, 1)
	assert.Equal(t, 2, page.Page)

	page, err = f.rides.List(ctx, domain.RideKindPassenger, service.RideQuery{})
	require.NoError(t, err)
	assert.Equal(t, 10, page.Limit, "default page size")

	page, err = f.rides.List(ctx, domain.RideKindPassenger, service.RideQuery{Page: math.MaxInt, Limit: 100})
	require.NoError(t, err, "huge pages are clamped, not overflowed")
	assert.Equal(t, service.MaxPage(100), page.Page)
	assert.Empty(t, page.List)

	_, err = f.rides.List(ctx, domain.RideKindPassenger, service.RideQuery{TravelDate: "tomorrow"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReviewAfterCompletedRide(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t)

	v, err := f.rides.Publish(ctx, domain.RideKindDriver, f.alice, rideInput())
	require.NoError(t, err)
	in := service.ReviewInput{TargetKind: domain.RideKindDriver, TargetID: v.ID, ToUserID: f.alice, Rating: 4, Comment: ptr("smooth ride")}

	_, err = f.reviews.Create(ctx, f.bob, in)
	assert.ErrorIs(t, err, domain.ErrValidation, "ride still open")

	_, err = f.rides.Update(ctx, domain.RideKindDriver, f.alice, v.ID, service.RideInput{Status: ptr(domain.RideStatusCompleted)})
	require.NoError(t, err)

	_, err = f.reviews.Create(ctx, f.alice, in)
	assert.ErrorIs(t, err, domain.ErrValidation, "self review")

	sum, err := f.reviews.Create(ctx, f.bob, in)
	require.NoError(t, err)
	assert.Equal(t, 4.0, sum.Rating)
	assert.Equal(t, 1, sum.RatingCount)

	_, err = f.reviews.Create(ctx, f.bob, in)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.rides.Get(ctx, domain.RideKindDriver, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Publisher.Rating, "publisher rating follows reviews")

	page, err := f.reviews.ListForUser(ctx, f.alice, 1, 0)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, "smooth ride", *page.List[0].Comment)
	assert.Equal(t, "Bob", *page.List[0].FromUser.RealName)
}

func TestReviewValidation(t *testing.T) {
	f := newRideFixture(t)
	base := service.ReviewInput{TargetKind: domain.RideKindPassenger, TargetID: 1, ToUserID: f.alice, Rating: 5}

	for name, mutate := range map[string]func(*service.ReviewInput){
		"kind":      func(in *service.ReviewInput) { in.TargetKind = "taxi" },
		"target":    func(in *service.ReviewInput) { in.TargetID = 0 },
		"low":       func(in *service.ReviewInput) { in.Rating = 0 },
		"high":      func(in *service.ReviewInput) { in.Rating = 6 },
		"self":      func(in *service.ReviewInput) { in.ToUserID = f.bob },
		"recipient": func(in *service.ReviewInput) { in.ToUserID = 0 },
	} {
		in := base
		mutate(&in)
		_, err := f.reviews.Create(context.Background(), f.bob, in)
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}

	_, err := f.reviews.Create(context.Background(), f.bob, base)
	assert.ErrorIs(t, err, domain.ErrNotFound, "no such ride")
}
