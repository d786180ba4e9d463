package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rideshare_go/internal/domain"
)

const rideColumns = `rp.id, rp.kind, rp.user_id, rp.travel_date, rp.time_start, rp.time_end,
	rp.origin, rp.origin_latitude, rp.origin_longitude,
	rp.destination, rp.destination_latitude, rp.destination_longitude,
	rp.seats, rp.price_min, rp.price_max, rp.price, rp.car_model, rp.car_plate, rp.remarks,
	rp.status, rp.created_at, rp.updated_at,
	u.id, u.real_name, u.avatar_url, u.rating, u.rating_count`

type RideRepo struct {
	db *sql.DB
}

func NewRideRepo(db *sql.DB) *RideRepo {
	return &RideRepo{db: db}
}

var _ domain.RideRepository = (*RideRepo)(nil)

func (r *RideRepo) Create(ctx context.Context, ride *domain.Ride) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO ride_postings (kind, user_id, travel_date, time_start, time_end,
			origin, origin_latitude, origin_longitude,
			destination, destination_latitude, destination_longitude,
			seats, price_min, price_max, price, car_model, car_plate, remarks,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, ride.Kind, ride.UserID, ride.TravelDate, ride.TimeStart, ride.TimeEnd,
		ride.Origin, ride.OriginLat, ride.OriginLng,
		ride.Destination, ride.DestinationLat, ride.DestinationLng,
		ride.Seats, ride.PriceMin, ride.PriceMax, ride.Price, ride.CarModel, ride.CarPlate, ride.Remarks,
		ride.Status,
	).Scan(&ride.ID, &ride.CreatedAt, &ride.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}

func (r *RideRepo) GetByID(ctx context.Context, id int64) (*domain.RideView, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+rideColumns+`
		FROM ride_postings rp
		JOIN users u ON u.id = rp.user_id
		WHERE rp.id = $1
	`, id)
	v, err := scanRide(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ride: %w", err)
	}
	return v, nil
}

func (r *RideRepo) Update(ctx context.Context, ride *domain.Ride) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE ride_postings SET
			travel_date = $1, time_start = $2, time_end = $3,
			origin = $4, origin_latitude = $5, origin_longitude = $6,
			destination = $7, destination_latitude = $8, destination_longitude = $9,
			seats = $10, price_min = $11, price_max = $12, price = $13,
			car_model = $14, car_plate = $15, remarks = $16, status = $17, updated_at = NOW()
		WHERE id = $18
		RETURNING updated_at
	`, ride.TravelDate, ride.TimeStart, ride.TimeEnd,
		ride.Origin, ride.OriginLat, ride.OriginLng,
		ride.Destination, ride.DestinationLat, ride.DestinationLng,
		ride.Seats, ride.PriceMin, ride.PriceMax, ride.Price,
		ride.CarModel, ride.CarPlate, ride.Remarks, ride.Status,
		ride.ID,
	).Scan(&ride.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update ride: %w", err)
	}
	return nil
}

func (r *RideRepo) List(ctx context.Context, f domain.RideFilter) ([]*domain.RideView, int64, error) {
	where, args := rideWhere(f)

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ride_postings rp WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rides: %w", err)
	}

	n := len(args)
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+rideColumns+`
		FROM ride_postings rp
		JOIN users u ON u.id = rp.user_id
		WHERE `+where+`
		ORDER BY rp.created_at DESC, rp.id DESC
		LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rides: %w", err)
	}
	defer rows.Close()

	list := make([]*domain.RideView, 0, f.Limit)
	for rows.Next() {
		v, err := scanRide(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ride: %w", err)
		}
		list = append(list, v)
	}
	return list, total, rows.Err()
}

func rideWhere(f domain.RideFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	add("rp.kind = ?", string(f.Kind))
	if f.UserID != 0 {
		add("rp.user_id = ?", f.UserID)
	} else {
		conds = append(conds, "rp.status IN (1, 2)")
	}
	if f.Status != nil {
		add("rp.status = ?", int(*f.Status))
	}
	if f.TravelDate != "" {
		add("rp.travel_date = ?", f.TravelDate)
	}
	if f.Origin != "" {
		add("rp.origin ILIKE ?", likePattern(f.Origin))
	}
	if f.Destination != "" {
		add("rp.destination ILIKE ?", likePattern(f.Destination))
	}
	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Backslash is the default LIKE escape in PostgreSQL.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.RideView, error) {
	v := &domain.RideView{}
	err := row.Scan(
		&v.ID, &v.Kind, &v.UserID, &v.TravelDate, &v.TimeStart, &v.TimeEnd,
		&v.Origin, &v.OriginLat, &v.OriginLng,
		&v.Destination, &v.DestinationLat, &v.DestinationLng,
		&v.Seats, &v.PriceMin, &v.PriceMax, &v.Price, &v.CarModel, &v.CarPlate, &v.Remarks,
		&v.Status, &v.CreatedAt, &v.UpdatedAt,
		&v.Publisher.ID, &v.Publisher.RealName, &v.Publisher.AvatarURL, &v.Publisher.Rating, &v.Publisher.RatingCount,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}
