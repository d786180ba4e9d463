package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
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
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO ride_postings (kind, user_id, travel_date, time_start, time_end,
			origin, origin_latitude, origin_longitude,
			destination, destination_latitude, destination_longitude,
			seats, price_min, price_max, price, car_model, car_plate, remarks,
			status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ride.Kind, ride.UserID, ride.TravelDate, ride.TimeStart, ride.TimeEnd,
		ride.Origin, ride.OriginLat, ride.OriginLng,
		ride.Destination, ride.DestinationLat, ride.DestinationLng,
		ride.Seats, ride.PriceMin, ride.PriceMax, ride.Price, ride.CarModel, ride.CarPlate, ride.Remarks,
		ride.Status, ts, ts)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	ride.ID = id
	ride.CreatedAt = ts
	ride.UpdatedAt = ts
	return nil
}

func (r *RideRepo) GetByID(ctx context.Context, id int64) (*domain.RideView, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+rideColumns+`
		FROM ride_postings rp
		JOIN users u ON u.id = rp.user_id
		WHERE rp.id = ?
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
	ride.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE ride_postings SET
			travel_date = ?, time_start = ?, time_end = ?,
			origin = ?, origin_latitude = ?, origin_longitude = ?,
			destination = ?, destination_latitude = ?, destination_longitude = ?,
			seats = ?, price_min = ?, price_max = ?, price = ?,
			car_model = ?, car_plate = ?, remarks = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, ride.TravelDate, ride.TimeStart, ride.TimeEnd,
		ride.Origin, ride.OriginLat, ride.OriginLng,
		ride.Destination, ride.DestinationLat, ride.DestinationLng,
		ride.Seats, ride.PriceMin, ride.PriceMax, ride.Price,
		ride.CarModel, ride.CarPlate, ride.Remarks, ride.Status, ride.UpdatedAt,
		ride.ID)
	if err != nil {
		return fmt.Errorf("update ride: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
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

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+rideColumns+`
		FROM ride_postings rp
		JOIN users u ON u.id = rp.user_id
		WHERE `+where+`
		ORDER BY rp.created_at DESC, rp.id DESC
		LIMIT ? OFFSET ?
	`, append(args, f.Limit, f.Offset)...)
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
	conds := []string{"rp.kind = ?"}
	args := []any{f.Kind}
	if f.UserID != 0 {
		conds = append(conds, "rp.user_id = ?")
		args = append(args, f.UserID)
	} else {
		conds = append(conds, "rp.status IN (1, 2)")
	}
	if f.Status != nil {
		conds = append(conds, "rp.status = ?")
		args = append(args, *f.Status)
	}
	if f.TravelDate != "" {
		conds = append(conds, "rp.travel_date = ?")
		args = append(args, f.TravelDate)
	}
	if f.Origin != "" {
		conds = append(conds, `rp.origin LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.Origin))
	}
	if f.Destination != "" {
		conds = append(conds, `rp.destination LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.Destination))
	}
	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

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
