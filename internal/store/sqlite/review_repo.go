package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"rideshare_go/internal/domain"
)

type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

var _ domain.ReviewRepository = (*ReviewRepo)(nil)

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) (*domain.RatingSummary, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin review: %w", err)
	}
	defer tx.Rollback()

	var (
		kind   domain.RideKind
		owner  int64
		status domain.RideStatus
	)
	err = tx.QueryRowContext(ctx,
		`SELECT kind, user_id, status FROM ride_postings WHERE id = ?`, rv.TargetID,
	).Scan(&kind, &owner, &status)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && kind != rv.TargetKind) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load review target: %w", err)
	}
	if status != domain.RideStatusCompleted || owner != rv.ToUserID {
		return nil, domain.ValidationError("only completed rides of the reviewed user can be reviewed")
	}

	rv.CreatedAt = now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO reviews (target_type, target_id, from_user_id, to_user_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rv.TargetKind, rv.TargetID, rv.FromUserID, rv.ToUserID, rv.Rating, rv.Comment, rv.CreatedAt)
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	if rv.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	sum := &domain.RatingSummary{ReviewID: rv.ID, ToUserID: rv.ToUserID}
	if err := tx.QueryRowContext(ctx,
		`SELECT AVG(rating), COUNT(*) FROM reviews WHERE to_user_id = ?`, rv.ToUserID,
	).Scan(&sum.Rating, &sum.RatingCount); err != nil {
		return nil, fmt.Errorf("aggregate rating: %w", err)
	}
	sum.Rating = math.Round(sum.Rating*100) / 100

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET rating = ?, rating_count = ?, updated_at = ? WHERE id = ?`,
		sum.Rating, sum.RatingCount, rv.CreatedAt, rv.ToUserID,
	); err != nil {
		return nil, fmt.Errorf("update rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review: %w", err)
	}
	return sum, nil
}

func (r *ReviewRepo) ListForUser(ctx context.Context, userID int64, offset, limit int) ([]*domain.ReviewView, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE to_user_id = ?`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT rv.id, rv.target_type, rv.target_id, rv.from_user_id, rv.to_user_id,
			rv.rating, rv.comment, rv.created_at, u.real_name, u.avatar_url
		FROM reviews rv
		JOIN users u ON u.id = rv.from_user_id
		WHERE rv.to_user_id = ?
		ORDER BY rv.created_at DESC, rv.id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	list := make([]*domain.ReviewView, 0, limit)
	for rows.Next() {
		v := &domain.ReviewView{}
		if err := rows.Scan(
			&v.ID, &v.TargetKind, &v.TargetID, &v.FromUserID, &v.ToUserID,
			&v.Rating, &v.Comment, &v.CreatedAt, &v.FromUser.RealName, &v.FromUser.AvatarURL,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review: %w", err)
		}
		list = append(list, v)
	}
	return list, total, rows.Err()
}
