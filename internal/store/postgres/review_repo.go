package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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
		kind   string
		owner  int64
		status int
	)
	// Row lock serialises concurrent reviews of the same posting.
	err = tx.QueryRowContext(ctx,
		`SELECT kind, user_id, status FROM ride_postings WHERE id = $1 FOR UPDATE`, rv.TargetID,
	).Scan(&kind, &owner, &status)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && domain.RideKind(kind) != rv.TargetKind) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load review target: %w", err)
	}
	if domain.RideStatus(status) != domain.RideStatusCompleted || owner != rv.ToUserID {
		return nil, domain.ValidationError("only completed rides of the reviewed user can be reviewed")
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO reviews (target_type, target_id, from_user_id, to_user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`, string(rv.TargetKind), rv.TargetID, rv.FromUserID, rv.ToUserID, rv.Rating, rv.Comment,
	).Scan(&rv.ID, &rv.CreatedAt)
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	sum := &domain.RatingSummary{ReviewID: rv.ID, ToUserID: rv.ToUserID}
	err = tx.QueryRowContext(ctx, `
		UPDATE users u SET
			rating = agg.avg,
			rating_count = agg.cnt,
			updated_at = NOW()
		FROM (
			SELECT ROUND(AVG(rating)::numeric, 2)::float8 AS avg, COUNT(*)::int AS cnt
			FROM reviews WHERE to_user_id = $1
		) agg
		WHERE u.id = $1
		RETURNING u.rating, u.rating_count
	`, rv.ToUserID).Scan(&sum.Rating, &sum.RatingCount)
	if err != nil {
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
		`SELECT COUNT(*) FROM reviews WHERE to_user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT rv.id, rv.target_type, rv.target_id, rv.from_user_id, rv.to_user_id,
			rv.rating, rv.comment, rv.created_at, u.real_name, u.avatar_url
		FROM reviews rv
		JOIN users u ON u.id = rv.from_user_id
		WHERE rv.to_user_id = $1
		ORDER BY rv.created_at DESC, rv.id DESC
		LIMIT $2 OFFSET $3
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
