package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rideshare_go/internal/domain"
)

const userColumns = `id, phone, password_hash, real_name, avatar_url, rating, rating_count, status, id_card_verified, created_at, updated_at, last_login_at`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (phone, password_hash, real_name, avatar_url, rating, rating_count, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.Phone, u.HashedPassword, u.RealName, u.AvatarURL, u.Rating, u.RatingCount, u.Status, ts, ts)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	u.ID = id
	u.CreatedAt = ts
	u.UpdatedAt = ts
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE phone = ?`, phone)
}

func (r *UserRepo) GetBriefs(ctx context.Context, ids []int64) (map[int64]domain.UserBrief, error) {
	res := make(map[int64]domain.UserBrief, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, real_name, avatar_url FROM users WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get user briefs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var b domain.UserBrief
		if err := rows.Scan(&id, &b.RealName, &b.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan user brief: %w", err)
		}
		res[id] = b
	}
	return res, rows.Err()
}

func (r *UserRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET real_name = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
		u.RealName, u.AvatarURL, u.UpdatedAt, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, now(), id)
	return err
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hashed string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hashed, now(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetVerified(ctx context.Context, id int64, realName, idCard string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET real_name = ?, id_card = ?, id_card_verified = 1, updated_at = ? WHERE id = ?`,
		realName, idCard, now(), id)
	if err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Phone, &u.HashedPassword, &u.RealName, &u.AvatarURL,
		&u.Rating, &u.RatingCount, &u.Status, &u.IDCardVerified, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
