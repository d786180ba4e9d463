package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"rideshare_go/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	m.IsRead = false
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO chat_messages (from_user_id, to_user_id, message_type, content, ride_reference, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
		RETURNING id, created_at
	`, m.FromUserID, m.ToUserID, m.MessageType, m.Content, m.RideReference,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepo) ListBetween(ctx context.Context, a, b int64, offset, limit int) ([]*domain.MessageView, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cm.id, cm.from_user_id, cm.to_user_id, cm.message_type, cm.content, cm.ride_reference,
		       cm.is_read, cm.created_at,
		       u_from.real_name, u_from.avatar_url, u_to.real_name, u_to.avatar_url
		FROM chat_messages cm
		LEFT JOIN users u_from ON cm.from_user_id = u_from.id
		LEFT JOIN users u_to ON cm.to_user_id = u_to.id
		WHERE (cm.from_user_id = $1 AND cm.to_user_id = $2)
		   OR (cm.from_user_id = $2 AND cm.to_user_id = $1)
		ORDER BY cm.created_at DESC, cm.id DESC
		LIMIT $3 OFFSET $4
	`, a, b, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return r.scanViews(rows)
}

func (r *MessageRepo) CountBetween(ctx context.Context, a, b int64) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chat_messages
		WHERE (from_user_id = $1 AND to_user_id = $2)
		   OR (from_user_id = $2 AND to_user_id = $1)
	`, a, b).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return total, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *MessageRepo) scanViews(rows *sql.Rows) ([]*domain.MessageView, error) {
	defer rows.Close()
	var res []*domain.MessageView
	for rows.Next() {
		v := &domain.MessageView{}
		if err := rows.Scan(
			&v.ID, &v.FromUserID, &v.ToUserID, &v.MessageType, &v.Content, &v.RideReference,
			&v.IsRead, &v.CreatedAt,
			&v.FromUser.RealName, &v.FromUser.AvatarURL, &v.ToUser.RealName, &v.ToUser.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, v)
	}
	return res, rows.Err()
}
