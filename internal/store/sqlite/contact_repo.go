package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"rideshare_go/internal/domain"
)

// ContactRepo derives per-peer aggregates from chat_messages.
type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

var _ domain.ContactRepository = (*ContactRepo)(nil)

// ListForUser returns one row per peer, most recent activity first. The last
// message is the highest id of the pair, which tracks insertion order.
func (r *ContactRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.peer_id, u.real_name, u.avatar_url, COALESCE(u.rating, 0),
		       m.created_at, m.content,
		       (SELECT COUNT(*) FROM chat_messages cm2
		        WHERE cm2.from_user_id = c.peer_id AND cm2.to_user_id = ? AND cm2.is_read = 0)
		FROM (
			SELECT CASE WHEN from_user_id = ? THEN to_user_id ELSE from_user_id END AS peer_id,
			       MAX(id) AS last_id
			FROM chat_messages
			WHERE from_user_id = ? OR to_user_id = ?
			GROUP BY peer_id
		) c
		JOIN chat_messages m ON m.id = c.last_id
		LEFT JOIN users u ON u.id = c.peer_id
		ORDER BY m.created_at DESC, m.id DESC
	`, userID, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var res []*domain.Contact
	for rows.Next() {
		c := &domain.Contact{}
		if err := rows.Scan(
			&c.UserID, &c.RealName, &c.AvatarURL, &c.Rating,
			&c.LastMessageTime, &c.LastMessage, &c.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *ContactRepo) MarkAsRead(ctx context.Context, readerID, senderID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chat_messages SET is_read = 1
		WHERE from_user_id = ? AND to_user_id = ? AND is_read = 0
	`, senderID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return res.RowsAffected()
}

func (r *ContactRepo) GetUnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE to_user_id = ? AND is_read = 0`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (r *ContactRepo) GetUnreadCountFrom(ctx context.Context, userID, senderID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE to_user_id = ? AND from_user_id = ? AND is_read = 0`,
		userID, senderID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread from sender: %w", err)
	}
	return count, nil
}
