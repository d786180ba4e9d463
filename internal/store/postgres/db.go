package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the users, ride_postings,
// reviews and chat_messages tables.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id             BIGSERIAL        PRIMARY KEY,
			phone          VARCHAR(20)      UNIQUE NOT NULL,
			password_hash  VARCHAR(255)     NOT NULL,
			real_name      VARCHAR(50),
			avatar_url     VARCHAR(500),
			rating         DOUBLE PRECISION NOT NULL DEFAULT 5.0,
			rating_count   INTEGER          NOT NULL DEFAULT 0,
			status         SMALLINT         NOT NULL DEFAULT 1,
			id_card        TEXT,
			id_card_verified BOOLEAN        NOT NULL DEFAULT FALSE,
			created_at     TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
			last_login_at  TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS ride_postings (
			id                     BIGSERIAL        PRIMARY KEY,
			kind                   VARCHAR(16)      NOT NULL,
			user_id                BIGINT           NOT NULL REFERENCES users(id),
			travel_date            VARCHAR(10)      NOT NULL,
			time_start             VARCHAR(5)       NOT NULL,
			time_end               VARCHAR(5)       NOT NULL,
			origin                 VARCHAR(255)     NOT NULL,
			origin_latitude        DOUBLE PRECISION,
			origin_longitude       DOUBLE PRECISION,
			destination            VARCHAR(255)     NOT NULL,
			destination_latitude   DOUBLE PRECISION,
			destination_longitude  DOUBLE PRECISION,
			seats                  INTEGER          NOT NULL DEFAULT 1,
			price_min              DOUBLE PRECISION,
			price_max              DOUBLE PRECISION,
			price                  DOUBLE PRECISION,
			car_model              VARCHAR(100),
			car_plate              VARCHAR(20),
			remarks                VARCHAR(500),
			status                 SMALLINT         NOT NULL DEFAULT 1,
			created_at             TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
			updated_at             TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS reviews (
			id            BIGSERIAL    PRIMARY KEY,
			target_type   VARCHAR(16)  NOT NULL,
			target_id     BIGINT       NOT NULL REFERENCES ride_postings(id),
			from_user_id  BIGINT       NOT NULL REFERENCES users(id),
			to_user_id    BIGINT       NOT NULL REFERENCES users(id),
			rating        SMALLINT     NOT NULL,
			comment       VARCHAR(500),
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS chat_messages (
			id              BIGSERIAL    PRIMARY KEY,
			from_user_id    BIGINT       NOT NULL REFERENCES users(id),
			to_user_id      BIGINT       NOT NULL REFERENCES users(id),
			message_type    SMALLINT     NOT NULL DEFAULT 1,
			content         TEXT         NOT NULL,
			ride_reference  BIGINT       REFERENCES ride_postings(id) ON DELETE SET NULL,
			is_read         BOOLEAN      NOT NULL DEFAULT FALSE,
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_phone ON users(phone)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_pair ON chat_messages(from_user_id, to_user_id, is_read)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_to_unread ON chat_messages(to_user_id, is_read)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_created ON chat_messages(created_at DESC)`,

		`CREATE INDEX IF NOT EXISTS idx_rides_listing ON ride_postings(kind, status, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_rides_user ON ride_postings(user_id, kind)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_to_user ON reviews(to_user_id, created_at DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_reviews_author_target ON reviews(from_user_id, target_type, target_id)`,

		`ALTER TABLE chat_messages ADD COLUMN IF NOT EXISTS ride_reference BIGINT`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS id_card TEXT`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS id_card_verified BOOLEAN NOT NULL DEFAULT FALSE`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
