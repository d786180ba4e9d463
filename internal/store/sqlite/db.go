package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	if !strings.Contains(dsn, "_time_format=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_time_format=sqlite"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent sends.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL for the users, ride_postings, reviews and
// chat_messages tables.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			phone VARCHAR(20) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			real_name VARCHAR(50) DEFAULT NULL,
			avatar_url VARCHAR(500) DEFAULT NULL,
			rating REAL NOT NULL DEFAULT 5.0,
			rating_count INTEGER NOT NULL DEFAULT 0,
			status INTEGER NOT NULL DEFAULT 1,
			id_card TEXT DEFAULT NULL,
			id_card_verified BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			last_login_at DATETIME DEFAULT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ride_postings (
			id INTEGER PRIMARY KEY,
			kind VARCHAR(16) NOT NULL,
			user_id INTEGER NOT NULL,
			travel_date VARCHAR(10) NOT NULL,
			time_start VARCHAR(5) NOT NULL,
			time_end VARCHAR(5) NOT NULL,
			origin VARCHAR(255) NOT NULL,
			origin_latitude REAL DEFAULT NULL,
			origin_longitude REAL DEFAULT NULL,
			destination VARCHAR(255) NOT NULL,
			destination_latitude REAL DEFAULT NULL,
			destination_longitude REAL DEFAULT NULL,
			seats INTEGER NOT NULL DEFAULT 1,
			price_min REAL DEFAULT NULL,
			price_max REAL DEFAULT NULL,
			price REAL DEFAULT NULL,
			car_model VARCHAR(100) DEFAULT NULL,
			car_plate VARCHAR(20) DEFAULT NULL,
			remarks VARCHAR(500) DEFAULT NULL,
			status INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id INTEGER PRIMARY KEY,
			target_type VARCHAR(16) NOT NULL,
			target_id INTEGER NOT NULL,
			from_user_id INTEGER NOT NULL,
			to_user_id INTEGER NOT NULL,
			rating INTEGER NOT NULL,
			comment VARCHAR(500) DEFAULT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (target_id) REFERENCES ride_postings(id),
			FOREIGN KEY (from_user_id) REFERENCES users(id),
			FOREIGN KEY (to_user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id INTEGER PRIMARY KEY,
			from_user_id INTEGER NOT NULL,
			to_user_id INTEGER NOT NULL,
			message_type INTEGER NOT NULL DEFAULT 1,
			content TEXT NOT NULL,
			ride_reference INTEGER DEFAULT NULL,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (from_user_id) REFERENCES users(id),
			FOREIGN KEY (to_user_id) REFERENCES users(id),
			FOREIGN KEY (ride_reference) REFERENCES ride_postings(id) ON DELETE SET NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_phone ON users(phone);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_pair ON chat_messages(from_user_id, to_user_id, is_read);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_to_unread ON chat_messages(to_user_id, is_read);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_created ON chat_messages(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_rides_listing ON ride_postings(kind, status, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_rides_user ON ride_postings(user_id, kind);`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_to_user ON reviews(to_user_id, created_at DESC);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_reviews_author_target ON reviews(from_user_id, target_type, target_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release.
	for _, c := range []struct{ table, column, def string }{
		{"users", "id_card", "TEXT DEFAULT NULL"},
		{"users", "id_card_verified", "BOOLEAN NOT NULL DEFAULT 0"},
	} {
		if err := addColumnIfMissing(db, c.table, c.column, c.def); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}

func addColumnIfMissing(db *sql.DB, table, column, def string) error {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	_, err = db.Exec(`ALTER TABLE ` + table + ` ADD COLUMN ` + column + ` ` + def)
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func now() time.Time {
	return time.Now().UTC()
}

func placeholders(n int) string {
	return "?" + strings.Repeat(",?", n-1)
}
