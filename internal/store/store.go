// Package store selects a storage backend and bundles its repositories.
package store

import (
	"database/sql"
	"fmt"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/store/postgres"
	"rideshare_go/internal/store/sqlite"
)

// Repositories is the set of repositories backed by one database handle.
type Repositories struct {
	DB       *sql.DB
	Users    domain.UserRepository
	Messages domain.MessageRepository
	Contacts domain.ContactRepository
	Rides    domain.RideRepository
	Reviews  domain.ReviewRepository
}

// Close releases the underlying database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}

// Open connects to the driver's database, migrates it and returns the
// repositories for it. Supported drivers are "sqlite" and "postgres".
func Open(driver, dsn string) (*Repositories, error) {
	switch driver {
	case "sqlite":
		db, err := sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return &Repositories{
			DB:       db,
			Users:    sqlite.NewUserRepo(db),
			Messages: sqlite.NewMessageRepo(db),
			Contacts: sqlite.NewContactRepo(db),
			Rides:    sqlite.NewRideRepo(db),
			Reviews:  sqlite.NewReviewRepo(db),
		}, nil

	case "postgres":
		db, err := postgres.Open(dsn)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return &Repositories{
			DB:       db,
			Users:    postgres.NewUserRepo(db),
			Messages: postgres.NewMessageRepo(db),
			Contacts: postgres.NewContactRepo(db),
			Rides:    postgres.NewRideRepo(db),
			Reviews:  postgres.NewReviewRepo(db),
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}
