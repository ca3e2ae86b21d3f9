// Package memory is the in-process backend: listings and users live in
// mutex-guarded slices and are lost when the process exits.
package memory

import (
	"context"

	"github.com/msomdec/rightnow/internal/domain"
)

// DB bundles the in-memory repositories behind the domain.Database interface.
type DB struct {
	listings *ListingRepository
	users    *UserRepository
}

// New creates an empty in-memory backend.
func New() *DB {
	return &DB{
		listings: NewListingRepository(),
		users:    NewUserRepository(),
	}
}

// Migrate is a no-op; there is no schema to apply.
func (db *DB) Migrate(ctx context.Context) error {
	return nil
}

func (db *DB) Close() error {
	return nil
}

func (db *DB) Listings() domain.ListingRepository {
	return db.listings
}

func (db *DB) Users() domain.UserRepository {
	return db.users
}
