package domain

import "context"

// Database defines lifecycle operations for a listing/user backend.
// The in-memory and SQLite backends both satisfy it, so the composition
// root can pick one at startup without the services noticing.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
	Listings() ListingRepository
	Users() UserRepository
}
