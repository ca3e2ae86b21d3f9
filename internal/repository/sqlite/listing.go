package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/rightnow/internal/domain"
)

// ListingRepository implements domain.ListingRepository using SQLite.
// Store order is the reverse of the autoincrement seq column.
type ListingRepository struct {
	db *sql.DB
}

// NewListingRepository creates a new SQLite-backed ListingRepository.
func NewListingRepository(db *DB) *ListingRepository {
	return &ListingRepository{db: db.SqlDB}
}

const listingColumns = `id, title, price_cents, image_url, description, lat, lng, expires_at, created_at, owner_user_id`

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	if l.ID == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}

	var expiresAt sql.NullTime
	if l.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: l.ExpiresAt.UTC(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO listings (`+listingColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Title, l.PriceCents, l.ImageURL, l.Description,
		nullFloat(l.Lat), nullFloat(l.Lng), expiresAt, l.CreatedAt.UTC(), l.OwnerUserID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: duplicate listing id %s", domain.ErrInvalidInput, l.ID)
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)

	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query listing by id: %w", err)
	}
	return l, nil
}

func (r *ListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	return r.query(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY seq DESC`)
}

func (r *ListingRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Listing, error) {
	return r.query(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE owner_user_id = ? ORDER BY seq DESC`, userID)
}

func (r *ListingRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

func (r *ListingRepository) query(ctx context.Context, query string, args ...any) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(s scanner) (*domain.Listing, error) {
	var (
		l         domain.Listing
		lat, lng  sql.NullFloat64
		expiresAt sql.NullTime
	)
	err := s.Scan(&l.ID, &l.Title, &l.PriceCents, &l.ImageURL, &l.Description,
		&lat, &lng, &expiresAt, &l.CreatedAt, &l.OwnerUserID)
	if err != nil {
		return nil, err
	}

	if lat.Valid {
		l.Lat = &lat.Float64
	}
	if lng.Valid {
		l.Lng = &lng.Float64
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		l.ExpiresAt = &t
	}
	return &l, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
