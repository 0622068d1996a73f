package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"move_portfolio/internal/domain/entity"
)

// Store manages the PostgreSQL address book.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL store with connection pooling.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Add inserts a new address book entry and returns it with its assigned id.
func (s *Store) Add(ctx context.Context, username, address string) (*entity.AddressBookEntry, error) {
	var entry entity.AddressBookEntry
	err := s.pool.QueryRow(ctx, `
		INSERT INTO address_book (username, address)
		VALUES ($1, $2)
		RETURNING id, username, address, created_at`,
		username, address,
	).Scan(&entry.ID, &entry.Username, &entry.Address, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert address book entry: %w", err)
	}
	return &entry, nil
}

// List returns all address book entries, oldest first.
func (s *Store) List(ctx context.Context) ([]entity.AddressBookEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, address, created_at
		FROM address_book
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query address book: %w", err)
	}
	defer rows.Close()

	var entries []entity.AddressBookEntry
	for rows.Next() {
		var entry entity.AddressBookEntry
		if err := rows.Scan(&entry.ID, &entry.Username, &entry.Address, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan address book row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate address book rows: %w", err)
	}
	return entries, nil
}

// Update rewrites an entry's username and address.
func (s *Store) Update(ctx context.Context, id int64, username, address string) (*entity.AddressBookEntry, error) {
	var entry entity.AddressBookEntry
	err := s.pool.QueryRow(ctx, `
		UPDATE address_book
		SET username = $2, address = $3
		WHERE id = $1
		RETURNING id, username, address, created_at`,
		id, username, address,
	).Scan(&entry.ID, &entry.Username, &entry.Address, &entry.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update address book entry %d: %w", id, err)
	}
	return &entry, nil
}

// Delete removes an entry by id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM address_book WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete address book entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}
