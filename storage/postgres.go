package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"avito_harvester/models"
)

// PostgresStore is the long-term listing store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS advertisements (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		link TEXT NOT NULL UNIQUE,
		area TEXT,
		price NUMERIC,
		address TEXT,
		stations TEXT,
		description TEXT,
		posted_raw TEXT,
		publish_date DATE,
		city TEXT,
		category TEXT,
		adv_type TEXT,
		seller_name TEXT,
		seller_kind TEXT,
		seller_active TEXT,
		seller_completed TEXT,
		seller_summary TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_advertisements_publish_date ON advertisements(publish_date);
	CREATE INDEX IF NOT EXISTS idx_advertisements_city ON advertisements(city);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// CreateListing upserts by link: a relisted advertisement refreshes the
// stored record instead of duplicating it.
func (s *PostgresStore) CreateListing(ctx context.Context, l *models.Listing) error {
	query := `
		INSERT INTO advertisements (
			id, title, link, area, price, address, stations, description,
			posted_raw, publish_date, city, category, adv_type,
			seller_name, seller_kind, seller_active, seller_completed, seller_summary,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW()
		)
		ON CONFLICT (link) DO UPDATE SET
			title = EXCLUDED.title,
			area = EXCLUDED.area,
			price = EXCLUDED.price,
			address = EXCLUDED.address,
			stations = EXCLUDED.stations,
			description = EXCLUDED.description,
			posted_raw = EXCLUDED.posted_raw,
			publish_date = COALESCE(EXCLUDED.publish_date, advertisements.publish_date),
			seller_name = EXCLUDED.seller_name,
			seller_kind = EXCLUDED.seller_kind,
			seller_active = EXCLUDED.seller_active,
			seller_completed = EXCLUDED.seller_completed,
			seller_summary = EXCLUDED.seller_summary,
			updated_at = NOW()
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		l.ID, l.Title, l.Link, l.Area, l.Price, l.Address, strings.Join(l.Stations, ";"),
		l.Description, l.PostedRaw, l.PublishDate, l.City, l.Category, l.AdvType,
		l.Seller.Name, l.Seller.Kind, l.Seller.ActiveCount, l.Seller.CompletedCount, l.Seller.ActiveSummary,
		l.CreatedAt,
	).Scan(&l.ID)
}

// MaxPublishDate returns the newest stored publish date, or nil when
// the table is empty or every record lacks one.
func (s *PostgresStore) MaxPublishDate(ctx context.Context) (*time.Time, error) {
	var max *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT MAX(publish_date) FROM advertisements`).Scan(&max)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return max, nil
}

func (s *PostgresStore) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM advertisements`).Scan(&count)
	return count, err
}

// DeleteOlderThan removes records not touched since cutoff and returns
// the number of rows purged.
func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM advertisements WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
