package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Creat0r69/faith/internal/domain"
)

// TokenStore implements domain.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *pgxpool.Pool
}

// NewTokenStore creates a new TokenStore backed by the given connection pool.
func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Upsert inserts or updates a tracked token by mint.
func (s *TokenStore) Upsert(ctx context.Context, t domain.TrackedToken) error {
	const query = `
		INSERT INTO tracked_tokens (
			mint, name, symbol, image_uri, active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW(), NOW()
		)
		ON CONFLICT (mint) DO UPDATE SET
			name       = EXCLUDED.name,
			symbol     = EXCLUDED.symbol,
			image_uri  = EXCLUDED.image_uri,
			active     = EXCLUDED.active,
			updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		t.Mint, t.Name, t.Symbol, t.ImageURI, t.Active,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert token %s: %w", t.Mint, err)
	}
	return nil
}

// ListActive returns all tokens currently flagged for tracking, oldest
// first so the subscription set is stable across reloads.
func (s *TokenStore) ListActive(ctx context.Context) ([]domain.TrackedToken, error) {
	const query = `
		SELECT mint, name, symbol, image_uri, active, created_at, updated_at
		FROM tracked_tokens
		WHERE active
		ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.TrackedToken
	for rows.Next() {
		var t domain.TrackedToken
		if err := rows.Scan(
			&t.Mint, &t.Name, &t.Symbol, &t.ImageURI, &t.Active,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate tokens: %w", err)
	}
	return tokens, nil
}

// Get returns a single token by mint.
func (s *TokenStore) Get(ctx context.Context, mint string) (domain.TrackedToken, error) {
	const query = `
		SELECT mint, name, symbol, image_uri, active, created_at, updated_at
		FROM tracked_tokens
		WHERE mint = $1`

	var t domain.TrackedToken
	err := s.pool.QueryRow(ctx, query, mint).Scan(
		&t.Mint, &t.Name, &t.Symbol, &t.ImageURI, &t.Active,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TrackedToken{}, domain.ErrNotFound
		}
		return domain.TrackedToken{}, fmt.Errorf("postgres: get token %s: %w", mint, err)
	}
	return t, nil
}

// Deactivate stops tracking a token without deleting its row.
func (s *TokenStore) Deactivate(ctx context.Context, mint string) error {
	const query = `
		UPDATE tracked_tokens
		SET active = FALSE, updated_at = NOW()
		WHERE mint = $1`

	tag, err := s.pool.Exec(ctx, query, mint)
	if err != nil {
		return fmt.Errorf("postgres: deactivate token %s: %w", mint, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Compile-time interface check.
var _ domain.TokenStore = (*TokenStore)(nil)
