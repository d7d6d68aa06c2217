package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists session records keyed by phone number.
type Repository interface {
	Upsert(ctx context.Context, record Record) error
	FindActive(ctx context.Context, phoneNumber string) (Record, error)
	UpdateAccessToken(ctx context.Context, phoneNumber, accessToken string, expiresAt, updatedAt time.Time) error
	Deactivate(ctx context.Context, phoneNumber string, updatedAt time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed session repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or replaces the session for the record's phone number.
func (r *PostgresRepository) Upsert(ctx context.Context, rec Record) error {
	_, err := r.db.Exec(ctx, `INSERT INTO wallet_sessions
        (phone_number, user_id, customer_id, access_token, refresh_token,
         access_token_expires_at, refresh_token_expires_at, is_active, created_at, updated_at)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (phone_number) DO UPDATE SET
            user_id = EXCLUDED.user_id,
            customer_id = EXCLUDED.customer_id,
            access_token = EXCLUDED.access_token,
            refresh_token = EXCLUDED.refresh_token,
            access_token_expires_at = EXCLUDED.access_token_expires_at,
            refresh_token_expires_at = EXCLUDED.refresh_token_expires_at,
            is_active = EXCLUDED.is_active,
            updated_at = EXCLUDED.updated_at`,
		rec.PhoneNumber, rec.UserID, rec.CustomerID, rec.AccessToken, rec.RefreshToken,
		rec.AccessTokenExpiresAt.UTC(), rec.RefreshTokenExpiresAt.UTC(), rec.Active,
		rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	return err
}

// FindActive fetches the active session for a phone number.
func (r *PostgresRepository) FindActive(ctx context.Context, phoneNumber string) (Record, error) {
	row := r.db.QueryRow(ctx, `SELECT phone_number, user_id, COALESCE(customer_id, ''), access_token, refresh_token,
        access_token_expires_at, refresh_token_expires_at, is_active, created_at, updated_at
        FROM wallet_sessions WHERE phone_number = $1 AND is_active`, phoneNumber)
	var rec Record
	if err := row.Scan(&rec.PhoneNumber, &rec.UserID, &rec.CustomerID, &rec.AccessToken, &rec.RefreshToken,
		&rec.AccessTokenExpiresAt, &rec.RefreshTokenExpiresAt, &rec.Active, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.AccessTokenExpiresAt = rec.AccessTokenExpiresAt.UTC()
	rec.RefreshTokenExpiresAt = rec.RefreshTokenExpiresAt.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

// UpdateAccessToken replaces the access token of the active session.
func (r *PostgresRepository) UpdateAccessToken(ctx context.Context, phoneNumber, accessToken string, expiresAt, updatedAt time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE wallet_sessions SET access_token = $1, access_token_expires_at = $2, updated_at = $3
        WHERE phone_number = $4 AND is_active`, accessToken, expiresAt.UTC(), updatedAt.UTC(), phoneNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate marks the active session inactive.
func (r *PostgresRepository) Deactivate(ctx context.Context, phoneNumber string, updatedAt time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE wallet_sessions SET is_active = FALSE, updated_at = $1
        WHERE phone_number = $2 AND is_active`, updatedAt.UTC(), phoneNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
