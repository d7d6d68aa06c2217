package walletuser

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository resolves wallet users by phone number.
type Repository interface {
	// GetOrCreate returns the user for phoneNumber, creating it on first use.
	// created reports whether this call inserted the row.
	GetOrCreate(ctx context.Context, phoneNumber string, now time.Time) (user User, created bool, err error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed wallet user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate upserts on the unique phone number. The no-op update makes
// RETURNING yield the existing row; xmax = 0 only for freshly inserted rows.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, phoneNumber string, now time.Time) (User, bool, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO wallet_users (phone_number, created_at) VALUES ($1, $2)
        ON CONFLICT (phone_number) DO UPDATE SET phone_number = EXCLUDED.phone_number
        RETURNING id, phone_number, created_at, (xmax = 0) AS inserted`, phoneNumber, now.UTC())
	var (
		user     User
		inserted bool
	)
	if err := row.Scan(&user.ID, &user.PhoneNumber, &user.CreatedAt, &inserted); err != nil {
		return User{}, false, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, inserted, nil
}
