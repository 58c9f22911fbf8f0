package postgres

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyRepo maps an Idempotency-Key header to the booking it first
// produced, so a retried create returns the original booking instead of
// charging twice.
type IdempotencyRepo interface {
	// CheckOrCreate looks up the key; a hit returns the existing booking id,
	// a miss records bookingID (when > 0) and returns 0.
	CheckOrCreate(ctx context.Context, key string, bookingID int64) (int64, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

type IdempotencyRepoImpl struct{ pool *pgxpool.Pool }

func NewIdempotencyRepo(pool *pgxpool.Pool) *IdempotencyRepoImpl {
	return &IdempotencyRepoImpl{pool: pool}
}

var _ IdempotencyRepo = (*IdempotencyRepoImpl)(nil)

const idempotencyTTL = 24 * time.Hour

func (r *IdempotencyRepoImpl) CheckOrCreate(ctx context.Context, key string, bookingID int64) (int64, error) {
	// Hash the key for consistent length and to keep client tokens out of
	// the table.
	keyHash := fmt.Sprintf("%x", sha256.Sum256([]byte(key)))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var existing int64
	err := r.pool.QueryRow(ctx,
		`SELECT booking_id FROM booking_idempotency WHERE key_hash=$1 AND expires_at > now()`,
		keyHash).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if err != pgx.ErrNoRows {
		return 0, err
	}

	if bookingID > 0 {
		_, err = r.pool.Exec(ctx, `
INSERT INTO booking_idempotency (key_hash, booking_id, expires_at)
VALUES ($1,$2,$3)
ON CONFLICT (key_hash) DO NOTHING`,
			keyHash, bookingID, time.Now().Add(idempotencyTTL))
		if err != nil {
			return 0, err
		}
	}
	return 0, nil
}

func (r *IdempotencyRepoImpl) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, `DELETE FROM booking_idempotency WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
