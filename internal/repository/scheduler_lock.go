package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type SchedulerLockRepository struct {
	db *DB
}

func NewSchedulerLockRepository(db *DB) *SchedulerLockRepository {
	return &SchedulerLockRepository{db: db}
}

// TryAcquire implements §4.8's lock-or-steal algorithm in one transaction:
// insert if absent; if present and expired, steal by overwriting the
// timestamps; if present and live, return acquired=false without side
// effects (§8 invariant 6).
func (r *SchedulerLockRepository) TryAcquire(ctx context.Context, lockName string, ttl time.Duration) (acquired bool, err error) {
	err = r.db.WithTx(ctx, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		expires := now.Add(ttl)

		tag, execErr := tx.Exec(ctx, `
			INSERT INTO scheduler_locks (lock_name, acquired_at, expires_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (lock_name) DO NOTHING`, lockName, now, expires)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 1 {
			acquired = true
			return nil
		}

		tag, execErr = tx.Exec(ctx, `
			UPDATE scheduler_locks SET acquired_at = $2, expires_at = $3
			WHERE lock_name = $1 AND expires_at < $2`, lockName, now, expires)
		if execErr != nil {
			return execErr
		}
		acquired = tag.RowsAffected() == 1
		return nil
	})
	return acquired, err
}

// Release deletes the lock row; best-effort by design (§7: "lock release
// is best-effort in the exit path") — callers log but do not fail the job
// on a release error.
func (r *SchedulerLockRepository) Release(ctx context.Context, lockName string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM scheduler_locks WHERE lock_name = $1`, lockName)
	return err
}
