package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// expiryLockKey identifies the expiry job in pg_advisory_lock space.
const expiryLockKey = 720011

// AdvisoryLock is a database-level mutual exclusion for the expiry job:
// it works across processes, and the lock dies with the session if the
// holder crashes.
type AdvisoryLock struct {
	pool *pgxpool.Pool
	conn *pgxpool.Conn
	key  int64
}

func NewExpiryLock(pool *pgxpool.Pool) *AdvisoryLock {
	return &AdvisoryLock{pool: pool, key: expiryLockKey}
}

// TryLock attempts the advisory lock without waiting. false means
// another invocation holds it.
func (a *AdvisoryLock) TryLock(ctx context.Context) (bool, error) {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return false, err
	}
	var got bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", a.key).Scan(&got); err != nil {
		conn.Release()
		return false, err
	}
	if !got {
		conn.Release()
		return false, nil
	}
	// the lock is session scoped: hold the connection until Unlock
	a.conn = conn
	return true, nil
}

func (a *AdvisoryLock) Unlock(ctx context.Context) error {
	if a.conn == nil {
		return nil
	}
	defer func() {
		a.conn.Release()
		a.conn = nil
	}()
	_, err := a.conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", a.key)
	return err
}
