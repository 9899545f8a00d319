package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WorkoutsListener receives the notifications RecordWorkout emits, from any api instance.
type WorkoutsListener struct {
	pool       *pgxpool.Pool
	retryDelay time.Duration
}

func NewWorkoutsListener(pool *pgxpool.Pool) *WorkoutsListener {
	return &WorkoutsListener{
		pool:       pool,
		retryDelay: 2 * time.Second,
	}
}

// Listen blocks until ctx is done, calling fn with the uid of every notification.
// Dropped connections are re-established.
func (l *WorkoutsListener) Listen(ctx context.Context, fn func(uid uuid.UUID)) error {
	for {
		err := l.listen(ctx, fn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("workouts listener dropped", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *WorkoutsListener) listen(ctx context.Context, fn func(uid uuid.UUID)) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return errors.New("acquiring listener connection error: " + err.Error())
	}
	// LISTEN state must not leak back into the pool
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err = conn.Exec(ctx, "LISTEN "+WorkoutsChannel); err != nil {
		return errors.New("listen error: " + err.Error())
	}
	slog.Info("listening for workout notifications", slog.String("channel", WorkoutsChannel))
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return errors.New("waiting for notification error: " + err.Error())
		}
		uid, err := uuid.Parse(n.Payload)
		if err != nil {
			slog.Warn("malformed workout notification", slog.String("payload", n.Payload))
			continue
		}
		fn(uid)
	}
}
