package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/pkg/entity"
)

// WorkoutsChannel is the Postgres NOTIFY channel carrying the uid whose workouts changed.
const WorkoutsChannel = "workouts_changed"

type WorkoutsRepository struct {
	conn PgConnection
}

func NewWorkoutsRepoWithConn(conn PgConnection) *WorkoutsRepository {
	return &WorkoutsRepository{
		conn: conn,
	}
}

func (wr *WorkoutsRepository) RecordWorkout(ctx context.Context, workout *entity.Workout, update MetricsUpdater) (metrics *entity.DashboardMetrics, err error) {
	if workout == nil || update == nil {
		return nil, errors.New("workout or updater is nil")
	}
	tx, err := wr.conn.Begin(ctx)
	if err != nil {
		return nil, errors.New("beginning workout transaction error: " + err.Error())
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `INSERT INTO dashboard_metrics (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING;`, workout.UserID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, errorvalues.ErrUnknownUser
		}
		return nil, errors.New("creating dashboard metrics error: " + err.Error())
	}

	// Row lock serializes concurrent logs of the same user
	current := entity.DashboardMetrics{UserID: workout.UserID}
	row := tx.QueryRow(ctx, `SELECT total_calories, total_workouts, current_streak, longest_streak FROM dashboard_metrics WHERE user_id = $1 FOR UPDATE;`,
		workout.UserID,
	)
	if err = row.Scan(&current.TotalCalories, &current.TotalWorkouts, &current.CurrentStreak, &current.LongestStreak); err != nil {
		return nil, errors.New("locking dashboard metrics error: " + err.Error())
	}

	var lastWorkoutAt *time.Time
	var last time.Time
	row = tx.QueryRow(ctx, `SELECT performed_at FROM workouts WHERE user_id = $1 ORDER BY performed_at DESC LIMIT 1;`, workout.UserID)
	switch scanErr := row.Scan(&last); {
	case scanErr == nil:
		lastWorkoutAt = &last
	case !errors.Is(scanErr, pgx.ErrNoRows):
		return nil, errors.New("getting last workout error: " + scanErr.Error())
	}

	next := update(current, lastWorkoutAt)

	row = tx.QueryRow(ctx, `INSERT INTO workouts (user_id, exercise, muscle_group, level, calories, performed_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		workout.UserID,
		workout.Exercise,
		workout.MuscleGroup,
		workout.Level,
		workout.Calories,
		workout.PerformedAt,
	)
	if err = row.Scan(&workout.ID); err != nil {
		return nil, errors.New("inserting workout error: " + err.Error())
	}

	row = tx.QueryRow(ctx, `UPDATE dashboard_metrics SET total_calories = $1, total_workouts = $2, current_streak = $3, longest_streak = $4, updated_at = NOW() WHERE user_id = $5 RETURNING updated_at;`,
		next.TotalCalories,
		next.TotalWorkouts,
		next.CurrentStreak,
		next.LongestStreak,
		workout.UserID,
	)
	if err = row.Scan(&next.UpdatedAt); err != nil {
		return nil, errors.New("updating dashboard metrics error: " + err.Error())
	}

	if _, err = tx.Exec(ctx, `SELECT pg_notify($1, $2);`, WorkoutsChannel, workout.UserID.String()); err != nil {
		return nil, errors.New("notifying workout listeners error: " + err.Error())
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, errors.New("committing workout error: " + err.Error())
	}
	next.UserID = workout.UserID
	return &next, nil
}

func (wr *WorkoutsRepository) GetMetrics(ctx context.Context, uid uuid.UUID) (*entity.DashboardMetrics, error) {
	_, err := wr.conn.Exec(ctx, `INSERT INTO dashboard_metrics (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING;`, uid)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, errorvalues.ErrUnknownUser
		}
		return nil, errors.New("creating dashboard metrics error: " + err.Error())
	}
	metrics := entity.DashboardMetrics{UserID: uid}
	row := wr.conn.QueryRow(ctx, `SELECT total_calories, total_workouts, current_streak, longest_streak, updated_at FROM dashboard_metrics WHERE user_id = $1;`, uid)
	err = row.Scan(&metrics.TotalCalories, &metrics.TotalWorkouts, &metrics.CurrentStreak, &metrics.LongestStreak, &metrics.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrMetricsMissing
		}
		return nil, errors.New("getting dashboard metrics error: " + err.Error())
	}
	return &metrics, nil
}

func (wr *WorkoutsRepository) GetByUserAndRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]entity.Workout, error) {
	rows, err := wr.conn.Query(ctx, `SELECT id, exercise, muscle_group, level, calories, performed_at FROM workouts WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3 ORDER BY performed_at;`,
		uid, from, to,
	)
	if err != nil {
		return nil, errors.New("getting workouts for period error: " + err.Error())
	}
	return scanWorkouts(rows, uid)
}

func (wr *WorkoutsRepository) GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]entity.Workout, error) {
	rows, err := wr.conn.Query(ctx, `SELECT id, exercise, muscle_group, level, calories, performed_at FROM workouts WHERE user_id = $1 ORDER BY performed_at DESC LIMIT $2 OFFSET $3;`,
		uid, limit, offset,
	)
	if err != nil {
		return nil, errors.New("getting workouts by uid error: " + err.Error())
	}
	return scanWorkouts(rows, uid)
}

func (wr *WorkoutsRepository) GetExercisesSince(ctx context.Context, uid uuid.UUID, since time.Time) ([]string, error) {
	rows, err := wr.conn.Query(ctx, `SELECT DISTINCT exercise FROM workouts WHERE user_id = $1 AND performed_at >= $2;`, uid, since)
	if err != nil {
		return nil, errors.New("getting recent exercises error: " + err.Error())
	}
	defer rows.Close()
	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, errors.New("exercise row parsing error: " + err.Error())
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected exercise rows error: " + err.Error())
	}
	return names, nil
}

func scanWorkouts(rows pgx.Rows, uid uuid.UUID) ([]entity.Workout, error) {
	defer rows.Close()
	result := make([]entity.Workout, 0)
	for rows.Next() {
		w := entity.Workout{UserID: uid}
		err := rows.Scan(&w.ID, &w.Exercise, &w.MuscleGroup, &w.Level, &w.Calories, &w.PerformedAt)
		if err != nil {
			return nil, errors.New("workout row parsing error: " + err.Error())
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New("unexpected workout rows error: " + err.Error())
	}
	return result, nil
}
