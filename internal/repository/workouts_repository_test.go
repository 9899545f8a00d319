package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/lib/pq"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/internal/repository"
	"github.com/limbo/fittrack/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/pressly/goose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	ensureMetricsQuery = regexp.QuoteMeta(`INSERT INTO dashboard_metrics (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING;`)
	lockMetricsQuery   = regexp.QuoteMeta(`SELECT total_calories, total_workouts, current_streak, longest_streak FROM dashboard_metrics WHERE user_id = $1 FOR UPDATE;`)
	lastWorkoutQuery   = regexp.QuoteMeta(`SELECT performed_at FROM workouts WHERE user_id = $1 ORDER BY performed_at DESC LIMIT 1;`)
	insertWorkoutQuery = regexp.QuoteMeta(`INSERT INTO workouts (user_id, exercise, muscle_group, level, calories, performed_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`)
	updateMetricsQuery = regexp.QuoteMeta(`UPDATE dashboard_metrics SET total_calories = $1, total_workouts = $2, current_streak = $3, longest_streak = $4, updated_at = NOW() WHERE user_id = $5 RETURNING updated_at;`)
	notifyQuery        = regexp.QuoteMeta(`SELECT pg_notify($1, $2);`)
	workoutColumns     = []string{"id", "exercise", "muscle_group", "level", "calories", "performed_at"}
)

// Sums calories and counts workouts, keeps streak at 1
func countingUpdater(calories int) repository.MetricsUpdater {
	return func(current entity.DashboardMetrics, _ *time.Time) entity.DashboardMetrics {
		current.TotalCalories += calories
		current.TotalWorkouts++
		current.CurrentStreak = 1
		current.LongestStreak = max(current.LongestStreak, 1)
		return current
	}
}

func TestRecordWorkout(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewWorkoutsRepoWithConn(mock)
	ctx := context.Background()
	uid := uuid.New()
	wid := uuid.New()
	performed := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	previous := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	updatedAt := performed.Add(time.Second)
	newWorkout := func() *entity.Workout {
		return &entity.Workout{
			UserID:      uid,
			Exercise:    "Bench Press",
			MuscleGroup: "chest",
			Level:       "beginner",
			Calories:    80,
			PerformedAt: performed,
		}
	}
	updater := func(current entity.DashboardMetrics, _ *time.Time) entity.DashboardMetrics {
		current.TotalCalories += 80
		current.TotalWorkouts++
		current.CurrentStreak = 1
		current.LongestStreak = 1
		return current
	}
	t.Run("success with previous workout", func(t *testing.T) {
		w := newWorkout()
		var seen *time.Time
		mock.ExpectBegin()
		mock.ExpectExec(ensureMetricsQuery).WithArgs(uid).WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectQuery(lockMetricsQuery).WithArgs(uid).
			WillReturnRows(pgxmock.NewRows([]string{"total_calories", "total_workouts", "current_streak", "longest_streak"}).AddRow(50, 1, 1, 1))
		mock.ExpectQuery(lastWorkoutQuery).WithArgs(uid).
			WillReturnRows(pgxmock.NewRows([]string{"performed_at"}).AddRow(previous))
		mock.ExpectQuery(insertWorkoutQuery).
			WithArgs(uid, w.Exercise, w.MuscleGroup, w.Level, w.Calories, w.PerformedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(wid))
		mock.ExpectQuery(updateMetricsQuery).WithArgs(130, 2, 1, 1, uid).
			WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(updatedAt))
		mock.ExpectExec(notifyQuery).WithArgs(repository.WorkoutsChannel, uid.String()).
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectCommit()
		metrics, err := repo.RecordWorkout(ctx, w, func(current entity.DashboardMetrics, last *time.Time) entity.DashboardMetrics {
			seen = last
			return updater(current, last)
		})
		assert.NoError(t, err)
		assert.Equal(t, wid, w.ID)
		assert.Equal(t, entity.DashboardMetrics{
			UserID:        uid,
			TotalCalories: 130,
			TotalWorkouts: 2,
			CurrentStreak: 1,
			LongestStreak: 1,
			UpdatedAt:     updatedAt,
		}, *metrics)
		if assert.NotNil(t, seen) {
			assert.Equal(t, previous, *seen)
		}
	})
	t.Run("first workout ever", func(t *testing.T) {
		w := newWorkout()
		seen := &previous
		mock.ExpectBegin()
		mock.ExpectExec(ensureMetricsQuery).WithArgs(uid).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(lockMetricsQuery).WithArgs(uid).
			WillReturnRows(pgxmock.NewRows([]string{"total_calories", "total_workouts", "current_streak", "longest_streak"}).AddRow(0, 0, 0, 0))
		mock.ExpectQuery(lastWorkoutQuery).WithArgs(uid).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(insertWorkoutQuery).
			WithArgs(uid, w.Exercise, w.MuscleGroup, w.Level, w.Calories, w.PerformedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(wid))
		mock.ExpectQuery(updateMetricsQuery).WithArgs(80, 1, 1, 1, uid).
			WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(updatedAt))
		mock.ExpectExec(notifyQuery).WithArgs(repository.WorkoutsChannel, uid.String()).
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectCommit()
		metrics, err := repo.RecordWorkout(ctx, w, func(current entity.DashboardMetrics, last *time.Time) entity.DashboardMetrics {
			seen = last
			return updater(current, last)
		})
		assert.NoError(t, err)
		assert.Nil(t, seen)
		assert.Equal(t, 80, metrics.TotalCalories)
		assert.Equal(t, 1, metrics.TotalWorkouts)
	})
	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(ensureMetricsQuery).WithArgs(uid).WillReturnError(&pgconn.PgError{Code: "23503"})
		mock.ExpectRollback()
		_, err := repo.RecordWorkout(ctx, newWorkout(), updater)
		assert.ErrorIs(t, err, errorvalues.ErrUnknownUser)
	})
	t.Run("insert failure rolls back", func(t *testing.T) {
		w := newWorkout()
		mock.ExpectBegin()
		mock.ExpectExec(ensureMetricsQuery).WithArgs(uid).WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectQuery(lockMetricsQuery).WithArgs(uid).
			WillReturnRows(pgxmock.NewRows([]string{"total_calories", "total_workouts", "current_streak", "longest_streak"}).AddRow(50, 1, 1, 1))
		mock.ExpectQuery(lastWorkoutQuery).WithArgs(uid).
			WillReturnRows(pgxmock.NewRows([]string{"performed_at"}).AddRow(previous))
		mock.ExpectQuery(insertWorkoutQuery).
			WithArgs(uid, w.Exercise, w.MuscleGroup, w.Level, w.Calories, w.PerformedAt).
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()
		_, err := repo.RecordWorkout(ctx, w, updater)
		assert.Error(t, err)
	})
	t.Run("last workout lookup failure rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(ensureMetricsQuery).WithArgs(uid).WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectQuery(lockMetricsQuery).WithArgs(uid).
			WillReturnRows(pgxmock.NewRows([]string{"total_calories", "total_workouts", "current_streak", "longest_streak"}).AddRow(50, 1, 1, 1))
		mock.ExpectQuery(lastWorkoutQuery).WithArgs(uid).WillReturnError(errors.New("db error"))
		mock.ExpectRollback()
		_, err := repo.RecordWorkout(ctx, newWorkout(), updater)
		assert.Error(t, err)
	})
	t.Run("commit failure", func(t *testing.T) {
		w := newWorkout()
		mock.ExpectBegin()
		mock.ExpectExec(ensureMetricsQuery).WithArgs(uid).WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectQuery(lockMetricsQuery).WithArgs(uid).
			WillReturnRows(pgxmock.NewRows([]string{"total_calories", "total_workouts", "current_streak", "longest_streak"}).AddRow(50, 1, 1, 1))
		mock.ExpectQuery(lastWorkoutQuery).WithArgs(uid).
			WillReturnRows(pgxmock.NewRows([]string{"performed_at"}).AddRow(previous))
		mock.ExpectQuery(insertWorkoutQuery).
			WithArgs(uid, w.Exercise, w.MuscleGroup, w.Level, w.Calories, w.PerformedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(wid))
		mock.ExpectQuery(updateMetricsQuery).WithArgs(130, 2, 1, 1, uid).
			WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(updatedAt))
		mock.ExpectExec(notifyQuery).WithArgs(repository.WorkoutsChannel, uid.String()).
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectCommit().WillReturnError(errors.New("db error"))
		mock.ExpectRollback()
		_, err := repo.RecordWorkout(ctx, w, updater)
		assert.Error(t, err)
	})
	t.Run("nil updater", func(t *testing.T) {
		_, err := repo.RecordWorkout(ctx, newWorkout(), nil)
		assert.Error(t, err)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMetrics(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewWorkoutsRepoWithConn(mock)
	ctx := context.Background()
	uid := uuid.New()
	query := regexp.QuoteMeta(`SELECT total_calories, total_workouts, current_streak, longest_streak, updated_at FROM dashboard_metrics WHERE user_id = $1;`)
	updatedAt := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	t.Run("found", func(t *testing.T) {
		mock.ExpectExec(ensureMetricsQuery).WithArgs(uid).WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectQuery(query).WithArgs(uid).
			WillReturnRows(pgxmock.NewRows([]string{"total_calories", "total_workouts", "current_streak", "longest_streak", "updated_at"}).
				AddRow(130, 2, 1, 3, updatedAt))
		metrics, err := repo.GetMetrics(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, entity.DashboardMetrics{
			UserID:        uid,
			TotalCalories: 130,
			TotalWorkouts: 2,
			CurrentStreak: 1,
			LongestStreak: 3,
			UpdatedAt:     updatedAt,
		}, *metrics)
	})
	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectExec(ensureMetricsQuery).WithArgs(uid).WillReturnError(&pgconn.PgError{Code: "23503"})
		_, err := repo.GetMetrics(ctx, uid)
		assert.ErrorIs(t, err, errorvalues.ErrUnknownUser)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectExec(ensureMetricsQuery).WithArgs(uid).WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectQuery(query).WithArgs(uid).WillReturnError(errors.New("db error"))
		_, err := repo.GetMetrics(ctx, uid)
		assert.Error(t, err)
	})
}

func TestGetByUserAndRange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewWorkoutsRepoWithConn(mock)
	ctx := context.Background()
	uid := uuid.New()
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	query := regexp.QuoteMeta(`SELECT id, exercise, muscle_group, level, calories, performed_at FROM workouts WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3 ORDER BY performed_at;`)
	workouts := []entity.Workout{
		{ID: uuid.New(), UserID: uid, Exercise: "Push-Ups", MuscleGroup: "chest", Level: "beginner", Calories: 50, PerformedAt: from.Add(10 * time.Hour)},
		{ID: uuid.New(), UserID: uid, Exercise: "Bench Press", MuscleGroup: "chest", Level: "beginner", Calories: 80, PerformedAt: from.AddDate(0, 0, 30).Add(23 * time.Hour)},
	}
	t.Run("listed", func(t *testing.T) {
		rows := pgxmock.NewRows(workoutColumns)
		for _, w := range workouts {
			rows.AddRow(w.ID, w.Exercise, w.MuscleGroup, w.Level, w.Calories, w.PerformedAt)
		}
		mock.ExpectQuery(query).WithArgs(uid, from, to).WillReturnRows(rows)
		result, err := repo.GetByUserAndRange(ctx, uid, from, to)
		assert.NoError(t, err)
		assert.Equal(t, workouts, result)
	})
	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(uid, from, to).WillReturnRows(pgxmock.NewRows(workoutColumns))
		result, err := repo.GetByUserAndRange(ctx, uid, from, to)
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	})
	t.Run("row error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(uid, from, to).
			WillReturnRows(pgxmock.NewRows(workoutColumns).
				AddRow(workouts[0].ID, workouts[0].Exercise, workouts[0].MuscleGroup, workouts[0].Level, workouts[0].Calories, workouts[0].PerformedAt).
				RowError(0, errors.New("row error")))
		_, err := repo.GetByUserAndRange(ctx, uid, from, to)
		assert.Error(t, err)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(uid, from, to).WillReturnError(errors.New("db error"))
		_, err := repo.GetByUserAndRange(ctx, uid, from, to)
		assert.Error(t, err)
	})
}

func TestGetWorkoutsByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewWorkoutsRepoWithConn(mock)
	ctx := context.Background()
	uid := uuid.New()
	query := regexp.QuoteMeta(`SELECT id, exercise, muscle_group, level, calories, performed_at FROM workouts WHERE user_id = $1 ORDER BY performed_at DESC LIMIT $2 OFFSET $3;`)
	w := entity.Workout{ID: uuid.New(), UserID: uid, Exercise: "Tricep Dips", MuscleGroup: "triceps", Level: "beginner", Calories: 100, PerformedAt: time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)}
	t.Run("page", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(uid, 10, 20).
			WillReturnRows(pgxmock.NewRows(workoutColumns).AddRow(w.ID, w.Exercise, w.MuscleGroup, w.Level, w.Calories, w.PerformedAt))
		result, err := repo.GetByUserID(ctx, uid, 10, 20)
		assert.NoError(t, err)
		assert.Equal(t, []entity.Workout{w}, result)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(uid, 10, 0).WillReturnError(errors.New("db error"))
		_, err := repo.GetByUserID(ctx, uid, 10, 0)
		assert.Error(t, err)
	})
}

func TestGetExercisesSince(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewWorkoutsRepoWithConn(mock)
	ctx := context.Background()
	uid := uuid.New()
	since := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`SELECT DISTINCT exercise FROM workouts WHERE user_id = $1 AND performed_at >= $2;`)
	t.Run("listed", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(uid, since).
			WillReturnRows(pgxmock.NewRows([]string{"exercise"}).AddRow("Push-Ups").AddRow("Chest Dips"))
		names, err := repo.GetExercisesSince(ctx, uid, since)
		assert.NoError(t, err)
		assert.Equal(t, []string{"Push-Ups", "Chest Dips"}, names)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(uid, since).WillReturnError(errors.New("db error"))
		_, err := repo.GetExercisesSince(ctx, uid, since)
		assert.Error(t, err)
	})
}

func TestWorkoutsIntegrational(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	cfg, uid := setupTestDB(t)
	ctx := context.Background()
	pool, err := repository.NewPool(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	repo := repository.NewWorkoutsRepoWithConn(pool)
	users := repository.NewUsersRepoWithConn(pool)

	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day4 := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	lastMoment := time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC)

	t.Run("record", func(t *testing.T) {
		var seen *time.Time
		first := &entity.Workout{UserID: uid, Exercise: "Push-Ups", MuscleGroup: "chest", Level: "beginner", Calories: 50, PerformedAt: day1}
		metrics, err := repo.RecordWorkout(ctx, first, func(current entity.DashboardMetrics, last *time.Time) entity.DashboardMetrics {
			seen = last
			return countingUpdater(first.Calories)(current, last)
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, first.ID)
		assert.Nil(t, seen)
		assert.Equal(t, 50, metrics.TotalCalories)

		for _, w := range []*entity.Workout{
			{UserID: uid, Exercise: "Bench Press", MuscleGroup: "chest", Level: "beginner", Calories: 80, PerformedAt: day4},
			{UserID: uid, Exercise: "Tricep Dips", MuscleGroup: "triceps", Level: "beginner", Calories: 100, PerformedAt: lastMoment},
		} {
			metrics, err = repo.RecordWorkout(ctx, w, func(current entity.DashboardMetrics, last *time.Time) entity.DashboardMetrics {
				seen = last
				return countingUpdater(w.Calories)(current, last)
			})
			require.NoError(t, err)
		}
		if assert.NotNil(t, seen) {
			assert.True(t, day4.Equal(*seen))
		}
		assert.Equal(t, 230, metrics.TotalCalories)
		assert.Equal(t, 3, metrics.TotalWorkouts)
	})
	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.RecordWorkout(ctx, &entity.Workout{UserID: uuid.New(), Exercise: "Push-Ups", MuscleGroup: "chest", Level: "beginner", Calories: 50, PerformedAt: day1}, countingUpdater(50))
		assert.ErrorIs(t, err, errorvalues.ErrUnknownUser)
	})
	t.Run("metrics", func(t *testing.T) {
		metrics, err := repo.GetMetrics(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, 230, metrics.TotalCalories)
		assert.Equal(t, 3, metrics.TotalWorkouts)
	})
	t.Run("month range includes last day", func(t *testing.T) {
		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		result, err := repo.GetByUserAndRange(ctx, uid, from, from.AddDate(0, 1, 0))
		require.NoError(t, err)
		require.Len(t, result, 3)
		assert.Equal(t, "Push-Ups", result[0].Exercise)
		assert.Equal(t, "Tricep Dips", result[2].Exercise)
	})
	t.Run("history newest first", func(t *testing.T) {
		result, err := repo.GetByUserID(ctx, uid, 2, 0)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, "Tricep Dips", result[0].Exercise)
		assert.Equal(t, "Bench Press", result[1].Exercise)
	})
	t.Run("exercises since", func(t *testing.T) {
		names, err := repo.GetExercisesSince(ctx, uid, day4)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Bench Press", "Tricep Dips"}, names)
	})
	t.Run("identity linking", func(t *testing.T) {
		user, err := users.FindByID(ctx, uid)
		require.NoError(t, err)
		err = users.LinkIdentity(ctx, entity.Identity{Provider: "google", Subject: "sub-1", UserID: uid})
		require.NoError(t, err)
		linked, err := users.FindByIdentity(ctx, "google", "sub-1")
		require.NoError(t, err)
		assert.Equal(t, user.Email, linked.Email)
		err = users.LinkIdentity(ctx, entity.Identity{Provider: "google", Subject: "sub-1", UserID: uid})
		assert.ErrorIs(t, err, errorvalues.ErrIdentityLinked)
	})
	t.Run("listener receives notifications", func(t *testing.T) {
		listenCtx, cancel := context.WithCancel(ctx)
		received := make(chan uuid.UUID, 16)
		done := make(chan error, 1)
		go func() {
			done <- repository.NewWorkoutsListener(pool).Listen(listenCtx, func(u uuid.UUID) {
				received <- u
			})
		}()
		got := false
		for attempt := 0; attempt < 10 && !got; attempt++ {
			_, err := repo.RecordWorkout(ctx, &entity.Workout{UserID: uid, Exercise: "Chest Dips", MuscleGroup: "chest", Level: "beginner", Calories: 70, PerformedAt: day4}, countingUpdater(70))
			require.NoError(t, err)
			select {
			case u := <-received:
				assert.Equal(t, uid, u)
				got = true
			case <-time.After(500 * time.Millisecond):
			}
		}
		assert.True(t, got)
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}

func setupTestDB(t *testing.T) (*testPGConfig, uuid.UUID) {
	container, err := postgres.Run(context.Background(), "postgres:17",
		postgres.WithUsername("test_user"),
		postgres.WithDatabase("fittrack"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatal("error running test container: " + err.Error())
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})
	connStr, err := container.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err = goose.SetDialect("postgres"); err != nil {
		t.Fatal(err)
	}
	if err = goose.Up(conn, "../../migrations"); err != nil {
		t.Fatal(err)
	}
	var uid uuid.UUID
	err = conn.QueryRow(`INSERT INTO users (email, password_hash, display_name) VALUES ($1, $2, $3) RETURNING id;`,
		"integration@example.com", "pass_hash", "integration",
	).Scan(&uid)
	if err != nil {
		t.Fatal(err)
	}
	return &testPGConfig{connStr: connStr}, uid
}

type testPGConfig struct {
	connStr string
}

func (cfg *testPGConfig) ConnString() string {
	return cfg.connStr
}
