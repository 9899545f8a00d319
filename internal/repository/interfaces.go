package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/fittrack/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UsersRepositoryI interface {
	// Creates new user with email/password credentials. Returns generated ID
	Create(ctx context.Context, user *entity.User) (uuid.UUID, error)
	// Creates new user and links provider identity to it in one transaction
	CreateWithIdentity(ctx context.Context, user *entity.User, identity entity.Identity) (uuid.UUID, error)
	// Looks up user by email. Used for login and provider linking
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Looks up user by uid. Used by authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Looks up user owning the provider identity
	FindByIdentity(ctx context.Context, provider, subject string) (*entity.User, error)
	// Links provider identity to existing user
	LinkIdentity(ctx context.Context, identity entity.Identity) error
	// Updates profile fields (display name, phone, weight, height, avatar)
	UpdateProfile(ctx context.Context, user *entity.User) error
}

// MetricsUpdater computes the aggregate after one more workout. lastWorkoutAt is the
// time of the newest workout logged before this one, nil for the first ever.
type MetricsUpdater func(current entity.DashboardMetrics, lastWorkoutAt *time.Time) entity.DashboardMetrics

type WorkoutsRepositoryI interface {
	// Appends workout and applies update to the user's aggregate atomically.
	// Sets workout.ID. Returns the stored aggregate
	RecordWorkout(ctx context.Context, workout *entity.Workout, update MetricsUpdater) (*entity.DashboardMetrics, error)
	// Returns user's aggregate, creating a zero one if absent
	GetMetrics(ctx context.Context, uid uuid.UUID) (*entity.DashboardMetrics, error)
	// Lists workouts with performed_at in [from, to), oldest first
	GetByUserAndRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]entity.Workout, error)
	// Lists workouts newest first. Requires pagination params provided
	GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]entity.Workout, error)
	// Returns distinct exercise names logged since the given time
	GetExercisesSince(ctx context.Context, uid uuid.UUID, since time.Time) ([]string, error)
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
