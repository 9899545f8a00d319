package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/fittrack/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type SignUpRequest struct {
	Email       string `validate:"required,email,max=254"`
	Password    string `validate:"required,min=6,max=72"`
	DisplayName string `validate:"max=100"`
}

type ProfileUpdateRequest struct {
	DisplayName string   `validate:"required,min=1,max=100"`
	Phone       string   `validate:"omitempty,phone"`
	WeightKg    *float64 `validate:"omitempty,gt=0,lt=500"`
	HeightCm    *float64 `validate:"omitempty,gt=0,lt=300"`
	AvatarURI   string   `validate:"omitempty,uri,max=2048"`
}

type LogWorkoutRequest struct {
	Level       string
	MuscleGroup string
	Exercise    string
}

type PaginationOpts struct {
	Limit  int
	Offset int
}

type UserServiceI interface {
	// Validates credentials, creates user with password login. Returns stored user
	SignUp(ctx context.Context, req *SignUpRequest) (*entity.User, error)
	// Compares given credentials. If ok, gives back user's data
	SignIn(ctx context.Context, email, password string) (*entity.User, error)
	// Verifies provider's ID token, then finds, links or creates the user
	SocialSignIn(ctx context.Context, provider, idToken string) (*entity.User, error)
	GetByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, uid uuid.UUID, req *ProfileUpdateRequest) (*entity.User, error)
}

type ProviderVerifier interface {
	// Checks token signature, issuer, audience and expiry for the named provider
	Verify(ctx context.Context, provider, idToken string) (*entity.ProviderClaims, error)
}

type WorkoutsServiceI interface {
	// Resolves exercise from catalog and appends it to user's log, updating aggregate
	LogWorkout(ctx context.Context, uid uuid.UUID, req LogWorkoutRequest) (*entity.Workout, *entity.DashboardMetrics, error)
	// Names of the group's exercises logged during the last 24 hours
	CompletedWorkouts(ctx context.Context, uid uuid.UUID, level, group string) ([]string, error)
	ListWorkouts(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]entity.Workout, error)
}

type DashboardServiceI interface {
	LoadMonth(ctx context.Context, uid uuid.UUID, year int, month time.Month, selected time.Time) (*entity.MonthView, error)
	// Signals on every change of user's workouts. Cancel must be called when done
	Subscribe(uid uuid.UUID) (<-chan struct{}, func())
	Location() *time.Location
}

type Publisher interface {
	Publish(uid uuid.UUID)
}

type Subscriber interface {
	Subscribe(uid uuid.UUID) (<-chan struct{}, func())
}
