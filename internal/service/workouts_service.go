package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/fittrack/internal/catalog"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/internal/repository"
	"github.com/limbo/fittrack/pkg/entity"
	"github.com/limbo/fittrack/pkg/metrics"
)

const completedWindow = 24 * time.Hour

type WorkoutsOptions struct {
	Policy   StreakPolicy
	Location *time.Location
	// Local fan-out for freshly logged workouts, may be nil
	Publisher Publisher
	Metrics   *metrics.Manager
	Now       func() time.Time
}

type WorkoutsService struct {
	repo      repository.WorkoutsRepositoryI
	policy    StreakPolicy
	loc       *time.Location
	publisher Publisher
	metrics   *metrics.Manager
	now       func() time.Time
}

func NewWorkoutsService(workoutsRepo repository.WorkoutsRepositoryI, opts WorkoutsOptions) *WorkoutsService {
	if workoutsRepo == nil {
		log.Fatal("provided nil workoutsRepo")
	}
	ws := &WorkoutsService{
		repo:      workoutsRepo,
		policy:    opts.Policy,
		loc:       opts.Location,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		now:       opts.Now,
	}
	if ws.policy == "" {
		ws.policy = StreakCalendar
	}
	if ws.loc == nil {
		ws.loc = time.Local
	}
	if ws.now == nil {
		ws.now = time.Now
	}
	return ws
}

func (ws *WorkoutsService) LogWorkout(ctx context.Context, uid uuid.UUID, req LogWorkoutRequest) (*entity.Workout, *entity.DashboardMetrics, error) {
	if uid == uuid.Nil {
		return nil, nil, errorvalues.ErrNotAuthenticated
	}
	level, err := catalog.ParseLevel(req.Level)
	if err != nil {
		return nil, nil, err
	}
	group, err := catalog.ParseGroup(req.MuscleGroup)
	if err != nil {
		return nil, nil, err
	}
	exercise, err := catalog.Find(level, group, req.Exercise)
	if err != nil {
		return nil, nil, err
	}
	now := ws.now()
	workout := entity.Workout{
		UserID:      uid,
		Exercise:    exercise.Name,
		MuscleGroup: string(group),
		Level:       string(level),
		Calories:    exercise.Calories,
		PerformedAt: now,
	}
	aggregate, err := ws.repo.RecordWorkout(ctx, &workout, ApplyWorkout(ws.policy, ws.loc, exercise.Calories, now))
	if err != nil {
		if errors.Is(err, errorvalues.ErrUnknownUser) {
			return nil, nil, err
		}
		return nil, nil, errors.New("workouts repository error: " + err.Error())
	}
	if ws.metrics != nil {
		ws.metrics.CounterWorkoutsLogged.WithLabelValues(workout.Level, workout.MuscleGroup).Inc()
		ws.metrics.CounterCaloriesLogged.Add(float64(workout.Calories))
	}
	if ws.publisher != nil {
		ws.publisher.Publish(uid)
	}
	return &workout, aggregate, nil
}

func (ws *WorkoutsService) CompletedWorkouts(ctx context.Context, uid uuid.UUID, level, group string) ([]string, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrNotAuthenticated
	}
	l, err := catalog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	g, err := catalog.ParseGroup(group)
	if err != nil {
		return nil, err
	}
	exercises, err := catalog.Exercises(l, g)
	if err != nil {
		return nil, err
	}
	names, err := ws.repo.GetExercisesSince(ctx, uid, ws.now().Add(-completedWindow))
	if err != nil {
		return nil, errors.New("workouts repository error: " + err.Error())
	}
	done := make(map[string]struct{}, len(names))
	for _, n := range names {
		done[strings.ToLower(n)] = struct{}{}
	}
	// Catalog order
	completed := make([]string, 0, len(exercises))
	for _, e := range exercises {
		if _, ok := done[strings.ToLower(e.Name)]; ok {
			completed = append(completed, e.Name)
		}
	}
	return completed, nil
}

func (ws *WorkoutsService) ListWorkouts(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]entity.Workout, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrNotAuthenticated
	}
	workouts, err := ws.repo.GetByUserID(ctx, uid, pagination.Limit, pagination.Offset)
	if err != nil {
		return nil, errors.New("workouts repository error: " + err.Error())
	}
	return workouts, nil
}
