package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/internal/service"
	"github.com/limbo/fittrack/pkg/entity"
	"github.com/limbo/fittrack/pkg/httputil"
)

type LogWorkoutRequest struct {
	Level       string `json:"level"`
	MuscleGroup string `json:"muscle_group"`
	Exercise    string `json:"exercise"`
}

type LogWorkoutResponse struct {
	Workout *entity.Workout          `json:"workout"`
	Metrics *entity.DashboardMetrics `json:"metrics"`
}

type GetWorkoutsResponse struct {
	UserID   string           `json:"uid"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Workouts []entity.Workout `json:"workouts"`
}

type CompletedWorkoutsResponse struct {
	Level     string   `json:"level"`
	Group     string   `json:"group"`
	Completed []string `json:"completed"`
}

func (s *Server) LogWorkout(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("log workout error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req LogWorkoutRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("log workout error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	// Started writes finish even if the client goes away
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), time.Second*10)
	defer cancel()
	workout, aggregate, err := s.workoutsService.LogWorkout(ctx, uid, service.LogWorkoutRequest{
		Level:       req.Level,
		MuscleGroup: req.MuscleGroup,
		Exercise:    req.Exercise,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrUnknownLevel),
			errors.Is(err, errorvalues.ErrUnknownGroup),
			errors.Is(err, errorvalues.ErrExerciseNotFound):
			logger.Error("log workout error: not in catalog", slog.String("error", err.Error()))
			writeCatalogError(w, err)
		case errors.Is(err, errorvalues.ErrNotAuthenticated):
			httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		case errors.Is(err, errorvalues.ErrUnknownUser):
			logger.Error("log workout error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user not found", nil)
		default:
			logger.Error("log workout error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "failed to record workout, please try again", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, LogWorkoutResponse{
		Workout: workout,
		Metrics: aggregate,
	})
	logger.Info("workout logged", slog.String("exercise", workout.Exercise), slog.Int("calories", workout.Calories))
}

func (s *Server) GetWorkouts(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get workouts error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 10
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*15)
	defer cancel()
	workouts, err := s.workoutsService.ListWorkouts(ctx, uid, service.PaginationOpts{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Error("getting workouts list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting workouts list", nil)
		return
	}
	if workouts == nil {
		workouts = []entity.Workout{}
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetWorkoutsResponse{
		UserID:   uid.String(),
		Page:     page,
		Limit:    limit,
		Workouts: workouts,
	})
}

func (s *Server) GetCompletedWorkouts(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("completed workouts error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	level, group := r.URL.Query().Get("level"), r.URL.Query().Get("group")
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	completed, err := s.workoutsService.CompletedWorkouts(ctx, uid, level, group)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrUnknownLevel), errors.Is(err, errorvalues.ErrUnknownGroup):
			logger.Error("completed workouts error: not in catalog", slog.String("error", err.Error()))
			writeCatalogError(w, err)
		default:
			logger.Error("completed workouts error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting completed workouts", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, CompletedWorkoutsResponse{
		Level:     level,
		Group:     group,
		Completed: completed,
	})
}
