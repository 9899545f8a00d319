package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/limbo/fittrack/internal/catalog"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/pkg/httputil"
)

type LevelsResponse struct {
	Levels []catalog.Level `json:"levels"`
}

type GroupsResponse struct {
	Level  catalog.Level          `json:"level"`
	Groups []catalog.GroupSummary `json:"groups"`
}

type ExercisesResponse struct {
	Level     catalog.Level       `json:"level"`
	Group     catalog.MuscleGroup `json:"group"`
	Exercises []catalog.Exercise  `json:"exercises"`
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errorvalues.ErrUnknownLevel):
		httputil.WriteErrorResponse(w, http.StatusNotFound, "unknown skill level", nil)
	case errors.Is(err, errorvalues.ErrUnknownGroup):
		httputil.WriteErrorResponse(w, http.StatusNotFound, "unknown muscle group", nil)
	case errors.Is(err, errorvalues.ErrExerciseNotFound):
		httputil.WriteErrorResponse(w, http.StatusNotFound, "exercise not found", nil)
	default:
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "catalog error", nil)
	}
}

func (s *Server) GetLevels(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONResponse(w, http.StatusOK, LevelsResponse{Levels: catalog.Levels()})
}

func (s *Server) GetGroups(w http.ResponseWriter, r *http.Request) {
	level, err := catalog.ParseLevel(chi.URLParam(r, "level"))
	if err != nil {
		GetLoggerFromCtx(r.Context()).Error("get groups error: unknown level")
		writeCatalogError(w, err)
		return
	}
	groups, err := catalog.Groups(level)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GroupsResponse{Level: level, Groups: groups})
}

func (s *Server) GetExercises(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	level, err := catalog.ParseLevel(chi.URLParam(r, "level"))
	if err != nil {
		logger.Error("get exercises error: unknown level")
		writeCatalogError(w, err)
		return
	}
	group, err := catalog.ParseGroup(chi.URLParam(r, "group"))
	if err != nil {
		logger.Error("get exercises error: unknown group")
		writeCatalogError(w, err)
		return
	}
	exercises, err := catalog.Exercises(level, group)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, ExercisesResponse{Level: level, Group: group, Exercises: exercises})
}
