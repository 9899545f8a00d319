package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/internal/service"
	"github.com/limbo/fittrack/pkg/entity"
	"github.com/limbo/fittrack/pkg/httputil"
)

const (
	DashboardEvent    = "dashboard"
	streamKeepAlive   = 25 * time.Second
	dashboardLoadTime = 10 * time.Second
)

// selectedDate reads the date query param in the dashboard location, today when absent.
func (s *Server) selectedDate(r *http.Request) (time.Time, error) {
	loc := s.dashboardService.Location()
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.ParseInLocation(service.DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, errorvalues.ErrInvalidDate
	}
	return t, nil
}

func (s *Server) loadMonth(ctx context.Context, uid uuid.UUID, selected time.Time) (*entity.MonthView, error) {
	ctx, cancel := context.WithTimeout(ctx, dashboardLoadTime)
	defer cancel()
	return s.dashboardService.LoadMonth(ctx, uid, selected.Year(), selected.Month(), selected)
}

func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("dashboard error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	selected, err := s.selectedDate(r)
	if err != nil {
		logger.Error("dashboard error: invalid date", slog.String("date", r.URL.Query().Get("date")))
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD", nil)
		return
	}
	view, err := s.loadMonth(r.Context(), uid, selected)
	if err != nil {
		if errors.Is(err, errorvalues.ErrInvalidDate) {
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid date", nil)
			return
		}
		logger.Error("dashboard error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while loading dashboard", nil)
		return
	}
	if view.Degraded {
		logger.Warn("dashboard served degraded")
	}
	httputil.WriteJSONResponse(w, http.StatusOK, view)
}

// StreamDashboard keeps a Server-Sent Events stream open and pushes a recomputed
// month view every time the user's workouts change.
func (s *Server) StreamDashboard(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("dashboard stream error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	selected, err := s.selectedDate(r)
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD", nil)
		return
	}
	if _, ok := w.(http.Flusher); !ok {
		logger.Error("dashboard stream error: streaming unsupported")
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}
	changes, unsubscribe := s.dashboardService.Subscribe(uid)
	defer unsubscribe()
	if s.metrics != nil {
		s.metrics.GaugeDashboardStreams.Inc()
		defer s.metrics.GaugeDashboardStreams.Dec()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	push := func() bool {
		view, err := s.loadMonth(ctx, uid, selected)
		if err != nil {
			logger.Error("dashboard stream error: loading month", slog.String("error", err.Error()))
			return ctx.Err() == nil
		}
		if err = httputil.WriteSSEEvent(w, DashboardEvent, view); err != nil {
			logger.Info("dashboard stream closed by client", slog.String("error", err.Error()))
			return false
		}
		return true
	}
	if !push() {
		return
	}
	logger.Info("dashboard stream opened")

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("dashboard stream finished")
			return
		case <-s.shutdown:
			logger.Info("dashboard stream closed on shutdown")
			return
		case _, ok := <-changes:
			if !ok || !push() {
				return
			}
		case <-keepAlive.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			w.(http.Flusher).Flush()
		}
	}
}
