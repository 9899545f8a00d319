package service

import (
	"context"
	"log"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/internal/repository"
	"github.com/limbo/fittrack/pkg/entity"
)

const DateLayout = "2006-01-02"

type DashboardService struct {
	repo       repository.WorkoutsRepositoryI
	loc        *time.Location
	subscriber Subscriber
}

func NewDashboardService(workoutsRepo repository.WorkoutsRepositoryI, loc *time.Location, subscriber Subscriber) *DashboardService {
	if workoutsRepo == nil {
		log.Fatal("provided nil workoutsRepo")
	}
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{
		repo:       workoutsRepo,
		loc:        loc,
		subscriber: subscriber,
	}
}

func (ds *DashboardService) Location() *time.Location {
	return ds.loc
}

// LoadMonth never fails on storage errors: it serves what it could read with Degraded set.
func (ds *DashboardService) LoadMonth(ctx context.Context, uid uuid.UUID, year int, month time.Month, selected time.Time) (*entity.MonthView, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrNotAuthenticated
	}
	if month < time.January || month > time.December {
		return nil, errorvalues.ErrInvalidDate
	}
	degraded := false
	weekStart, weekEnd := WeekRange(selected, ds.loc)
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, ds.loc)
	from := minTime(monthStart, weekStart)
	to := maxTime(monthStart.AddDate(0, 1, 0), weekEnd.Add(time.Millisecond))

	workouts, err := ds.repo.GetByUserAndRange(ctx, uid, from, to)
	if err != nil {
		slog.Warn("dashboard workouts read failed", slog.String("uid", uid.String()), slog.String("error", err.Error()))
		workouts, degraded = nil, true
	}
	aggregate := entity.DashboardMetrics{UserID: uid}
	stored, err := ds.repo.GetMetrics(ctx, uid)
	if err != nil {
		slog.Warn("dashboard metrics read failed", slog.String("uid", uid.String()), slog.String("error", err.Error()))
		degraded = true
	} else {
		aggregate = *stored
	}

	view := BuildMonthView(year, month, selected, ds.loc, workouts, aggregate)
	view.Degraded = degraded
	return &view, nil
}

func (ds *DashboardService) Subscribe(uid uuid.UUID) (<-chan struct{}, func()) {
	if ds.subscriber == nil {
		ch := make(chan struct{})
		return ch, func() {}
	}
	return ds.subscriber.Subscribe(uid)
}

// BuildMonthView groups workouts into the month's per-day map and the selected
// week's per-weekday calorie totals. Records outside both windows are ignored.
func BuildMonthView(year int, month time.Month, selected time.Time, loc *time.Location, workouts []entity.Workout, aggregate entity.DashboardMetrics) entity.MonthView {
	weekStart, weekEnd := WeekRange(selected, loc)
	view := entity.MonthView{
		Year:           year,
		Month:          int(month),
		SelectedDate:   selected.In(loc).Format(DateLayout),
		WeekStart:      weekStart,
		WeekEnd:        weekEnd,
		ActiveDays:     make([]int, 0),
		WorkoutDataMap: make(map[string][]entity.WorkoutEntry),
		Calendar:       CalendarCells(year, month),
		Metrics:        aggregate,
	}
	for _, w := range workouts {
		t := w.PerformedAt.In(loc)
		if t.Year() == year && t.Month() == month {
			key := t.Format(DateLayout)
			view.WorkoutDataMap[key] = append(view.WorkoutDataMap[key], entity.WorkoutEntry{
				Type:     w.Exercise,
				Calories: w.Calories,
			})
			if !slices.Contains(view.ActiveDays, t.Day()) {
				view.ActiveDays = append(view.ActiveDays, t.Day())
			}
		}
		if !t.Before(weekStart) && !t.After(weekEnd) {
			view.CaloriesByWeekday[WeekdayIndex(weekStart, t, loc)] += w.Calories
		}
	}
	slices.Sort(view.ActiveDays)
	return view
}

// WeekRange returns Sunday 00:00 and Saturday 23:59:59.999 of the week holding t.
func WeekRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	y, m, d := local.Date()
	start := time.Date(y, m, d-int(local.Weekday()), 0, 0, 0, 0, loc)
	end := time.Date(y, m, d-int(local.Weekday())+7, 0, 0, 0, 0, loc).Add(-time.Millisecond)
	return start, end
}

// WeekdayIndex is the calendar-day offset of t from weekStart, clamped to 0..6.
func WeekdayIndex(weekStart, t time.Time, loc *time.Location) int {
	return min(max(daysBetween(weekStart, t, loc), 0), 6)
}

// CalendarCells lays out a Sunday-first month grid: zeros for the blank cells
// before the 1st, then day numbers.
func CalendarCells(year int, month time.Month) []int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	blanks := int(first.Weekday())
	cells := make([]int, blanks, blanks+days)
	for day := 1; day <= days; day++ {
		cells = append(cells, day)
	}
	return cells
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
