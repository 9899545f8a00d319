package service

import (
	"errors"
	"strings"
	"time"

	"github.com/limbo/fittrack/internal/repository"
	"github.com/limbo/fittrack/pkg/entity"
)

type StreakPolicy string

const (
	// Consecutive calendar days with at least one workout
	StreakCalendar StreakPolicy = "calendar"
	// Every logged workout extends the streak
	StreakSimple StreakPolicy = "simple"
)

func ParseStreakPolicy(s string) (StreakPolicy, error) {
	switch p := StreakPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return StreakCalendar, nil
	case StreakCalendar, StreakSimple:
		return p, nil
	}
	return "", errors.New("unknown streak policy: " + s)
}

// NextStreak returns the streak after a workout at now, given the time of the
// previous workout (nil when there was none). Days are compared in loc.
func NextStreak(policy StreakPolicy, current int, last *time.Time, now time.Time, loc *time.Location) int {
	if policy == StreakSimple {
		return current + 1
	}
	if last == nil {
		return 1
	}
	switch gap := daysBetween(*last, now, loc); {
	case gap <= 0:
		// Same day, or a clock skewed into the future. Lifts a stored 0 to 1
		return max(current, 1)
	case gap == 1:
		return current + 1
	default:
		return 1
	}
}

// ApplyWorkout builds the aggregate update for one more workout worth calories.
func ApplyWorkout(policy StreakPolicy, loc *time.Location, calories int, now time.Time) repository.MetricsUpdater {
	return func(current entity.DashboardMetrics, lastWorkoutAt *time.Time) entity.DashboardMetrics {
		next := current
		next.TotalCalories += calories
		next.TotalWorkouts++
		next.CurrentStreak = NextStreak(policy, current.CurrentStreak, lastWorkoutAt, now, loc)
		next.LongestStreak = max(current.LongestStreak, next.CurrentStreak)
		return next
	}
}

// daysBetween counts calendar days from a to b as seen in loc.
func daysBetween(a, b time.Time, loc *time.Location) int {
	return int(civilDay(b, loc).Sub(civilDay(a, loc)).Hours() / 24)
}

// civilDay maps t to midnight UTC of its calendar date in loc, so day arithmetic
// is free of DST shifts.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
