package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Phone        string    `json:"phone,omitempty"`
	WeightKg     *float64  `json:"weight_kg,omitempty"`
	HeightCm     *float64  `json:"height_cm,omitempty"`
	AvatarURI    string    `json:"avatar_uri,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether the user can sign in with email and password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Identity links an external provider account to a user.
type Identity struct {
	Provider string
	Subject  string
	UserID   uuid.UUID
}

type Workout struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"uid"`
	Exercise    string    `json:"type"`
	MuscleGroup string    `json:"muscle_group"`
	Level       string    `json:"level"`
	Calories    int       `json:"calories"`
	PerformedAt time.Time `json:"date"`
}

type DashboardMetrics struct {
	UserID        uuid.UUID `json:"uid"`
	TotalCalories int       `json:"total_calories"`
	TotalWorkouts int       `json:"total_workouts"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

type WorkoutEntry struct {
	Type     string `json:"type"`
	Calories int    `json:"calories"`
}

// MonthView is everything the dashboard renders for one month and one selected week.
// Calendar holds a Sunday-first grid where 0 marks a leading blank cell.
type MonthView struct {
	Year              int                       `json:"year"`
	Month             int                       `json:"month"`
	SelectedDate      string                    `json:"selected_date"`
	WeekStart         time.Time                 `json:"week_start"`
	WeekEnd           time.Time                 `json:"week_end"`
	CaloriesByWeekday [7]int                    `json:"calories_by_weekday"`
	ActiveDays        []int                     `json:"active_days"`
	WorkoutDataMap    map[string][]WorkoutEntry `json:"workout_data_map"`
	Calendar          []int                     `json:"calendar"`
	Metrics           DashboardMetrics          `json:"metrics"`
	Degraded          bool                      `json:"degraded,omitempty"`
}

type FatLossEstimate struct {
	WeightChange      float64 `json:"weight_change"`
	FatLossKg         float64 `json:"fat_loss_kg"`
	FatLossPercentage float64 `json:"fat_loss_percentage"`
	Direction         string  `json:"direction"`
}

// ProviderClaims is what a verified identity provider token tells about its holder.
type ProviderClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}
