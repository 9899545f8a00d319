// Package catalog holds the static workout content offered per skill level and muscle group.
package catalog

import (
	"strings"

	errorvalues "github.com/limbo/fittrack/internal/error_values"
)

type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Expert       Level = "expert"
)

type MuscleGroup string

const (
	Chest    MuscleGroup = "chest"
	Biceps   MuscleGroup = "biceps"
	Triceps  MuscleGroup = "triceps"
	Shoulder MuscleGroup = "shoulder"
	Lat      MuscleGroup = "lat"
	Leg      MuscleGroup = "leg"
	Abs      MuscleGroup = "abs"
)

type Exercise struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

type GroupSummary struct {
	Group     MuscleGroup `json:"group"`
	Title     string      `json:"title"`
	Exercises int         `json:"exercises"`
}

var (
	levels = []Level{Beginner, Intermediate, Expert}
	groups = []MuscleGroup{Chest, Biceps, Triceps, Shoulder, Lat, Leg, Abs}

	titles = map[MuscleGroup]string{
		Chest:    "Chest",
		Biceps:   "Biceps",
		Triceps:  "Triceps",
		Shoulder: "Shoulder",
		Lat:      "Lat",
		Leg:      "Leg",
		Abs:      "Abs",
	}

	content = map[Level]map[MuscleGroup][]Exercise{
		Beginner: {
			Chest: {
				{"Push-Ups", 50},
				{"Bench Press", 80},
				{"Dumbbell Flyes", 60},
				{"Incline Push-Ups", 40},
				{"Chest Dips", 70},
			},
			Biceps: {
				{"Dumbbell Curls", 45},
				{"Hammer Curls", 50},
				{"Resistance Band Curls", 35},
				{"Concentration Curls", 40},
			},
			Triceps: {
				{"Tricep Dips", 100},
				{"Close-Grip Bench Press", 120},
				{"Overhead Tricep Extension", 90},
				{"Tricep Pushdowns", 95},
				{"Diamond Push-Ups", 100},
			},
			Shoulder: {
				{"Dumbbell Shoulder Press", 70},
				{"Lateral Raises", 45},
				{"Front Raises", 45},
				{"Arm Circles", 30},
			},
			Lat: {
				{"Lat Pulldown", 80},
				{"Seated Cable Row", 75},
				{"Resistance Band Pull-Aparts", 35},
				{"Superman Hold", 40},
			},
			Leg: {
				{"Bodyweight Squats", 70},
				{"Lunges", 75},
				{"Glute Bridges", 50},
				{"Calf Raises", 35},
				{"Wall Sit", 45},
			},
			Abs: {
				{"Crunches", 40},
				{"Plank", 35},
				{"Leg Raises", 45},
				{"Bicycle Crunches", 50},
				{"Mountain Climbers", 80},
			},
		},
		Intermediate: {
			Chest: {
				{"Barbell Bench Press", 110},
				{"Incline Dumbbell Press", 100},
				{"Cable Crossovers", 80},
				{"Weighted Dips", 110},
			},
			Biceps: {
				{"Barbell Curls", 70},
				{"Preacher Curls", 65},
				{"Incline Dumbbell Curls", 65},
				{"Chin-Ups", 100},
			},
			Triceps: {
				{"Skull Crushers", 95},
				{"Weighted Bench Dips", 110},
				{"Cable Overhead Extension", 90},
				{"Close-Grip Push-Ups", 85},
			},
			Shoulder: {
				{"Barbell Overhead Press", 110},
				{"Arnold Press", 95},
				{"Face Pulls", 60},
				{"Upright Rows", 75},
			},
			Lat: {
				{"Pull-Ups", 120},
				{"Bent-Over Barbell Row", 110},
				{"Single-Arm Dumbbell Row", 85},
				{"Straight-Arm Pulldown", 65},
			},
			Leg: {
				{"Barbell Back Squat", 150},
				{"Romanian Deadlift", 130},
				{"Bulgarian Split Squat", 120},
				{"Leg Press", 110},
			},
			Abs: {
				{"Hanging Knee Raises", 70},
				{"Russian Twists", 60},
				{"Ab Wheel Rollouts", 80},
				{"Side Plank", 45},
			},
		},
		Expert: {
			Chest: {
				{"Heavy Bench Press", 160},
				{"Plyometric Push-Ups", 130},
				{"Ring Dips", 140},
				{"Decline Barbell Press", 150},
			},
			Biceps: {
				{"Weighted Chin-Ups", 150},
				{"Spider Curls", 80},
				{"Cheat Curls", 90},
			},
			Triceps: {
				{"Ring Tricep Extensions", 120},
				{"JM Press", 130},
				{"Weighted Diamond Push-Ups", 125},
			},
			Shoulder: {
				{"Push Press", 160},
				{"Handstand Push-Ups", 150},
				{"Z Press", 130},
			},
			Lat: {
				{"Weighted Pull-Ups", 170},
				{"Pendlay Row", 140},
				{"Muscle-Ups", 180},
			},
			Leg: {
				{"Front Squat", 170},
				{"Conventional Deadlift", 190},
				{"Pistol Squats", 140},
				{"Box Jumps", 150},
			},
			Abs: {
				{"Dragon Flag", 110},
				{"Toes-to-Bar", 100},
				{"L-Sit Hold", 80},
			},
		},
	}
)

func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := content[l]; !ok {
		return "", errorvalues.ErrUnknownLevel
	}
	return l, nil
}

func ParseGroup(s string) (MuscleGroup, error) {
	g := MuscleGroup(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := titles[g]; !ok {
		return "", errorvalues.ErrUnknownGroup
	}
	return g, nil
}

// Groups lists the muscle groups available at the level in display order.
func Groups(level Level) ([]GroupSummary, error) {
	byGroup, ok := content[level]
	if !ok {
		return nil, errorvalues.ErrUnknownLevel
	}
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		exercises, ok := byGroup[g]
		if !ok {
			continue
		}
		out = append(out, GroupSummary{Group: g, Title: titles[g], Exercises: len(exercises)})
	}
	return out, nil
}

func Exercises(level Level, group MuscleGroup) ([]Exercise, error) {
	byGroup, ok := content[level]
	if !ok {
		return nil, errorvalues.ErrUnknownLevel
	}
	exercises, ok := byGroup[group]
	if !ok {
		return nil, errorvalues.ErrUnknownGroup
	}
	out := make([]Exercise, len(exercises))
	copy(out, exercises)
	return out, nil
}

// Find looks up an exercise by name, ignoring case and surrounding spaces.
func Find(level Level, group MuscleGroup, name string) (Exercise, error) {
	exercises, err := Exercises(level, group)
	if err != nil {
		return Exercise{}, err
	}
	name = strings.TrimSpace(name)
	for _, e := range exercises {
		if strings.EqualFold(e.Name, name) {
			return e, nil
		}
	}
	return Exercise{}, errorvalues.ErrExerciseNotFound
}
