// Package sleep defines the domain vocabulary shared by every predictor:
// the raw feature tuple, its categorical enums, and the quality labels.
package sleep

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
)

// Age bounds accepted by the input form.
const (
	MinAge = 10
	MaxAge = 100
)

// Gender is the self-reported gender category.
type Gender string

// Genders.
const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// ActivityLevel is the physical activity category.
type ActivityLevel string

// Activity levels.
const (
	ActivityLow      ActivityLevel = "Low"
	ActivityModerate ActivityLevel = "Moderate"
	ActivityHigh     ActivityLevel = "High"
)

// DietQuality is the dietary habits category.
type DietQuality string

// Diet qualities.
const (
	DietPoor    DietQuality = "Poor"
	DietAverage DietQuality = "Average"
	DietHealthy DietQuality = "Healthy"
)

// Genders lists the gender categories in form order.
var Genders = []Gender{Male, Female}

// ActivityLevels lists the activity categories in form order.
var ActivityLevels = []ActivityLevel{ActivityLow, ActivityModerate, ActivityHigh}

// DietQualities lists the diet categories in form order.
var DietQualities = []DietQuality{DietPoor, DietAverage, DietHealthy}

// FeatureInput is one prediction request. It is a value type and is never mutated.
type FeatureInput struct {
	Age            int           `json:"age" yaml:"age"`
	Gender         Gender        `json:"gender" yaml:"gender"`
	DailySteps     int           `json:"daily_steps" yaml:"daily_steps"`
	CaloriesBurned int           `json:"calories_burned" yaml:"calories_burned"`
	ActivityLevel  ActivityLevel `json:"activity_level" yaml:"activity_level"`
	DietaryHabits  DietQuality   `json:"dietary_habits" yaml:"dietary_habits"`
}

// Validate reports the first field that falls outside the accepted ranges or
// category sets as an InvalidInput error.
func (in FeatureInput) Validate() error {
	if in.Age < MinAge || in.Age > MaxAge {
		return errors.NewInvalidInputError("age", fmt.Sprintf("must be between %d and %d", MinAge, MaxAge), in.Age)
	}
	if !in.Gender.Valid() {
		return errors.NewInvalidInputError("gender", "must be Male or Female", string(in.Gender))
	}
	if in.DailySteps < 0 {
		return errors.NewInvalidInputError("daily_steps", "must be non-negative", in.DailySteps)
	}
	if in.CaloriesBurned < 0 {
		return errors.NewInvalidInputError("calories_burned", "must be non-negative", in.CaloriesBurned)
	}
	if !in.ActivityLevel.Valid() {
		return errors.NewInvalidInputError("activity_level", "must be Low, Moderate or High", string(in.ActivityLevel))
	}
	if !in.DietaryHabits.Valid() {
		return errors.NewInvalidInputError("dietary_habits", "must be Poor, Average or Healthy", string(in.DietaryHabits))
	}
	return nil
}

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	return g == Male || g == Female
}

// Valid reports whether a is a known activity level.
func (a ActivityLevel) Valid() bool {
	return a == ActivityLow || a == ActivityModerate || a == ActivityHigh
}

// Valid reports whether d is a known diet quality.
func (d DietQuality) Valid() bool {
	return d == DietPoor || d == DietAverage || d == DietHealthy
}

// ParseGender parses a gender case-insensitively.
func ParseGender(s string) (Gender, error) {
	for _, g := range Genders {
		if strings.EqualFold(strings.TrimSpace(s), string(g)) {
			return g, nil
		}
	}
	return "", errors.NewInvalidInputError("gender", "must be Male or Female", s)
}

// ParseActivityLevel parses an activity level case-insensitively.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	for _, a := range ActivityLevels {
		if strings.EqualFold(strings.TrimSpace(s), string(a)) {
			return a, nil
		}
	}
	return "", errors.NewInvalidInputError("activity_level", "must be Low, Moderate or High", s)
}

// ParseDietQuality parses a diet quality case-insensitively.
func ParseDietQuality(s string) (DietQuality, error) {
	for _, d := range DietQualities {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, nil
		}
	}
	return "", errors.NewInvalidInputError("dietary_habits", "must be Poor, Average or Healthy", s)
}
