// Package preprocessing holds the feature normalizers: the encoders that turn
// a sleep.FeatureInput into the exact vector layout a predictor was trained
// with, and the scaler applied on top of that layout.
package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/sleep"
)

// Column names, matching the headers of the historical dataset.
const (
	ColumnAge      = "Age"
	ColumnGender   = "Gender"
	ColumnSteps    = "Daily Steps"
	ColumnCalories = "Calories Burned"
	ColumnActivity = "Physical Activity Level"
	ColumnDiet     = "Dietary Habits"
	ColumnQuality  = "Sleep Quality"
)

// FeatureEncoder maps a feature tuple to a predictor's input layout.
// Implementations are pure and total for any FeatureInput.
type FeatureEncoder interface {
	// Encode returns a freshly allocated vector of len(FeatureNames()).
	Encode(in sleep.FeatureInput) []float64

	// FeatureNames returns the column name of every vector position.
	FeatureNames() []string
}

// Categories fixes the one-hot layout of each categorical field. The first
// entry of every list is the baseline category, which encodes as all zeros.
type Categories struct {
	Gender   []string `json:"gender"`
	Activity []string `json:"activity"`
	Diet     []string `json:"diet"`
}

// DefaultCategories is the drop-first layout used by the bundled training job:
// Female, Low and Poor are the baselines.
func DefaultCategories() Categories {
	return Categories{
		Gender:   []string{string(sleep.Female), string(sleep.Male)},
		Activity: []string{string(sleep.ActivityLow), string(sleep.ActivityModerate), string(sleep.ActivityHigh)},
		Diet:     []string{string(sleep.DietPoor), string(sleep.DietAverage), string(sleep.DietHealthy)},
	}
}

// OneHotEncoder implements drop-first one-hot encoding: a field with k
// categories contributes k-1 indicators.
type OneHotEncoder struct {
	categories Categories
	names      []string
}

// NewOneHotEncoder validates the category lists and builds the column layout.
// Every known category must appear exactly once per field.
func NewOneHotEncoder(c Categories) (*OneHotEncoder, error) {
	if err := checkCategories(ColumnGender, c.Gender, genderNames()); err != nil {
		return nil, err
	}
	if err := checkCategories(ColumnActivity, c.Activity, activityNames()); err != nil {
		return nil, err
	}
	if err := checkCategories(ColumnDiet, c.Diet, dietNames()); err != nil {
		return nil, err
	}

	names := []string{ColumnAge}
	names = appendIndicatorNames(names, ColumnGender, c.Gender)
	names = append(names, ColumnSteps, ColumnCalories)
	names = appendIndicatorNames(names, ColumnActivity, c.Activity)
	names = appendIndicatorNames(names, ColumnDiet, c.Diet)

	return &OneHotEncoder{categories: c, names: names}, nil
}

// Encode implements FeatureEncoder.
func (e *OneHotEncoder) Encode(in sleep.FeatureInput) []float64 {
	x := make([]float64, 0, len(e.names))
	x = append(x, float64(in.Age))
	x = appendIndicators(x, string(in.Gender), e.categories.Gender)
	x = append(x, float64(in.DailySteps), float64(in.CaloriesBurned))
	x = appendIndicators(x, string(in.ActivityLevel), e.categories.Activity)
	x = appendIndicators(x, string(in.DietaryHabits), e.categories.Diet)
	return x
}

// FeatureNames implements FeatureEncoder.
func (e *OneHotEncoder) FeatureNames() []string {
	return append([]string(nil), e.names...)
}

// Categories returns the layout the encoder was built with.
func (e *OneHotEncoder) Categories() Categories {
	return e.categories
}

func appendIndicatorNames(names []string, column string, cats []string) []string {
	for _, c := range cats[1:] {
		names = append(names, column+"_"+c)
	}
	return names
}

func appendIndicators(x []float64, value string, cats []string) []float64 {
	for _, c := range cats[1:] {
		if c == value {
			x = append(x, 1)
		} else {
			x = append(x, 0)
		}
	}
	return x
}

func checkCategories(column string, got, known []string) error {
	if len(got) != len(known) {
		return errors.NewValueError("OneHotEncoder", fmt.Sprintf("%s: expected %d categories, got %d", column, len(known), len(got)))
	}
	seen := make(map[string]bool, len(got))
	for _, c := range got {
		if seen[c] {
			return errors.NewValueError("OneHotEncoder", fmt.Sprintf("%s: duplicate category %q", column, c))
		}
		seen[c] = true
	}
	for _, k := range known {
		if !seen[k] {
			return errors.NewValueError("OneHotEncoder", fmt.Sprintf("%s: missing category %q", column, k))
		}
	}
	return nil
}

func genderNames() []string {
	out := make([]string, len(sleep.Genders))
	for i, g := range sleep.Genders {
		out[i] = string(g)
	}
	return out
}

func activityNames() []string {
	out := make([]string, len(sleep.ActivityLevels))
	for i, a := range sleep.ActivityLevels {
		out[i] = string(a)
	}
	return out
}

func dietNames() []string {
	out := make([]string, len(sleep.DietQualities))
	for i, d := range sleep.DietQualities {
		out[i] = string(d)
	}
	return out
}
