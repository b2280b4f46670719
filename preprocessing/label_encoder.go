package preprocessing

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/sleep"
)

// EncoderMap is the companion artifact of the neural predictor: one
// category-to-index table per categorical column, plus the class index table.
type EncoderMap struct {
	GenderMap   map[string]int `json:"gender_map"`
	ActivityMap map[string]int `json:"activity_map"`
	DietMap     map[string]int `json:"diet_map"`
	SleepMap    map[string]int `json:"sleep_map"`
}

// ReadEncoderMap decodes and validates an encoder map.
func ReadEncoderMap(r io.Reader) (*EncoderMap, error) {
	var m EncoderMap
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decode encoder map")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// WriteEncoderMap encodes m as indented JSON.
func WriteEncoderMap(w io.Writer, m *EncoderMap) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Validate checks that every table is present and that SleepMap is a
// bijection from known labels onto 0..k-1.
func (m *EncoderMap) Validate() error {
	if len(m.GenderMap) == 0 || len(m.ActivityMap) == 0 || len(m.DietMap) == 0 {
		return errors.NewValueError("EncoderMap.Validate", "gender_map, activity_map and diet_map must be non-empty")
	}
	if len(m.SleepMap) == 0 {
		return errors.NewValueError("EncoderMap.Validate", "sleep_map must be non-empty")
	}
	seen := make(map[int]string, len(m.SleepMap))
	for name, idx := range m.SleepMap {
		if _, err := sleep.ParseLabel(name); err != nil {
			return errors.NewValueError("EncoderMap.Validate", fmt.Sprintf("sleep_map: unknown label %q", name))
		}
		if idx < 0 || idx >= len(m.SleepMap) {
			return errors.NewValueError("EncoderMap.Validate", fmt.Sprintf("sleep_map: index %d out of range for %q", idx, name))
		}
		if prev, dup := seen[idx]; dup {
			return errors.NewValueError("EncoderMap.Validate", fmt.Sprintf("sleep_map: %q and %q share index %d", prev, name, idx))
		}
		seen[idx] = name
	}
	return nil
}

// Classes returns the labels ordered by class index.
func (m *EncoderMap) Classes() []sleep.Label {
	out := make([]sleep.Label, len(m.SleepMap))
	for name, idx := range m.SleepMap {
		l, _ := sleep.ParseLabel(name)
		if idx >= 0 && idx < len(out) {
			out[idx] = l
		}
	}
	return out
}

// LabelEncoder implements ordinal encoding driven by an EncoderMap:
// [age, gender, steps, calories, activity, diet]. Unseen categories encode as 0.
type LabelEncoder struct {
	m *EncoderMap
}

// NewLabelEncoder wraps a validated encoder map.
func NewLabelEncoder(m *EncoderMap) *LabelEncoder {
	return &LabelEncoder{m: m}
}

// Encode implements FeatureEncoder.
func (e *LabelEncoder) Encode(in sleep.FeatureInput) []float64 {
	return []float64{
		float64(in.Age),
		float64(e.m.GenderMap[string(in.Gender)]),
		float64(in.DailySteps),
		float64(in.CaloriesBurned),
		float64(e.m.ActivityMap[string(in.ActivityLevel)]),
		float64(e.m.DietMap[string(in.DietaryHabits)]),
	}
}

// FeatureNames implements FeatureEncoder.
func (e *LabelEncoder) FeatureNames() []string {
	return []string{
		ColumnAge,
		ColumnGender + "_encoded",
		ColumnSteps,
		ColumnCalories,
		ColumnActivity + "_encoded",
		ColumnDiet + "_encoded",
	}
}

// Map returns the underlying encoder map.
func (e *LabelEncoder) Map() *EncoderMap {
	return e.m
}

// FitLabelMap assigns indices in first-seen order.
func FitLabelMap(values []string) map[string]int {
	out := make(map[string]int)
	for _, v := range values {
		if _, ok := out[v]; !ok {
			out[v] = len(out)
		}
	}
	return out
}

// SortedKeys returns the keys of m ordered by their index.
func SortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return m[keys[i]] < m[keys[j]] })
	return keys
}
