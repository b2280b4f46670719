// Package heuristic holds the artifact-free scoring rules: the four-tier
// weighted score against an average profile, the coarse threshold rule, and
// the mock score. None of them can fail once constructed.
package heuristic

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
	"github.com/YuminosukeSato/sleepq/sleep"
)

// ProfileArtifact is the artifact name used in errors and logs.
const ProfileArtifact = "averages"

// CSV columns of the average profile.
const (
	columnQuality  = "Sleep Quality"
	columnAge      = "Age"
	columnSteps    = "Daily Steps"
	columnCalories = "Calories Burned"
)

// Reference is the representative input of one label.
type Reference struct {
	Age            float64 `json:"age" yaml:"age"`
	DailySteps     float64 `json:"daily_steps" yaml:"daily_steps"`
	CaloriesBurned float64 `json:"calories_burned" yaml:"calories_burned"`
}

// AverageProfile maps labels to their reference inputs.
type AverageProfile map[sleep.Label]Reference

// DefaultProfile returns the built-in table used when no persisted profile exists.
func DefaultProfile() AverageProfile {
	return AverageProfile{
		sleep.Excellent: {Age: 37.6, DailySteps: 9900, CaloriesBurned: 2980},
		sleep.Fair:      {Age: 27.86, DailySteps: 4928.57, CaloriesBurned: 1800},
		sleep.Good:      {Age: 36.125, DailySteps: 8062.5, CaloriesBurned: 2612.5},
	}
}

// Validate requires an Excellent row with positive, finite steps and calories.
func (p AverageProfile) Validate() error {
	ex, ok := p[sleep.Excellent]
	if !ok {
		return errors.NewValueError("AverageProfile.Validate", "missing Excellent row")
	}
	for name, v := range map[string]float64{columnSteps: ex.DailySteps, columnCalories: ex.CaloriesBurned} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewValueError("AverageProfile.Validate", fmt.Sprintf("Excellent %s must be positive, got %v", name, v))
		}
	}
	return nil
}

// Labels returns the labels present in p in alphabetical order, matching the
// row order of a grouped table.
func (p AverageProfile) Labels() []sleep.Label {
	out := make([]sleep.Label, 0, len(p))
	for l := range p {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ReadProfile parses the CSV form. Columns are located by header name and
// unknown columns or labels are ignored.
func ReadProfile(r io.Reader) (AverageProfile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read average profile")
	}
	if len(rows) < 2 {
		return nil, errors.NewValueError("heuristic.ReadProfile", "no data rows")
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{columnQuality, columnAge, columnSteps, columnCalories} {
		if _, ok := idx[col]; !ok {
			return nil, errors.NewValueError("heuristic.ReadProfile", fmt.Sprintf("missing column %q", col))
		}
	}

	p := make(AverageProfile)
	for n, row := range rows[1:] {
		label, err := sleep.ParseLabel(row[idx[columnQuality]])
		if err != nil {
			continue
		}
		var vals [3]float64
		for i, col := range []string{columnAge, columnSteps, columnCalories} {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[idx[col]]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %q", n+2, col)
			}
			vals[i] = v
		}
		p[label] = Reference{Age: vals[0], DailySteps: vals[1], CaloriesBurned: vals[2]}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteProfile writes p as CSV with one row per label.
func WriteProfile(w io.Writer, p AverageProfile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{columnQuality, columnAge, columnSteps, columnCalories}); err != nil {
		return errors.Wrap(err, "write average profile")
	}
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, l := range p.Labels() {
		ref := p[l]
		if err := cw.Write([]string{string(l), format(ref.Age), format(ref.DailySteps), format(ref.CaloriesBurned)}); err != nil {
			return errors.Wrap(err, "write average profile")
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadProfile reads the profile at path. A missing file is an
// ArtifactMissingError and an unreadable one an ArtifactCorruptError.
func LoadProfile(path string) (AverageProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewArtifactMissingError(ProfileArtifact, path)
		}
		return nil, errors.NewArtifactCorruptError(ProfileArtifact, path, "cannot open", err)
	}
	defer f.Close()

	p, err := ReadProfile(f)
	if err != nil {
		return nil, errors.NewArtifactCorruptError(ProfileArtifact, path, "invalid table", err)
	}
	return p, nil
}

// LoadProfileOrDefault returns the persisted profile, or the built-in table
// when it is missing or corrupt. The fallback is logged and raised as a
// FallbackWarning.
func LoadProfileOrDefault(path string, logger log.Logger) AverageProfile {
	p, err := LoadProfile(path)
	if err == nil {
		logger.Debug("Average profile loaded", log.ArtifactPathKey, path)
		return p
	}
	logger.Info("Average profile unavailable, using built-in table",
		log.ArtifactKey, ProfileArtifact,
		log.ArtifactPathKey, path,
		log.ErrorKindKey, errors.Kind(err).String(),
		log.ErrorKey, err,
	)
	errors.Warn(errors.NewFallbackWarning(ProfileArtifact, errors.Kind(err).String()))
	return DefaultProfile()
}
