// Package dataset loads the historical sleep records used by the offline
// training jobs and derives the average profile from them.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/sleepq/heuristic"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/preprocessing"
	"github.com/YuminosukeSato/sleepq/sleep"
)

// Record is one labelled row.
type Record struct {
	Input   sleep.FeatureInput
	Quality sleep.Label
}

// Dataset is an ordered collection of records.
type Dataset struct {
	Records []Record
}

var requiredColumns = []string{
	preprocessing.ColumnAge,
	preprocessing.ColumnGender,
	preprocessing.ColumnSteps,
	preprocessing.ColumnCalories,
	preprocessing.ColumnActivity,
	preprocessing.ColumnDiet,
	preprocessing.ColumnQuality,
}

// Read parses CSV records. Columns are located by header name; extra
// columns are ignored.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.ErrEmptyData
		}
		return nil, errors.Wrap(err, "read header")
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, errors.NewValueError("dataset.Read", fmt.Sprintf("missing column %q", col))
		}
	}

	d := &Dataset{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		rec, err := parseRecord(row, idx)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		d.Records = append(d.Records, rec)
	}
	if len(d.Records) == 0 {
		return nil, errors.ErrEmptyData
	}
	return d, nil
}

// Load reads the CSV file at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()
	return Read(f)
}

func parseRecord(row []string, idx map[string]int) (Record, error) {
	field := func(col string) string { return strings.TrimSpace(row[idx[col]]) }

	var rec Record
	var err error
	if rec.Input.Age, err = parseCount(preprocessing.ColumnAge, field(preprocessing.ColumnAge)); err != nil {
		return rec, err
	}
	if rec.Input.DailySteps, err = parseCount(preprocessing.ColumnSteps, field(preprocessing.ColumnSteps)); err != nil {
		return rec, err
	}
	if rec.Input.CaloriesBurned, err = parseCount(preprocessing.ColumnCalories, field(preprocessing.ColumnCalories)); err != nil {
		return rec, err
	}
	if rec.Input.Gender, err = sleep.ParseGender(field(preprocessing.ColumnGender)); err != nil {
		return rec, err
	}
	if rec.Input.ActivityLevel, err = sleep.ParseActivityLevel(field(preprocessing.ColumnActivity)); err != nil {
		return rec, err
	}
	if rec.Input.DietaryHabits, err = sleep.ParseDietQuality(field(preprocessing.ColumnDiet)); err != nil {
		return rec, err
	}
	if rec.Quality, err = sleep.ParseLabel(field(preprocessing.ColumnQuality)); err != nil {
		return rec, err
	}
	return rec, nil
}

func parseCount(col, s string) (int, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, errors.NewInvalidInputError(col, "must be a non-negative number", s)
	}
	return int(math.Round(v)), nil
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Split shuffles a copy of the records with seed and holds out
// ceil(n*testFraction) of them for testing.
func (d *Dataset) Split(testFraction float64, seed int64) (train, test *Dataset, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.NewValueError("Dataset.Split", fmt.Sprintf("test fraction must be in (0, 1), got %v", testFraction))
	}
	n := d.Len()
	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest < 1 || nTest >= n {
		return nil, nil, errors.NewValueError("Dataset.Split", fmt.Sprintf("cannot split %d records with test fraction %v", n, testFraction))
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = &Dataset{Records: make([]Record, 0, nTest)}
	train = &Dataset{Records: make([]Record, 0, n-nTest)}
	for i, p := range perm {
		if i < nTest {
			test.Records = append(test.Records, d.Records[p])
		} else {
			train.Records = append(train.Records, d.Records[p])
		}
	}
	return train, test, nil
}

// Encode returns one encoded row per record.
func (d *Dataset) Encode(enc preprocessing.FeatureEncoder) *mat.Dense {
	cols := len(enc.FeatureNames())
	X := mat.NewDense(d.Len(), cols, nil)
	for i, rec := range d.Records {
		X.SetRow(i, enc.Encode(rec.Input))
	}
	return X
}

// Qualities returns the label column.
func (d *Dataset) Qualities() []sleep.Label {
	out := make([]sleep.Label, d.Len())
	for i, rec := range d.Records {
		out[i] = rec.Quality
	}
	return out
}

// Averages groups records by label and returns the mean age, steps and
// calories of each group.
func (d *Dataset) Averages() heuristic.AverageProfile {
	groups := make(map[sleep.Label][3][]float64)
	for _, rec := range d.Records {
		g := groups[rec.Quality]
		g[0] = append(g[0], float64(rec.Input.Age))
		g[1] = append(g[1], float64(rec.Input.DailySteps))
		g[2] = append(g[2], float64(rec.Input.CaloriesBurned))
		groups[rec.Quality] = g
	}

	p := make(heuristic.AverageProfile, len(groups))
	for l, g := range groups {
		p[l] = heuristic.Reference{
			Age:            stat.Mean(g[0], nil),
			DailySteps:     stat.Mean(g[1], nil),
			CaloriesBurned: stat.Mean(g[2], nil),
		}
	}
	return p
}
