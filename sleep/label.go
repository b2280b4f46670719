package sleep

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
)

// Label is the four-tier sleep quality category.
type Label string

// Labels, worst to best.
const (
	Poor      Label = "Poor"
	Fair      Label = "Fair"
	Good      Label = "Good"
	Excellent Label = "Excellent"
)

// Labels lists every label from worst to best.
var Labels = []Label{Poor, Fair, Good, Excellent}

// Valid reports whether l is one of the four labels.
func (l Label) Valid() bool {
	return l.Rank() >= 0
}

// Rank orders labels from Poor (0) to Excellent (3); unknown labels rank -1.
func (l Label) Rank() int {
	switch l {
	case Poor:
		return 0
	case Fair:
		return 1
	case Good:
		return 2
	case Excellent:
		return 3
	default:
		return -1
	}
}

// ParseLabel parses a label case-insensitively.
func ParseLabel(s string) (Label, error) {
	for _, l := range Labels {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", errors.NewValueError("sleep.ParseLabel", "unknown sleep quality label "+s)
}

// CoarseLabel is the two-tier label shown by the coarse entry point.
type CoarseLabel string

// Coarse labels.
const (
	CoarseGood CoarseLabel = "Good"
	CoarseBad  CoarseLabel = "Bad"
)

// Coarsen maps {Excellent, Good} to Good and {Fair, Poor} to Bad.
func Coarsen(l Label) CoarseLabel {
	if l == Excellent || l == Good {
		return CoarseGood
	}
	return CoarseBad
}

// Confidence is a probability per label. Probability-emitting predictors
// return one whose values sum to 1.
type Confidence map[Label]float64

// Sum returns the total probability mass.
func (c Confidence) Sum() float64 {
	vals := make([]float64, 0, len(c))
	for _, l := range c.labels() {
		vals = append(vals, c[l])
	}
	return floats.Sum(vals)
}

// Argmax returns the most probable label. Ties resolve to the better label.
func (c Confidence) Argmax() (Label, float64) {
	labels := c.labels()
	if len(labels) == 0 {
		return "", 0
	}
	vals := make([]float64, len(labels))
	for i, l := range labels {
		vals[i] = c[l]
	}
	idx := floats.MaxIdx(vals)
	return labels[idx], vals[idx]
}

// Percent returns p(l) * 100 for display.
func (c Confidence) Percent(l Label) float64 {
	return c[l] * 100
}

// labels returns the keys ordered best first, so MaxIdx picks the better label on ties.
func (c Confidence) labels() []Label {
	out := make([]Label, 0, len(c))
	for l := range c {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Rank(), out[j].Rank()
		if ri != rj {
			return ri > rj
		}
		return out[i] < out[j]
	})
	return out
}
