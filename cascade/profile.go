package cascade

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/sleepq/heuristic"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
	"github.com/YuminosukeSato/sleepq/predictor"
)

// Profile selects the tier list of a cascade.
type Profile string

// Profiles. Each ends with an artifact-free tier.
const (
	// ProfileFull is Neural -> Linear -> RuleBased.
	ProfileFull Profile = "full"
	// ProfileSimple is Linear -> Mock.
	ProfileSimple Profile = "simple"
	// ProfileCoarse is Neural -> CoarseRule with Good/Bad output.
	ProfileCoarse Profile = "coarse"
)

// Profiles lists every profile.
var Profiles = []Profile{ProfileFull, ProfileSimple, ProfileCoarse}

// ParseProfile parses a profile name case-insensitively.
func ParseProfile(s string) (Profile, error) {
	for _, p := range Profiles {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", errors.NewValueError("cascade.ParseProfile", fmt.Sprintf("unknown profile %q (want full, simple or coarse)", s))
}

// Artifacts holds the resolved artifact paths.
type Artifacts struct {
	Linear   string
	Neural   string
	Encoders string
	Averages string
}

// NewFromProfile builds the tier list of profile over the given artifacts.
// Trained tiers load lazily on first use; the average profile is read
// immediately and replaced by the built-in table when unavailable.
func NewFromProfile(profile Profile, a Artifacts, opts ...Option) (*Cascade, error) {
	cfg := newConfig(opts)

	neural := predictor.NewLazy(predictor.SourceNeural, predictor.NeuralLoader(a.Neural, a.Encoders), cfg.logger)
	linear := predictor.NewLazy(predictor.SourceLinear, predictor.LinearLoader(a.Linear), cfg.logger)

	switch profile {
	case ProfileFull:
		averages := cfg.averages
		if averages == nil {
			averages = heuristic.LoadProfileOrDefault(a.Averages, cfg.logger)
		}
		rules := predictor.Static(predictor.NewRuleBasedPredictor(averages))
		return New([]*predictor.Lazy{neural, linear, rules}, opts...)
	case ProfileSimple:
		return New([]*predictor.Lazy{linear, predictor.Static(predictor.MockPredictor{})}, opts...)
	case ProfileCoarse:
		opts = append(opts, WithCoarse(true))
		return New([]*predictor.Lazy{neural, predictor.Static(predictor.CoarseRulePredictor{})}, opts...)
	default:
		return nil, errors.NewValueError("cascade.NewFromProfile", fmt.Sprintf("unknown profile %q", profile))
	}
}

// Option configures a Cascade.
type Option func(*config)

type config struct {
	logger   log.Logger
	coarse   bool
	averages heuristic.AverageProfile
}

func newConfig(opts []Option) config {
	c := config{logger: log.GetLogger()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger sets the logger for notices and results.
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCoarse fills Outcome.Coarse with the two-tier label.
func WithCoarse(coarse bool) Option {
	return func(c *config) { c.coarse = coarse }
}

// WithAverages supplies an already loaded reference profile to the rule tier,
// so NewFromProfile does not read Artifacts.Averages itself.
func WithAverages(p heuristic.AverageProfile) Option {
	return func(c *config) { c.averages = p }
}
