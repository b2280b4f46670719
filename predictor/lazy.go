package predictor

import (
	"sync"
	"time"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
)

// Loader constructs a predictor, typically by reading artifacts.
type Loader func() (Predictor, error)

// Lazy constructs its predictor on first use and keeps it for the lifetime
// of the process. A failed construction is not cached: the next Get tries
// again, so an artifact written after start-up is picked up.
type Lazy struct {
	source Source
	load   Loader
	logger log.Logger

	mu sync.Mutex
	p  Predictor
}

// NewLazy wraps load. source names the tier before it has been constructed.
func NewLazy(source Source, load Loader, logger log.Logger) *Lazy {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Lazy{
		source: source,
		load:   load,
		logger: logger.With(log.TierKey, string(source), log.OperationKey, log.OperationLoad),
	}
}

// Static wraps an already constructed predictor.
func Static(p Predictor) *Lazy {
	return &Lazy{source: p.Source(), p: p, logger: log.GetLogger()}
}

// Source returns the tier's source tag.
func (l *Lazy) Source() Source {
	return l.source
}

// Get returns the cached predictor, constructing it if needed.
func (l *Lazy) Get() (p Predictor, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.p != nil {
		return l.p, nil
	}

	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = errors.NewArtifactCorruptError(string(l.source), "", "loader panicked", errors.Newf("%v", r))
		}
	}()
	start := time.Now()
	p, err = l.load()
	if err != nil {
		return nil, err
	}
	l.p = p
	l.logger.Debug("Predictor loaded", log.DurationMsKey, time.Since(start).Milliseconds())
	return p, nil
}

// Loaded reports whether construction has succeeded.
func (l *Lazy) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p != nil
}

// LinearLoader loads the linear artifact at path.
func LinearLoader(path string) Loader {
	return func() (Predictor, error) {
		p, err := LoadLinear(path)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// NeuralLoader loads the neural weights and encoder map artifacts.
func NeuralLoader(weightsPath, encodersPath string) Loader {
	return func() (Predictor, error) {
		p, err := LoadNeural(weightsPath, encodersPath)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
