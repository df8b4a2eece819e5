package gcode

import "gcode-inspect/pkg/log"

const (
	// DefaultRiseThreshold is how far Z must climb in one line to count as a lift.
	DefaultRiseThreshold = 0.5
	// DefaultGroupTolerance is the chained height gap that keeps retractions in one cluster.
	DefaultGroupTolerance = 0.1
)

// Options tune the heuristics. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	RiseThreshold  float64
	GroupTolerance float64
	// UntooledKey, when set, keeps motion seen before the first tool change
	// under this key in ToolPaths. Empty drops it.
	UntooledKey string
	Logger      *log.Logger
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		RiseThreshold:  DefaultRiseThreshold,
		GroupTolerance: DefaultGroupTolerance,
	}
}

// Option adjusts Options.
type Option func(*Options)

// WithRiseThreshold overrides the lift threshold. Non-positive values are ignored.
func WithRiseThreshold(v float64) Option {
	return func(o *Options) {
		if v > 0 {
			o.RiseThreshold = v
		}
	}
}

// WithGroupTolerance overrides the clustering tolerance. Non-positive values are ignored.
func WithGroupTolerance(v float64) Option {
	return func(o *Options) {
		if v > 0 {
			o.GroupTolerance = v
		}
	}
}

// WithUntooledKey keeps pre-tool-change motion under key.
func WithUntooledKey(key string) Option {
	return func(o *Options) { o.UntooledKey = key }
}

// WithLogger attaches a logger for pass statistics.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.Logger == nil {
		o.Logger = log.Discard()
	}
	return o
}
