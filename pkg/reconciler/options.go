package reconciler

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/labelsync/pkg/errors"
)

// options configures a reconciler.
type options struct {
	strategy Strategy
	fs       afero.Fs
	dryRun   bool
	rename   bool
	logger   *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		strategy: NewMtimeStrategy(),
		fs:       afero.NewOsFs(),
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithStrategy sets the keep-policy.
func WithStrategy(strategy Strategy) Option {
	return func(o *options) error {
		if strategy == nil {
			return &errors.ValidationError{
				Field:   "strategy",
				Message: "cannot be nil",
			}
		}
		o.strategy = strategy
		return nil
	}
}

// WithStrategyName sets the keep-policy by name, failing fast on unknown names.
func WithStrategyName(name string) Option {
	return func(o *options) error {
		strategy, err := ParseStrategy(name)
		if err != nil {
			return err
		}
		o.strategy = strategy
		return nil
	}
}

// WithFs sets the filesystem mutations are applied to.
func WithFs(fsys afero.Fs) Option {
	return func(o *options) error {
		if fsys == nil {
			return &errors.ValidationError{
				Field:   "fs",
				Message: "cannot be nil",
			}
		}
		o.fs = fsys
		return nil
	}
}

// WithDryRun reports every action without touching the filesystem.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithRename renames each survivor to its canonical <base><ext> name.
func WithRename(enabled bool) Option {
	return func(o *options) error {
		o.rename = enabled
		return nil
	}
}

// WithLogger sets the logger. By default the logger is taken from the
// context passed to each call.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
