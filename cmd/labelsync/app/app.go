// Package app provides the application context and dependency management
// for the labelsync CLI. It centralizes configuration, logging and the
// filesystem every command works against.
package app

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/labelsync/internal/appcontext"
	"github.com/agentstation/labelsync/pkg/dataset"
	"github.com/agentstation/labelsync/pkg/errors"
)

// App represents the labelsync application with all its dependencies.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	fs     afero.Fs
	out    io.Writer

	// class sets by data.yaml path, "" for the configured one
	mu      sync.Mutex
	classes map[string]dataset.ClassSet
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		fs:      afero.NewOsFs(),
		classes: make(map[string]dataset.ClassSet),
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapConfig("config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Fs returns the filesystem commands operate on.
func (a *App) Fs() afero.Fs {
	return a.fs
}

// Settings returns the dataset configuration.
func (a *App) Settings() appcontext.Settings {
	return a.config.Settings()
}

// ClassSet resolves the class set, in precedence order: classesFile, the
// configured classes_file, the configured classes map. Results are cached
// per source.
func (a *App) ClassSet(classesFile string) (dataset.ClassSet, error) {
	if classesFile == "" {
		classesFile = a.config.ClassesFile
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if classes, ok := a.classes[classesFile]; ok {
		return classes, nil
	}

	var (
		classes dataset.ClassSet
		err     error
	)
	if classesFile != "" {
		classes, err = dataset.LoadClassSet(a.fs, classesFile)
	} else {
		classes, err = dataset.ParseClassMap(a.config.Classes)
	}
	if err != nil {
		return dataset.ClassSet{}, err
	}

	a.logger.Debug().Str("source", classesFile).Int("classes", classes.Len()).Msg("Loaded class set")
	a.classes[classesFile] = classes
	return classes, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput redirects command output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// WithFs sets the filesystem (useful for testing).
func WithFs(fsys afero.Fs) Option {
	return func(a *App) error {
		if fsys == nil {
			return &errors.ValidationError{Field: "fs", Message: "cannot be nil"}
		}
		a.fs = fsys
		return nil
	}
}
