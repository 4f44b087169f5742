package appcontext

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/labelsync/pkg/constants"
	"github.com/agentstation/labelsync/pkg/dataset"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding field.
// Unset fields fall back to an in-memory filesystem, a no-op logger and
// the built-in dataset defaults.
type Mock struct {
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	FsFunc           func() afero.Fs
	SettingsFunc     func() Settings
	ClassSetFunc     func(classesFile string) (dataset.ClassSet, error)
	VersionFunc      func() string

	fs afero.Fs
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Fs returns the filesystem using the mock function or a shared MemMapFs.
func (m *Mock) Fs() afero.Fs {
	if m.FsFunc != nil {
		return m.FsFunc()
	}
	if m.fs == nil {
		m.fs = afero.NewMemMapFs()
	}
	return m.fs
}

// Settings returns settings using the mock function or the defaults.
func (m *Mock) Settings() Settings {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return DefaultSettings()
}

// ClassSet returns a class set using the mock function or the default classes.
func (m *Mock) ClassSet(classesFile string) (dataset.ClassSet, error) {
	if m.ClassSetFunc != nil {
		return m.ClassSetFunc(classesFile)
	}
	return dataset.NewClassSet(constants.DefaultClasses())
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string {
	return "unknown"
}

// Date returns "unknown".
func (m *Mock) Date() string {
	return "unknown"
}

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string {
	return "test"
}

// DefaultSettings returns settings built from the package defaults.
func DefaultSettings() Settings {
	return Settings{
		Root:            constants.DefaultRoot,
		LabelsRoot:      dataset.NewLayout(constants.DefaultRoot).LabelsRoot(),
		Splits:          constants.DefaultSplits(),
		ImageExtensions: constants.DefaultImageExtensions(),
		LabelExtension:  constants.LabelExtension,
		SampleLimit:     constants.DefaultSampleLimit,
		Workers:         constants.DefaultWorkers,
		Strategy:        "mtime",
	}
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
