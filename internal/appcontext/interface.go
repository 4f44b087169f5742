// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface rather than the
// concrete App type so they can be tested against a Mock.
package appcontext

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/labelsync/pkg/dataset"
)

// Settings is the resolved dataset configuration commands start from.
// Command flags override individual fields.
type Settings struct {
	Root            string
	LabelsRoot      string
	Splits          []string
	ImageExtensions []string
	LabelExtension  string
	ClassesFile     string
	RequiredClasses []string
	SampleLimit     int
	Workers         int
	Strategy        string
}

// Layout returns the dataset layout rooted at root, or at Settings.Root
// when root is empty.
func (s Settings) Layout(root string) dataset.Layout {
	if root == "" {
		root = s.Root
	}
	return dataset.NewLayout(root)
}

// Interface defines the application context interface that commands need.
// The App struct from cmd/labelsync/app implements it.
type Interface interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Fs returns the filesystem every component reads and mutates.
	Fs() afero.Fs

	// Settings returns the dataset configuration.
	Settings() Settings

	// ClassSet resolves the class set. A non-empty classesFile overrides
	// the configured data.yaml and class map.
	ClassSet(classesFile string) (dataset.ClassSet, error)

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
