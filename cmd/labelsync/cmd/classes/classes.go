// Package classes implements the classes command, which prints the
// effective class set.
package classes

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/labelsync/internal/appcontext"
	"github.com/agentstation/labelsync/internal/cmd/output"
	"github.com/agentstation/labelsync/pkg/dataset"
)

// AppContext defines the interface that the classes command needs from the app.
type AppContext interface {
	OutputFormat() string
	Settings() appcontext.Settings
	ClassSet(classesFile string) (dataset.ClassSet, error)
}

// Row is one class in the listing.
type Row struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Required bool   `json:"required" yaml:"required"`
}

// NewCommand creates the classes command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	var classesFile string

	cmd := &cobra.Command{
		Use:     "classes",
		GroupID: "management",
		Short:   "Show the class set used for validation",
		Long: `Classes prints the class ids and names validation checks against, taken
from --classes-file, the classes_file setting, or the classes map in the
configuration (in that order).`,
		Example: `  labelsync classes
  labelsync classes --classes-file data.yaml -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, classesFile, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&classesFile, "classes-file", "", "YOLO data.yaml declaring class names")

	return cmd
}

// Run writes the class set to w.
func Run(_ context.Context, app AppContext, classesFile string, w io.Writer) error {
	if _, err := output.ParseFormat(app.OutputFormat()); err != nil {
		return err
	}

	set, err := app.ClassSet(classesFile)
	if err != nil {
		return err
	}
	required, err := set.Resolve(app.Settings().RequiredClasses)
	if err != nil {
		return err
	}
	isRequired := make(map[int]bool, len(required))
	for _, id := range required {
		isRequired[id] = true
	}

	rows := make([]Row, 0, set.Len())
	for _, id := range set.IDs() {
		rows = append(rows, Row{ID: id, Name: set.Name(id), Required: isRequired[id]})
	}

	return output.NewFormatter(output.DetectFormat(app.OutputFormat())).Format(w, rows)
}
