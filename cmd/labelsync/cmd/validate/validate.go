// Package validate implements the validate command, which checks every
// split's annotation files and prints a per-split report.
package validate

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/agentstation/labelsync/internal/appcontext"
	"github.com/agentstation/labelsync/internal/cmd/emoji"
	"github.com/agentstation/labelsync/internal/cmd/output"
	"github.com/agentstation/labelsync/pkg/dataset"
	"github.com/agentstation/labelsync/pkg/errors"
	"github.com/agentstation/labelsync/pkg/logging"
	"github.com/agentstation/labelsync/pkg/scanner"
	"github.com/agentstation/labelsync/pkg/splits"
	"github.com/agentstation/labelsync/pkg/validator"
)

// AppContext defines the interface that the validate command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	OutputFormat() string
	Fs() afero.Fs
	Settings() appcontext.Settings
	ClassSet(classesFile string) (dataset.ClassSet, error)
}

// Flags holds the validate command flags.
type Flags struct {
	Root        string
	Splits      []string
	ClassesFile string
	Require     []string
	SampleLimit int
}

// NewCommand creates the validate command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "validate",
		GroupID: "core",
		Short:   "Check annotation files against images and classes",
		Long: `Validate locates the annotation file of every image in each split and
checks every line: five tokens, a declared class id, and a box with
0 <= cx,cy <= 1 and 0 < w,h <= 1.

The command fails when a split has no boxes for a required class or still
has duplicate <id>-<name> groups (run "labelsync reconcile" first).`,
		Example: `  labelsync validate
  labelsync validate --splits train,val --require symbol_title,last_price_pill
  labelsync validate --classes-file data.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.Root, "root", "", "dataset root holding images/ and labels/ (default from config)")
	cmd.Flags().StringSliceVar(&flags.Splits, "splits", nil, "splits to validate (default from config)")
	cmd.Flags().StringVar(&flags.ClassesFile, "classes-file", "", "YOLO data.yaml declaring class names")
	cmd.Flags().StringSliceVar(&flags.Require, "require", nil, "classes (ids or names) every split must contain")
	cmd.Flags().IntVar(&flags.SampleLimit, "sample-limit", 0, "samples shown per problem list (default from config)")

	return cmd
}

// Run validates the selected splits and writes the reports to w.
func Run(ctx context.Context, app AppContext, flags *Flags, w io.Writer) error {
	settings := app.Settings()

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	classes, err := app.ClassSet(flags.ClassesFile)
	if err != nil {
		return err
	}
	requiredRefs := flags.Require
	if len(requiredRefs) == 0 {
		requiredRefs = settings.RequiredClasses
	}
	required, err := classes.Resolve(requiredRefs)
	if err != nil {
		return err
	}

	splitNames := flags.Splits
	if len(splitNames) == 0 {
		splitNames = settings.Splits
	}
	sampleLimit := flags.SampleLimit
	if sampleLimit <= 0 {
		sampleLimit = settings.SampleLimit
	}

	sc := scanner.New(app.Fs(), settings.Layout(flags.Root),
		scanner.WithImageExtensions(settings.ImageExtensions...),
		scanner.WithLabelExtension(settings.LabelExtension),
		scanner.WithLogger(app.Logger()),
	)
	v := validator.New(app.Fs(), classes, validator.WithSampleLimit(sampleLimit))

	ctx = logging.WithOperation(logging.WithLogger(ctx, app.Logger()), "validate")
	results := splits.Run(ctx, splitNames, settings.Workers, func(ctx context.Context, split string) (*validator.Report, error) {
		images, err := sc.ListImages(split)
		if err != nil {
			return nil, err
		}
		candidates, err := sc.ListAnnotationCandidates(split)
		if err != nil {
			return nil, err
		}
		report, err := v.ValidateSplit(ctx, split, dataset.Stems(images), validator.LookupFromCandidates(candidates))
		if report != nil {
			report.DuplicateGroups = len(dataset.DuplicateGroups(candidates))
		}
		return report, err
	})

	reports := make([]*validator.Report, 0, len(results))
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("split %s: %w", res.Split, res.Err))
			continue
		}
		reports = append(reports, res.Value)
	}

	if format.IsStructured() {
		if err := output.NewFormatter(format).Format(w, reports); err != nil {
			return err
		}
	} else {
		for _, report := range reports {
			if err := printReport(w, report, classes, required); err != nil {
				return err
			}
		}
		fmt.Fprintln(w, "\nDataset check completed.")
	}

	var failed []string
	for _, report := range reports {
		if report.Failed(required) {
			failed = append(failed, report.Split)
		}
	}
	if len(failed) > 0 {
		errs = append(errs, errors.NewValidationError("splits", failed,
			"failing splits: "+strings.Join(failed, ", ")))
	}
	return stderrors.Join(errs...)
}

// printReport writes the human-readable report of one split.
func printReport(w io.Writer, r *validator.Report, classes dataset.ClassSet, required []int) error {
	fmt.Fprintf(w, "\n%s\n", output.Heading(r.Split))
	fmt.Fprintf(w, "Images: %d\n", r.Images)
	fmt.Fprintf(w, "Labeled images (≥1 box): %d\n", r.LabeledImages)
	fmt.Fprintf(w, "Missing label files: %d\n", r.Missing)
	fmt.Fprintf(w, "Empty label files: %d\n", r.Empty)
	if r.ParseErrors > 0 || r.BadBoxCount > 0 || r.UnknownClassBoxes > 0 {
		fmt.Fprintf(w, "Parse errors: %d, bad boxes: %d, unknown class boxes: %d\n",
			r.ParseErrors, r.BadBoxCount, r.UnknownClassBoxes)
	}

	data := output.Data{
		Headers:         []string{"ID", "Class", "Boxes"},
		ColumnAlignment: []output.Align{output.AlignRight, output.AlignLeft, output.AlignRight},
	}
	for _, c := range r.Classes {
		data.Rows = append(data.Rows, []string{strconv.Itoa(c.ID), c.Name, strconv.Itoa(c.Count)})
	}
	if err := output.NewFormatter(output.FormatTable).Format(w, data); err != nil {
		return err
	}

	if len(r.MissingSamples) > 0 {
		fmt.Fprintf(w, "Examples missing labels (first %d): %s\n", len(r.MissingSamples), strings.Join(r.MissingSamples, ", "))
	}
	if len(r.BadClassIDs) > 0 {
		parts := make([]string, len(r.BadClassIDs))
		for i, b := range r.BadClassIDs {
			parts[i] = fmt.Sprintf("%s:%d class %d", b.File, b.Line, b.ClassID)
		}
		fmt.Fprintf(w, "Bad class IDs (first %d): %s\n", len(parts), strings.Join(parts, ", "))
	}
	if len(r.BadBoxes) > 0 {
		parts := make([]string, len(r.BadBoxes))
		for i, b := range r.BadBoxes {
			parts[i] = fmt.Sprintf("%s:%d %s", b.File, b.Line, b.Value)
		}
		fmt.Fprintf(w, "Bad/invalid bbox lines (first %d): %s\n", len(parts), strings.Join(parts, ", "))
	}

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "%s Warning: %s\n", emoji.Warning, warning)
	}
	for _, id := range r.MissingRequired(required) {
		fmt.Fprintf(w, "%s Required class %s has no boxes\n", emoji.Error, classes.Name(id))
	}
	if r.DuplicateGroups > 0 {
		fmt.Fprintf(w, "%s Unresolved duplicate groups: %d (run labelsync reconcile)\n", emoji.Error, r.DuplicateGroups)
	}
	return nil
}
