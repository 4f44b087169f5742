// Package align implements the align command, which aligns each split's
// annotation files with its images.
package align

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/agentstation/labelsync/internal/appcontext"
	"github.com/agentstation/labelsync/internal/cmd/changes"
	"github.com/agentstation/labelsync/internal/cmd/output"
	"github.com/agentstation/labelsync/pkg/dataset"
	"github.com/agentstation/labelsync/pkg/logging"
	"github.com/agentstation/labelsync/pkg/reconciler"
	"github.com/agentstation/labelsync/pkg/scanner"
	"github.com/agentstation/labelsync/pkg/splits"
)

// AppContext defines the interface that the align command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	OutputFormat() string
	Fs() afero.Fs
	Settings() appcontext.Settings
}

// Flags holds the align command flags.
type Flags struct {
	Root   string
	Splits []string
	DryRun bool
}

// NewCommand creates the align command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "align",
		GroupID: "core",
		Short:   "Rename annotation files to match their images",
		Long: `Align renames every annotation file whose canonical base name matches an
image in the same split to <image>.txt, keeping the newest file when
several exist. Label files without a matching image are counted and left
untouched.`,
		Example: `  labelsync align --dry-run
  labelsync align --root datasets/tradingview --splits train,val`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.Root, "root", "", "dataset root holding images/ and labels/ (default from config)")
	cmd.Flags().StringSliceVar(&flags.Splits, "splits", nil, "splits to align (default from config)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "report actions without touching files")

	return cmd
}

// Run aligns every selected split, in parallel, and writes the results to w.
func Run(ctx context.Context, app AppContext, flags *Flags, w io.Writer) error {
	settings := app.Settings()

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	splitNames := flags.Splits
	if len(splitNames) == 0 {
		splitNames = settings.Splits
	}

	r, err := reconciler.New(
		reconciler.WithFs(app.Fs()),
		reconciler.WithDryRun(flags.DryRun),
	)
	if err != nil {
		return err
	}

	sc := scanner.New(app.Fs(), settings.Layout(flags.Root),
		scanner.WithImageExtensions(settings.ImageExtensions...),
		scanner.WithLabelExtension(settings.LabelExtension),
		scanner.WithLogger(app.Logger()),
	)

	ctx = logging.WithOperation(logging.WithLogger(ctx, app.Logger()), "align")
	results := splits.Run(ctx, splitNames, settings.Workers, func(ctx context.Context, split string) (*reconciler.Result, error) {
		images, err := sc.ListImages(split)
		if err != nil {
			return nil, err
		}
		candidates, err := sc.ListAnnotationCandidates(split)
		if err != nil {
			return nil, err
		}
		return r.AlignSplit(ctx, split, dataset.Stems(images), candidates)
	})

	aligned := make([]*reconciler.Result, len(results))
	var errs []error
	for i, res := range results {
		aligned[i] = res.Value
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("split %s: %w", res.Split, res.Err))
		} else if !res.Value.IsSuccess() {
			errs = append(errs, fmt.Errorf("split %s: %d failed actions: %w", res.Split, len(res.Value.Failures), res.Value.Err()))
		}
	}

	if err := changes.Write(w, format, splitNames, aligned); err != nil {
		return err
	}
	return stderrors.Join(errs...)
}
