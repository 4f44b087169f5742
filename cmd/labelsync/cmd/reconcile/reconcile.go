// Package reconcile implements the reconcile command, which collapses
// duplicate annotation files in a labels directory.
package reconcile

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/agentstation/labelsync/internal/appcontext"
	"github.com/agentstation/labelsync/internal/cmd/changes"
	"github.com/agentstation/labelsync/internal/cmd/output"
	"github.com/agentstation/labelsync/pkg/logging"
	"github.com/agentstation/labelsync/pkg/reconciler"
	"github.com/agentstation/labelsync/pkg/scanner"
)

// AppContext defines the interface that the reconcile command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	OutputFormat() string
	Fs() afero.Fs
	Settings() appcontext.Settings
}

// Flags holds the reconcile command flags.
type Flags struct {
	Root      string
	Recursive bool
	Strategy  string
	DryRun    bool
	Rename    bool
}

// NewCommand creates the reconcile command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "reconcile",
		GroupID: "core",
		Short:   "Collapse duplicate <id>-<name> annotation files",
		Long: `Reconcile groups annotation files by directory and canonical base name
(the file name with any "<id>-" prefix removed) and keeps one survivor per
group. The others are deleted. With --rename the survivor is moved to
<base>.txt, replacing any stale file already there.

Keep strategies:
  mtime    newest modification time wins (default)
  id_lex   lexicographically greatest id prefix wins`,
		Example: `  labelsync reconcile --dry-run                       # Preview changes
  labelsync reconcile --rename                        # Apply and canonicalize names
  labelsync reconcile --root labels --recursive       # Every split below labels/
  labelsync reconcile --strategy id_lex --rename`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.Root, "root", "", "labels directory to reconcile (default <root>/labels)")
	cmd.Flags().BoolVarP(&flags.Recursive, "recursive", "r", false, "also reconcile subdirectories")
	cmd.Flags().StringVar(&flags.Strategy, "strategy", "", "keep strategy: mtime, id_lex (default from config)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "report actions without touching files")
	cmd.Flags().BoolVar(&flags.Rename, "rename", false, "rename survivors to <base>.txt")

	return cmd
}

// Run reconciles the labels directory and writes the result to w. It
// returns an error when any file action failed.
func Run(ctx context.Context, app AppContext, flags *Flags, w io.Writer) error {
	settings := app.Settings()

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	strategy := flags.Strategy
	if strategy == "" {
		strategy = settings.Strategy
	}
	r, err := reconciler.New(
		reconciler.WithStrategyName(strategy),
		reconciler.WithFs(app.Fs()),
		reconciler.WithDryRun(flags.DryRun),
		reconciler.WithRename(flags.Rename),
	)
	if err != nil {
		return err
	}

	root := flags.Root
	if root == "" {
		root = settings.LabelsRoot
	}

	sc := scanner.New(app.Fs(), settings.Layout(""),
		scanner.WithLabelExtension(settings.LabelExtension),
		scanner.WithLogger(app.Logger()),
	)
	candidates, err := sc.CollectCandidates(root, flags.Recursive)
	if err != nil {
		return err
	}

	ctx = logging.WithDirectory(logging.WithLogger(ctx, app.Logger()), root)
	result, err := r.Reconcile(ctx, candidates)
	if result != nil {
		if werr := changes.Write(w, format, []string{root}, []*reconciler.Result{result}); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}

	if !result.IsSuccess() {
		return fmt.Errorf("reconcile finished with %d failed actions: %w", len(result.Failures), result.Err())
	}
	return nil
}
