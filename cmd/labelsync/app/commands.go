package app

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/labelsync/cmd/labelsync/cmd/align"
	"github.com/agentstation/labelsync/cmd/labelsync/cmd/classes"
	"github.com/agentstation/labelsync/cmd/labelsync/cmd/reconcile"
	"github.com/agentstation/labelsync/cmd/labelsync/cmd/validate"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(reconcile.NewCommand(a))
	rootCmd.AddCommand(align.NewCommand(a))
	rootCmd.AddCommand(validate.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(classes.NewCommand(a))
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: "management",
		Short:   "Show version information",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("labelsync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
