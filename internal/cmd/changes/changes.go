// Package changes renders reconciler results for the reconcile and align
// commands.
package changes

import (
	"fmt"
	"io"

	"github.com/agentstation/labelsync/internal/cmd/emoji"
	"github.com/agentstation/labelsync/internal/cmd/output"
	"github.com/agentstation/labelsync/pkg/reconciler"
)

// View is the structured form of a reconciler result.
type View struct {
	Scope    string                `json:"scope" yaml:"scope"`
	Strategy string                `json:"strategy" yaml:"strategy"`
	DryRun   bool                  `json:"dry_run" yaml:"dry_run"`
	Rename   bool                  `json:"rename" yaml:"rename"`
	Duration string                `json:"duration" yaml:"duration"`
	Stats    reconciler.Statistics `json:"stats" yaml:"stats"`
	Actions  []string              `json:"actions" yaml:"actions"`
	Failures []string              `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// NewView converts a result for a scope (a split or a labels directory).
func NewView(scope string, result *reconciler.Result) View {
	view := View{
		Scope:    scope,
		Strategy: result.Strategy.String(),
		DryRun:   result.DryRun,
		Rename:   result.Rename,
		Duration: result.Duration.String(),
		Stats:    result.Stats,
		Actions:  make([]string, 0, len(result.Actions)),
	}
	for _, a := range result.Actions {
		view.Actions = append(view.Actions, a.String())
	}
	for _, f := range result.Failures {
		view.Failures = append(view.Failures, f.Error())
	}
	return view
}

// Print writes every action, every failure and the summary line.
func Print(w io.Writer, result *reconciler.Result) {
	for _, a := range result.Actions {
		fmt.Fprintln(w, a.String())
	}
	for _, f := range result.Failures {
		fmt.Fprintf(w, "%s %s\n", emoji.Error, f.Error())
	}

	symbol := emoji.Success
	if !result.IsSuccess() {
		symbol = emoji.Warning
	}
	fmt.Fprintf(w, "%s %s\n", symbol, result.Summary())
}

// Write renders results as text, or as one structured document holding
// every view.
func Write(w io.Writer, format output.Format, scopes []string, results []*reconciler.Result) error {
	if format.IsStructured() {
		views := make([]View, 0, len(results))
		for i, r := range results {
			if r != nil {
				views = append(views, NewView(scopes[i], r))
			}
		}
		return output.NewFormatter(format).Format(w, views)
	}

	for i, r := range results {
		if r == nil {
			continue
		}
		if len(results) > 1 {
			fmt.Fprintf(w, "\n%s\n", output.Heading(scopes[i]))
		}
		Print(w, r)
	}
	return nil
}
