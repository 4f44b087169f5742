package reconciler

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/labelsync/pkg/dataset"
)

// ActionType is the kind of filesystem mutation planned for a group.
type ActionType string

const (
	// ActionEvict removes a stale file occupying the canonical path.
	ActionEvict ActionType = "evict"
	// ActionDelete removes a non-surviving candidate.
	ActionDelete ActionType = "delete"
	// ActionRename moves the survivor to the canonical path.
	ActionRename ActionType = "rename"
)

// Action is one planned or applied mutation.
type Action struct {
	Type    ActionType
	Group   dataset.GroupKey
	Path    string
	Target  string // rename destination
	Applied bool   // false in dry-run mode and on failure
}

// String renders the action the way it is printed in reports.
func (a Action) String() string {
	prefix := ""
	if !a.Applied {
		prefix = "[DRY] "
	}
	switch a.Type {
	case ActionRename:
		return fmt.Sprintf("%srename %s -> %s", prefix, a.Path, a.Target)
	case ActionEvict:
		return fmt.Sprintf("%srm existing canonical %s", prefix, a.Path)
	default:
		return fmt.Sprintf("%srm %s", prefix, a.Path)
	}
}

// Failure is a per-candidate filesystem failure. Failures never abort a run.
type Failure struct {
	Action Action
	Err    error
}

// Error implements the error interface.
func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Action.Type, f.Action.Path, f.Err)
}

// Unwrap implements errors.Unwrap
func (f Failure) Unwrap() error {
	return f.Err
}

// GroupResult describes how one group was resolved.
type GroupResult struct {
	Key      dataset.GroupKey
	Survivor dataset.AnnotationCandidate
	Losers   []dataset.AnnotationCandidate
	Orphan   bool // align only: no image exists for the base name
}

// Statistics contains counts about a reconciliation pass. In dry-run mode
// the mutation counts are the planned ones.
type Statistics struct {
	Candidates      int `json:"candidates" yaml:"candidates"`
	Groups          int `json:"groups" yaml:"groups"`
	DuplicateGroups int `json:"duplicate_groups" yaml:"duplicate_groups"`
	Unchanged       int `json:"unchanged" yaml:"unchanged"`
	Kept            int `json:"kept" yaml:"kept"`
	Deleted         int `json:"deleted" yaml:"deleted"`
	Evicted         int `json:"evicted" yaml:"evicted"`
	Renamed         int `json:"renamed" yaml:"renamed"`
	OrphanGroups    int `json:"orphan_groups" yaml:"orphan_groups"`
	OrphanFiles     int `json:"orphan_files" yaml:"orphan_files"`
}

// Result represents the outcome of a reconciliation pass.
type Result struct {
	Strategy  StrategyType
	DryRun    bool
	Rename    bool
	StartTime utc.Time
	EndTime   utc.Time
	Duration  time.Duration

	Stats    Statistics
	Groups   []GroupResult
	Actions  []Action
	Failures []Failure
}

func newResult(strategy StrategyType, dryRun, rename bool) *Result {
	return &Result{
		Strategy:  strategy,
		DryRun:    dryRun,
		Rename:    rename,
		StartTime: utc.Now(),
		Groups:    []GroupResult{},
		Actions:   []Action{},
		Failures:  []Failure{},
	}
}

func (r *Result) finish() {
	r.EndTime = utc.Now()
	r.Duration = r.EndTime.Time.Sub(r.StartTime.Time)
}

// IsSuccess returns true if no filesystem failure occurred.
func (r *Result) IsSuccess() bool {
	return len(r.Failures) == 0
}

// HasChanges returns true if any mutation was planned or applied.
func (r *Result) HasChanges() bool {
	return len(r.Actions) > 0
}

// Err joins every failure into one error, or returns nil.
func (r *Result) Err() error {
	if r.IsSuccess() {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return stderrors.Join(errs...)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Stats
	line := fmt.Sprintf("Processed %d groups | kept %d, removed %d duplicates, evicted %d, renamed %d",
		s.DuplicateGroups, s.Kept, s.Deleted, s.Evicted, s.Renamed)
	if s.OrphanGroups > 0 {
		line += fmt.Sprintf(" | labels without image %d", s.OrphanFiles)
	}
	if !r.IsSuccess() {
		line += fmt.Sprintf(" | %d failures", len(r.Failures))
	}
	if r.DryRun {
		line += "\nDry run only. Re-run without --dry-run to apply changes."
	}
	return line
}
