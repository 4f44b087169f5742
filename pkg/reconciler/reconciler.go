// Package reconciler collapses duplicate annotation files down to one
// canonical file per image. Candidates are grouped by (directory, canonical
// base name), a keep-policy picks one survivor per group, and the losers are
// deleted, optionally renaming the survivor to <base><ext>.
//
// Reconciliation is not safe to run concurrently on overlapping directory
// scopes. Callers must serialize runs per split; a single Reconciler guards
// each group's delete/rename sequence with a mutex.
package reconciler

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/labelsync/pkg/dataset"
	"github.com/agentstation/labelsync/pkg/errors"
	"github.com/agentstation/labelsync/pkg/logging"
)

// Reconciler resolves duplicate annotation groups.
type Reconciler interface {
	// Reconcile resolves every duplicate group among candidates with the
	// configured strategy. Groups of one are left untouched.
	Reconcile(ctx context.Context, candidates []dataset.AnnotationCandidate) (*Result, error)

	// AlignSplit resolves groups newest-wins and renames survivors to their
	// canonical names, but only for groups whose base name matches an image
	// stem. Other groups are counted as orphans and left alone.
	AlignSplit(ctx context.Context, split string, imageStems []string, candidates []dataset.AnnotationCandidate) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	strategy Strategy
	fs       afero.Fs
	dryRun   bool
	rename   bool
	logger   *zerolog.Logger

	mu sync.Mutex
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		strategy: options.strategy,
		fs:       options.fs,
		dryRun:   options.dryRun,
		rename:   options.rename,
		logger:   options.logger,
	}, nil
}

// group is a set of candidates sharing a GroupKey, in listing order.
type group struct {
	key     dataset.GroupKey
	members []dataset.AnnotationCandidate
}

// groupCandidates partitions candidates by (dir, base), keeping groups in
// order of first appearance.
func groupCandidates(candidates []dataset.AnnotationCandidate) []*group {
	index := make(map[dataset.GroupKey]*group)
	var groups []*group
	for _, c := range candidates {
		key := c.Key()
		g, ok := index[key]
		if !ok {
			g = &group{key: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, c)
	}
	return groups
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(ctx context.Context, candidates []dataset.AnnotationCandidate) (*Result, error) {
	logger := r.loggerFor(ctx).With().Str("strategy", r.strategy.Type().String()).Logger()
	result := newResult(r.strategy.Type(), r.dryRun, r.rename)
	defer result.finish()

	groups := groupCandidates(candidates)
	result.Stats.Candidates = len(candidates)
	result.Stats.Groups = len(groups)

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return result, stderrors.Join(errors.ErrCanceled, err)
		}
		if len(g.members) < 2 {
			result.Stats.Unchanged++
			continue
		}
		result.Stats.DuplicateGroups++
		r.resolve(&logger, result, g, r.strategy.Pick(g.members), r.rename)
	}

	logger.Info().
		Int("groups", result.Stats.DuplicateGroups).
		Int("deleted", result.Stats.Deleted).
		Int("renamed", result.Stats.Renamed).
		Int("failures", len(result.Failures)).
		Bool("dry_run", r.dryRun).
		Msg("Reconciliation finished")
	return result, nil
}

// AlignSplit implements Reconciler.
func (r *reconciler) AlignSplit(ctx context.Context, split string, imageStems []string, candidates []dataset.AnnotationCandidate) (*Result, error) {
	logger := r.loggerFor(ctx).With().Str("split", split).Str("operation", "align").Logger()
	strategy := NewMtimeStrategy()
	result := newResult(strategy.Type(), r.dryRun, true)
	defer result.finish()

	images := make(map[string]struct{}, len(imageStems))
	for _, stem := range imageStems {
		images[stem] = struct{}{}
	}

	groups := groupCandidates(candidates)
	result.Stats.Candidates = len(candidates)
	result.Stats.Groups = len(groups)

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return result, stderrors.Join(errors.ErrCanceled, err)
		}
		if _, ok := images[g.key.Base]; !ok {
			result.Stats.OrphanGroups++
			result.Stats.OrphanFiles += len(g.members)
			result.Groups = append(result.Groups, GroupResult{Key: g.key, Orphan: true})
			logger.Debug().Str("base", g.key.Base).Int("files", len(g.members)).Msg("No image for label group, leaving untouched")
			continue
		}
		if len(g.members) == 1 && g.members[0].IsCanonical() {
			result.Stats.Unchanged++
			result.Stats.Kept++
			continue
		}
		if len(g.members) > 1 {
			result.Stats.DuplicateGroups++
		}
		r.resolve(&logger, result, g, strategy.Pick(g.members), true)
	}

	logger.Info().
		Int("kept", result.Stats.Kept).
		Int("renamed", result.Stats.Renamed).
		Int("deleted", result.Stats.Deleted).
		Int("orphans", result.Stats.OrphanFiles).
		Bool("dry_run", r.dryRun).
		Msg("Alignment finished")
	return result, nil
}

// resolve applies the evict / delete / rename sequence for one group.
func (r *reconciler) resolve(logger *zerolog.Logger, result *Result, g *group, keep int, rename bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	survivor := g.members[keep]
	gr := GroupResult{Key: g.key, Survivor: survivor}
	canonical := filepath.Join(g.key.Dir, g.key.Base+survivor.Ext)
	needsRename := rename && filepath.Clean(survivor.Path) != canonical

	evicted := ""
	evictFailed := false
	if needsRename {
		exists, err := afero.Exists(r.fs, canonical)
		switch {
		case err != nil:
			evictFailed = true
			r.fail(logger, result, Action{Type: ActionEvict, Group: g.key, Path: canonical}, errors.WrapIO("stat", canonical, err))
		case exists:
			evicted = canonical
			if !r.apply(logger, result, Action{Type: ActionEvict, Group: g.key, Path: canonical}) {
				evictFailed = true
			}
		}
	}

	for i, m := range g.members {
		if i == keep {
			continue
		}
		gr.Losers = append(gr.Losers, m)
		if filepath.Clean(m.Path) == evicted {
			continue
		}
		r.apply(logger, result, Action{Type: ActionDelete, Group: g.key, Path: m.Path})
	}

	if needsRename && !evictFailed {
		r.apply(logger, result, Action{Type: ActionRename, Group: g.key, Path: survivor.Path, Target: canonical})
	}

	result.Stats.Kept++
	result.Groups = append(result.Groups, gr)
}

// apply performs (or, in dry-run mode, records) an action. It returns false
// when the mutation failed.
func (r *reconciler) apply(logger *zerolog.Logger, result *Result, action Action) bool {
	if !r.dryRun {
		var err error
		switch action.Type {
		case ActionRename:
			err = r.fs.Rename(action.Path, action.Target)
		default:
			err = r.fs.Remove(action.Path)
		}
		if err != nil {
			op := "delete"
			if action.Type == ActionRename {
				op = "rename"
			}
			r.fail(logger, result, action, errors.WrapIO(op, action.Path, err))
			return false
		}
		action.Applied = true
	}

	switch action.Type {
	case ActionEvict:
		result.Stats.Evicted++
	case ActionDelete:
		result.Stats.Deleted++
	case ActionRename:
		result.Stats.Renamed++
	}
	result.Actions = append(result.Actions, action)
	logger.Debug().Str("action", string(action.Type)).Str("path", action.Path).Str("target", action.Target).Bool("applied", action.Applied).Msg("Label action")
	return true
}

func (r *reconciler) fail(logger *zerolog.Logger, result *Result, action Action, err error) {
	result.Failures = append(result.Failures, Failure{Action: action, Err: err})
	event := logger.Warn().Err(err).Str("action", string(action.Type)).Str("path", action.Path)
	if stderrors.Is(err, fs.ErrNotExist) {
		event = event.Bool("vanished", true)
	}
	event.Msg("Label action failed")
}

func (r *reconciler) loggerFor(ctx context.Context) *zerolog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logging.FromContext(ctx)
}
