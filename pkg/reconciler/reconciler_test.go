package reconciler_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/labelsync/pkg/dataset"
	"github.com/agentstation/labelsync/pkg/errors"
	"github.com/agentstation/labelsync/pkg/logging"
	"github.com/agentstation/labelsync/pkg/reconciler"
	"github.com/agentstation/labelsync/pkg/scanner"
)

const labelDir = "data/labels/train"

// buildTree writes each file with its own name as content and the given mtime.
func buildTree(t *testing.T, files map[string]int64) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(labelDir, 0o755))
	for name, mtime := range files {
		path := filepath.Join(labelDir, name)
		require.NoError(t, afero.WriteFile(fsys, path, []byte(name), 0o644))
		ts := time.Unix(0, mtime)
		require.NoError(t, fsys.Chtimes(path, ts, ts))
	}
	return fsys
}

func scan(t *testing.T, fsys afero.Fs) []dataset.AnnotationCandidate {
	t.Helper()
	candidates, err := scanner.New(fsys, dataset.NewLayout("data")).ListAnnotationCandidates("train")
	require.NoError(t, err)
	return candidates
}

// snapshot returns path -> content for every file under data/.
func snapshot(t *testing.T, fsys afero.Fs) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := afero.Walk(fsys, "data", func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := afero.ReadFile(fsys, path)
		files[path] = string(data)
		return err
	})
	require.NoError(t, err)
	return files
}

func names(t *testing.T, fsys afero.Fs) []string {
	t.Helper()
	var out []string
	for path := range snapshot(t, fsys) {
		out = append(out, filepath.Base(path))
	}
	sort.Strings(out)
	return out
}

func newReconciler(t *testing.T, fsys afero.Fs, opts ...reconciler.Option) reconciler.Reconciler {
	t.Helper()
	opts = append([]reconciler.Option{reconciler.WithFs(fsys), reconciler.WithLogger(logging.NewNopLogger())}, opts...)
	r, err := reconciler.New(opts...)
	require.NoError(t, err)
	return r
}

func TestReconcileDeletesLosersWithoutRename(t *testing.T) {
	fsys := buildTree(t, map[string]int64{
		"a-img1.txt": 10,
		"b-img1.txt": 30,
		"c-img1.txt": 20,
		"img2.txt":   5,
	})

	result, err := newReconciler(t, fsys).Reconcile(context.Background(), scan(t, fsys))
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	assert.Equal(t, []string{"b-img1.txt", "img2.txt"}, names(t, fsys))
	assert.Equal(t, 1, result.Stats.DuplicateGroups)
	assert.Equal(t, 2, result.Stats.Deleted)
	assert.Equal(t, 0, result.Stats.Renamed)
	assert.Equal(t, 1, result.Stats.Unchanged)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, "b-img1.txt", result.Groups[0].Survivor.Name)
}

func TestReconcileIDLexWithRename(t *testing.T) {
	fsys := buildTree(t, map[string]int64{
		"aaa-img1.txt": 30,
		"zzz-img1.txt": 10,
		"mmm-img1.txt": 20,
	})

	r := newReconciler(t, fsys, reconciler.WithStrategyName("id_lex"), reconciler.WithRename(true))
	result, err := r.Reconcile(context.Background(), scan(t, fsys))
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	assert.Equal(t, map[string]string{
		filepath.Join(labelDir, "img1.txt"): "zzz-img1.txt",
	}, snapshot(t, fsys))
	assert.Equal(t, 1, result.Stats.Renamed)
	assert.Equal(t, reconciler.StrategyTypeIDLex, result.Strategy)
}

func TestReconcileEvictsStaleCanonicalFirst(t *testing.T) {
	fsys := buildTree(t, map[string]int64{
		"img1.txt":     5,
		"aaa-img1.txt": 10,
		"bbb-img1.txt": 30,
	})

	result, err := newReconciler(t, fsys, reconciler.WithRename(true)).Reconcile(context.Background(), scan(t, fsys))
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	assert.Equal(t, map[string]string{
		filepath.Join(labelDir, "img1.txt"): "bbb-img1.txt",
	}, snapshot(t, fsys))

	require.Len(t, result.Actions, 3)
	assert.Equal(t, reconciler.ActionEvict, result.Actions[0].Type)
	assert.Equal(t, reconciler.ActionDelete, result.Actions[1].Type)
	assert.Equal(t, filepath.Join(labelDir, "aaa-img1.txt"), result.Actions[1].Path)
	assert.Equal(t, reconciler.ActionRename, result.Actions[2].Type)
	assert.Equal(t, 1, result.Stats.Evicted)
	assert.Equal(t, 1, result.Stats.Deleted)
}

func TestReconcileCanonicalSurvivorStays(t *testing.T) {
	fsys := buildTree(t, map[string]int64{
		"img1.txt":     50,
		"aaa-img1.txt": 10,
	})

	result, err := newReconciler(t, fsys, reconciler.WithRename(true)).Reconcile(context.Background(), scan(t, fsys))
	require.NoError(t, err)

	assert.Equal(t, []string{"img1.txt"}, names(t, fsys))
	assert.Equal(t, 0, result.Stats.Renamed)
	assert.Equal(t, 0, result.Stats.Evicted)
	assert.Equal(t, 1, result.Stats.Deleted)
}

func TestReconcileLeavesSingletonsUntouched(t *testing.T) {
	fsys := buildTree(t, map[string]int64{
		"aaa-img1.txt": 10,
		"img2.txt":     10,
	})
	before := snapshot(t, fsys)

	result, err := newReconciler(t, fsys, reconciler.WithRename(true)).Reconcile(context.Background(), scan(t, fsys))
	require.NoError(t, err)

	assert.Equal(t, before, snapshot(t, fsys))
	assert.False(t, result.HasChanges())
	assert.Equal(t, 2, result.Stats.Unchanged)
}

func TestReconcileIsIdempotent(t *testing.T) {
	fsys := buildTree(t, map[string]int64{
		"img1.txt":     1,
		"aaa-img1.txt": 2,
		"bbb-img1.txt": 3,
		"x-img2.txt":   4,
		"y-img2.txt":   4,
		"img3.txt":     5,
	})
	r := newReconciler(t, fsys, reconciler.WithRename(true))

	first, err := r.Reconcile(context.Background(), scan(t, fsys))
	require.NoError(t, err)
	assert.True(t, first.HasChanges())
	after := snapshot(t, fsys)

	second, err := r.Reconcile(context.Background(), scan(t, fsys))
	require.NoError(t, err)
	assert.False(t, second.HasChanges())
	assert.Equal(t, 0, second.Stats.DuplicateGroups)
	assert.Equal(t, after, snapshot(t, fsys))

	// mtime tie on img2 keeps x- (first in listing order)
	assert.Equal(t, "x-img2.txt", after[filepath.Join(labelDir, "img2.txt")])
}

func TestReconcileBijection(t *testing.T) {
	fsys := buildTree(t, map[string]int64{
		"a-chart_1.txt": 1,
		"b-chart_1.txt": 2,
		"a-chart_2.txt": 3,
		"chart_2.txt":   1,
		"q-chart_3.txt": 9,
		"chart_4.txt":   9,
	})

	_, err := newReconciler(t, fsys, reconciler.WithRename(true)).Reconcile(context.Background(), scan(t, fsys))
	require.NoError(t, err)

	bases := map[string]int{}
	for _, c := range scan(t, fsys) {
		bases[c.Base]++
	}
	for base, n := range bases {
		assert.Equal(t, 1, n, "base %s maps to %d files", base, n)
	}
	assert.Len(t, bases, 4)
}

func TestReconcileDryRunIsPure(t *testing.T) {
	fsys := buildTree(t, map[string]int64{
		"img1.txt":     5,
		"aaa-img1.txt": 10,
		"bbb-img1.txt": 30,
		"x-img2.txt":   1,
		"y-img2.txt":   2,
	})
	before := snapshot(t, fsys)

	r := newReconciler(t, fsys, reconciler.WithDryRun(true), reconciler.WithRename(true))
	result, err := r.Reconcile(context.Background(), scan(t, fsys))
	require.NoError(t, err)

	assert.Equal(t, before, snapshot(t, fsys))
	assert.True(t, result.DryRun)
	require.NotEmpty(t, result.Actions)
	for _, a := range result.Actions {
		assert.False(t, a.Applied)
		assert.Contains(t, a.String(), "[DRY]")
	}
	assert.Equal(t, 1, result.Stats.Evicted)
	assert.Equal(t, 2, result.Stats.Deleted)
	assert.Equal(t, 2, result.Stats.Renamed)
	assert.Contains(t, result.Summary(), "Dry run only")
}

func TestReconcileCollectsFailuresWithoutAborting(t *testing.T) {
	base := buildTree(t, map[string]int64{
		"a-img1.txt": 1,
		"b-img1.txt": 2,
		"a-img2.txt": 1,
		"b-img2.txt": 2,
	})
	candidates := scan(t, base)
	readOnly := afero.NewReadOnlyFs(base)

	result, err := newReconciler(t, readOnly).Reconcile(context.Background(), candidates)
	require.NoError(t, err)

	assert.False(t, result.IsSuccess())
	assert.Len(t, result.Failures, 2)
	assert.Equal(t, 2, result.Stats.DuplicateGroups)
	assert.Equal(t, 0, result.Stats.Deleted)
	assert.Error(t, result.Err())
	assert.Contains(t, result.Summary(), "2 failures")

	var ioErr *errors.IOError
	require.True(t, errors.As(result.Failures[0].Err, &ioErr))
	assert.Equal(t, "delete", ioErr.Operation)
}

func TestReconcileVanishedFile(t *testing.T) {
	fsys := buildTree(t, map[string]int64{
		"a-img1.txt": 1,
		"b-img1.txt": 2,
		"a-img2.txt": 1,
		"b-img2.txt": 2,
	})
	candidates := scan(t, fsys)
	require.NoError(t, fsys.Remove(filepath.Join(labelDir, "a-img1.txt")))

	result, err := newReconciler(t, fsys).Reconcile(context.Background(), candidates)
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.ErrorIs(t, result.Failures[0], fs.ErrNotExist)
	assert.Equal(t, []string{"b-img1.txt", "b-img2.txt"}, names(t, fsys))
}

func TestReconcileCanceled(t *testing.T) {
	fsys := buildTree(t, map[string]int64{"a-img1.txt": 1, "b-img1.txt": 2})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newReconciler(t, fsys).Reconcile(ctx, scan(t, fsys))
	assert.True(t, errors.IsCanceled(err))
	assert.Len(t, names(t, fsys), 2)
}

func TestAlignSplit(t *testing.T) {
	fsys := buildTree(t, map[string]int64{
		"a-img1.txt":      1,
		"b-img1.txt":      2,
		"q-img2.txt":      1,
		"img3.txt":        1,
		"a-orphan.txt":    1,
		"b-orphan.txt":    2,
		"lonely-nope.txt": 1,
	})
	images := []string{"img1", "img2", "img3"}

	result, err := newReconciler(t, fsys).AlignSplit(context.Background(), "train", images, scan(t, fsys))
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	assert.Equal(t, []string{"a-orphan.txt", "b-orphan.txt", "img1.txt", "img2.txt", "img3.txt", "lonely-nope.txt"}, names(t, fsys))
	assert.Equal(t, "b-img1.txt", snapshot(t, fsys)[filepath.Join(labelDir, "img1.txt")])

	assert.Equal(t, 3, result.Stats.Kept)
	assert.Equal(t, 2, result.Stats.Renamed)
	assert.Equal(t, 1, result.Stats.Deleted)
	assert.Equal(t, 2, result.Stats.OrphanGroups)
	assert.Equal(t, 3, result.Stats.OrphanFiles)

	again, err := newReconciler(t, fsys).AlignSplit(context.Background(), "train", images, scan(t, fsys))
	require.NoError(t, err)
	assert.False(t, again.HasChanges())
}

func TestAlignSplitNeverTouchesOrphans(t *testing.T) {
	fsys := buildTree(t, map[string]int64{
		"a-img1.txt": 1,
		"b-img1.txt": 2,
		"img1.txt":   3,
	})
	before := snapshot(t, fsys)

	result, err := newReconciler(t, fsys).AlignSplit(context.Background(), "train", nil, scan(t, fsys))
	require.NoError(t, err)

	assert.Equal(t, before, snapshot(t, fsys))
	assert.Equal(t, 1, result.Stats.OrphanGroups)
	assert.Equal(t, 3, result.Stats.OrphanFiles)
	assert.Contains(t, result.Summary(), "labels without image 3")
}
