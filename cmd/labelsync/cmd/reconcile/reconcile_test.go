package reconcile

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/labelsync/internal/appcontext"
)

func seed(t *testing.T, fsys afero.Fs, files map[string]int64) {
	t.Helper()
	for path, sec := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fsys, path, []byte(filepath.Base(path)), 0o644))
		ts := time.Unix(sec, 0)
		require.NoError(t, fsys.Chtimes(path, ts, ts))
	}
}

func TestRunDryRun(t *testing.T) {
	mock := &appcontext.Mock{}
	labels := filepath.Join("datasets", "tradingview", "labels", "train")
	seed(t, mock.Fs(), map[string]int64{
		filepath.Join(labels, "a-img1.txt"): 10,
		filepath.Join(labels, "b-img1.txt"): 30,
	})

	var buf bytes.Buffer
	err := Run(context.Background(), mock, &Flags{Root: labels, DryRun: true, Rename: true}, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "[DRY] rm "+filepath.Join(labels, "a-img1.txt"))
	assert.Contains(t, buf.String(), "Dry run only")
	exists, err := afero.Exists(mock.Fs(), filepath.Join(labels, "a-img1.txt"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunFailuresReturnError(t *testing.T) {
	mem := afero.NewMemMapFs()
	labels := filepath.Join("datasets", "tradingview", "labels", "train")
	seed(t, mem, map[string]int64{
		filepath.Join(labels, "a-img1.txt"): 10,
		filepath.Join(labels, "b-img1.txt"): 30,
	})
	readOnly := afero.NewReadOnlyFs(mem)
	mock := &appcontext.Mock{FsFunc: func() afero.Fs { return readOnly }}

	var buf bytes.Buffer
	err := Run(context.Background(), mock, &Flags{Recursive: true}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 failed actions")
	assert.Contains(t, buf.String(), "1 failures")
}

func TestNewCommandFlags(t *testing.T) {
	cmd := NewCommand(&appcontext.Mock{})
	for _, name := range []string{"root", "recursive", "strategy", "dry-run", "rename"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
