package reconciler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/labelsync/pkg/dataset"
	"github.com/agentstation/labelsync/pkg/errors"
	"github.com/agentstation/labelsync/pkg/reconciler"
)

func candidate(name string, mtime int64) dataset.AnnotationCandidate {
	return dataset.NewAnnotationCandidate("labels/train/"+name, mtime)
}

func TestMtimeStrategy(t *testing.T) {
	s := reconciler.NewMtimeStrategy()
	assert.Equal(t, reconciler.StrategyTypeMtime, s.Type())
	assert.NotEmpty(t, s.Description())

	t.Run("newest wins", func(t *testing.T) {
		group := []dataset.AnnotationCandidate{
			candidate("a-img.txt", 10),
			candidate("b-img.txt", 30),
			candidate("c-img.txt", 20),
		}
		assert.Equal(t, 1, s.Pick(group))
	})

	t.Run("ties go to first in listing order", func(t *testing.T) {
		group := []dataset.AnnotationCandidate{
			candidate("a-img.txt", 5),
			candidate("b-img.txt", 30),
			candidate("c-img.txt", 30),
		}
		assert.Equal(t, 1, s.Pick(group))
	})
}

func TestIDLexStrategy(t *testing.T) {
	s := reconciler.NewIDLexStrategy()
	assert.Equal(t, reconciler.StrategyTypeIDLex, s.Type())

	t.Run("greatest id wins", func(t *testing.T) {
		group := []dataset.AnnotationCandidate{
			candidate("aaa-img.txt", 30),
			candidate("zzz-img.txt", 10),
			candidate("mmm-img.txt", 20),
		}
		assert.Equal(t, 1, s.Pick(group))
	})

	t.Run("unprefixed loses to any prefix", func(t *testing.T) {
		group := []dataset.AnnotationCandidate{
			candidate("img.txt", 99),
			candidate("0-img.txt", 1),
		}
		assert.Equal(t, 1, s.Pick(group))
	})
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		name string
		want reconciler.StrategyType
	}{
		{name: "mtime", want: reconciler.StrategyTypeMtime},
		{name: "", want: reconciler.StrategyTypeMtime},
		{name: "ID_LEX", want: reconciler.StrategyTypeIDLex},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := reconciler.ParseStrategy(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.want, s.Type())
		})
	}

	_, err := reconciler.ParseStrategy("newest")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))

	_, err = reconciler.New(reconciler.WithStrategyName("newest"))
	assert.True(t, errors.IsConfigError(err))

	_, err = reconciler.New(reconciler.WithStrategy(nil))
	assert.True(t, errors.IsValidationError(err))
}
