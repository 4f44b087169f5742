package validator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/labelsync/pkg/errors"
	"github.com/agentstation/labelsync/pkg/validator"
)

func TestParseRecord(t *testing.T) {
	t.Run("valid line", func(t *testing.T) {
		rec, err := validator.ParseRecord("  1 0.25\t0.5 0.1 0.2 ")
		require.NoError(t, err)
		assert.Equal(t, validator.Record{ClassID: 1, CenterX: 0.25, CenterY: 0.5, Width: 0.1, Height: 0.2}, rec)
	})

	errorCases := []struct {
		name string
		line string
	}{
		{name: "four tokens", line: "0 0.1 0.2 0.3"},
		{name: "six tokens", line: "0 0.1 0.2 0.3 0.4 0.5"},
		{name: "float class id", line: "0.0 0.1 0.2 0.3 0.4"},
		{name: "non-numeric coordinate", line: "0 0.1 abc 0.3 0.4"},
		{name: "blank", line: "   "},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.ParseRecord(tc.line)
			require.Error(t, err)
			var parseErr *errors.ParseError
			assert.True(t, errors.As(err, &parseErr))
			assert.Equal(t, "yolo", parseErr.Format)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestBoxValid(t *testing.T) {
	tests := []struct {
		name  string
		rec   validator.Record
		valid bool
	}{
		{name: "centered", rec: validator.Record{CenterX: 0.5, CenterY: 0.5, Width: 0.5, Height: 0.5}, valid: true},
		{name: "edges inclusive", rec: validator.Record{CenterX: 0, CenterY: 1, Width: 1, Height: 1}, valid: true},
		{name: "x out of range", rec: validator.Record{CenterX: 1.1, CenterY: 0.5, Width: 0.5, Height: 0.5}},
		{name: "negative y", rec: validator.Record{CenterX: 0.5, CenterY: -0.1, Width: 0.5, Height: 0.5}},
		{name: "zero width", rec: validator.Record{CenterX: 0.5, CenterY: 0.5, Width: 0, Height: 0.5}},
		{name: "height above one", rec: validator.Record{CenterX: 0.5, CenterY: 0.5, Width: 0.5, Height: 1.5}},
		{name: "nan", rec: validator.Record{CenterX: math.NaN(), CenterY: 0.5, Width: 0.5, Height: 0.5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, tc.rec.BoxValid())
		})
	}
}

func TestBoxString(t *testing.T) {
	rec := validator.Record{CenterX: 1.1, CenterY: 0.5, Width: 0, Height: 0.25}
	assert.Equal(t, "1.1,0.5,0,0.25", rec.BoxString())
}
