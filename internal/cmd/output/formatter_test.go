package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type classRow struct {
	ID   int    `json:"id"`
	Name string `json:"class_name"`
	note string
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatTable},
		{in: "JSON", want: FormatJSON},
		{in: " yaml ", want: FormatYAML},
		{in: "table", want: FormatTable},
		{in: "wide", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestTableFormatterStructSlice(t *testing.T) {
	var buf bytes.Buffer
	rows := []classRow{{ID: 0, Name: "symbol_title", note: "x"}, {ID: 1, Name: "last_price_pill"}}

	require.NoError(t, NewFormatter(FormatTable).Format(&buf, rows))

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "CLASS NAME")
	assert.Contains(t, out, "last_price_pill")
	assert.NotContains(t, out, "NOTE")
}

func TestTableFormatterData(t *testing.T) {
	var buf bytes.Buffer
	data := Data{
		Headers:         []string{"Class", "Boxes"},
		Rows:            [][]string{{"symbol_title", "12"}},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}

	require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))
	assert.Contains(t, buf.String(), "symbol_title")
	assert.Contains(t, buf.String(), "12")
}

func TestJSONAndYAMLFormatters(t *testing.T) {
	rows := []classRow{{ID: 1, Name: "last_price_pill"}}

	var jsonBuf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&jsonBuf, rows))
	assert.JSONEq(t, `[{"id":1,"class_name":"last_price_pill"}]`, jsonBuf.String())

	var yamlBuf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&yamlBuf, map[string]int{"images": 3}))
	assert.Equal(t, "images: 3\n", yamlBuf.String())
}

func TestHeading(t *testing.T) {
	assert.Equal(t, "== TRAIN ==", Heading("train"))
}
