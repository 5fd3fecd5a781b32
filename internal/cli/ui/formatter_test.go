package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      OutputFormat
		wantError bool
	}{
		{name: "empty string defaults to pretty", input: "", want: FormatPretty},
		{name: "pretty format", input: "pretty", want: FormatPretty},
		{name: "json format", input: "json", want: FormatJSON},
		{name: "invalid format", input: "xml", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONFormatter_Output(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewJSONFormatter(&buf)

	require.NoError(t, formatter.Output(map[string]string{"root": "/work/game"}))

	var result map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "/work/game", result["root"])
	assert.True(t, formatter.IsJSON())
}

func TestPrettyFormatter_Output(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewPrettyFormatter(&buf)

	require.NoError(t, formatter.Output("as is"))
	require.NoError(t, formatter.Output(42))
	assert.Equal(t, "as is42\n", buf.String())
	assert.False(t, formatter.IsJSON())
}

func TestSetGlobalFormatter(t *testing.T) {
	original := GlobalFormatter
	defer func() { GlobalFormatter = original }()

	require.NoError(t, SetGlobalFormatter(FormatJSON))
	assert.True(t, GlobalFormatter.IsJSON())

	require.NoError(t, SetGlobalFormatter(FormatPretty))
	assert.False(t, GlobalFormatter.IsJSON())

	assert.Error(t, SetGlobalFormatter("yaml"))
}
