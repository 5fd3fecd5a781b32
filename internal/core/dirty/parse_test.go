package dirty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{
			name:   "modified and untracked",
			output: " M assets/foo.txt\n?? assets/bar/baz.txt",
			want:   []string{"assets/foo.txt", "assets/bar/baz.txt"},
		},
		{
			name:   "rename contributes both paths",
			output: "R  old/a.png -> new/a.png\n",
			want:   []string{"old/a.png", "new/a.png"},
		},
		{
			name:   "copy contributes both paths",
			output: "C  src.txt -> dst.txt",
			want:   []string{"src.txt", "dst.txt"},
		},
		{
			name:   "quoted paths with spaces",
			output: `R  "old name.txt" -> "new name.txt"` + "\n" + `?? "with \"quote\".txt"`,
			want:   []string{"old name.txt", "new name.txt", `with "quote".txt`},
		},
		{
			name:   "c-quoted escapes are decoded",
			output: `?? "a\\b.txt"` + "\n" + `?? "tab\there.txt"` + "\n" + `?? "line\nbreak.txt"`,
			want:   []string{`a\b.txt`, "tab\there.txt", "line\nbreak.txt"},
		},
		{
			name:   "octal escapes rebuild utf-8 names",
			output: `?? "caf\303\251.txt"`,
			want:   []string{"caf\u00e9.txt"},
		},
		{
			name:   "malformed quoting falls back to the raw text",
			output: `?? "bad\q.txt"`,
			want:   []string{`bad\q.txt`},
		},
		{
			name:   "arrow in a non rename record is part of the name",
			output: " M a -> b",
			want:   []string{"a -> b"},
		},
		{
			name:   "short and blank lines are skipped",
			output: "\n M\nXY \n M ok.txt\r\n",
			want:   []string{"ok.txt"},
		},
		{
			name:   "empty output",
			output: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.output))
		})
	}
}
