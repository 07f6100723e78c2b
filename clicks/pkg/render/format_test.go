package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     string
		wantType string
		items    int
	}{
		{"keeps key order", `{"b":1,"a":[]}`, "{\n  \"b\": 1,\n  \"a\": []\n}", "object", 2},
		{"nested", `[{"id":1}]`, "[\n  {\n    \"id\": 1\n  }\n]", "array", 1},
		{"no html escaping", `{"html":"<b>&</b>"}`, "{\n  \"html\": \"<b>&</b>\"\n}", "object", 1},
		{"keeps number text", `{"n":1.50}`, "{\n  \"n\": 1.50\n}", "object", 1},
		{"scalar", ` "hi" `, `"hi"`, "string", 0},
		{"null", `null`, `null`, "null", 0},
		{"leading bom", "\xef\xbb\xbf{\"count\": 3}", "{\n  \"count\": 3\n}", "object", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, info, err := Format([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantType, info.Type)
			assert.Equal(t, tt.items, info.Items)
		})
	}
}

func TestFormatRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "plain text", `{"a":1} trailing`, `{'a':1}`, `[1,2,`} {
		_, _, err := Format([]byte(in))
		assert.Error(t, err, "input %q", in)
	}
}

func TestFormatDepthLimit(t *testing.T) {
	_, _, err := Format([]byte(strings.Repeat("[", 200) + strings.Repeat("]", 200)))
	assert.NoError(t, err)

	_, _, err = Format([]byte(strings.Repeat("[", 400) + strings.Repeat("]", 400)))
	assert.Error(t, err)
}

func TestWriterTarget(t *testing.T) {
	var buf bytes.Buffer
	tgt := NewWriterTarget("clicks", &buf)
	tgt.SetContent("{\n  \"count\": 3\n}")

	assert.Equal(t, "clicks", tgt.ID())
	assert.Equal(t, "{\n  \"count\": 3\n}\n", buf.String())
}

func TestRegion(t *testing.T) {
	r := NewRegion("clicks")
	assert.True(t, r.UpdatedAt().IsZero())

	r.SetContent("a")
	r.SetContent("b")

	assert.Equal(t, "b", r.Content())
	assert.Equal(t, 2, r.Writes())
	assert.False(t, r.UpdatedAt().IsZero())
}
