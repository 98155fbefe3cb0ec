package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTagRecord(t *testing.T) {
	parsed := Parse("Tag|string|v1.0.4-14-g2414721\n")

	require.Len(t, parsed, 1)
	assert.Equal(t, Record{Name: "Tag", Type: "string", Value: "v1.0.4-14-g2414721"}, parsed[0])
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Record
	}{
		{
			name:     "value containing pipes is kept whole",
			input:    "Query|string|a|b|c",
			expected: []Record{{"Query", "string", "a|b|c"}},
		},
		{
			name:     "missing value",
			input:    "Flag|bool",
			expected: []Record{{"Flag", "bool", ""}},
		},
		{
			name:     "missing type and value",
			input:    "Name",
			expected: []Record{{"Name", "string", ""}},
		},
		{
			name:     "empty name and type",
			input:    "||value",
			expected: []Record{{"Unknown", "string", "value"}},
		},
		{
			name:  "mixed line endings and blank lines",
			input: "A|int|1\r\n\r\nB|bool|true\rC|debug|x\n\n",
			expected: []Record{
				{"A", "int", "1"},
				{"B", "bool", "true"},
				{"C", "debug", "x"},
			},
		},
		{
			name:     "value whitespace is preserved",
			input:    " Name | string | padded ",
			expected: []Record{{"Name", "string", " padded "}},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.input))
		})
	}
}

func TestFind(t *testing.T) {
	list := Parse("Tag|string|v1.0.0\nBuild|int|42")

	tag, err := Find(list, TagName)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", tag.Value)

	_, err = Find(Parse("Build|int|42"), TagName)
	assert.ErrorIs(t, err, ErrMissingTag)

	_, err = Find(list, "Missing")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingTag)
}

func TestMerge(t *testing.T) {
	base := Parse("Tag|debug|v1.0.0\nBuild|int|1")

	merged := Merge(base, Record{"Extra", "string", "x"}, Record{"Tag", "string", "v2.0.0"})

	assert.Equal(t, []Record{
		{"Tag", "string", "v2.0.0"},
		{"Build", "int", "1"},
		{"Extra", "string", "x"},
	}, merged)
	assert.Equal(t, "v1.0.0", base[0].Value, "base is not modified")
}

func TestFormatRoundTrip(t *testing.T) {
	list := []Record{
		{"Tag", "string", "v1.0.4-14-g2414721"},
		{"Pipes", "string", "a|b"},
		{"Count", "int", "7"},
	}

	assert.Equal(t, list, Parse(Format(list)))
}

func TestIsDebug(t *testing.T) {
	assert.True(t, Record{Type: TypeDebug}.IsDebug())
	assert.False(t, Record{Type: TypeString}.IsDebug())
}
