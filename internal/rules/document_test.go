package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentJSON(t *testing.T) {
	doc := `[
		{"trigger": ";email", "replacement": "me@example.com"},
		{"trigger": ";sig", "replacement": "-- Jo\n"}
	]`

	rs, err := ParseDocument([]byte(doc), "json")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, ";email", rs[0].Trigger)
	assert.Equal(t, "me@example.com", rs[0].Replacement)
	assert.Equal(t, "-- Jo\n", rs[1].Replacement)
}

func TestParseDocumentYAML(t *testing.T) {
	doc := "- trigger: \";addr\"\n  replacement: \"1 Main St\"\n"

	rs, err := ParseDocument([]byte(doc), "yaml")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, ";addr", rs[0].Trigger)
}

func TestParseDocumentEmptyArray(t *testing.T) {
	rs, err := ParseDocument([]byte(`[]`), "json")
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestParseDocumentRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"not an array", `{"trigger": ";a", "replacement": "b"}`},
		{"missing replacement", `[{"trigger": ";a"}]`},
		{"missing trigger", `[{"replacement": "b"}]`},
		{"empty trigger", `[{"trigger": "", "replacement": "b"}]`},
		{"extra field", `[{"trigger": ";a", "replacement": "b", "mode": "regex"}]`},
		{"wrong type", `[{"trigger": 7, "replacement": "b"}]`},
		{"malformed", `[{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tc.doc), "json")
			assert.Error(t, err)
		})
	}
}

func TestParseDocumentUnknownFormat(t *testing.T) {
	_, err := ParseDocument([]byte(`[]`), "toml")
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, "yaml", FormatForPath("rules.yaml"))
	assert.Equal(t, "yaml", FormatForPath("rules.yml"))
	assert.Equal(t, "json", FormatForPath("rules.json"))
	assert.Equal(t, "json", FormatForPath("rules"))
}
