package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicecoach/core"

	"github.com/stretchr/testify/require"
)

var defaultIDs = []string{
	"variables", "loops", "functions", "conditionals", "arrays",
	"objects", "strings", "data_types", "recursion", "error_handling",
}

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, 10, c.Len())
	require.Equal(t, defaultIDs, c.IDs())
}

func TestLoadFallsBack(t *testing.T) {
	dir := t.TempDir()

	malformed := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(malformed, []byte("{not json"), 0o644))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("[]"), 0o644))

	missingID := filepath.Join(dir, "noid.json")
	require.NoError(t, os.WriteFile(missingID, []byte(`[{"title":"X"}]`), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{name: "no path", path: ""},
		{name: "missing file", path: filepath.Join(dir, "nope.json")},
		{name: "malformed", path: malformed},
		{name: "empty array", path: empty},
		{name: "topic without id", path: missingID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Load(tt.path, core.NewNopLogger())
			require.Equal(t, defaultIDs, c.IDs())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.json")
	data := `[
		{"id": "closures", "title": "Closures", "summary": "Functions capturing scope.", "sample_question": "What is a closure?"},
		{"id": "pointers", "title": "Pointers", "summary": "Addresses of values.", "sample_question": "Why use pointers?"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c := Load(path, core.NewNopLogger())
	require.Equal(t, []string{"closures", "pointers"}, c.IDs())

	topic, ok := c.Find("pointers")
	require.True(t, ok)
	require.Equal(t, "Why use pointers?", topic.SampleQuestion)
}

func TestFindIsCaseInsensitive(t *testing.T) {
	c := Default()
	for _, id := range defaultIDs {
		for _, variant := range []string{id, strings.ToUpper(id)} {
			topic, ok := c.Find(variant)
			require.True(t, ok, variant)
			require.Equal(t, id, topic.ID)
		}
	}

	_, ok := c.Find("quantum")
	require.False(t, ok)
	_, ok = c.Find("")
	require.False(t, ok)
}

func TestTopicsReturnsCopy(t *testing.T) {
	c := Default()
	topics := c.Topics()
	topics[0].Title = "changed"

	topic, _ := c.Find("variables")
	require.Equal(t, "Variables", topic.Title)
}
