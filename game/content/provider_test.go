package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedDefaultTaskSet(t *testing.T) {
	p, err := NewFileProvider("", zerolog.Nop())
	require.NoError(t, err)

	def := p.Default()
	require.NotNil(t, def)
	assert.Equal(t, DefaultTaskSetID, def.ID)
	assert.NotEmpty(t, def.Title)
	assert.NotEmpty(t, def.Tasks)

	ts, err := p.TaskSet(DefaultTaskSetID)
	require.NoError(t, err)
	assert.Equal(t, def.Tasks, ts.Tasks)

	_, err = p.TaskSet("nope")
	assert.ErrorIs(t, err, ErrTaskSetNotFound)
}

func TestDirectoryOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	custom := `{"title":"Movie Night","description":"film dares","tasks":["quote a movie","act a scene"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "movies.json"), []byte(custom), 0644))
	override := `{"title":"House Rules","tasks":["one task"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultTaskSetID+".json"), []byte(override), 0644))

	p, err := NewFileProvider(dir, zerolog.Nop())
	require.NoError(t, err)

	ts, err := p.TaskSet("movies")
	require.NoError(t, err)
	assert.Equal(t, "movies", ts.ID)
	assert.Equal(t, "Movie Night", ts.Title)
	assert.Len(t, ts.Tasks, 2)

	// A directory file with the default's id shadows the embedded set.
	ts, err = p.TaskSet(DefaultTaskSetID)
	require.NoError(t, err)
	assert.Equal(t, "House Rules", ts.Title)

	// The embedded fallback is untouched by the shadowing.
	assert.NotEqual(t, "House Rules", p.Default().Title)
}

func TestMissingDirectoryRejected(t *testing.T) {
	_, err := NewFileProvider("/does/not/exist", zerolog.Nop())
	assert.Error(t, err)
}

func TestListMergesAndSkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "movies.json"),
		[]byte(`{"title":"Movie Night","tasks":["a"]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"),
		[]byte(`{"title":"no tasks"}`), 0644))

	p, err := NewFileProvider(dir, zerolog.Nop())
	require.NoError(t, err)

	infos, err := p.List()
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, info := range infos {
		ids[info.ID] = true
		assert.Positive(t, info.TaskCount)
	}
	assert.True(t, ids["movies"])
	assert.True(t, ids[DefaultTaskSetID])
	assert.False(t, ids["broken"])
}

func TestParseTaskSetValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `{{`},
		{name: "missing title", payload: `{"tasks":["a"]}`},
		{name: "empty tasks", payload: `{"title":"t","tasks":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTaskSet("x", []byte(tt.payload))
			assert.ErrorIs(t, err, ErrInvalidTaskSet)
		})
	}
}

func TestAllocateColor(t *testing.T) {
	c := AllocateColor(nil)
	assert.Contains(t, palette, c)

	// With one color free, allocation must pick it.
	taken := append([]string(nil), palette[:len(palette)-1]...)
	assert.Equal(t, palette[len(palette)-1], AllocateColor(taken))

	// Exhausted palette still yields a palette color.
	assert.Contains(t, palette, AllocateColor(palette))
}
