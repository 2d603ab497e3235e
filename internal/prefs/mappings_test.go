package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/projectmatch/internal/database/repository"
)

func TestMappingsRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", mappingsFile)
	in := []repository.Mapping{
		{Comment: "weekly sync", Category: "Meetings", Project: "Orion"},
		{Comment: "admin", Project: ""},
	}
	require.NoError(t, SaveMappings(path, in))

	out, err := LoadMappings(path)
	require.NoError(t, err)
	require.Equal(t, []repository.Mapping{
		{Comment: "admin", Project: ""},
		{Comment: "weekly sync", Category: "Meetings", Project: "Orion"},
	}, out)

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestLoadMappingsMissingFile(t *testing.T) {
	t.Parallel()
	out, err := LoadMappings(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestLoadMappingsRejectsGarbage(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), mappingsFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := LoadMappings(path)
	require.Error(t, err)
}
