package sampledata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/projectmatch/internal/database"
	"github.com/jask/projectmatch/internal/database/repository"
)

func TestLogIsDeterministic(t *testing.T) {
	t.Parallel()
	a := Log(7, 50)
	require.Len(t, a, 50)
	require.Equal(t, a, Log(7, 50))
	require.Equal(t, 2, a[0].Row)
	require.Equal(t, 51, a[49].Row)
}

func TestSeed(t *testing.T) {
	t.Parallel()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := Repos{Projects: repository.NewProjectRepo(db), Log: repository.NewLogEntryRepo(db)}
	require.NoError(t, Seed(context.Background(), repos, 1, 30))

	names, err := repos.Projects.Names(context.Background())
	require.NoError(t, err)
	require.Equal(t, Projects, names)

	n, err := repos.Log.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 30, n)
}
