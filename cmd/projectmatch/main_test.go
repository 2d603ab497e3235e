package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	_, out, err := runCLIApp(t, args...)
	return out, err
}

// runCLIApp runs the CLI and returns the app so tests can inspect it after
// close.
func runCLIApp(t *testing.T, args ...string) (*app, string, error) {
	t.Helper()
	a := newApp()
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	a.close()
	return a, out.String(), err
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

const (
	cliLog = "Date,Team Member,Category,Project,Comments\n" +
		"2026-03-02,Sam,Dev,,worked on alpha launch today\n" +
		"2026-03-03,Lee,Dev,,orio integration\n" +
		"2026-03-04,Kim,Ops,Beta Retrofit,alpha launch\n"
	cliProjects = "Project\nAlpha Launch\nBeta Retrofit\nOrion\n"
)

func TestReconcileCSVApply(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PROJECTMATCH_CONFIG", "")

	logPath := writeFile(t, dir, "log.csv", cliLog)
	projPath := writeFile(t, dir, "projects.csv", cliProjects)
	outPath := filepath.Join(dir, "out.csv")

	out, err := runCLI(t, "reconcile-csv", "--apply", "--threshold", "0.7", "--delay", "0",
		"--log", logPath, "--projects", projPath, "--out", outPath)
	require.NoError(t, err, out)
	require.Contains(t, out, "Found 2 entries to update")
	require.Contains(t, out, "Progress: 2/2 entries updated")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, "2026-03-02,Sam,Dev,Alpha Launch,worked on alpha launch today", lines[1])
	require.Equal(t, "2026-03-03,Lee,Dev,Orion,orio integration", lines[2])
	require.Equal(t, "2026-03-04,Kim,Ops,Beta Retrofit,alpha launch", lines[3])
}

func TestReconcileCSVDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PROJECTMATCH_CONFIG", "")

	outPath := filepath.Join(dir, "out.csv")
	out, err := runCLI(t, "reconcile-csv",
		"--log", writeFile(t, dir, "log.csv", cliLog),
		"--projects", writeFile(t, dir, "projects.csv", cliProjects),
		"--out", outPath)
	require.NoError(t, err, out)
	require.Contains(t, out, "DRY RUN MODE")
	_, err = os.Stat(outPath)
	require.True(t, os.IsNotExist(err))
}

func TestDatabaseWorkflow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PROJECTMATCH_CONFIG", "")
	dbPath := filepath.Join(dir, "data", "pm.db")

	_, err := runCLI(t, "--db", dbPath, "import-projects", writeFile(t, dir, "projects.csv", cliProjects))
	require.NoError(t, err)
	_, err = runCLI(t, "--db", dbPath, "import-log", writeFile(t, dir, "log.csv", cliLog))
	require.NoError(t, err)
	_, err = runCLI(t, "--db", dbPath, "map", "set", "orio integration", "Beta Retrofit", "--category", "Dev")
	require.NoError(t, err)

	out, err := runCLI(t, "--db", dbPath, "reconcile", "--apply", "--delay", "0")
	require.NoError(t, err, out)
	require.Contains(t, out, "Applied 2 updates, 0 failed")

	out, err = runCLI(t, "--db", dbPath, "export")
	require.NoError(t, err)
	require.Contains(t, out, "2026-03-03,Lee,Dev,Beta Retrofit,orio integration")

	out, err = runCLI(t, "--db", dbPath, "runs")
	require.NoError(t, err)
	require.Contains(t, out, "apply")

	_, err = runCLI(t, "--db", dbPath, "reset")
	require.Error(t, err)
	_, err = runCLI(t, "--db", dbPath, "reset", "--yes")
	require.NoError(t, err)
}

func TestReconcileRejectsBadThreshold(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PROJECTMATCH_CONFIG", "")

	_, err := runCLI(t, "reconcile-csv", "--threshold", "1.5",
		"--log", writeFile(t, dir, "log.csv", cliLog),
		"--projects", writeFile(t, dir, "projects.csv", cliProjects),
		"--out", filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "threshold")
}

func TestSeedDemoThenDryRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PROJECTMATCH_CONFIG", "")
	dbPath := filepath.Join(dir, "pm.db")

	out, err := runCLI(t, "--db", dbPath, "seed-demo", "--entries", "40")
	require.NoError(t, err)
	require.Contains(t, out, "Seeded 6 projects and 40 log entries")

	out, err = runCLI(t, "--db", dbPath, "reconcile", "--dry-run")
	require.NoError(t, err, out)
	require.Contains(t, out, "Scanned 40 log entries")
	require.Contains(t, out, "DRY RUN MODE")
}

func TestReconcileRejectsBadBatchFlags(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PROJECTMATCH_CONFIG", "")
	logPath := writeFile(t, dir, "log.csv", cliLog)
	projPath := writeFile(t, dir, "projects.csv", cliProjects)
	outPath := filepath.Join(dir, "out.csv")

	_, err := runCLI(t, "reconcile-csv", "--apply", "--batch-size=-1",
		"--log", logPath, "--projects", projPath, "--out", outPath)
	require.ErrorContains(t, err, "--batch-size")

	_, err = runCLI(t, "reconcile-csv", "--apply", "--delay=-1s",
		"--log", logPath, "--projects", projPath, "--out", outPath)
	require.ErrorContains(t, err, "--delay")

	_, err = os.Stat(outPath)
	require.True(t, os.IsNotExist(err))
}

func TestFailedCommandClosesDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PROJECTMATCH_CONFIG", "")

	a, _, err := runCLIApp(t, "--db", filepath.Join(dir, "pm.db"), "reconcile", "--batch-size", "0")
	require.Error(t, err)
	require.NotNil(t, a.db)
	require.ErrorContains(t, a.db.Ping(), "database is closed")
}

func TestMapDelete(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PROJECTMATCH_CONFIG", "")
	dbPath := filepath.Join(dir, "pm.db")

	_, err := runCLI(t, "--db", dbPath, "map", "set", "Lunch", "--category", "Admin")
	require.NoError(t, err)
	_, err = runCLI(t, "--db", dbPath, "map", "set", "orion sync", "Orion")
	require.NoError(t, err)

	_, err = runCLI(t, "--db", dbPath, "map", "delete", "lunch!", "--category", "admin")
	require.NoError(t, err)
	_, err = runCLI(t, "--db", dbPath, "map", "delete", "lunch", "--category", "Admin")
	require.ErrorContains(t, err, "no mapping")

	out, err := runCLI(t, "--db", dbPath, "map", "list")
	require.NoError(t, err)
	require.NotContains(t, out, "Lunch")
	require.Contains(t, out, "orion sync")
}
