package churn

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		out, err := cmd.CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
	return root
}

func commitFile(t *testing.T, root, rel, body string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	cmd := exec.Command("git", "add", rel)
	cmd.Dir = root
	require.NoError(t, cmd.Run())
	cmd = exec.Command("git", "commit", "-q", "-m", "update "+rel)
	cmd.Dir = root
	require.NoError(t, cmd.Run())
}

func TestRepoChurnCountsCommitsPerFile(t *testing.T) {
	root := initRepo(t)
	commitFile(t, root, "a.py", "x = 1\n")
	commitFile(t, root, "a.py", "x = 2\n")
	commitFile(t, root, "b.py", "y = 1\n")

	a := New(root)
	metrics, err := a.RepoChurn(context.Background(), "*")
	require.NoError(t, err)

	require.Contains(t, metrics, "a.py")
	require.Equal(t, 2, metrics["a.py"].TotalCommits)
	require.Contains(t, metrics, "b.py")
	require.Equal(t, 1, metrics["b.py"].TotalCommits)
	require.Greater(t, metrics["a.py"].ChurnScore, metrics["b.py"].ChurnScore)
}

func TestRepoChurnFiltersByGlob(t *testing.T) {
	root := initRepo(t)
	commitFile(t, root, "a.py", "x = 1\n")
	commitFile(t, root, "readme.md", "hi\n")

	a := New(root)
	metrics, err := a.RepoChurn(context.Background(), "*.py")
	require.NoError(t, err)

	require.Contains(t, metrics, "a.py")
	require.NotContains(t, metrics, "readme.md")
}

func TestRepoChurnEmptyRepoReturnsEmptyMap(t *testing.T) {
	root := initRepo(t)

	a := New(root)
	metrics, err := a.RepoChurn(context.Background(), "*")
	require.NoError(t, err)
	require.Empty(t, metrics)
}

func TestScoreSaturatesAtOne(t *testing.T) {
	require.Equal(t, 1.0, Score(30, 10))
	require.Equal(t, 0.0, Score(0, 0))
	require.InDelta(t, 0.5, Score(10, 0), 0.001)
}
