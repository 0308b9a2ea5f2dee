package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/specvital/grammarsnap/pkg/fixture"
)

const fixtures = `
-- css/rule.test --
a { color: red; }
-- javascript/const.html.test --
const a = 1;
`

func extract(t *testing.T, archive string) string {
	t.Helper()

	root := t.TempDir()
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(root, filepath.FromSlash(f.Name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd(nil)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunCmd(t *testing.T) {
	t.Parallel()

	t.Run("verify, insert, verify", func(t *testing.T) {
		t.Parallel()

		root := extract(t, fixtures)

		// verify without expectations
		stdout, stderr, err := execute(t, "run", "--root", root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 of 2 fixtures failed")
		assert.Contains(t, stdout, "0 passed, 2 failed, 0 written")
		assert.Contains(t, stderr, "FAIL "+filepath.Join(root, "css", "rule.test")+" (css)")
		assert.Contains(t, stderr, "grammarsnap run --mode insert")

		// insert
		stdout, _, err = execute(t, "run", "--root", root, "--insert")
		require.NoError(t, err)
		assert.Contains(t, stdout, "2 passed, 0 failed, 2 written")

		// verify again
		stdout, stderr, err = execute(t, "run", "--root", root, "-w", "1")
		require.NoError(t, err)
		assert.Contains(t, stdout, "2 passed, 0 failed, 0 written")
		assert.Empty(t, stderr)
	})

	t.Run("mismatch prints a diff", func(t *testing.T) {
		t.Parallel()

		// Given
		root := extract(t, fixtures)
		_, _, err := execute(t, "run", "--root", root, "--mode", "insert")
		require.NoError(t, err)

		path := filepath.Join(root, "css", "rule.test")
		f, err := fixture.ReadFile(path)
		require.NoError(t, err)
		f.Code = "a { color: blue; }"
		f.Description = "Colors."
		require.NoError(t, fixture.WriteFile(path, f))

		// When
		_, stderr, err := execute(t, "run", "--root", root, "--pattern", "css/**")

		// Then
		require.Error(t, err)
		assert.Contains(t, stderr, "Colors.")
		assert.Contains(t, stderr, "--- expected")
		assert.Contains(t, stderr, "+++ actual")

		_, _, err = execute(t, "run", "--root", root, "--update")
		require.NoError(t, err)
		_, _, err = execute(t, "run", "--root", root)
		require.NoError(t, err)
	})

	t.Run("single fixture takes the language from its directory", func(t *testing.T) {
		t.Parallel()

		root := extract(t, fixtures)
		path := filepath.Join(root, "javascript", "const.html.test")

		stdout, _, err := execute(t, "run", "--root", root, "--insert", path)

		require.NoError(t, err)
		assert.Contains(t, stdout, "1 passed, 0 failed, 1 written")
		f, err := fixture.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, f.Expected, `<span class="token keyword">`)
	})

	t.Run("config file", func(t *testing.T) {
		t.Parallel()

		dir := extract(t, "-- grammarsnap.yaml --\nroot: fixtures\nmode: insert\npatterns: [\"css/**\"]\n"+
			"-- fixtures/css/rule.test --\na {}\n-- fixtures/markup/p.test --\n<p></p>\n")

		stdout, _, err := execute(t, "run", "--config", filepath.Join(dir, "grammarsnap.yaml"))

		require.NoError(t, err)
		assert.Contains(t, stdout, "1 passed, 0 failed, 1 written")
	})

	t.Run("invalid flags", func(t *testing.T) {
		t.Parallel()

		root := extract(t, fixtures)

		_, _, err := execute(t, "run", "--root", root, "--mode", "replace")
		assert.ErrorContains(t, err, "unknown mode")

		_, _, err = execute(t, "run", "--root", root, "--insert", "--update")
		assert.Error(t, err)

		_, _, err = execute(t, "run", "--root", root, filepath.Join(root, "missing.test"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLanguagesCmd(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "languages")

	require.NoError(t, err)
	assert.Regexp(t, `(?m)^javascript\s+JavaScript\s+js\s+-$`, stdout)
	assert.Regexp(t, `(?m)^markup\s+Markup\s+html\s+css,javascript$`, stdout)
	assert.Regexp(t, `(?m)^css\s+CSS\s+-\s+-$`, stdout)
}

func TestInspectCmd(t *testing.T) {
	t.Parallel()

	root := extract(t, "-- css/a.test --\na {}\n\n----------\n\n[]\n\n----------\n\nEmpty rule.\n")

	stdout, _, err := execute(t, "inspect", filepath.Join(root, "css", "a.test"))

	require.NoError(t, err)
	assert.Contains(t, stdout, "comparator:  token-stream")
	assert.Contains(t, stdout, "line ending: LF")
	assert.Contains(t, stdout, "[code] line 1\na {}")
	assert.Contains(t, stdout, "[expected] line 5\n[]")
	assert.Contains(t, stdout, "[description] line 9\nEmpty rule.")
}
