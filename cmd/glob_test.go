// Copyright © 2024 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterExcludes(t *testing.T) {
	paths := []string{
		"src/main.lisp",
		"src/generated_forms.lisp",
		"build/output.lisp",
		"build/sub/deep.lisp",
		"vendor/core.lisp",
		"lib/utils.lisp",
	}
	tests := []struct {
		name     string
		excludes []string
		want     []string
	}{
		{"none", nil, paths},
		{"by name", []string{"core.lisp"}, []string{
			"src/main.lisp", "src/generated_forms.lisp", "build/output.lisp", "build/sub/deep.lisp", "lib/utils.lisp",
		}},
		{"by directory", []string{"build"}, []string{
			"src/main.lisp", "src/generated_forms.lisp", "vendor/core.lisp", "lib/utils.lisp",
		}},
		{"glob", []string{"generated_*"}, []string{
			"src/main.lisp", "build/output.lisp", "build/sub/deep.lisp", "vendor/core.lisp", "lib/utils.lisp",
		}},
		{"multiple", []string{"build", "vendor", "generated_*"}, []string{
			"src/main.lisp", "lib/utils.lisp",
		}},
		{"no matches", []string{"nonexistent"}, paths},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, filterExcludes(paths, tc.excludes))
		})
	}
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, matchesAny("src/main.lisp", []string{"src/*.lisp"}))
	assert.False(t, matchesAny("lib/main.lisp", []string{"src/*.lisp"}))
	assert.True(t, matchesAny("deep/nested/core.lisp", []string{"core.lisp"}))
	assert.True(t, matchesAny("project/build/output.lisp", []string{"build"}))
	assert.False(t, matchesAny("project/src/output.lisp", []string{"build"}))
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c.lisp"}, splitPath("a/b/c.lisp"))
	assert.Equal(t, []string{"a", "c.lisp"}, splitPath("./a//c.lisp"))
}

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.lisp", "sub/b.lisp", "sub/notes.txt", "build/c.lisp"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("1"), 0o600))
	}

	got, err := expandArgs([]string{dir + "/...", "other.lisp"}, []string{"build"})
	require.NoError(t, err)
	sort.Strings(got)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.lisp"),
		filepath.Join(dir, "sub", "b.lisp"),
		"other.lisp",
	}, got)

	_, err = expandArgs([]string{filepath.Join(dir, "missing") + "/..."}, nil)
	assert.Error(t, err)
}
