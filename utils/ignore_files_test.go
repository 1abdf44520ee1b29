package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGitignore(t *testing.T) {
	t.Cleanup(ClearGitignoreCache)
	dir := t.TempDir()

	m, err := LoadGitignore(dir)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.False(t, m.Matches("main.cpp"), "nil matcher matches nothing")

	path := filepath.Join(dir, ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("# generated\n*_gen.h\nscratch.cpp\n"), 0o644))

	m, err = LoadGitignore(dir)
	require.NoError(t, err)
	assert.True(t, m.Matches("parser_gen.h"))
	assert.True(t, m.Matches("scratch.cpp"))
	assert.False(t, m.Matches("main.cpp"))

	again, err := LoadGitignore(dir)
	require.NoError(t, err)
	assert.Same(t, m, again)

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.WriteFile(path, []byte("main.cpp\n"), 0o644))
	require.NoError(t, os.Chtimes(path, later, later))

	updated, err := LoadGitignore(dir)
	require.NoError(t, err)
	assert.True(t, updated.Matches("main.cpp"))
	assert.False(t, updated.Matches("scratch.cpp"))
}

func TestIsDefaultIgnored(t *testing.T) {
	for _, name := range []string{".hidden.cpp", "main.cpp~", "main.cpp.orig", "util.h.BAK", "#main.cpp#", ".main.cpp.namefix-123"} {
		assert.True(t, IsDefaultIgnored(name), name)
	}
	for _, name := range []string{"main.cpp", "util.h", "parser.c"} {
		assert.False(t, IsDefaultIgnored(name), name)
	}
}
