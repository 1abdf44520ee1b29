package substitution_engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/akss-tools/namefix/code_analyzer/models"
)

func TestGolden(t *testing.T) {
	archives, err := filepath.Glob("testdata/*.txtar")
	require.NoError(t, err)
	require.NotEmpty(t, archives)

	for _, file := range archives {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".txtar"), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			require.NoError(t, err)

			var input, want string
			var renames []models.Rename
			for _, f := range ar.Files {
				switch f.Name {
				case "renames":
					for _, line := range strings.Split(strings.TrimSpace(string(f.Data)), "\n") {
						fields := strings.Fields(line)
						require.Len(t, fields, 2, "rename line %q", line)
						renames = append(renames, models.Rename{Old: fields[0], New: fields[1]})
					}
				case "input":
					input = string(f.Data)
				case "want":
					want = string(f.Data)
				default:
					t.Fatalf("unexpected section %q", f.Name)
				}
			}

			got, _ := Rewrite(input, renames)
			assert.Equal(t, want, got)
		})
	}
}

func TestReplaceIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		count   int
	}{
		{"plain", "foo = 1;", "BAR = 1;", 1},
		{"substring", "foobar = foo_x;", "foobar = foo_x;", 0},
		{"qualified", "a = ns::foo;", "a = ns::foo;", 0},
		{"single colon", "a ? b :foo;", "a ? b :BAR;", 1},
		{"declaration", "foo x;", "foo x;", 0},
		{"pointer declaration", "foo *x;", "BAR *x;", 1},
		{"end of input", "return foo", "return BAR", 1},
		{"trailing space only", "foo   ", "BAR   ", 1},
		{"several", "foo(foo, foo)", "BAR(BAR, BAR)", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := ReplaceIdentifier(tt.content, "foo", "BAR")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.count, n)
		})
	}
}

func TestReplaceIdentifier_Noop(t *testing.T) {
	got, n := ReplaceIdentifier("foo;", "foo", "foo")
	assert.Equal(t, "foo;", got)
	assert.Zero(t, n)

	got, n = ReplaceIdentifier("foo;", "foo", "")
	assert.Equal(t, "foo;", got)
	assert.Zero(t, n)
}

func TestRewrite_SkipsNoopRenames(t *testing.T) {
	renames := []models.Rename{
		{Old: "foo", New: ""},
		{Old: "bar", New: "bar"},
		{Old: "baz", New: "BAZ"},
	}
	got, n := Rewrite("foo; bar; baz;", renames)
	assert.Equal(t, "foo; bar; BAZ;", got)
	assert.Equal(t, 1, n)
}

func TestRewrite_Idempotent(t *testing.T) {
	renames := []models.Rename{
		{Old: "maxcount", New: "MAX_COUNT"},
		{Old: "compute_total", New: "computeTotal"},
	}
	once, n := Rewrite("int maxcount = compute_total();", renames)
	require.Equal(t, 2, n)

	twice, n := Rewrite(once, renames)
	assert.Equal(t, once, twice)
	assert.Zero(t, n)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEngineApply(t *testing.T) {
	dir := t.TempDir()
	changed := writeFile(t, dir, "main.cpp", "int maxcount;\nint f() { return maxcount; }\n")
	untouched := writeFile(t, dir, "other.h", "int unrelated;\n")

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(untouched, old, old))

	engine := NewEngine(nil)
	res, err := engine.Apply(context.Background(), []string{changed, untouched},
		[]models.Rename{{Old: "maxcount", New: "MAX_COUNT", Kind: models.Variable}})
	require.NoError(t, err)

	assert.Equal(t, 1, res.FilesChanged)
	assert.Equal(t, 2, res.Replacements)
	require.Len(t, res.Files, 2)
	assert.True(t, res.Files[0].Written)
	assert.False(t, res.Files[1].Written)

	data, err := os.ReadFile(changed)
	require.NoError(t, err)
	assert.Equal(t, "int MAX_COUNT;\nint f() { return MAX_COUNT; }\n", string(data))

	info, err := os.Stat(untouched)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "unchanged file must not be written")
}

func TestEngineApply_ContinuesAfterIOError(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "gone.cpp")
	present := writeFile(t, dir, "here.cpp", "int maxcount;\n")

	res, err := NewEngine(nil).Apply(context.Background(), []string{missing, present},
		[]models.Rename{{Old: "maxcount", New: "MAX_COUNT"}})
	require.Error(t, err)

	var ioErr *SubstitutionIOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, missing, ioErr.Path)
	assert.Equal(t, "read", ioErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, 1, res.FilesChanged)
	data, err := os.ReadFile(present)
	require.NoError(t, err)
	assert.Equal(t, "int MAX_COUNT;\n", string(data))
}

func TestEngineApply_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.cpp", "int maxcount;\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewEngine(nil).Apply(ctx, []string{path}, []models.Rename{{Old: "maxcount", New: "MAX_COUNT"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.FilesChanged)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "int maxcount;\n", string(data))
}

func TestEnginePreview(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.cpp", "int maxcount;\n")
	b := writeFile(t, dir, "b.cpp", "int x;\n")

	changes, err := NewEngine(nil).Preview([]string{a, b}, []models.Rename{{Old: "maxcount", New: "MAX_COUNT"}})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, a, changes[0].Path)
	assert.Equal(t, "int maxcount;\n", changes[0].Before)
	assert.Equal(t, "int MAX_COUNT;\n", changes[0].After)

	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "int maxcount;\n", string(data), "preview must not write")
}
