package clang_tidy

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/akss-tools/namefix/case_formatter"
	"github.com/akss-tools/namefix/utils"
)

func TestBuildConfig(t *testing.T) {
	cfg := BuildConfig(case_formatter.DefaultConventions)

	assert.Equal(t, CheckName, cfg.Checks)
	assert.Equal(t, []CheckOption{
		{Key: "readability-identifier-naming.VariableCase", Value: "UPPER_CASE"},
		{Key: "readability-identifier-naming.FunctionCase", Value: "camelBack"},
		{Key: "readability-identifier-naming.ClassCase", Value: "CamelCase"},
	}, cfg.CheckOptions)
}

func TestConfigMarshal(t *testing.T) {
	encoded, err := BuildConfig(case_formatter.DefaultConventions).Marshal()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(encoded), &decoded))
	assert.Equal(t, "readability-identifier-naming", decoded["Checks"])

	options, ok := decoded["CheckOptions"].([]any)
	require.True(t, ok)
	require.Len(t, options, 3)
	first, ok := options[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "readability-identifier-naming.VariableCase", first["key"])
	assert.Equal(t, "UPPER_CASE", first["value"])
}

func TestArgs(t *testing.T) {
	src := t.TempDir()
	for _, name := range []string{"b.cpp", "a.cpp", "c.h", "d.c"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), nil, 0o644))
	}

	cfg := BuildConfig(case_formatter.DefaultConventions)
	args, err := Args(cfg, src, "/work/include", []string{"-I/usr/include", "-I/work/include"})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(args[0], "-config="))
	assert.Equal(t, []string{
		filepath.Join(src, "a.cpp"),
		filepath.Join(src, "b.cpp"),
		"-fix-errors",
		`--header-filter=.*/work/include.*\.(h|hpp)`,
		"--",
		"-I/usr/include",
		"-I/work/include",
	}, args[1:])
}

func TestRun_NoSources(t *testing.T) {
	r := NewRunner("definitely-not-clang-tidy", nil, nil)
	res, err := r.Run(context.Background(), case_formatter.DefaultConventions, t.TempDir(), "", nil)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestRun_MissingBinary(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "main.cpp"), []byte("int x;\n"), 0o644))

	r := NewRunner("definitely-not-clang-tidy", utils.NewCommandExecutor(src), nil)
	_, err := r.Run(context.Background(), case_formatter.DefaultConventions, src, "", nil)
	assert.Error(t, err)
}
