package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akss-tools/namefix/case_formatter"
)

func TestLoadConfigs_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfigs(nil, dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.SourceDir)
	assert.Equal(t, "", cfg.IncludeDir)
	assert.Equal(t, case_formatter.DefaultConventions, cfg.Conventions)
	assert.Equal(t, DefaultConfig.DefaultIncludePaths, cfg.DefaultIncludePaths)
	assert.Equal(t, filepath.Join(dir, DefaultConfig.CacheDir), cfg.CacheDir)
	assert.True(t, cfg.Tidy.Enabled)
	assert.Equal(t, "clang-tidy", cfg.Tidy.Binary)
}

func TestLoadConfigs_File(t *testing.T) {
	dir := t.TempDir()
	content := `source_dir: src
include_dir: include
extra_include_paths:
  - /opt/sdk/include
conventions:
  variable: lower_case
  function: CamelCase
  class: UPPER_CASE
discovery:
  tolerate_syntax_errors: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigName+".yml"), []byte(content), 0644))

	cfg, err := LoadConfigs(nil, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "src"), cfg.SourceDir)
	assert.Equal(t, filepath.Join(dir, "include"), cfg.IncludeDir)
	assert.Equal(t, []string{"/opt/sdk/include"}, cfg.ExtraIncludePaths)
	assert.Equal(t, case_formatter.LowerCase, cfg.Conventions.Variable)
	assert.Equal(t, case_formatter.CamelCase, cfg.Conventions.Function)
	assert.Equal(t, case_formatter.UpperCase, cfg.Conventions.Class)
	assert.True(t, cfg.Discovery.TolerateSyntaxErrors)
}

func TestLoadConfigs_InvalidConvention(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigName+".yml"), []byte("conventions:\n  variable: kebab-case\n"), 0644))

	_, err := LoadConfigs(nil, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid conventions")
}

func TestLoadConfigs_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigName+".yml"), []byte("theme: github\n"), 0644))
	t.Setenv("NAMEFIX_THEME", "monokai")
	t.Setenv("NAMEFIX_EXTRA_INCLUDE_PATHS", "/a /b")

	cfg, err := LoadConfigs(nil, dir)
	require.NoError(t, err)
	assert.Equal(t, "monokai", cfg.Theme)
	assert.Equal(t, []string{"/a", "/b"}, cfg.ExtraIncludePaths)
}

func TestLoadConfigs_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NAMEFIX_BACKUP_DIR=.bk\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("NAMEFIX_BACKUP_DIR") })

	cfg, err := LoadConfigs(nil, dir)
	require.NoError(t, err)
	assert.Equal(t, ".bk", cfg.BackupDir)
}

func TestLoadConfigs_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigName+".yml"), []byte("conventions:\n  variable: lower_case\n"), 0644))

	cmd := &cobra.Command{Use: "test"}
	InitFlags(cmd)
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--var_case", "camelBack", "--include_dir", "/abs/include"}))

	cfg, err := LoadConfigs(cmd, dir)
	require.NoError(t, err)
	assert.Equal(t, case_formatter.CamelBack, cfg.Conventions.Variable)
	assert.Equal(t, "/abs/include", cfg.IncludeDir)
	assert.Equal(t, case_formatter.DefaultConventions.Function, cfg.Conventions.Function)
}

func TestIncludeArgs_Order(t *testing.T) {
	cfg := &Config{
		DefaultIncludePaths: []string{"/usr/include"},
		IncludeDir:          "/proj/include",
		ExtraIncludePaths:   []string{"/opt/x"},
	}
	assert.Equal(t, []string{"-I/usr/include", "-I/proj/include", "-I/opt/x"}, cfg.IncludeArgs())

	cfg.IncludeDir = ""
	assert.Equal(t, []string{"-I/usr/include", "-I/opt/x"}, cfg.IncludeArgs())
}
