package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/akss-tools/namefix/case_formatter"
)

// DiscoveryConfig controls how declarations are collected.
type DiscoveryConfig struct {
	TolerateSyntaxErrors bool `mapstructure:"tolerate_syntax_errors"`
}

// TidyConfig controls the clang-tidy pass after apply.
type TidyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Binary  string `mapstructure:"binary"`
}

// Config represents the structure of the configuration file
type Config struct {
	Version             string                     `mapstructure:"version"`
	SourceDir           string                     `mapstructure:"source_dir"`
	IncludeDir          string                     `mapstructure:"include_dir"`
	ExtraIncludePaths   []string                   `mapstructure:"extra_include_paths"`
	DefaultIncludePaths []string                   `mapstructure:"default_include_paths"`
	Conventions         case_formatter.Conventions `mapstructure:"conventions"`
	BackupDir           string                     `mapstructure:"backup_dir"`
	CacheDir            string                     `mapstructure:"cache_dir"`
	EnableCache         bool                       `mapstructure:"enable_cache"`
	RespectGitignore    bool                       `mapstructure:"respect_gitignore"`
	Discovery           DiscoveryConfig            `mapstructure:"discovery"`
	Tidy                TidyConfig                 `mapstructure:"tidy"`
	Theme               string                     `mapstructure:"theme"`
	Verbose             bool                       `mapstructure:"verbose"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:    "0.4.0",
	SourceDir:  ".",
	IncludeDir: "",
	DefaultIncludePaths: []string{
		"/usr/include/c++/11",
		"/usr/include/x86_64-linux-gnu/c++/11",
		"/usr/include",
		"/usr/local/cuda/include",
	},
	Conventions:      case_formatter.DefaultConventions,
	BackupDir:        ".linter_backups",
	CacheDir:         ".namefix_cache",
	EnableCache:      true,
	RespectGitignore: true,
	Tidy: TidyConfig{
		Enabled: true,
		Binary:  "clang-tidy",
	},
	Theme: "dracula",
}

// ConfigName is the base name searched for in the working directory.
const ConfigName = "namefix-config"

// EnvPrefix prefixes every environment variable, e.g. NAMEFIX_SOURCE_DIR.
const EnvPrefix = "NAMEFIX"

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs builds the configuration from defaults, .env, the config file, environment
// variables and flags, in increasing precedence. rootCmd may be nil.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	if err := loadDotEnv(cwd); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(cwd)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if rootCmd != nil {
		bindFlags(v, rootCmd.PersistentFlags())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	config.ExtraIncludePaths = splitPaths(v.GetStringSlice("extra_include_paths"))
	config.DefaultIncludePaths = splitPaths(v.GetStringSlice("default_include_paths"))
	config.SourceDir = resolve(cwd, config.SourceDir)
	config.IncludeDir = resolve(cwd, config.IncludeDir)
	if config.CacheDir != "" && !filepath.IsAbs(config.CacheDir) {
		config.CacheDir = filepath.Join(config.SourceDir, config.CacheDir)
	}

	if err := config.Conventions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid conventions: %w", err)
	}

	return &config, nil
}

// ConfigFileUsed reports the explicitly requested config file, if any.
func ConfigFileUsed() string {
	return cfgFile
}

func loadDotEnv(cwd string) error {
	path := filepath.Join(cwd, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// splitPaths accepts both list entries and space-separated strings.
func splitPaths(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Fields(v)...)
	}
	return out
}

func resolve(cwd, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}

// IncludeArgs returns the compiler include flags: defaults, the include directory, then
// the extra paths.
func (c *Config) IncludeArgs() []string {
	var paths []string
	paths = append(paths, c.DefaultIncludePaths...)
	if c.IncludeDir != "" {
		paths = append(paths, c.IncludeDir)
	}
	paths = append(paths, c.ExtraIncludePaths...)

	args := make([]string, len(paths))
	for i, p := range paths {
		args[i] = "-I" + p
	}
	return args
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("source_dir", DefaultConfig.SourceDir)
	v.SetDefault("include_dir", DefaultConfig.IncludeDir)
	v.SetDefault("extra_include_paths", []string{})
	v.SetDefault("default_include_paths", DefaultConfig.DefaultIncludePaths)
	v.SetDefault("conventions.variable", string(DefaultConfig.Conventions.Variable))
	v.SetDefault("conventions.function", string(DefaultConfig.Conventions.Function))
	v.SetDefault("conventions.class", string(DefaultConfig.Conventions.Class))
	v.SetDefault("backup_dir", DefaultConfig.BackupDir)
	v.SetDefault("cache_dir", DefaultConfig.CacheDir)
	v.SetDefault("enable_cache", DefaultConfig.EnableCache)
	v.SetDefault("respect_gitignore", DefaultConfig.RespectGitignore)
	v.SetDefault("discovery.tolerate_syntax_errors", DefaultConfig.Discovery.TolerateSyntaxErrors)
	v.SetDefault("tidy.enabled", DefaultConfig.Tidy.Enabled)
	v.SetDefault("tidy.binary", DefaultConfig.Tidy.Binary)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("verbose", false)
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"source_dir":             "source_dir",
	"include_dir":            "include_dir",
	"extra_include_paths":    "extra_include_paths",
	"var_case":               "conventions.variable",
	"func_case":              "conventions.function",
	"class_case":             "conventions.class",
	"backup_dir":             "backup_dir",
	"enable_cache":           "enable_cache",
	"respect_gitignore":      "respect_gitignore",
	"tolerate_syntax_errors": "discovery.tolerate_syntax_errors",
	"tidy_binary":            "tidy.binary",
	"theme":                  "theme",
	"verbose":                "verbose",
}

// bindFlags binds the CLI flags to configuration values. Only flags set on the command line
// override the file.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to a configuration file (JSON or YAML). Defaults to ./namefix-config.{yml,yaml,json}.")

	flags.StringP("source_dir", "s", DefaultConfig.SourceDir, "Directory holding the project's source files.")
	flags.StringP("include_dir", "i", DefaultConfig.IncludeDir, "Directory holding the project's headers.")
	flags.String("extra_include_paths", "", "Additional include paths, space-separated.")

	flags.String("var_case", string(DefaultConfig.Conventions.Variable), "Target convention for variables.")
	flags.String("func_case", string(DefaultConfig.Conventions.Function), "Target convention for functions.")
	flags.String("class_case", string(DefaultConfig.Conventions.Class), "Target convention for classes.")

	flags.String("backup_dir", DefaultConfig.BackupDir, "Backup directory name, created inside the source directory.")
	flags.Bool("enable_cache", DefaultConfig.EnableCache, "Cache discovery results between runs.")
	flags.Bool("respect_gitignore", DefaultConfig.RespectGitignore, "Skip files matched by a .gitignore in the source or include directory.")
	flags.Bool("tolerate_syntax_errors", DefaultConfig.Discovery.TolerateSyntaxErrors, "Keep declarations from files that do not parse cleanly.")
	flags.String("tidy_binary", DefaultConfig.Tidy.Binary, "clang-tidy executable used after apply.")
	flags.String("theme", DefaultConfig.Theme, "Colour theme for diff previews (e.g. 'dracula', 'monokai', 'github').")
	flags.BoolP("verbose", "V", false, "Enable debug logging.")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}
