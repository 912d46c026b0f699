package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/argscan/internal/constants"
	"github.com/spf13/viper"
)

// Default arity settings
const (
	// DefaultMaxArgs is the threshold used by `check` when none is given.
	// Functions with more parameters than this are reported.
	DefaultMaxArgs = 5

	// DefaultLogLevel keeps stderr quiet unless something is skipped
	DefaultLogLevel = "warn"

	// DefaultTimeoutSeconds bounds a whole run
	DefaultTimeoutSeconds = 300
)

// Config represents the main configuration structure
type Config struct {
	// Arity holds the counting rule and threshold configuration
	Arity ArityConfig `json:"arity" mapstructure:"arity" yaml:"arity"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Analysis holds traversal and parsing configuration
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Performance holds worker pool configuration
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`
}

// ArityConfig holds configuration for parameter counting
type ArityConfig struct {
	// MaxArgs is the threshold; functions with strictly more parameters are flagged
	MaxArgs int `json:"max_args" mapstructure:"max_args" yaml:"max_args"`

	// ReceiverKinds are parameter node kinds that never count (self receivers)
	ReceiverKinds []string `json:"receiver_kinds" mapstructure:"receiver_kinds" yaml:"receiver_kinds"`

	// IgnoredKinds are parameter-list children that are not parameters
	IgnoredKinds []string `json:"ignored_kinds" mapstructure:"ignored_kinds" yaml:"ignored_kinds"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv, sarif, html
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// SortBy specifies how to sort results: arity, name, location
	SortBy string `json:"sort_by" mapstructure:"sort_by" yaml:"sort_by"`

	// LogLevel is the stderr log level: trace, debug, info, warn, error, off
	LogLevel string `json:"log_level" mapstructure:"log_level" yaml:"log_level"`

	// Progress enables the progress bar on interactive terminals
	Progress bool `json:"progress" mapstructure:"progress" yaml:"progress"`
}

// AnalysisConfig holds traversal and parsing configuration
type AnalysisConfig struct {
	// Extensions lists source file extensions to analyze
	Extensions []string `json:"extensions" mapstructure:"extensions" yaml:"extensions"`

	// ExcludePatterns are gitignore-style patterns relative to the scan root
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// FollowSymlinks controls whether to follow symbolic links
	FollowSymlinks bool `json:"follow_symlinks" mapstructure:"follow_symlinks" yaml:"follow_symlinks"`

	// RespectGitignore adds the scan root's .gitignore to the exclude patterns
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`

	// StrictParse treats syntax errors in a file as a parse failure. Off by
	// default: the grammar trails the language, so error nodes are logged and
	// the recovered declarations are still counted.
	StrictParse bool `json:"strict_parse" mapstructure:"strict_parse" yaml:"strict_parse"`

	// KeepGoing skips files that fail to parse and marks the report partial
	KeepGoing bool `json:"keep_going" mapstructure:"keep_going" yaml:"keep_going"`
}

// PerformanceConfig holds worker pool configuration
type PerformanceConfig struct {
	// MaxGoroutines bounds per-file parallelism (0 = number of CPUs)
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds the whole analysis
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Arity: ArityConfig{
			MaxArgs:       DefaultMaxArgs,
			ReceiverKinds: []string{"self_parameter"},
			IgnoredKinds:  []string{"attribute_item", "line_comment", "block_comment"},
		},
		Output: OutputConfig{
			Format:   "text",
			SortBy:   "arity",
			LogLevel: DefaultLogLevel,
			Progress: false,
		},
		Analysis: AnalysisConfig{
			Extensions: []string{".rs"},
			ExcludePatterns: []string{
				// Cargo build output
				"target/",
				// Version control
				".git/",
			},
			FollowSymlinks:   true,
			RespectGitignore: false,
			StrictParse:      false,
			KeepGoing:        false,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  0,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context.
// When configPath is empty a config file is discovered from targetPath upward.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file.
// Environment variables (ARGSCAN_ARITY_MAX_ARGS, ...) override file values.
func loadConfigFromFile(configPath string) (*Config, error) {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()
	registerDefaults(v, config)

	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// registerDefaults makes every key known to viper so env overrides apply
func registerDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("arity.max_args", c.Arity.MaxArgs)
	v.SetDefault("arity.receiver_kinds", c.Arity.ReceiverKinds)
	v.SetDefault("arity.ignored_kinds", c.Arity.IgnoredKinds)

	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("output.sort_by", c.Output.SortBy)
	v.SetDefault("output.log_level", c.Output.LogLevel)
	v.SetDefault("output.progress", c.Output.Progress)

	v.SetDefault("analysis.extensions", c.Analysis.Extensions)
	v.SetDefault("analysis.exclude_patterns", c.Analysis.ExcludePatterns)
	v.SetDefault("analysis.follow_symlinks", c.Analysis.FollowSymlinks)
	v.SetDefault("analysis.respect_gitignore", c.Analysis.RespectGitignore)
	v.SetDefault("analysis.strict_parse", c.Analysis.StrictParse)
	v.SetDefault("analysis.keep_going", c.Analysis.KeepGoing)

	v.SetDefault("performance.max_goroutines", c.Performance.MaxGoroutines)
	v.SetDefault("performance.timeout_seconds", c.Performance.TimeoutSeconds)
}

// ConfigCandidates lists config file names in order of preference
func ConfigCandidates() []string {
	return []string{
		".argscan.yaml",
		"argscan.yaml",
		".argscan.yml",
		"argscan.yml",
		".argscan.toml",
		"argscan.toml",
		"argscan.json",
	}
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations.
// targetPath is the path being analyzed (file or directory).
func findDefaultConfig(targetPath string) string {
	candidates := ConfigCandidates()

	// If targetPath is provided, search from there upward
	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			// If it's a file, start from its directory
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir || // Unix-style root reached (/), Windows UNC root (\\server)
					dir == volume || // Windows volume root reached (C:\)
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	// Check XDG config directory (Linux/Mac standard)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", constants.ToolName)
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}
	}

	// ARGSCAN_CONFIG environment variable as fallback
	if envConfig := os.Getenv(constants.EnvVarPrefix + "_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Arity.MaxArgs < 0 {
		return fmt.Errorf("arity.max_args must be >= 0, got %d", c.Arity.MaxArgs)
	}

	validFormats := map[string]bool{
		"text":  true,
		"json":  true,
		"yaml":  true,
		"csv":   true,
		"sarif": true,
		"html":  true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv, sarif, html", c.Output.Format)
	}

	validSortBy := map[string]bool{
		"arity":    true,
		"name":     true,
		"location": true,
	}
	if !validSortBy[c.Output.SortBy] {
		return fmt.Errorf("invalid output.sort_by '%s', must be one of: arity, name, location", c.Output.SortBy)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}
	if !validLevels[strings.ToLower(c.Output.LogLevel)] {
		return fmt.Errorf("invalid output.log_level '%s', must be one of: trace, debug, info, warn, error, off", c.Output.LogLevel)
	}

	if len(c.Analysis.Extensions) == 0 {
		return fmt.Errorf("analysis.extensions cannot be empty")
	}
	for _, ext := range c.Analysis.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("analysis.extensions entry '%s' must start with '.'", ext)
		}
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return nil
}
