package config

import (
	"strconv"
	"strings"
)

// ProjectType represents the layout of the Rust project being configured
type ProjectType string

const (
	ProjectTypeCrate     ProjectType = "crate"
	ProjectTypeWorkspace ProjectType = "workspace"
	ProjectTypeBindings  ProjectType = "bindings"
)

// Strictness represents the analysis strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset holds configuration presets for different project types
type ProjectPreset struct {
	ExcludePatterns  []string
	RespectGitignore bool
}

// StrictnessPreset holds threshold values for different strictness levels
type StrictnessPreset struct {
	MaxArgs int
}

// GetProjectPresets returns presets for different project types
func GetProjectPresets() map[ProjectType]ProjectPreset {
	return map[ProjectType]ProjectPreset{
		ProjectTypeCrate: {
			ExcludePatterns: []string{
				"target/",
				".git/",
			},
		},
		ProjectTypeWorkspace: {
			ExcludePatterns: []string{
				"target/",
				".git/",
				"vendor/",
			},
			RespectGitignore: true,
		},
		ProjectTypeBindings: {
			ExcludePatterns: []string{
				"target/",
				".git/",
				"bindings.rs",
				"*_bindings.rs",
				"*_sys/",
			},
		},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed:  {MaxArgs: 7}, // clippy's too_many_arguments default
		StrictnessStandard: {MaxArgs: DefaultMaxArgs},
		StrictnessStrict:   {MaxArgs: 3},
	}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(projectType ProjectType, strictness Strictness) string {
	preset, ok := GetProjectPresets()[projectType]
	if !ok {
		preset = GetProjectPresets()[ProjectTypeCrate]
	}
	strict, ok := GetStrictnessPresets()[strictness]
	if !ok {
		strict = GetStrictnessPresets()[StrictnessStandard]
	}

	return `# argscan Configuration
# Documentation: https://github.com/ludo-technologies/argscan

# =============================================================================
# ARITY
# =============================================================================
# Counts the parameters of every fn declaration and trait signature
arity:
  # Functions with MORE parameters than this are reported by ` + "`argscan check`" + `
  max_args: ` + strconv.Itoa(strict.MaxArgs) + `

  # Parameter kinds that never count (method receivers)
  receiver_kinds:
    - self_parameter

  # Parameter-list children that are not parameters
  ignored_kinds:
    - attribute_item
    - line_comment
    - block_comment

# =============================================================================
# OUTPUT SETTINGS
# =============================================================================
output:
  # Output format: text, json, yaml, csv, sarif, html
  format: text

  # Sort order: arity, name, location
  sort_by: arity

  # stderr log level: trace, debug, info, warn, error, off
  log_level: warn

  # Show a progress bar on interactive terminals
  progress: false

# =============================================================================
# ANALYSIS SCOPE
# =============================================================================
analysis:
  # Source file extensions to analyze
  extensions:
    - .rs

  # gitignore-style patterns, relative to the scanned directory
  exclude_patterns:
` + formatYAMLList(preset.ExcludePatterns, "    ") + `
  # Follow symbolic links (loops are detected)
  follow_symlinks: true

  # Also exclude what the scanned directory's .gitignore excludes
  respect_gitignore: ` + strconv.FormatBool(preset.RespectGitignore) + `

  # Treat syntax errors as parse failures (otherwise they are logged as warnings)
  strict_parse: false

  # Skip files that fail to parse instead of aborting (report is marked partial)
  keep_going: false

# =============================================================================
# PERFORMANCE
# =============================================================================
performance:
  # Number of parallel workers (0 = number of CPUs)
  max_goroutines: 0

  # Timeout for the whole run in seconds (0 = no limit)
  timeout_seconds: ` + strconv.Itoa(DefaultTimeoutSeconds) + `
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# argscan Configuration (minimal)
# See full options: https://github.com/ludo-technologies/argscan

arity:
  max_args: ` + strconv.Itoa(DefaultMaxArgs) + `

analysis:
  exclude_patterns:
    - target/
    - .git/
`
}

// formatYAMLList formats a string slice as a YAML block sequence
func formatYAMLList(items []string, indent string) string {
	if len(items) == 0 {
		return indent + "[]\n"
	}

	var b strings.Builder
	for _, item := range items {
		b.WriteString(indent)
		b.WriteString("- ")
		b.WriteString(strconv.Quote(item))
		b.WriteString("\n")
	}
	return b.String()
}
