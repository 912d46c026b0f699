package domain

import (
	"context"
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatCSV   OutputFormat = "csv"
	OutputFormatSARIF OutputFormat = "sarif"
	OutputFormatHTML  OutputFormat = "html"
)

// SortCriteria represents the criteria for sorting results
type SortCriteria string

const (
	SortByArity    SortCriteria = "arity"
	SortByName     SortCriteria = "name"
	SortByLocation SortCriteria = "location"
)

// DeclarationKind names the syntactic shape a flagged function was found in
type DeclarationKind string

const (
	// DeclarationFunction is a full declaration with a body
	DeclarationFunction DeclarationKind = "function"
	// DeclarationSignature is a body-less prototype (trait method, extern fn)
	DeclarationSignature DeclarationKind = "signature"
)

// ArityRequest represents a request for parameter count analysis
type ArityRequest struct {
	// Root is the directory (or single file) being scanned
	Root string

	// Paths holds the collected source files under Root
	Paths []string

	// MinArgs is the threshold; functions with more parameters are reported
	MinArgs int

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	SortBy       SortCriteria

	// Configuration
	ConfigPath string

	// Traversal options
	Extensions       []string
	ExcludePatterns  []string
	FollowSymlinks   bool
	RespectGitignore bool

	// Parsing options
	StrictParse bool
	KeepGoing   bool

	// Counting rule overrides (empty = defaults)
	ReceiverKinds []string
	IgnoredKinds  []string

	// MaxGoroutines bounds per-file parallelism (0 = number of CPUs)
	MaxGoroutines int

	// TimeoutSeconds bounds the whole analysis (0 = no limit)
	TimeoutSeconds int

	// ShowProgress enables the progress bar when the terminal allows it
	ShowProgress bool

	// LogLevel is the stderr log level of the command
	LogLevel string
}

// FunctionArity is one flagged function
type FunctionArity struct {
	// FilePath is relative to the scan root
	FilePath string          `json:"file_path" yaml:"file_path"`
	Name     string          `json:"name" yaml:"name"`
	Arity    int             `json:"arity" yaml:"arity"`
	Line     int             `json:"line" yaml:"line"`
	Column   int             `json:"column" yaml:"column"`
	Kind     DeclarationKind `json:"kind" yaml:"kind"`
}

// AritySummary represents aggregate statistics
type AritySummary struct {
	FilesAnalyzed     int  `json:"files_analyzed" yaml:"files_analyzed"`
	FunctionsAnalyzed int  `json:"functions_analyzed" yaml:"functions_analyzed"`
	FlaggedFunctions  int  `json:"flagged_functions" yaml:"flagged_functions"`
	MaxArity          int  `json:"max_arity" yaml:"max_arity"`
	MinArgs           int  `json:"min_args" yaml:"min_args"`
	FailedFiles       int  `json:"failed_files,omitempty" yaml:"failed_files,omitempty"`
	Partial           bool `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// ArityResponse represents the complete analysis result
type ArityResponse struct {
	// Functions is sorted by the requested criteria (ascending arity by default)
	Functions []FunctionArity `json:"functions" yaml:"functions"`
	Summary   AritySummary    `json:"summary" yaml:"summary"`

	// Errors lists files skipped under keep-going
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Metadata
	GeneratedAt string      `json:"generated_at" yaml:"generated_at"`
	Version     string      `json:"version" yaml:"version"`
	Config      interface{} `json:"config,omitempty" yaml:"config,omitempty"`
}

// ArityService defines the core business logic for parameter count analysis
type ArityService interface {
	// Analyze analyzes every file in req.Paths
	Analyze(ctx context.Context, req ArityRequest) (*ArityResponse, error)

	// AnalyzeFile analyzes a single Rust file
	AnalyzeFile(ctx context.Context, filePath string, req ArityRequest) (*ArityResponse, error)
}

// SourceFileReader defines the file operations needed to collect sources
type SourceFileReader interface {
	CollectSourceFiles(root string, opts CollectOptions) ([]string, error)
	IsSourceFile(path string, extensions []string) bool
	FileExists(path string) (bool, error)
}

// CollectOptions controls traversal
type CollectOptions struct {
	Extensions       []string
	ExcludePatterns  []string
	FollowSymlinks   bool
	RespectGitignore bool
}

// OutputFormatter defines the interface for formatting analysis results
type OutputFormatter interface {
	// Write writes the formatted response to the writer
	Write(response *ArityResponse, format OutputFormat, writer io.Writer) error
}

// ParseOutputFormat validates a user supplied format name
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV, OutputFormatSARIF, OutputFormatHTML:
		return f, nil
	case "":
		return OutputFormatText, nil
	default:
		return "", NewUnsupportedFormatError(s)
	}
}

// ParseSortCriteria validates a user supplied sort criteria
func ParseSortCriteria(s string) (SortCriteria, error) {
	switch c := SortCriteria(s); c {
	case SortByArity, SortByName, SortByLocation:
		return c, nil
	case "":
		return SortByArity, nil
	default:
		return "", NewInvalidInputError("invalid sort criteria: "+s+" (must be one of: arity, name, location)", nil)
	}
}
