package domain

// CheckResult represents the result of a quality check
type CheckResult struct {
	Passed      bool             `json:"passed"`
	ExitCode    int              `json:"exit_code"`
	Violations  []CheckViolation `json:"violations"`
	Summary     CheckSummary     `json:"summary"`
	Duration    int64            `json:"duration_ms"`
	GeneratedAt string           `json:"generated_at"`
	Version     string           `json:"version"`
}

// CheckViolation represents a single threshold violation
type CheckViolation struct {
	Rule      string `json:"rule"`               // max-args
	Severity  string `json:"severity"`           // error, warning
	Message   string `json:"message"`            // Human-readable description
	Location  string `json:"location,omitempty"` // File:line
	Actual    string `json:"actual"`
	Threshold string `json:"threshold,omitempty"`
}

// CheckSummary provides aggregate statistics
type CheckSummary struct {
	FilesAnalyzed     int `json:"files_analyzed"`
	FunctionsAnalyzed int `json:"functions_analyzed"`
	TotalViolations   int `json:"total_violations"`
	MaxArgs           int `json:"max_args"`
	MaxArity          int `json:"max_arity"`
}
