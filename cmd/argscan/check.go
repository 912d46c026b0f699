package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ludo-technologies/argscan/domain"
	"github.com/ludo-technologies/argscan/internal/constants"
	"github.com/ludo-technologies/argscan/internal/logging"
	"github.com/ludo-technologies/argscan/internal/version"
	"github.com/ludo-technologies/argscan/service"
	"github.com/spf13/cobra"
)

// checkOptions holds the flags of the check command
type checkOptions struct {
	maxArgs    int
	jsonOutput bool
	verbose    bool
	configPath string
}

func checkCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Fast parameter count gate for CI/CD pipelines",
		Long: `Fail when any function declares more parameters than allowed.

Exit codes:
  0 - No function exceeds the limit
  1 - At least one function exceeds the limit
  2 - Analysis error (directory not found, parse error, etc.)

Examples:
  # Check the current directory against arity.max_args
  argscan check

  # Explicit limit
  argscan check --max-args 4 src/

  # JSON output for machine parsing
  argscan check --json .`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true,
	}

	cmd.Flags().IntVar(&opts.maxArgs, "max-args", 0,
		"Maximum allowed parameters per function (default from config, 5)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false,
		"Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show detailed output")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	startTime := time.Now()

	req, err := service.NewConfigurationLoader().LoadRequest(opts.configPath, root)
	if err != nil {
		return &ExitError{Code: constants.ExitError, Message: fmt.Sprintf("Error: failed to load configuration: %v", err)}
	}

	// Apply flags explicitly set on the CLI
	if cmd.Flags().Changed("max-args") {
		req.MinArgs = opts.maxArgs
	}
	if opts.verbose {
		req.LogLevel = "debug"
	}

	// Progress stays off for JSON output
	pm := service.NewProgressManager(req.ShowProgress && !opts.jsonOutput)
	defer pm.Close()

	uc, err := buildUseCase(logging.New(constants.ToolName, req.LogLevel, cmd.ErrOrStderr()), pm, nil)
	if err != nil {
		return &ExitError{Code: constants.ExitError, Message: fmt.Sprintf("Error: %v", err)}
	}

	resp, err := uc.Analyze(cmd.Context(), *req)
	if err != nil {
		return &ExitError{Code: constants.ExitError, Message: fmt.Sprintf("Error: %v", err)}
	}

	result := buildCheckResult(resp, req.MinArgs)
	result.Duration = time.Since(startTime).Milliseconds()

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		if err := outputCheckJSON(out, result); err != nil {
			return &ExitError{Code: constants.ExitError, Message: fmt.Sprintf("Error: failed to encode JSON: %v", err)}
		}
	} else {
		outputCheckText(out, result, opts.verbose)
	}

	if !result.Passed {
		return &ExitError{Code: constants.ExitViolations}
	}
	return nil
}

// buildCheckResult turns every reported function into a violation
func buildCheckResult(resp *domain.ArityResponse, maxArgs int) *domain.CheckResult {
	result := &domain.CheckResult{
		Passed:     len(resp.Functions) == 0,
		ExitCode:   constants.ExitOK,
		Violations: make([]domain.CheckViolation, 0, len(resp.Functions)),
		Summary: domain.CheckSummary{
			FilesAnalyzed:     resp.Summary.FilesAnalyzed,
			FunctionsAnalyzed: resp.Summary.FunctionsAnalyzed,
			TotalViolations:   len(resp.Functions),
			MaxArgs:           maxArgs,
			MaxArity:          resp.Summary.MaxArity,
		},
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}
	if !result.Passed {
		result.ExitCode = constants.ExitViolations
	}

	for _, fn := range resp.Functions {
		result.Violations = append(result.Violations, domain.CheckViolation{
			Rule:      constants.RuleTooManyArguments,
			Severity:  "error",
			Message:   fmt.Sprintf("fn %s has %d parameters (max: %d)", fn.Name, fn.Arity, maxArgs),
			Location:  fmt.Sprintf("%s:%d", fn.FilePath, fn.Line),
			Actual:    strconv.Itoa(fn.Arity),
			Threshold: strconv.Itoa(maxArgs),
		})
	}

	return result
}

func outputCheckText(w io.Writer, result *domain.CheckResult, verbose bool) {
	if result.Passed {
		fmt.Fprintln(w, "PASS: No function exceeds the parameter limit")
		if verbose {
			fmt.Fprintf(w, "  Files analyzed: %d\n", result.Summary.FilesAnalyzed)
			fmt.Fprintf(w, "  Functions analyzed: %d\n", result.Summary.FunctionsAnalyzed)
			fmt.Fprintf(w, "  Max parameters: %d (limit: %d)\n", result.Summary.MaxArity, result.Summary.MaxArgs)
			fmt.Fprintf(w, "  Duration: %dms\n", result.Duration)
		}
		return
	}

	fmt.Fprintln(w, "FAIL: Parameter check failed")
	fmt.Fprintf(w, "  Violations: %d\n", result.Summary.TotalViolations)

	for _, v := range result.Violations {
		fmt.Fprintf(w, "  [ERROR] %s: %s\n", v.Location, v.Message)
	}

	if verbose {
		fmt.Fprintf(w, "\nSummary:\n")
		fmt.Fprintf(w, "  Files: %d\n", result.Summary.FilesAnalyzed)
		fmt.Fprintf(w, "  Functions: %d\n", result.Summary.FunctionsAnalyzed)
		fmt.Fprintf(w, "  Duration: %dms\n", result.Duration)
	}
}

func outputCheckJSON(w io.Writer, result *domain.CheckResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
