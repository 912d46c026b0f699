package main

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"github.com/ludo-technologies/argscan/app"
	"github.com/ludo-technologies/argscan/domain"
	"github.com/ludo-technologies/argscan/internal/constants"
	"github.com/ludo-technologies/argscan/internal/logging"
	"github.com/ludo-technologies/argscan/service"
	"github.com/spf13/cobra"
)

// usageLine is printed when the positional arguments are missing
const usageLine = "Usage: argscan <directory> <min_args>"

// scanOptions holds the flags of the scan command
type scanOptions struct {
	format     string
	output     string
	configPath string
	excludes   []string
	gitignore  bool
	noFollow   bool
	keepGoing  bool
	strict     bool
	sortBy     string
	workers    int
	progress   bool
	verbose    bool
}

func scanCmd() *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "argscan <directory> <min_args>",
		Short: "argscan - report Rust functions with too many parameters",
		Long: `argscan walks a directory of Rust sources and reports every function
declaring more than <min_args> parameters. The method receiver (self) is
never counted. Results are sorted by ascending parameter count.

A directory named like a subcommand (check, init, version) is scanned when
a threshold follows it. Writing it as ./init always works.

Examples:
  # Functions with more than 5 parameters
  argscan ./src 5

  # JSON report, following .gitignore
  argscan . 3 --format json --gitignore

  # Keep scanning past files that fail to parse
  argscan . 4 --keep-going`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text",
		"Output format: text, json, yaml, csv, sarif, html")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringSliceVarP(&opts.excludes, "exclude", "e", nil,
		"Gitignore-style pattern to exclude (repeatable)")
	cmd.Flags().BoolVar(&opts.gitignore, "gitignore", false,
		"Also exclude paths listed in the root .gitignore")
	cmd.Flags().BoolVar(&opts.noFollow, "no-follow", false,
		"Do not follow symbolic links")
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false,
		"Skip files that fail to parse and mark the report as partial")
	cmd.Flags().BoolVar(&opts.strict, "strict", false,
		"Fail on files whose syntax tree contains error nodes")
	cmd.Flags().StringVar(&opts.sortBy, "sort", "arity",
		"Sort order: arity, name, location")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0,
		"Number of files parsed in parallel (0 = number of CPUs)")
	cmd.Flags().BoolVar(&opts.progress, "progress", false,
		"Show a progress bar on interactive terminals")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Enable debug logging")

	return cmd
}

func runScan(cmd *cobra.Command, args []string, opts *scanOptions) error {
	if len(args) != 2 {
		return &ExitError{Code: constants.ExitUsage, Message: usageLine}
	}

	minArgs, err := parseThreshold(args[1])
	if err != nil {
		return &ExitError{Code: constants.ExitUsage, Message: fmt.Sprintf("Error: %v", err)}
	}

	loader := service.NewConfigurationLoader()
	req, err := loader.LoadRequest(opts.configPath, args[0])
	if err != nil {
		return &ExitError{Code: constants.ExitError, Message: fmt.Sprintf("Error: %v", err)}
	}
	req.MinArgs = minArgs
	opts.apply(cmd, req)

	if err := loader.ValidateRequest(req); err != nil {
		return &ExitError{Code: constants.ExitUsage, Message: fmt.Sprintf("Error: %v", err)}
	}

	logger := logging.New(constants.ToolName, req.LogLevel, cmd.ErrOrStderr())

	pm := service.NewProgressManager(req.ShowProgress)
	defer pm.Close()

	uc, err := buildUseCase(logger, pm, service.NewOutputFormatter())
	if err != nil {
		return &ExitError{Code: constants.ExitError, Message: fmt.Sprintf("Error: %v", err)}
	}

	if _, err := uc.Execute(cmd.Context(), *req); err != nil {
		return &ExitError{Code: constants.ExitError, Message: fmt.Sprintf("Error: %v", err)}
	}
	return nil
}

// parseThreshold parses the <min_args> argument
func parseThreshold(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid min_args %q: must be a non-negative integer", s)
	}
	return n, nil
}

// apply merges explicitly set flags into req
func (o *scanOptions) apply(cmd *cobra.Command, req *domain.ArityRequest) {
	flags := cmd.Flags()

	if flags.Changed("format") {
		req.OutputFormat = domain.OutputFormat(o.format)
	}
	if flags.Changed("output") {
		req.OutputPath = o.output
	}
	if flags.Changed("exclude") {
		req.ExcludePatterns = append(append([]string{}, req.ExcludePatterns...), o.excludes...)
	}
	if flags.Changed("gitignore") {
		req.RespectGitignore = o.gitignore
	}
	if flags.Changed("no-follow") {
		req.FollowSymlinks = !o.noFollow
	}
	if flags.Changed("keep-going") {
		req.KeepGoing = o.keepGoing
	}
	if flags.Changed("strict") {
		req.StrictParse = o.strict
	}
	if flags.Changed("sort") {
		req.SortBy = domain.SortCriteria(o.sortBy)
	}
	if flags.Changed("workers") {
		req.MaxGoroutines = o.workers
	}
	if flags.Changed("progress") {
		req.ShowProgress = o.progress
	}
	if o.verbose {
		req.LogLevel = "debug"
	}

	req.OutputWriter = cmd.OutOrStdout()
}

// buildUseCase wires the file walker, the arity service and the formatter
func buildUseCase(logger hclog.Logger, pm domain.ProgressManager, formatter domain.OutputFormatter) (*app.ArityUseCase, error) {
	return app.NewArityUseCaseBuilder().
		WithService(service.NewArityServiceWithProgress(pm).WithLogger(logger.Named("service"))).
		WithFileReader(app.NewFileHelper().WithLogger(logger.Named("walk"))).
		WithFormatter(formatter).
		Build()
}
