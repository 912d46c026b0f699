package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/ludo-technologies/argscan/domain"
	"github.com/ludo-technologies/argscan/internal/analyzer"
	"github.com/ludo-technologies/argscan/internal/config"
	"github.com/ludo-technologies/argscan/internal/logging"
	"github.com/ludo-technologies/argscan/internal/parser"
	"github.com/ludo-technologies/argscan/internal/version"
)

// ArityServiceImpl implements the ArityService interface
type ArityServiceImpl struct {
	progress domain.ProgressManager
	logger   hclog.Logger
}

// NewArityService creates a new arity service implementation
func NewArityService() *ArityServiceImpl {
	return &ArityServiceImpl{
		logger: hclog.NewNullLogger(),
	}
}

// NewArityServiceWithProgress creates a new arity service with progress reporting
func NewArityServiceWithProgress(pm domain.ProgressManager) *ArityServiceImpl {
	s := NewArityService()
	s.progress = pm
	return s
}

// WithLogger sets the logger for per-file diagnostics
func (s *ArityServiceImpl) WithLogger(logger hclog.Logger) *ArityServiceImpl {
	s.logger = logging.OrNull(logger)
	return s
}

// fileResult is the outcome for one entry of req.Paths
type fileResult struct {
	analyzed  bool
	functions []analyzer.FunctionArity
}

// Analyze counts parameters in every file of req.Paths and reports the
// functions above req.MinArgs.
//
// Files are processed in parallel but merged in req.Paths order, so the
// response only depends on the inputs. A parse failure aborts the run with a
// PARSE_ERROR unless req.KeepGoing is set. Syntax errors only count as parse
// failures with req.StrictParse.
func (s *ArityServiceImpl) Analyze(ctx context.Context, req domain.ArityRequest) (*domain.ArityResponse, error) {
	counter := analyzer.NewArityCounter(req.ReceiverKinds, req.IgnoredKinds)
	a, err := analyzer.NewArityAnalyzer(counter, req.StrictParse)
	if err != nil {
		return nil, domain.NewAnalysisError("failed to compile declaration query", err)
	}
	defer a.Close()
	a.WithLogger(s.logger)

	executor := NewParallelExecutorFromConfig(&config.PerformanceConfig{
		MaxGoroutines:  req.MaxGoroutines,
		TimeoutSeconds: req.TimeoutSeconds,
	}).WithProgress(s.progress)
	executor.SetFailFast(!req.KeepGoing)

	results := make([]fileResult, len(req.Paths))
	name := func(i int) string {
		return relativePath(req.Root, req.Paths[i])
	}

	err = executor.Execute(ctx, len(req.Paths), name, func(ctx context.Context, i int) error {
		functions, analyzed, err := s.analyzeFile(ctx, a, req.Paths[i], name(i))
		if err != nil {
			return err
		}
		results[i] = fileResult{analyzed: analyzed, functions: functions}
		return nil
	})

	skipped, err := s.handleExecuteError(err)
	if err != nil {
		return nil, err
	}

	functions, summary := s.collect(results, req)
	sortFunctions(functions, req.SortBy)

	summary.FailedFiles = len(skipped)
	summary.Partial = len(skipped) > 0

	return &domain.ArityResponse{
		Functions:   functions,
		Summary:     summary,
		Errors:      skipped,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.GetVersion(),
		Config:      buildConfigForResponse(req),
	}, nil
}

// AnalyzeFile analyzes a single Rust file
func (s *ArityServiceImpl) AnalyzeFile(ctx context.Context, filePath string, req domain.ArityRequest) (*domain.ArityResponse, error) {
	// Update the request to analyze only this file
	singleFileReq := req
	singleFileReq.Paths = []string{filePath}
	if singleFileReq.Root == "" {
		singleFileReq.Root = filePath
	}

	return s.Analyze(ctx, singleFileReq)
}

// analyzeFile reads and analyzes one file. Unreadable files are skipped like
// any other unreadable traversal entry; analyzed reports whether it was read.
func (s *ArityServiceImpl) analyzeFile(ctx context.Context, a *analyzer.ArityAnalyzer, path, rel string) ([]analyzer.FunctionArity, bool, error) {
	content, err := s.readFile(path)
	if err != nil {
		s.logger.Debug("skipping unreadable file", "file", rel, "error", err)
		return nil, false, nil
	}

	functions, err := a.AnalyzeSource(ctx, rel, content)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, false, domain.NewParseError(rel, err)
	}

	s.logger.Debug("analyzed file", "file", rel, "functions", len(functions))
	return functions, true, nil
}

// handleExecuteError separates files skipped under keep-going from fatal errors
func (s *ArityServiceImpl) handleExecuteError(err error) ([]string, error) {
	if err == nil {
		return nil, nil
	}

	var aggErr *AggregatedError
	if errors.As(err, &aggErr) {
		skipped := make([]string, 0, len(aggErr.Errors))
		for _, te := range aggErr.Errors {
			if !domain.HasCode(te.Err, domain.ErrCodeParseError) {
				return nil, domain.NewAnalysisError("arity analysis failed", te.Err)
			}
			s.logger.Warn("skipping file that failed to parse", "file", te.TaskName, "error", te.Err)
			skipped = append(skipped, te.Err.Error())
		}
		return skipped, nil
	}

	var domainErr domain.DomainError
	if errors.As(err, &domainErr) {
		return nil, domainErr
	}
	return nil, domain.NewAnalysisError("arity analysis failed", err)
}

// collect merges per-file results in input order and applies the threshold
func (s *ArityServiceImpl) collect(results []fileResult, req domain.ArityRequest) ([]domain.FunctionArity, domain.AritySummary) {
	summary := domain.AritySummary{MinArgs: req.MinArgs}
	functions := make([]domain.FunctionArity, 0)

	for i, r := range results {
		if !r.analyzed {
			continue
		}
		summary.FilesAnalyzed++
		rel := relativePath(req.Root, req.Paths[i])

		for _, fn := range r.functions {
			summary.FunctionsAnalyzed++
			if fn.Arity > summary.MaxArity {
				summary.MaxArity = fn.Arity
			}
			if fn.Arity <= req.MinArgs {
				continue
			}
			functions = append(functions, domain.FunctionArity{
				FilePath: rel,
				Name:     fn.Name,
				Arity:    fn.Arity,
				Line:     fn.Line,
				Column:   fn.Column,
				Kind:     declarationKind(fn.Shape),
			})
		}
	}

	summary.FlaggedFunctions = len(functions)
	return functions, summary
}

// sortFunctions orders functions in place. The sort is stable, so equal keys
// keep discovery order.
func sortFunctions(functions []domain.FunctionArity, sortBy domain.SortCriteria) {
	switch sortBy {
	case domain.SortByName:
		sort.SliceStable(functions, func(i, j int) bool {
			return functions[i].Name < functions[j].Name
		})
	case domain.SortByLocation:
		sort.SliceStable(functions, func(i, j int) bool {
			a, b := functions[i], functions[j]
			if a.FilePath != b.FilePath {
				return a.FilePath < b.FilePath
			}
			if a.Line != b.Line {
				return a.Line < b.Line
			}
			return a.Column < b.Column
		})
	default:
		// Default: ascending arity, worst offenders last
		sort.SliceStable(functions, func(i, j int) bool {
			return functions[i].Arity < functions[j].Arity
		})
	}
}

func declarationKind(shape parser.DeclarationShape) domain.DeclarationKind {
	if shape == parser.ShapeSignature {
		return domain.DeclarationSignature
	}
	return domain.DeclarationFunction
}

// relativePath returns file relative to root in slash form. A root that is
// the file itself yields the file's base name.
func relativePath(root, file string) string {
	if root == "" {
		return filepath.ToSlash(file)
	}
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(file)
	}
	return filepath.ToSlash(rel)
}

// buildConfigForResponse records the settings that shaped the response
func buildConfigForResponse(req domain.ArityRequest) map[string]interface{} {
	return map[string]interface{}{
		"min_args":     req.MinArgs,
		"sort_by":      req.SortBy,
		"extensions":   req.Extensions,
		"strict_parse": req.StrictParse,
		"keep_going":   req.KeepGoing,
	}
}

// readFile reads the content of a file
func (s *ArityServiceImpl) readFile(filePath string) ([]byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}
