package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ludo-technologies/argscan/domain"
	"github.com/ludo-technologies/argscan/internal/config"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a whole run when nothing else is configured
const DefaultTimeout = config.DefaultTimeoutSeconds * time.Second

// IndexedTask processes the item at index i. Results are written by the task
// into a slot owned by i, so no ordering between tasks is needed.
type IndexedTask func(ctx context.Context, i int) error

// TaskError represents a single task failure
type TaskError struct {
	Index    int
	TaskName string
	Err      error
}

// Error implements the error interface
func (e TaskError) Error() string {
	return fmt.Sprintf("[%s] %v", e.TaskName, e.Err)
}

// Unwrap returns the underlying error
func (e TaskError) Unwrap() error {
	return e.Err
}

// AggregatedError collects all task failures, ordered by task index
type AggregatedError struct {
	Errors []TaskError
}

// Error implements the error interface
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d tasks failed:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Unwrap returns the first error for errors.Is/As compatibility
func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0].Err
}

// ParallelExecutor runs indexed tasks on a bounded errgroup
type ParallelExecutor struct {
	maxConcurrency int
	timeout        time.Duration
	failFast       bool
	progress       domain.ProgressManager
	mu             sync.RWMutex
}

// NewParallelExecutor creates a fail-fast executor using runtime.NumCPU()
// workers and the default timeout
func NewParallelExecutor() *ParallelExecutor {
	return &ParallelExecutor{
		maxConcurrency: runtime.NumCPU(),
		timeout:        DefaultTimeout,
		failFast:       true,
	}
}

// NewParallelExecutorFromConfig creates a parallel executor from configuration.
// MaxGoroutines 0 means runtime.NumCPU(); TimeoutSeconds 0 means no limit.
func NewParallelExecutorFromConfig(cfg *config.PerformanceConfig) *ParallelExecutor {
	e := NewParallelExecutor()
	if cfg == nil {
		return e
	}
	if cfg.MaxGoroutines > 0 {
		e.maxConcurrency = cfg.MaxGoroutines
	}
	e.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	return e
}

// WithProgress attaches a progress manager
func (e *ParallelExecutor) WithProgress(pm domain.ProgressManager) *ParallelExecutor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress = pm
	return e
}

// SetFailFast controls whether the first failure cancels the remaining tasks.
// When disabled every task runs and failures come back as *AggregatedError.
func (e *ParallelExecutor) SetFailFast(failFast bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failFast = failFast
}

// SetMaxConcurrency sets the maximum number of concurrent tasks
func (e *ParallelExecutor) SetMaxConcurrency(max int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if max > 0 {
		e.maxConcurrency = max
	}
}

// SetTimeout sets the timeout for the whole run (0 disables it)
func (e *ParallelExecutor) SetTimeout(timeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if timeout >= 0 {
		e.timeout = timeout
	}
}

// Execute runs task for every index in [0, n). name labels failures.
//
// In fail-fast mode the first error cancels the group and is returned as a
// TaskError. Otherwise all failures are returned together as an
// *AggregatedError. A context cancellation or timeout is returned as is.
func (e *ParallelExecutor) Execute(ctx context.Context, n int, name func(i int) string, task IndexedTask) error {
	if n == 0 {
		return nil
	}

	// Get current config values (thread-safe)
	e.mu.RLock()
	maxConcurrency := e.maxConcurrency
	timeout := e.timeout
	failFast := e.failFast
	pm := e.progress
	e.mu.RUnlock()

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Set up progress tracking
	var progress domain.TaskProgress = &NoOpTaskProgress{}
	if pm != nil {
		progress = pm.StartTask("Analyzing files", n)
	}
	defer progress.Complete()

	// Create errgroup with context for cancellation propagation
	g, gCtx := errgroup.WithContext(runCtx)
	g.SetLimit(maxConcurrency)

	var errMu sync.Mutex
	var taskErrors []TaskError

	for i := 0; i < n; i++ {
		g.Go(func() error {
			// Check if context is already cancelled
			if err := gCtx.Err(); err != nil {
				return err
			}

			err := task(gCtx, i)
			progress.Increment(1)
			if err == nil {
				return nil
			}

			te := TaskError{Index: i, TaskName: name(i), Err: err}
			if failFast {
				return te
			}

			errMu.Lock()
			taskErrors = append(taskErrors, te)
			errMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// A deadline on the run context surfaces as the cause
		if runCtx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("analysis timed out after %s: %w", timeout, runCtx.Err())
		}
		return err
	}
	if len(taskErrors) > 0 {
		sort.Slice(taskErrors, func(a, b int) bool {
			return taskErrors[a].Index < taskErrors[b].Index
		})
		return &AggregatedError{Errors: taskErrors}
	}

	return nil
}
