package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludo-technologies/argscan/domain"
	"github.com/ludo-technologies/argscan/internal/config"
)

func taskName(i int) string {
	return fmt.Sprintf("task%d", i)
}

func TestNewParallelExecutor(t *testing.T) {
	executor := NewParallelExecutor()

	if executor.maxConcurrency != runtime.NumCPU() {
		t.Errorf("maxConcurrency should be %d, got %d", runtime.NumCPU(), executor.maxConcurrency)
	}
	if executor.timeout != DefaultTimeout {
		t.Errorf("timeout should be %v, got %v", DefaultTimeout, executor.timeout)
	}
	if !executor.failFast {
		t.Error("executor should be fail-fast by default")
	}
}

func TestNewParallelExecutorFromConfig(t *testing.T) {
	executor := NewParallelExecutorFromConfig(&config.PerformanceConfig{
		MaxGoroutines:  8,
		TimeoutSeconds: 120,
	})

	if executor.maxConcurrency != 8 {
		t.Errorf("maxConcurrency should be 8, got %d", executor.maxConcurrency)
	}
	if executor.timeout != 120*time.Second {
		t.Errorf("timeout should be 120s, got %v", executor.timeout)
	}
}

func TestNewParallelExecutorFromConfig_Zero(t *testing.T) {
	executor := NewParallelExecutorFromConfig(&config.PerformanceConfig{})

	if executor.maxConcurrency != runtime.NumCPU() {
		t.Errorf("maxConcurrency should fall back to NumCPU, got %d", executor.maxConcurrency)
	}
	if executor.timeout != 0 {
		t.Errorf("timeout 0 should disable the deadline, got %v", executor.timeout)
	}
}

func TestParallelExecutor_Empty(t *testing.T) {
	err := NewParallelExecutor().Execute(context.Background(), 0, taskName, func(ctx context.Context, i int) error {
		t.Error("task should not run")
		return nil
	})
	if err != nil {
		t.Errorf("empty run should return nil, got %v", err)
	}
}

func TestParallelExecutor_SlotsPerIndex(t *testing.T) {
	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(3)

	slots := make([]int, 20)
	err := executor.Execute(context.Background(), len(slots), taskName, func(ctx context.Context, i int) error {
		slots[i] = i * i
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, v := range slots {
		if v != i*i {
			t.Errorf("slot %d: expected %d, got %d", i, i*i, v)
		}
	}
}

func TestParallelExecutor_FailFast(t *testing.T) {
	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(1)

	errBoom := errors.New("boom")
	var ran atomic.Int32

	err := executor.Execute(context.Background(), 10, taskName, func(ctx context.Context, i int) error {
		ran.Add(1)
		if i == 2 {
			return errBoom
		}
		return nil
	})

	if !errors.Is(err, errBoom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var te TaskError
	if !errors.As(err, &te) || te.TaskName != "task2" {
		t.Errorf("expected TaskError for task2, got %v", err)
	}
	if ran.Load() == 10 {
		t.Error("remaining tasks should be cancelled after the first failure")
	}
}

func TestParallelExecutor_CollectAll(t *testing.T) {
	executor := NewParallelExecutor()
	executor.SetFailFast(false)

	var ran atomic.Int32
	err := executor.Execute(context.Background(), 6, taskName, func(ctx context.Context, i int) error {
		ran.Add(1)
		if i%2 == 1 {
			return fmt.Errorf("odd %d", i)
		}
		return nil
	})

	var aggErr *AggregatedError
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected AggregatedError, got %T", err)
	}
	if ran.Load() != 6 {
		t.Errorf("all tasks should run, got %d", ran.Load())
	}
	if len(aggErr.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(aggErr.Errors))
	}
	for k, want := range []int{1, 3, 5} {
		if aggErr.Errors[k].Index != want {
			t.Errorf("errors should be ordered by index: position %d has %d", k, aggErr.Errors[k].Index)
		}
	}
}

func TestParallelExecutor_Timeout(t *testing.T) {
	executor := NewParallelExecutor()
	executor.SetTimeout(50 * time.Millisecond)

	err := executor.Execute(context.Background(), 1, taskName, func(ctx context.Context, i int) error {
		select {
		case <-time.After(2 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestParallelExecutor_ContextCancellation(t *testing.T) {
	executor := NewParallelExecutor()
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	errChan := make(chan error, 1)
	go func() {
		errChan <- executor.Execute(ctx, 1, taskName, func(ctx context.Context, i int) error {
			close(started)
			select {
			case <-time.After(10 * time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	<-started
	cancel()

	if err := <-errChan; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParallelExecutor_ConcurrencyLimit(t *testing.T) {
	executor := NewParallelExecutorFromConfig(&config.PerformanceConfig{
		MaxGoroutines:  2,
		TimeoutSeconds: 30,
	})

	var current atomic.Int32
	var peak atomic.Int32
	var mu sync.Mutex

	err := executor.Execute(context.Background(), 5, taskName, func(ctx context.Context, i int) error {
		c := current.Add(1)
		mu.Lock()
		if c > peak.Load() {
			peak.Store(c)
		}
		mu.Unlock()
		time.Sleep(30 * time.Millisecond)
		current.Add(-1)
		return nil
	})
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("max concurrency should not exceed 2, got %d", peak.Load())
	}
}

func TestParallelExecutor_Setters(t *testing.T) {
	executor := NewParallelExecutor()
	original := executor.maxConcurrency

	executor.SetMaxConcurrency(0)
	executor.SetMaxConcurrency(-1)
	if executor.maxConcurrency != original {
		t.Errorf("maxConcurrency should remain %d for invalid values, got %d", original, executor.maxConcurrency)
	}

	executor.SetTimeout(-time.Second)
	if executor.timeout != DefaultTimeout {
		t.Errorf("negative timeout should be ignored, got %v", executor.timeout)
	}

	executor.SetTimeout(0)
	if executor.timeout != 0 {
		t.Errorf("timeout 0 should disable the deadline, got %v", executor.timeout)
	}
}

func TestParallelExecutor_ReportsProgress(t *testing.T) {
	pm := &countingProgress{}
	executor := NewParallelExecutor().WithProgress(pm)

	err := executor.Execute(context.Background(), 4, taskName, func(ctx context.Context, i int) error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pm.total != 4 || pm.done.Load() != 4 || !pm.completed.Load() {
		t.Errorf("expected 4/4 completed, got total=%d done=%d completed=%v", pm.total, pm.done.Load(), pm.completed.Load())
	}
}

func TestAggregatedError_Message(t *testing.T) {
	single := &AggregatedError{Errors: []TaskError{{TaskName: "a.rs", Err: errors.New("bad")}}}
	if single.Error() != "[a.rs] bad" {
		t.Errorf("unexpected single message: %q", single.Error())
	}

	empty := &AggregatedError{}
	if empty.Error() != "no errors" || empty.Unwrap() != nil {
		t.Error("empty aggregated error should have no cause")
	}
}

// countingProgress records how a single task was driven
type countingProgress struct {
	NoOpProgressManager
	total     int
	done      atomic.Int32
	completed atomic.Bool
}

func (p *countingProgress) StartTask(_ string, total int) domain.TaskProgress {
	p.total = total
	return &countingTask{p: p}
}

type countingTask struct {
	NoOpTaskProgress
	p *countingProgress
}

func (c *countingTask) Increment(n int) { c.p.done.Add(int32(n)) }
func (c *countingTask) Complete()       { c.p.completed.Store(true) }
