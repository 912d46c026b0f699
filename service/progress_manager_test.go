package service

import (
	"bytes"
	"testing"

	"github.com/ludo-technologies/argscan/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgressManager_Disabled(t *testing.T) {
	pm := NewProgressManager(false)
	assert.False(t, pm.IsInteractive(), "disabled manager must not be interactive")

	var _ domain.ProgressManager = pm
}

func TestNewProgressManager_CI(t *testing.T) {
	t.Setenv("CI", "true")

	pm := NewProgressManager(true)
	assert.False(t, pm.IsInteractive(), "progress bars are never shown in CI")
	assert.False(t, IsInteractiveEnvironment())
}

func TestNoOpProgressManager(t *testing.T) {
	pm := &NoOpProgressManager{}
	assert.False(t, pm.IsInteractive())

	task := pm.StartTask("test", 100)
	require.NotNil(t, task)

	// All operations should be no-ops (not panic)
	task.Increment(10)
	task.Describe("testing")
	task.Complete()
	pm.Close()
}

func TestProgressManagerImpl_WritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	pm := newProgressManagerWithWriter(&buf)
	assert.True(t, pm.IsInteractive())

	task := pm.StartTask("Analyzing", 2)
	task.Increment(1)
	task.Describe("src/lib.rs")
	task.Increment(1)
	task.Complete()
	pm.Close()

	assert.NotEmpty(t, buf.String(), "progress bar should render to its writer")
}

func TestProgressManagerImpl_Interface(t *testing.T) {
	var _ domain.ProgressManager = &ProgressManagerImpl{}
	var _ domain.TaskProgress = &TaskProgressImpl{}
	var _ domain.TaskProgress = &NoOpTaskProgress{}
}
