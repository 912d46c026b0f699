// Package testutil provides helper functions for testing argscan components
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/argscan/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// WriteFiles creates files below root from a map of slash-separated relative
// paths to contents, creating parent directories as needed
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

// NewTree creates a test tree from Rust source code. The tree is closed when
// the test ends.
func NewTree(t *testing.T, source string) *sitter.Tree {
	t.Helper()
	p := parser.NewParser()
	defer p.Close()

	tree, err := p.ParseString(source)
	if err != nil {
		t.Fatalf("Failed to parse test code: %v", err)
	}
	t.Cleanup(tree.Close)
	return tree
}

// Symlink creates a symbolic link or skips the test where links are unsupported
func Symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("Symlinks not supported: %v", err)
	}
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}
