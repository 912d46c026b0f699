package app

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/ludo-technologies/argscan/domain"
	"github.com/ludo-technologies/argscan/internal/logging"
	ignore "github.com/sabhiram/go-gitignore"
)

// FileHelper provides file operation utilities
type FileHelper struct {
	logger hclog.Logger
}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{logger: hclog.NewNullLogger()}
}

// WithLogger sets the logger used for skipped entries
func (h *FileHelper) WithLogger(logger hclog.Logger) *FileHelper {
	h.logger = logging.OrNull(logger)
	return h
}

// CollectSourceFiles walks root and returns matching source files in
// lexicographic order. Returned paths are root joined with the path below it.
//
// Unreadable entries and broken links are skipped. Only a missing or
// unreadable root is an error.
func (h *FileHelper) CollectSourceFiles(root string, opts domain.CollectOptions) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if h.IsSourceFile(root, opts.Extensions) {
			return []string{root}, nil
		}
		return nil, nil
	}

	if _, err := os.ReadDir(root); err != nil {
		return nil, err
	}

	matcher, err := h.compileExcludes(root, opts)
	if err != nil {
		return nil, err
	}

	w := &walker{
		helper:    h,
		opts:      opts,
		matcher:   matcher,
		ancestors: make(map[string]bool),
	}
	w.walk(root, "")
	return w.files, nil
}

// walker holds the state of one traversal
type walker struct {
	helper  *FileHelper
	opts    domain.CollectOptions
	matcher *ignore.GitIgnore
	// ancestors holds the resolved directories on the current path from the root
	ancestors map[string]bool
	files     []string
}

// walk visits dir, whose slash-separated path below the root is rel
func (w *walker) walk(dir, rel string) {
	logger := w.helper.logger

	// A link back to a directory on the current path is a loop. Directories
	// reached through several distinct paths are walked under each of them.
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		logger.Debug("skipping directory", "path", dir, "error", err)
		return
	}
	if w.ancestors[resolved] {
		logger.Debug("skipping symlink loop", "path", dir, "target", resolved)
		return
	}
	w.ancestors[resolved] = true
	defer delete(w.ancestors, resolved)

	// os.ReadDir returns entries sorted by filename
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Debug("skipping unreadable directory", "path", dir, "error", err)
		return
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		relPath := path.Join(rel, entry.Name())

		isDir, isFile := w.classify(full, entry)
		switch {
		case isDir:
			if w.excluded(relPath + "/") {
				logger.Debug("excluded directory", "path", relPath)
				continue
			}
			w.walk(full, relPath)
		case isFile:
			if w.excluded(relPath) {
				logger.Debug("excluded file", "path", relPath)
				continue
			}
			if w.helper.IsSourceFile(full, w.opts.Extensions) {
				w.files = append(w.files, full)
			}
		}
	}
}

// classify reports whether an entry is a directory or regular file,
// resolving symbolic links when they are followed
func (w *walker) classify(full string, entry os.DirEntry) (isDir, isFile bool) {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.IsDir(), entry.Type().IsRegular()
	}

	if !w.opts.FollowSymlinks {
		w.helper.logger.Debug("not following symlink", "path", full)
		return false, false
	}

	info, err := os.Stat(full)
	if err != nil {
		w.helper.logger.Debug("skipping broken symlink", "path", full, "error", err)
		return false, false
	}
	return info.IsDir(), info.Mode().IsRegular()
}

func (w *walker) excluded(relPath string) bool {
	return w.matcher != nil && w.matcher.MatchesPath(relPath)
}

// compileExcludes builds the gitignore matcher for the exclude patterns and,
// when requested, the root's .gitignore
func (h *FileHelper) compileExcludes(root string, opts domain.CollectOptions) (*ignore.GitIgnore, error) {
	lines := append([]string(nil), opts.ExcludePatterns...)

	if opts.RespectGitignore {
		extra, err := readGitignore(filepath.Join(root, ".gitignore"))
		if err != nil {
			return nil, err
		}
		lines = append(lines, extra...)
	}

	if len(lines) == 0 {
		return nil, nil
	}
	return ignore.CompileIgnoreLines(lines...), nil
}

// readGitignore returns the lines of a .gitignore file; a missing file has none
func readGitignore(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// IsSourceFile checks the file extension against extensions. The match is
// exact, so lib.RS is not a Rust source.
func (h *FileHelper) IsSourceFile(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	for _, want := range extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}
