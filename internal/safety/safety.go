// Package safety guards the files prep reads on the user's behalf.
package safety

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// DefaultMaxContextBytes caps a --context file. Anything larger would
// blow past most backends' context windows anyway.
const DefaultMaxContextBytes = 1 << 20

var (
	ErrNotRegular = errors.New("not a regular file")
	ErrTooLarge   = errors.New("file too large")
	ErrBinary     = errors.New("file is not valid UTF-8 text")
)

// Guard checks context files before they are sent to a backend.
type Guard struct {
	maxBytes int64
}

// NewGuard returns a guard allowing files up to maxBytes. maxBytes <= 0
// uses DefaultMaxContextBytes.
func NewGuard(maxBytes int64) *Guard {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxContextBytes
	}
	return &Guard{maxBytes: maxBytes}
}

// CheckFile verifies path resolves to a regular file within the size cap
// and returns its canonical form.
func (g *Guard) CheckFile(path string) (string, error) {
	resolved, err := canonicalPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	if info.Size() > g.maxBytes {
		return "", fmt.Errorf("%s (%d bytes, max %d): %w", path, info.Size(), g.maxBytes, ErrTooLarge)
	}
	return resolved, nil
}

// ReadContext reads a context file after CheckFile passes. Binary content
// is rejected.
func (g *Guard) ReadContext(path string) (string, error) {
	resolved, err := g.CheckFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read context file: %w", err)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read context file %s: %w", path, err)
	}
	// The file may have grown since the stat.
	if int64(len(data)) > g.maxBytes {
		return "", fmt.Errorf("failed to read context file: %s: %w", path, ErrTooLarge)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("failed to read context file: %s: %w", path, ErrBinary)
	}
	return string(data), nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return filepath.Clean(resolved), nil
}
