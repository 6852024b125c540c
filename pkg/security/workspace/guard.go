// Package workspace confines file artifacts written on behalf of remote
// callers (PDFs, screenshots) to a single output directory.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for paths that resolve outside the guard's root.
var ErrOutsideRoot = errors.New("path is outside the output directory")

// Guard resolves caller-supplied paths against an output root and rejects
// anything that escapes it, including through symlinks.
type Guard struct {
	root string // absolute, symlink-free
}

// NewGuard creates the root directory if needed and returns a Guard for it.
func NewGuard(root string) (*Guard, error) {
	if root == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	eval, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate output directory symlinks: %w", err)
	}

	return &Guard{root: eval}, nil
}

// Root returns the absolute output directory.
func (g *Guard) Root() string {
	return g.root
}

// ValidatePath returns the resolved absolute path for path, or an error if it
// falls outside the root.
func (g *Guard) ValidatePath(path string) (string, error) {
	resolved, err := g.ResolvePath(path)
	if err != nil {
		return "", err
	}
	if !g.Contains(resolved) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return resolved, nil
}

// ResolvePath joins relative paths onto the root, cleans the result and
// resolves symlinks in whatever prefix of it already exists.
func (g *Guard) ResolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	abs := filepath.Clean(path)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(g.root, abs)
	}
	return resolveSymlinks(abs), nil
}

// Contains reports whether absPath is the root or below it.
func (g *Guard) Contains(absPath string) bool {
	p := resolveSymlinks(absPath)
	if p == g.root {
		return true
	}
	return strings.HasPrefix(p+string(filepath.Separator), g.root+string(filepath.Separator))
}

// MakeRelative converts an absolute path below the root to a root-relative one.
func (g *Guard) MakeRelative(absPath string) (string, error) {
	if !g.Contains(absPath) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, absPath)
	}
	rel, err := filepath.Rel(g.root, resolveSymlinks(absPath))
	if err != nil {
		return "", fmt.Errorf("failed to make path relative: %w", err)
	}
	return rel, nil
}

// resolveSymlinks evaluates the longest existing prefix of path and appends
// the remaining components unchanged.
func resolveSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}

	var rest []string
	current := path
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(rest) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, rest[i])
			}
			return resolved
		}

		dir := filepath.Dir(current)
		if dir == current || dir == "." {
			return path
		}
		rest = append(rest, filepath.Base(current))
		current = dir
	}
}
