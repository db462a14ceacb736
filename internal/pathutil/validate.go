// Package pathutil keeps file paths supplied by MCP clients inside the
// project root.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a path resolves outside every allowed
// directory.
var ErrOutsideRoot = errors.New("path is outside allowed directories")

// RedactPath reduces a full path to .../<parent>/<basename> for error
// messages, e.g. "/home/user/sims/a.csv" becomes ".../sims/a.csv".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	base := filepath.Base(cleaned)
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

// Resolve makes path absolute (relative paths are taken from root) and
// checks that it stays inside one of allowed after symlinks are resolved.
// The file itself need not exist. It returns the absolute path.
func Resolve(root, path string, allowed ...string) (string, error) {
	if path == "" {
		return "", errors.New("path is empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return "", errors.New("path contains null byte")
	}
	if len(allowed) == 0 {
		allowed = []string{root}
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", RedactPath(path), err)
	}

	dir, err := resolveExisting(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	resolved := filepath.Join(dir, filepath.Base(abs))

	for _, a := range allowed {
		base, err := filepath.Abs(filepath.Clean(a))
		if err != nil {
			continue
		}
		base, err = resolveExisting(base)
		if err != nil {
			continue
		}
		if within(resolved, base) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrOutsideRoot, RedactPath(abs))
}

// resolveExisting resolves symlinks on the deepest existing ancestor of dir
// and re-appends the missing tail.
func resolveExisting(dir string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		return resolved, nil
	}
	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(dir))
	}
	resolved, err := resolveExisting(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolved, filepath.Base(dir)), nil
}

func within(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(os.PathSeparator))
}
