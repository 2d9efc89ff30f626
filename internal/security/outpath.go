// Package security guards the files the CLI writes on behalf of the user.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideAllowedDirs is returned when an output path escapes every
// allowed directory.
var ErrOutsideAllowedDirs = errors.New("output path outside allowed directories")

// canonical returns the absolute, symlink-free form of path. Paths that do
// not exist yet are resolved through their deepest existing ancestor, so a
// symlinked parent cannot redirect a new file.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	var rest []string
	dir := abs
	for {
		parent := filepath.Dir(dir)
		rest = append([]string{filepath.Base(dir)}, rest...)
		if parent == dir {
			return abs, nil
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		dir = parent
	}
}

// WithinDir reports whether path resolves to a location inside dir.
func WithinDir(path, dir string) (bool, error) {
	p, err := canonical(path)
	if err != nil {
		return false, err
	}
	d, err := canonical(dir)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(d, p)
	if err != nil {
		return false, nil
	}
	escapes := rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel)
	return !escapes, nil
}

// ValidateOutputPath checks that path resolves inside one of dirs. With no
// dirs, the temp directory and the working directory are allowed.
func ValidateOutputPath(path string, dirs ...string) error {
	if len(dirs) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		dirs = []string{os.TempDir(), cwd}
	}
	for _, dir := range dirs {
		ok, err := WithinDir(path, dir)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (allowed: %s)", ErrOutsideAllowedDirs, path, strings.Join(dirs, ", "))
}

// maxFilenameLen bounds names built from track names.
const maxFilenameLen = 128

// SanitizeFilename turns an arbitrary track name into a file name: anything
// other than ASCII letters, digits, '.', '_' and '-' becomes a single '_'.
func SanitizeFilename(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range s {
		if b.Len() >= maxFilenameLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
			underscore = r == '_'
		default:
			if !underscore {
				b.WriteByte('_')
				underscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
