package security

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithinDir(t *testing.T) {
	tmp := t.TempDir()
	safe := filepath.Join(tmp, "safe")
	outside := filepath.Join(tmp, "outside")
	for _, d := range []string{safe, outside} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	if err := os.Symlink(outside, filepath.Join(safe, "link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"file in dir", filepath.Join(safe, "profile.png"), true},
		{"new nested file", filepath.Join(safe, "a", "b", "profile.png"), true},
		{"dot-dot escape", filepath.Join(safe, "..", "profile.png"), false},
		{"sibling dir", filepath.Join(outside, "profile.png"), false},
		{"through symlink", filepath.Join(safe, "link", "profile.png"), false},
		{"new file under symlink", filepath.Join(safe, "link", "new", "profile.png"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WithinDir(tt.path, safe)
			if err != nil {
				t.Fatalf("WithinDir: %v", err)
			}
			if got != tt.want {
				t.Errorf("WithinDir(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()

	if err := ValidateOutputPath(filepath.Join(b, "x.html"), a, b); err != nil {
		t.Errorf("path in second dir rejected: %v", err)
	}
	err := ValidateOutputPath(filepath.Join(a, "..", "x.html"), a)
	if !errors.Is(err, ErrOutsideAllowedDirs) {
		t.Errorf("expected ErrOutsideAllowedDirs, got %v", err)
	}

	// Defaults cover the temp directory.
	if err := ValidateOutputPath(filepath.Join(a, "x.png")); err != nil {
		t.Errorf("temp path rejected with default dirs: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Track_12", "Track_12"},
		{"cell 4 / run #2", "cell_4_run_2"},
		{"../../etc/passwd", "etc_passwd"},
		{"", "unknown"},
		{"///", "unknown"},
		{"µm-track", "m-track"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := SanitizeFilename(strings.Repeat("a", 500))
	if len(long) != maxFilenameLen {
		t.Errorf("long name has length %d, want %d", len(long), maxFilenameLen)
	}
}
