package pathutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolve(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "scenarios"), 0700); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"relative inside root", "scenarios/cross.csv", filepath.Join(root, "scenarios", "cross.csv"), nil},
		{"absolute inside root", filepath.Join(root, "out.csv"), filepath.Join(root, "out.csv"), nil},
		{"missing parent dirs", "out/a/b.csv", filepath.Join(root, "out", "a", "b.csv"), nil},
		{"root itself", root, root, nil},
		{"dot-dot escape", "../etc/passwd", "", ErrOutsideRoot},
		{"other dir", filepath.Join(other, "x.csv"), "", ErrOutsideRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(root, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_Rejects(t *testing.T) {
	root := t.TempDir()
	if _, err := Resolve(root, ""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := Resolve(root, "a\x00b"); err == nil {
		t.Error("expected error for null byte")
	}
}

func TestResolve_ExtraAllowedDir(t *testing.T) {
	root := t.TempDir()
	extra := t.TempDir()

	if _, err := Resolve(root, filepath.Join(extra, "a.csv"), root, extra); err != nil {
		t.Errorf("path in extra dir should be allowed: %v", err)
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test not supported on Windows")
	}
	root := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(root, "escape")
	if err := os.Symlink(outside, link); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	if _, err := Resolve(root, "escape/a.csv"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("symlink out of root should be rejected, got %v", err)
	}
}

func TestRedactPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/home/user/sims/a.csv", ".../sims/a.csv"},
		{"a.csv", "a.csv"},
		{"/a.csv", "a.csv"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RedactPath(tt.path); got != tt.want {
			t.Errorf("RedactPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
