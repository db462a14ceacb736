package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/crosswalk/internal/config"
	"github.com/nvandessel/crosswalk/internal/store"
)

func runBackupCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newBackupCmd(), newRestoreCmd())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBackupAndRestore(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	srcRoot := filepath.Join(tmpDir, "src")
	runID := archiveRun(t, mkdir(t, srcRoot))

	out, err := runBackupCmd(t, "backup", "--root", srcRoot, "--json")
	if err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	var created struct {
		Path     string `json:"path"`
		RunCount int    `json:"run_count"`
	}
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if created.RunCount != 1 {
		t.Errorf("run_count = %d, want 1", created.RunCount)
	}

	out, err = runBackupCmd(t, "backup", "verify", created.Path)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !strings.Contains(out, "checksum OK") {
		t.Errorf("unexpected verify output: %s", out)
	}

	out, err = runBackupCmd(t, "backup", "list", "--root", srcRoot)
	if err != nil {
		t.Fatalf("backup list failed: %v", err)
	}
	if !strings.Contains(out, "Total: 1 backups") {
		t.Errorf("unexpected list output: %s", out)
	}

	// The restore target must see the file inside its own root.
	dstRoot := mkdir(t, filepath.Join(tmpDir, "dst"))
	if _, err := runBackupCmd(t, "restore", created.Path, "--root", dstRoot); err == nil {
		t.Error("restore should reject a file outside the root")
	}
	if _, err := runBackupCmd(t, "restore", created.Path, "--root", tmpDir); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	rs, err := store.NewSQLiteRunStore(tmpDir)
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	defer rs.Close()
	if _, err := rs.GetRun(context.Background(), runID); err != nil {
		t.Errorf("restored run not found: %v", err)
	}
}

func TestRestore_InvalidMode(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	_, err := runBackupCmd(t, "restore", "x.json", "--root", tmpDir, "--mode", "wipe")
	if err == nil || !strings.Contains(err.Error(), "invalid mode") {
		t.Errorf("error = %v, want invalid mode", err)
	}
}

func TestBuildRetentionPolicy(t *testing.T) {
	policy, err := buildRetentionPolicy(&config.BackupConfig{})
	if err != nil || policy != nil {
		t.Errorf("no limits: policy = %v, err = %v; want nil, nil", policy, err)
	}

	policy, err = buildRetentionPolicy(&config.BackupConfig{MaxCount: 3, MaxAge: "30d"})
	if err != nil || policy == nil {
		t.Fatalf("both limits: policy = %v, err = %v", policy, err)
	}

	if _, err := buildRetentionPolicy(&config.BackupConfig{MaxAge: "soon"}); err == nil {
		t.Error("expected error for a bad max_age")
	}
}

func mkdir(t *testing.T, dir string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error = %v", dir, err)
	}
	return dir
}
