package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/crosswalk/internal/store"
)

func runViewCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newViewCmd())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"view"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestView_TurnText(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	archiveRun(t, tmpDir)

	out, err := runViewCmd(t, "--turn", "0", "--root", tmpDir)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if !strings.HasPrefix(out, "turn 0\nA") {
		t.Errorf("turn 0 should show the mover:\n%s", out)
	}
}

func TestView_TurnPNG(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	runID := archiveRun(t, tmpDir)
	output := filepath.Join(tmpDir, "turn.png")

	if _, err := runViewCmd(t, runID, "--turn", "2", "--png", output, "--root", tmpDir); err != nil {
		t.Fatalf("view failed: %v", err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("opening png: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("output is not a PNG: %v", err)
	}
}

func TestView_MissingTurn(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	archiveRun(t, tmpDir)

	if _, err := runViewCmd(t, "--turn", "99", "--root", tmpDir); err == nil {
		t.Error("expected error for a turn the run never recorded")
	}
}

func TestResolveRun_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	rs, err := store.NewSQLiteRunStore(tmpDir)
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	defer rs.Close()

	if _, err := resolveRun(context.Background(), rs, nil); err == nil {
		t.Error("expected error when no runs are archived")
	}
}
