package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func runValidateCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newValidateCmd())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"validate"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidate_Valid(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	path := writeScenario(t, tmpDir, "A1,0,0,4,0\nD,2,0,2,0\n")

	out, err := runValidateCmd(t, path, "--width", "5", "--height", "1")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "2 records fit a 5x1 grid") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"out of grid", "A1,0,0,9,0\n"},
		{"unknown class", "*1,0,0,4,0\n"},
		{"wrong field count", "A1,0,0,4\n"},
		{"moving obstacle", "D,1,0,2,0\n"},
		{"shared start cell", "A1,0,0,4,0\nB2,0,0,4,0\n"},
		{"duplicate id", "A1,0,0,4,0\nA1,1,0,4,0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			isolateHome(t, tmpDir)
			path := writeScenario(t, tmpDir, tt.content)

			_, err := runValidateCmd(t, path, "--width", "5", "--height", "1")
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), "invalid scenario") {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestValidate_JSONReportsLine(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	path := writeScenario(t, tmpDir, "A1,0,0,4,0\nA2,0,0,9,0\n")

	out, err := runValidateCmd(t, path, "--width", "5", "--height", "1", "--json")
	if err == nil {
		t.Fatal("expected validation error")
	}

	var result map[string]interface{}
	if jerr := json.Unmarshal([]byte(out), &result); jerr != nil {
		t.Fatalf("invalid JSON: %v\n%s", jerr, out)
	}
	if result["valid"] != false {
		t.Errorf("valid = %v, want false", result["valid"])
	}
	if line, _ := result["line"].(float64); line != 2 {
		t.Errorf("line = %v, want 2", result["line"])
	}
}
