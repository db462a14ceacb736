package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/crosswalk/internal/config"
)

func runConfigCmd(t *testing.T, args ...string) string {
	t.Helper()
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newConfigCmd())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"config"}, args...))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config %v failed: %v", args, err)
	}
	return out.String()
}

func TestConfigKeys_GetSetCoverage(t *testing.T) {
	cfg := config.Default()
	for _, key := range configKeys {
		if _, ok := getConfigValue(cfg, key); !ok {
			t.Errorf("getConfigValue does not know %q", key)
		}
	}
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		check   func(*config.CrosswalkConfig) bool
		wantErr bool
	}{
		{"run.turns", "200", func(c *config.CrosswalkConfig) bool { return c.Run.Turns == 200 }, false},
		{"run.seed", "99", func(c *config.CrosswalkConfig) bool { return c.Run.Seed == 99 }, false},
		{"grid.width", "80", func(c *config.CrosswalkConfig) bool { return c.Grid.Width == 80 }, false},
		{"generator.walls", "false", func(c *config.CrosswalkConfig) bool { return !c.Generator.Walls }, false},
		{"generator.prob_tourist", "0.1", func(c *config.CrosswalkConfig) bool { return c.Generator.ProbTourist == 0.1 }, false},
		{"output.snapshot_format", "png", func(c *config.CrosswalkConfig) bool { return c.Output.SnapshotFormat == "png" }, false},
		{"output.archive", "0", func(c *config.CrosswalkConfig) bool { return !c.Output.Archive }, false},
		{"logging.level", "debug", func(c *config.CrosswalkConfig) bool { return c.Logging.Level == "debug" }, false},
		{"run.turns", "many", nil, true},
		{"run.seed", "-1", nil, true},
		{"generator.prob_mover", "1.5", nil, true},
		{"output.snapshot_format", "gif", nil, true},
		{"logging.level", "verbose", nil, true},
		{"no.such.key", "1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := config.Default()
			err := setConfigValue(cfg, tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("setConfigValue() error = %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("%s was not set to %s", tt.key, tt.value)
			}
		})
	}
}

func TestConfigSetThenGet(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	out := runConfigCmd(t, "set", "run.turns", "120")
	if !strings.Contains(out, "Set run.turns = 120") {
		t.Errorf("unexpected set output: %s", out)
	}

	loaded, err := config.LoadFromFile(filepath.Join(tmpDir, "home", ".crosswalk", "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Run.Turns != 120 {
		t.Errorf("saved run.turns = %d, want 120", loaded.Run.Turns)
	}

	out = runConfigCmd(t, "get", "run.turns", "--json")
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if result["value"] != float64(120) {
		t.Errorf("value = %v, want 120", result["value"])
	}
}

func TestConfigGet_UnknownKey(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	out := runConfigCmd(t, "get", "llm.provider")
	if !strings.Contains(out, "Unknown configuration key") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestConfigList(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	out := runConfigCmd(t, "list")
	for _, want := range []string{"grid.width:", "run.turns:", "0 (ask)", "output.snapshot_format:", "logging.level:"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}
