package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	var stdout bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "openapi2md configuration") {
		t.Fatalf("unexpected config contents: %s", s)
	}
	if !strings.Contains(stdout.String(), "Wrote sample config to") {
		t.Fatalf("expected confirmation, got %q", stdout.String())
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--force"})
	if err := root.Execute(); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}

// Every key in the sample must be accepted by the generate config loader.
func TestInit_SampleConfigRoundTrips(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "openapi2md.yaml")
	if err := runInit(context.Background(), &InitConfig{OutputPath: path, stdout: io.Discard}); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var uncommented []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, ": ") && !strings.Contains(line, "configuration") {
			key := strings.TrimPrefix(line, "# ")
			if k, _, ok := strings.Cut(key, ":"); ok && !strings.Contains(k, " ") {
				uncommented = append(uncommented, key)
			}
		}
	}
	if len(uncommented) == 0 {
		t.Fatalf("expected sample keys in %s", data)
	}
	active := filepath.Join(dir, "active.yaml")
	if err := os.WriteFile(active, []byte(strings.Join(uncommented, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := defaultGenerateConfig()
	if err := applyGenerateConfigFromFile(&cfg, active); err != nil {
		t.Fatalf("sample config rejected: %v", err)
	}
	if cfg.Input != "./openapi.yaml" || cfg.Out != "./docs" || cfg.Locale != "ja" {
		t.Fatalf("unexpected values: %+v", cfg)
	}
}
