package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/onlyfringe/cliparse"
	"github.com/danielhkuo/onlyfringe/models"
	"github.com/danielhkuo/onlyfringe/store"
	"github.com/danielhkuo/onlyfringe/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func tempFlags(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		"-d", "file:" + filepath.Join(dir, "onlyfringe.db"),
		"--key-file", filepath.Join(dir, "keys"),
		"--log-level", "error",
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "onlyfringe dev\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestConfigShow(t *testing.T) {
	t.Setenv(cliparse.APIKeyName, "sk-very-secret")
	t.Setenv("APPROVAL_THRESHOLD", "80")

	out, err := run(t, append([]string{"config", "show", "-p", "6000"}, tempFlags(t)...)...)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "sk-very-secret") {
		t.Fatal("API key printed in clear text")
	}

	var shown map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("Output is not YAML: %v\n%s", err, out)
	}
	if shown["port"] != 6000 {
		t.Errorf("Expected port 6000, got %v", shown["port"])
	}
	if shown["approval_threshold"] != 80 {
		t.Errorf("Expected threshold from env, got %v", shown["approval_threshold"])
	}
	if shown["api_key"] != "********" {
		t.Errorf("Expected redacted key, got %v", shown["api_key"])
	}
	if shown["ai_timeout"] != "30s" {
		t.Errorf("Expected ai_timeout 30s, got %v", shown["ai_timeout"])
	}
}

func TestConfigShow_Invalid(t *testing.T) {
	if _, err := run(t, append([]string{"config", "show", "-t", "mysql"}, tempFlags(t)...)...); err == nil {
		t.Error("Expected an error for an unsupported database type")
	}
}

func TestMigrateAndPruneCommands(t *testing.T) {
	flags := tempFlags(t)

	if _, err := run(t, append([]string{"migrate"}, flags...)...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	// Applying again is a no-op
	if _, err := run(t, append([]string{"migrate"}, flags...)...); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	out, err := run(t, append([]string{"prune", "--dry-run"}, flags...)...)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if !strings.HasPrefix(out, "0 rejected arguments") {
		t.Errorf("Unexpected prune output %q", out)
	}

	if _, err := run(t, append([]string{"prune", "--older-than", "0s"}, flags...)...); err == nil {
		t.Error("Expected an error for a zero cutoff")
	}
}

func TestPrune(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	alice := testutil.CreateTestUser(t, st, "alice")

	now := time.Now().UTC()
	old := testutil.CreateTestArgumentAt(t, st, alice.ID, models.StatusRejected, now.Add(-60*24*time.Hour))
	recent := testutil.CreateTestArgumentAt(t, st, alice.ID, models.StatusRejected, now.Add(-time.Hour))
	kept := testutil.CreateTestArgumentAt(t, st, alice.ID, models.StatusApproved, now.Add(-90*24*time.Hour))

	cutoff := now.Add(-30 * 24 * time.Hour)

	n, err := prune(ctx, st, cutoff, true)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Dry run should count 1, got %d", n)
	}
	if _, err := st.GetArgument(ctx, old.ID); err != nil {
		t.Errorf("Dry run deleted the argument: %v", err)
	}

	n, err = prune(ctx, st, cutoff, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Expected 1 pruned, got %d", n)
	}

	if _, err := st.GetArgument(ctx, old.ID); err != store.ErrNotFound {
		t.Errorf("Old rejected argument should be gone, got %v", err)
	}
	for _, id := range []string{recent.ID, kept.ID} {
		if _, err := st.GetArgument(ctx, id); err != nil {
			t.Errorf("Argument %s should be kept: %v", id, err)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info should be filtered at warn level")
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "key=value") {
		t.Errorf("Unexpected log output %q", out)
	}
}
