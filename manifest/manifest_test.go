package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	// Create a temporary directory with a skive.toml
	dir := t.TempDir()
	tomlContent := `
[project]
name = "hello"
version = "0.1.0"

[program]
entry = "hello.sk"
input = "input.txt"

[run]
seed = 42
trace = true
state-out = "out/state.cbor"

[log]
verbosity = 2
file = "/var/log/skive.log"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "hello" {
		t.Errorf("project name = %q, want hello", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("project version = %q, want 0.1.0", m.Project.Version)
	}
	if m.Program.Entry != "hello.sk" {
		t.Errorf("program entry = %q, want hello.sk", m.Program.Entry)
	}
	if m.Run.Seed != 42 {
		t.Errorf("run seed = %d, want 42", m.Run.Seed)
	}
	if !m.Run.Trace {
		t.Error("run trace = false, want true")
	}
	if m.Log.Verbosity != 2 {
		t.Errorf("log verbosity = %d, want 2", m.Log.Verbosity)
	}

	abs, _ := filepath.Abs(dir)
	if got, want := m.EntryPath(), filepath.Join(abs, "hello.sk"); got != want {
		t.Errorf("EntryPath = %q, want %q", got, want)
	}
	if got, want := m.InputPath(), filepath.Join(abs, "input.txt"); got != want {
		t.Errorf("InputPath = %q, want %q", got, want)
	}
	if got, want := m.StateOutPath(), filepath.Join(abs, "out", "state.cbor"); got != want {
		t.Errorf("StateOutPath = %q, want %q", got, want)
	}
	if got := m.LogPath(); got != "/var/log/skive.log" {
		t.Errorf("LogPath = %q, want absolute path unchanged", got)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "minimal"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Program.Entry != DefaultEntry {
		t.Errorf("default entry = %q, want %q", m.Program.Entry, DefaultEntry)
	}
	if m.InputPath() != "" {
		t.Errorf("InputPath = %q, want empty", m.InputPath())
	}
	if m.StateOutPath() != "" {
		t.Errorf("StateOutPath = %q, want empty", m.StateOutPath())
	}
	if m.Run.Seed != 0 || m.Run.Trace {
		t.Errorf("run = %+v, want zero value", m.Run)
	}
}

func TestLoadManifestParseError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[project\nname = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("Load succeeded on malformed toml")
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	tomlContent := `[project]
name = "found-project"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no skive.toml exists")
	}
}
