// Package manifest handles skive.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "skive.toml"

// DefaultEntry is the program run when neither a flag nor the manifest
// names one.
const DefaultEntry = "program.txt"

// Manifest represents a skive.toml project configuration.
type Manifest struct {
	Project Project   `toml:"project"`
	Program Program   `toml:"program"`
	Run     RunConfig `toml:"run"`
	Log     LogConfig `toml:"log"`

	// Dir is the directory containing the skive.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Program configures where source and input come from.
type Program struct {
	Entry string `toml:"entry"`
	Input string `toml:"input"`
}

// RunConfig configures execution.
type RunConfig struct {
	Seed     uint64 `toml:"seed"`
	Trace    bool   `toml:"trace"`
	StateOut string `toml:"state-out"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Load parses a skive.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Program.Entry == "" {
		m.Program.Entry = DefaultEntry
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a skive.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// EntryPath returns the absolute path of the program source.
func (m *Manifest) EntryPath() string {
	return m.resolve(m.Program.Entry)
}

// InputPath returns the absolute path of the input file, or "" for stdin.
func (m *Manifest) InputPath() string {
	return m.resolve(m.Program.Input)
}

// StateOutPath returns the absolute path for the state export, or "".
func (m *Manifest) StateOutPath() string {
	return m.resolve(m.Run.StateOut)
}

// LogPath returns the absolute path of the log file, or "" for stderr.
func (m *Manifest) LogPath() string {
	return m.resolve(m.Log.File)
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
