// Package config loads the vela.toml manifest and folds it into the
// explicit configuration record the pipeline consumes. Nothing in the
// compiler reads configuration from global state; the record is passed
// down from the command layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the pipeline's configuration surface.
type Config struct {
	ModuleName string

	// Devirtualization.
	World        string // "closed" or "open"
	UnfoldFactor int

	// Dead-code elimination.
	RootPolicy string   // "executable" or "library"
	Keep       []string // qualified names retained regardless of reachability

	// Phase gating.
	DisabledPhases []string

	// Coarse-grained parallelism for declaration building.
	Jobs int
}

// Default returns the configuration used when no manifest overrides it.
func Default() Config {
	return Config{
		World:        "closed",
		UnfoldFactor: 4,
		RootPolicy:   "executable",
		Jobs:         0, // 0 means GOMAXPROCS at the point of use
	}
}

// Validate rejects values the pipeline cannot act on.
func (c *Config) Validate() error {
	switch c.World {
	case "closed", "open":
	default:
		return fmt.Errorf("world must be \"closed\" or \"open\", got %q", c.World)
	}
	switch c.RootPolicy {
	case "executable", "library":
	default:
		return fmt.Errorf("dce root policy must be \"executable\" or \"library\", got %q", c.RootPolicy)
	}
	if c.UnfoldFactor < 1 {
		return fmt.Errorf("unfold factor must be positive, got %d", c.UnfoldFactor)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be non-negative, got %d", c.Jobs)
	}
	return nil
}

// PhaseEnabled reports whether the named phase survived the disable list.
func (c *Config) PhaseEnabled(name string) bool {
	for _, d := range c.DisabledPhases {
		if d == name {
			return false
		}
	}
	return true
}

// Manifest is a located, parsed vela.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type manifestFile struct {
	Package packageSection `toml:"package"`
	Build   buildSection   `toml:"build"`
}

type packageSection struct {
	Name string `toml:"name"`
}

type buildSection struct {
	World          string   `toml:"world"`
	UnfoldFactor   int      `toml:"unfold_factor"`
	RootPolicy     string   `toml:"dce_roots"`
	Keep           []string `toml:"keep"`
	DisabledPhases []string `toml:"disable_phases"`
	Jobs           int      `toml:"jobs"`
}

// Find walks up from startDir looking for vela.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "vela.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses the manifest at path. [package].name is required; [build]
// keys override defaults individually.
func Load(path string) (*Manifest, error) {
	var file manifestFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg, err := fold(path, meta, file)
	if err != nil {
		return nil, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// Parse decodes manifest text directly; tests and tooling use it.
func Parse(text string) (Config, error) {
	var file manifestFile
	meta, err := toml.Decode(text, &file)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return fold("vela.toml", meta, file)
}

func fold(path string, meta toml.MetaData, file manifestFile) (Config, error) {
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(file.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	cfg := Default()
	cfg.ModuleName = strings.TrimSpace(file.Package.Name)
	if meta.IsDefined("build", "world") {
		cfg.World = file.Build.World
	}
	if meta.IsDefined("build", "unfold_factor") {
		cfg.UnfoldFactor = file.Build.UnfoldFactor
	}
	if meta.IsDefined("build", "dce_roots") {
		cfg.RootPolicy = file.Build.RootPolicy
	}
	if meta.IsDefined("build", "keep") {
		cfg.Keep = file.Build.Keep
	}
	if meta.IsDefined("build", "disable_phases") {
		cfg.DisabledPhases = file.Build.DisabledPhases
	}
	if meta.IsDefined("build", "jobs") {
		cfg.Jobs = file.Build.Jobs
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
