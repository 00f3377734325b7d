package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sho7650/forge-install/internal/jsonval"
)

// ModeEnvVar selects the install mode when --mode is not given.
const ModeEnvVar = "FORGE_MODE"

// Mode selects which FORGE integration is installed.
type Mode string

const (
	// ModeAO installs FORGE into an Agent Orchestrator workspace.
	ModeAO Mode = "ao"
	// ModeStandalone installs FORGE without the AO metadata sync hook.
	ModeStandalone Mode = "standalone"
)

// ErrInvalidMode is returned for a mode other than ao or standalone.
var ErrInvalidMode = errors.New("invalid mode")

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAO, ModeStandalone:
		return m, nil
	}
	return "", fmt.Errorf("%w %q: want %q or %q", ErrInvalidMode, s, ModeAO, ModeStandalone)
}

// Config holds everything one installer run needs. It is assembled once
// by Resolve and then passed by value.
type Config struct {
	// Workspace is the path the user asked for.
	Workspace string
	// Root is the resolved workspace root all paths derive from.
	Root string
	Mode Mode
	// ForgeRoot is an on-disk FORGE checkout to read assets from. Empty
	// means the assets embedded in the binary.
	ForgeRoot string
	Notify    bool
	Verbose   bool
	// SettingsOverlay is merged into settings.json before hooks are
	// registered. Nil when .forge.yml has no settings section.
	SettingsOverlay *jsonval.Object
	// Now stamps generated templates.
	Now func() time.Time
}

// Paths below .claude and docs in the workspace root.
const (
	ClaudeDirName    = ".claude"
	SettingsFileName = "settings.json"
	ForgeDirName     = "forge"
	FileConfigName   = ".forge.yml"
)

func (c Config) ClaudeDir() string    { return filepath.Join(c.Root, ClaudeDirName) }
func (c Config) SettingsPath() string { return filepath.Join(c.ClaudeDir(), SettingsFileName) }
func (c Config) ForgeDir() string     { return filepath.Join(c.ClaudeDir(), ForgeDirName) }
func (c Config) HooksDir() string     { return filepath.Join(c.ForgeDir(), "hooks") }
func (c Config) ScriptsDir() string   { return filepath.Join(c.ForgeDir(), "scripts") }
func (c Config) StateFile() string    { return filepath.Join(c.ForgeDir(), "active-workflow.md") }
func (c Config) DocsDir() string      { return filepath.Join(c.Root, "docs", "forge") }

// Option adjusts how Resolve assembles a Config.
type Option func(*resolver)

type resolver struct {
	workspace   string
	mode        string
	forgeRoot   string
	notify      bool
	verbose     bool
	getenv      func(string) string
	getwd       func() (string, error)
	gitTopLevel func(dir string) (string, error)
	now         func() time.Time
}

// WithWorkspace sets the requested workspace path.
func WithWorkspace(dir string) Option {
	return func(r *resolver) {
		if dir != "" {
			r.workspace = dir
		}
	}
}

// WithMode sets the mode explicitly, bypassing environment detection.
func WithMode(mode string) Option {
	return func(r *resolver) {
		r.mode = mode
	}
}

// WithForgeRoot reads assets from dir instead of the embedded copy.
func WithForgeRoot(dir string) Option {
	return func(r *resolver) {
		r.forgeRoot = dir
	}
}

// WithNotify enables a desktop notification when the run finishes.
func WithNotify(enabled bool) Option {
	return func(r *resolver) {
		r.notify = enabled
	}
}

// WithVerbose enables debug logging.
func WithVerbose(enabled bool) Option {
	return func(r *resolver) {
		r.verbose = enabled
	}
}

// WithEnv replaces os.Getenv.
func WithEnv(getenv func(string) string) Option {
	return func(r *resolver) {
		r.getenv = getenv
	}
}

// WithGetwd replaces os.Getwd.
func WithGetwd(getwd func() (string, error)) Option {
	return func(r *resolver) {
		r.getwd = getwd
	}
}

// WithGitTopLevel replaces the git lookup used to find the workspace root.
func WithGitTopLevel(fn func(dir string) (string, error)) Option {
	return func(r *resolver) {
		r.gitTopLevel = fn
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *resolver) {
		r.now = now
	}
}

// Resolve reads the ambient process state (working directory, environment,
// git, .forge.yml) once and returns the resulting Config.
//
// Mode precedence: WithMode, then FORGE_MODE, then mode in .forge.yml,
// then ao.
func Resolve(opts ...Option) (Config, error) {
	r := &resolver{
		getenv:      os.Getenv,
		getwd:       os.Getwd,
		gitTopLevel: GitTopLevel,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	workspace := r.workspace
	if workspace == "" {
		wd, err := r.getwd()
		if err != nil {
			return Config{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		workspace = wd
	}

	root, err := ResolveRoot(workspace, r.gitTopLevel)
	if err != nil {
		return Config{}, err
	}

	file, err := LoadFile(filepath.Join(root, FileConfigName))
	if err != nil {
		return Config{}, err
	}

	modeStr := r.mode
	if modeStr == "" {
		modeStr = r.getenv(ModeEnvVar)
	}
	if modeStr == "" && file != nil {
		modeStr = file.Mode
	}
	mode := ModeAO
	if modeStr != "" {
		if mode, err = ParseMode(modeStr); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		Workspace: workspace,
		Root:      root,
		Mode:      mode,
		Notify:    r.notify,
		Verbose:   r.verbose,
		Now:       r.now,
	}

	if r.forgeRoot != "" {
		abs, err := filepath.Abs(r.forgeRoot)
		if err != nil {
			return Config{}, fmt.Errorf("failed to resolve forge root: %w", err)
		}
		cfg.ForgeRoot = abs
	}

	if file != nil {
		if file.Notify != nil && !r.notify {
			cfg.Notify = *file.Notify
		}
		overlay, err := file.Overlay()
		if err != nil {
			return Config{}, err
		}
		cfg.SettingsOverlay = overlay
	}

	return cfg, nil
}
