package hooks

import (
	"fmt"
	"os"
	"strings"

	"github.com/gobwas/glob"

	"github.com/sho7650/forge-install/internal/config"
	"github.com/sho7650/forge-install/internal/jsonval"
)

// ValidateSettingsFile checks that path holds a JSON object.
func ValidateSettingsFile(path string) (*jsonval.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read settings file: %w", err)
	}

	doc, err := jsonval.DecodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return doc, nil
}

// ValidateHookScript checks that path exists and is executable.
func ValidateHookScript(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("hook script %s does not exist", path)
		}
		return fmt.Errorf("cannot stat hook script: %w", err)
	}

	if info.Mode()&0111 == 0 {
		return fmt.Errorf("hook script %s is not executable", path)
	}

	return nil
}

// ValidatePattern checks that every "|"-separated alternative of pattern
// is a valid glob.
func ValidatePattern(pattern string) error {
	for _, alt := range strings.Split(pattern, "|") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			return fmt.Errorf("pattern %q has an empty alternative", pattern)
		}
		if _, err := glob.Compile(alt); err != nil {
			return fmt.Errorf("pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// VerifySettings checks that the settings file parses and registers every
// hook required by mode. It covers what an install writes, not the assets
// it was given.
func VerifySettings(settingsPath string, mode config.Mode) []error {
	doc, err := ValidateSettingsFile(settingsPath)
	if err != nil {
		return []error{fmt.Errorf("settings: %w", err)}
	}

	var errs []error
	for _, h := range Required(mode) {
		if _, ok := RegisteredCommand(doc, h); !ok {
			errs = append(errs, fmt.Errorf("settings: missing hook %s", h.ID()))
		}
	}
	patterns := registeredPatterns(doc)
	for _, h := range ForgeHooks {
		p, ok := patterns[h.ID()]
		if !ok {
			continue
		}
		if err := ValidatePattern(p); err != nil {
			errs = append(errs, fmt.Errorf("settings: %s: %w", h.ID(), err))
		}
	}
	return errs
}

// ScriptProblems lists every hook required by mode whose script under
// hooksDir is missing or not executable.
func ScriptProblems(hooksDir string, mode config.Mode) []error {
	var errs []error
	for _, h := range Required(mode) {
		if err := ValidateHookScript(h.Path(hooksDir)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// registeredPatterns returns the pattern field of every FORGE entry in
// settings, keyed by hook ID.
func registeredPatterns(settings *jsonval.Object) map[string]string {
	out := make(map[string]string)
	registry, ok := settings.GetObject("hooks")
	if !ok {
		return out
	}
	for _, h := range ForgeHooks {
		seq, ok := registry.GetArray(string(h.Event))
		if !ok {
			continue
		}
		entry, ok := findEntry(seq, h.Script)
		if !ok {
			continue
		}
		if p, ok := entry.GetString("pattern"); ok {
			out[h.ID()] = p
		}
	}
	return out
}
