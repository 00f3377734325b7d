package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sho7650/forge-install/internal/jsonval"
)

// FileConfig is the optional .forge.yml at the workspace root.
type FileConfig struct {
	// Mode is used when neither --mode nor FORGE_MODE is set.
	Mode string `yaml:"mode"`

	// Notify turns on the desktop notification unless --notify is given.
	Notify *bool `yaml:"notify"`

	// Settings is merged into .claude/settings.json on every install.
	// Objects merge key by key, lists are unioned.
	Settings yaml.Node `yaml:"settings"`
}

// LoadFile reads a .forge.yml. It returns nil without error when the file
// does not exist.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &fc, nil
}

// Overlay converts the settings section into a JSON object. It returns nil
// when the section is absent or null.
func (fc *FileConfig) Overlay() (*jsonval.Object, error) {
	v, err := jsonval.FromYAML(&fc.Settings)
	if err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", FileConfigName, err)
	}

	switch val := v.(type) {
	case jsonval.Null:
		return nil, nil
	case *jsonval.Object:
		return val, nil
	default:
		return nil, fmt.Errorf("invalid settings in %s: got %s, want a mapping", FileConfigName, v.Kind())
	}
}
