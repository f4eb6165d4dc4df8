package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ovc/internal/platform"
)

// Settings holds the optional user configuration. Most users never create the
// file; everything has a sensible default.
type Settings struct {
	// MirrorBase overrides the public OpenShift mirror URL, e.g. for
	// air-gapped environments with a private mirror.
	MirrorBase string `yaml:"mirror_base"`
	// Platform pins a platform descriptor by name instead of auto-detection,
	// e.g. to fetch linux binaries from a mac.
	Platform string `yaml:"platform"`
}

// DefaultPath resolves the settings file location:
// $XDG_CONFIG_HOME/ovc/config.yaml, falling back to ~/.config/ovc/config.yaml.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "ovc", "config.yaml")
}

// Load reads the settings file at path. A missing (or unresolvable) file is
// not an error and yields the defaults; a present but malformed file is
// reported, since silently ignoring explicit configuration would be worse.
func Load(path string) (Settings, error) {
	settings := Settings{MirrorBase: platform.DefaultMirrorBase}

	if path == "" {
		return settings, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if settings.MirrorBase == "" {
		settings.MirrorBase = platform.DefaultMirrorBase
	}
	return settings, nil
}

// ResolvePlatform returns the pinned platform when one is configured,
// otherwise the detected one.
func (s Settings) ResolvePlatform() (platform.Platform, error) {
	if s.Platform == "" {
		return platform.Detect(), nil
	}
	p, ok := platform.ByName(s.Platform)
	if !ok {
		return platform.Platform{}, fmt.Errorf("unknown platform %q in config", s.Platform)
	}
	return p, nil
}
