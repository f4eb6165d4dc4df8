package cmd

import (
	"fmt"
	"os"

	"ovc/internal/cache"
	"ovc/internal/config"
	"ovc/internal/installer"
	"ovc/internal/mirror"
	"ovc/internal/platform"
)

// app is the object graph shared by the commands: resolved settings, the
// platform, the version cache store, the mirror client, and the installer.
type app struct {
	settings  config.Settings
	platform  platform.Platform
	store     *cache.Store
	client    *mirror.Client
	installer *installer.Installer
}

// newApp loads the settings file and wires everything together.
func newApp() (*app, error) {
	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		return nil, err
	}

	p, err := settings.ResolvePlatform()
	if err != nil {
		return nil, err
	}

	cachePath, err := cache.DefaultPath()
	if err != nil {
		return nil, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve home directory: %w", err)
	}

	client := mirror.NewClient(settings.MirrorBase, p, insecure)
	store := cache.NewStore(cachePath, client, settings.MirrorBase)
	inst := installer.New(home, settings.MirrorBase, store, client, p, insecure)

	return &app{
		settings:  settings,
		platform:  p,
		store:     store,
		client:    client,
		installer: inst,
	}, nil
}
