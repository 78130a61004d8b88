package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"kernelprovider/internal/config"
	"kernelprovider/internal/kernels"
	"kernelprovider/internal/lifecycle"
	"kernelprovider/internal/provider"
	"kernelprovider/internal/registry"
)

// newLogger builds a console logger at level (unknown levels fall back to info).
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("app", "kernelprovider").Logger()
}

// launcherFor returns the launcher registered for a lifecycle manager class.
func launcherFor(class string, cfg config.Config, log *zerolog.Logger) (lifecycle.Launcher, error) {
	switch class {
	case lifecycle.LocalClassName:
		return lifecycle.NewLocalLauncher(lifecycle.LocalConfig{
			RuntimeDir: cfg.RuntimeDir,
			Publisher:  lifecycle.NewLogPublisher(log),
			Logger:     log,
		}), nil
	default:
		return nil, fmt.Errorf("no launcher available for lifecycle manager class %q", class)
	}
}

// buildService wires registry, launcher, provider and tracker from cfg.
func buildService(cfg config.Config, log *zerolog.Logger) (*kernels.Service, *registry.Registry, error) {
	reg := registry.NewDefault(cfg.KernelDirs, log)
	launcher, err := launcherFor(cfg.Provider.LifecycleManagerClass, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	p, err := provider.New(provider.Config{
		ID:                    cfg.Provider.ID,
		ClassName:             cfg.Provider.ClassName,
		LifecycleManagerClass: cfg.Provider.LifecycleManagerClass,
		Registry:              reg,
		Launcher:              launcher,
		AppConfig:             cfg.Section(cfg.Provider.ClassName),
		Logger:                log,
	})
	if err != nil {
		return nil, nil, err
	}
	return kernels.NewService(p, log), reg, nil
}
