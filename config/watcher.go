package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch re-reads the configuration whenever the config file changes on disk
// and hands the freshly validated result to onChange. Edits that fail to
// parse or validate are logged and ignored, keeping the last good config
// active.
func Watch(logger *slog.Logger, onChange func(*Config)) {
	viper.OnConfigChange(func(event fsnotify.Event) {
		logger.Info("Config file changed", slog.String("file", event.Name))

		var cfg Config
		if err := viper.Unmarshal(&cfg); err != nil {
			logger.Error("Ignoring config change, unmarshal failed",
				slog.String("error", err.Error()))
			return
		}

		if err := cfg.Validate(); err != nil {
			logger.Error("Ignoring config change, validation failed",
				slog.String("error", err.Error()))
			return
		}

		onChange(&cfg)
	})

	viper.WatchConfig()
}
