// Package settings loads the optional ambient configuration: log level,
// debug API bind address, and metrics_enabled, which the daemon uses to
// switch the event bus (and so the debug API's /events stream) on or off;
// the counters themselves are always kept. This is deliberately
// separate from pkg/switchconfig, which parses the mandatory, fixed-format
// per-switch topology file — settings.yaml (or environment variables) is
// never required, and absence is never an error.
package settings

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Defaults, applied when configs/settings.yaml is absent or omits a key.
const (
	DefaultLogLevel        = "info"
	DefaultDebugListenAddr = ""
	DefaultMetricsEnabled  = true
)

// Settings holds the ambient, optional daemon configuration.
type Settings struct {
	LogLevel        string
	DebugListenAddr string
	MetricsEnabled  bool
}

// EnvPrefix is the prefix environment-variable overrides use, e.g.
// VSWITCHD_LOG_LEVEL, VSWITCHD_DEBUG_LISTEN_ADDR.
const EnvPrefix = "VSWITCHD"

// Load reads settings from path if it exists, overlaid with any
// VSWITCHD_* environment variables, falling back to documented defaults
// for anything unset. A missing path is not an error.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("debug_listen_addr", DefaultDebugListenAddr)
	v.SetDefault("metrics_enabled", DefaultMetricsEnabled)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Settings{}, err
			}
		} else if !os.IsNotExist(err) {
			return Settings{}, err
		}
	}

	return Settings{
		LogLevel:        v.GetString("log_level"),
		DebugListenAddr: v.GetString("debug_listen_addr"),
		MetricsEnabled:  v.GetBool("metrics_enabled"),
	}, nil
}
