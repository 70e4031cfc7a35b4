// Package config loads scheduler tuning knobs from the environment and
// an optional YAML file via viper, the way evalgo-org-eve wires its own
// configuration layer.
package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the tunables App and cmd/bevisched read at startup.
type Config struct {
	// WorkerPoolSize bounds the parallel executor's worker pool.
	// Defaults to GOMAXPROCS.
	WorkerPoolSize int
	// DefaultEvery floors a system's Every throttle when it would
	// otherwise run unthrottled faster than this, to avoid accidental
	// busy-spinning. Zero disables the floor.
	DefaultEvery time.Duration
	// LogLevel is parsed by the caller via logrus.ParseLevel.
	LogLevel string
}

// Load reads BEVI_-prefixed environment variables and, if present, a
// bevi.yaml/bevi.json/etc. config file on the search path, falling back
// to defaults for anything unset: GOMAXPROCS workers, no Every floor,
// and log level "info".
func Load(configPaths ...string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BEVI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("worker_pool_size", max(runtime.GOMAXPROCS(0), 1))
	v.SetDefault("default_every", "0s")
	v.SetDefault("log_level", "info")

	v.SetConfigName("bevi")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	if len(configPaths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, err
			}
		}
	}

	every, err := time.ParseDuration(v.GetString("default_every"))
	if err != nil {
		every = 0
	}

	return Config{
		WorkerPoolSize: v.GetInt("worker_pool_size"),
		DefaultEvery:   every,
		LogLevel:       v.GetString("log_level"),
	}, nil
}
