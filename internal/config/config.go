// Package config loads sysstat settings from an optional YAML file and
// SYSSTAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SYSSTAT_"

type Config struct {
	Addr           string        `yaml:"addr"`
	CPUWindow      time.Duration `yaml:"cpu_window"`
	StreamInterval time.Duration `yaml:"stream_interval"`
	LogLevel       string        `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Addr:           ":8080",
		CPUWindow:      100 * time.Millisecond,
		StreamInterval: time.Second,
		LogLevel:       "info",
	}
}

// Load reads path (if non-empty), applies environment overrides and validates
// the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Addr = getEnvString("ADDR", c.Addr)
	c.CPUWindow = getEnvDuration("CPU_WINDOW", c.CPUWindow)
	c.StreamInterval = getEnvDuration("STREAM_INTERVAL", c.StreamInterval)
	c.LogLevel = getEnvString("LOG_LEVEL", c.LogLevel)
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.CPUWindow <= 0 {
		errs = append(errs, fmt.Errorf("cpu_window must be positive, got %s", c.CPUWindow))
	}
	if c.StreamInterval <= 0 {
		errs = append(errs, fmt.Errorf("stream_interval must be positive, got %s", c.StreamInterval))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level is the parsed LogLevel. Validate rejects unknown names, so a loaded
// Config never falls back here; INFO is returned for an invalid value.
func (c Config) Level() log.Lvl {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return log.INFO
	}
	return lvl
}

// ParseLevel maps a level name to a gommon log level.
func ParseLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG, nil
	case "info", "":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// ParseInterval accepts "250ms", "1.5s" or a bare number of seconds.
func ParseInterval(s string) (time.Duration, error) {
	if s == "" {
		return time.Second, nil
	}
	if msStr, ok := strings.CutSuffix(s, "ms"); ok {
		ms, err := strconv.Atoi(msStr)
		if err != nil {
			return 0, err
		}
		return positive(time.Duration(ms) * time.Millisecond)
	}

	sStr := strings.TrimSuffix(s, "s")
	seconds, err := strconv.ParseFloat(sStr, 64)
	if err != nil {
		return 0, err
	}
	return positive(time.Duration(seconds * float64(time.Second)))
}

// FormatInterval renders d in a form ParseInterval accepts.
func FormatInterval(d time.Duration) string {
	if d%time.Millisecond == 0 {
		return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}

func positive(d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", d)
	}
	return d, nil
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvDuration ignores values that do not parse as a time.Duration.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
