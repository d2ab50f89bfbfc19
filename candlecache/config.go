// Package candlecache is the public facade: it wires candlestore,
// candlelog, candlelock, and candlefetch together behind a single Store
// type, plus the ambient configuration layer (spec §9).
package candlecache

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root, YAML-loadable configuration for a Store.
//
// Supported environment overrides (prefix CANDLECACHE_):
//
//	CANDLECACHE_BASE_DIR=./data/candles
//	CANDLECACHE_MAX_PER_REQUEST=1500
//	CANDLECACHE_LOCKING_ACQUIRE_TIMEOUT_MS=0     # 0 disables the timeout
//
// Example YAML:
//
//	baseDir: ./data/candles
//	maxPerRequest: 1500
//	locking:
//	  acquireTimeoutMs: 0
type Config struct {
	BaseDir       string        `yaml:"baseDir"`
	MaxPerRequest int           `yaml:"maxPerRequest"`
	Locking       LockingConfig `yaml:"locking"`
}

// LockingConfig controls candlelock acquisition behavior.
type LockingConfig struct {
	// AcquireTimeoutMs bounds how long Store.Lock waits for a location's
	// lock. Zero means block indefinitely (spec §4.F's default).
	// Store.SaveLocked and Store.GetOHLCVWithCache do not use it; they
	// always block until the lock is free.
	AcquireTimeoutMs int `yaml:"acquireTimeoutMs"`
}

// Default returns a Config with sane out-of-the-box values.
func Default() Config {
	return Config{
		BaseDir:       "./data/candles",
		MaxPerRequest: 1500,
		Locking: LockingConfig{
			AcquireTimeoutMs: 0,
		},
	}
}

// Load reads the first existing YAML file among paths (or falls back to
// Default if none exist), applies CANDLECACHE_* environment overrides,
// validates, and returns the result.
func Load(paths ...string) (*Config, error) {
	c := Default()

	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("candlecache: read config %s: %w", p, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("candlecache: parse config %s: %w", p, err)
		}
		break
	}

	c.applyEnv("CANDLECACHE_")

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the configuration is internally consistent.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("candlecache: baseDir must not be empty")
	}
	if c.MaxPerRequest <= 0 || c.MaxPerRequest > 5000 {
		return fmt.Errorf("candlecache: maxPerRequest out of range (1-5000): %d", c.MaxPerRequest)
	}
	if c.Locking.AcquireTimeoutMs < 0 {
		return fmt.Errorf("candlecache: locking.acquireTimeoutMs must not be negative")
	}
	return nil
}

// AcquireTimeout returns the configured lock-acquisition timeout, or zero
// if none is set (meaning block indefinitely).
func (c Config) AcquireTimeout() time.Duration {
	if c.Locking.AcquireTimeoutMs <= 0 {
		return 0
	}
	return time.Duration(c.Locking.AcquireTimeoutMs) * time.Millisecond
}

func (c *Config) applyEnv(prefix string) {
	c.BaseDir = pickStr(os.Getenv(prefix+"BASE_DIR"), c.BaseDir)
	c.MaxPerRequest = pickInt(os.Getenv(prefix+"MAX_PER_REQUEST"), c.MaxPerRequest)
	c.Locking.AcquireTimeoutMs = pickInt(os.Getenv(prefix+"LOCKING_ACQUIRE_TIMEOUT_MS"), c.Locking.AcquireTimeoutMs)
}

func pickStr(env, cur string) string {
	if strings.TrimSpace(env) != "" {
		return strings.TrimSpace(env)
	}
	return cur
}

func pickInt(env string, cur int) int {
	if strings.TrimSpace(env) == "" {
		return cur
	}
	if v, err := strconv.Atoi(strings.TrimSpace(env)); err == nil {
		return v
	}
	return cur
}
