// Package coreconfig loads the handful of process-level tunables that are
// legitimately library-wide rather than per-graph: default pending-queue
// pre-allocation, default worker pool width, default serial-queue channel
// capacity, and the structured log level. Everything else (per-node
// behavior, ExecContext choice, cache policy) is a construction-time
// argument, not an environment variable — this mirrors the teacher's
// config.Load, trimmed to what an embedded library, rather than a standing
// service, actually needs.
package coreconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// DefaultPendingQueueCapacity is the default for
	// Config.PendingQueueCapacity. No Core reads this value: a node's burst
	// queue starts empty and grows on demand.
	DefaultPendingQueueCapacity = 8
	// DefaultPoolWidth is the worker count for a bundled execctx.Pool when
	// the caller asks for the library default instead of specifying one.
	DefaultPoolWidth = 4
	// DefaultSerialQueueCapacity is the channel buffer size for a bundled
	// execctx.Serial context.
	DefaultSerialQueueCapacity = 64
	// DefaultLogLevel controls verbosity for corelog's global logger.
	DefaultLogLevel = "info"
)

// Config captures the library-wide tunables read from the environment.
type Config struct {
	PendingQueueCapacity int
	PoolWidth            int
	SerialQueueCapacity  int
	LogLevel             string
}

// Load reads tunables from environment variables, applying defaults and
// accumulating validation problems the way the teacher's config.Load does,
// rather than failing on the first bad value.
func Load() (*Config, error) {
	cfg := &Config{
		PendingQueueCapacity: DefaultPendingQueueCapacity,
		PoolWidth:            DefaultPoolWidth,
		SerialQueueCapacity:  DefaultSerialQueueCapacity,
		LogLevel:             getString("CORESTREAM_LOG_LEVEL", DefaultLogLevel),
	}

	var problems []string

	if raw := strings.TrimSpace(os.Getenv("CORESTREAM_PENDING_QUEUE_CAPACITY")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("CORESTREAM_PENDING_QUEUE_CAPACITY must be a non-negative integer, got %q", raw))
		} else {
			cfg.PendingQueueCapacity = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("CORESTREAM_POOL_WIDTH")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("CORESTREAM_POOL_WIDTH must be a positive integer, got %q", raw))
		} else {
			cfg.PoolWidth = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("CORESTREAM_SERIAL_QUEUE_CAPACITY")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("CORESTREAM_SERIAL_QUEUE_CAPACITY must be a non-negative integer, got %q", raw))
		} else {
			cfg.SerialQueueCapacity = value
		}
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("CORESTREAM_LOG_LEVEL must be one of debug|info|warn|error, got %q", cfg.LogLevel))
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf(strings.Join(problems, "; "))
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
