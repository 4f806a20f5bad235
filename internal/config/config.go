// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, the catalog
// connection, and the sale journal workers.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// DatabaseURL selects the Postgres catalog; when empty the service
	// falls back to the in-memory catalog.
	DatabaseURL string

	JournalWorkerMin               int
	JournalWorkerMax               int
	JournalInitialWorkerCount      int
	JournalScaleInterval           time.Duration
	JournalScaleUpBacklogPerWorker int
	JournalScaleDownIdleTicks      int
	JournalHighWatermark           int
	JournalRecentCapacity          int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	minWorkers := atoienv("JOURNAL_WORKER_MIN", 1)
	maxWorkers := atoienv("JOURNAL_WORKER_MAX", 4)
	initialWorkers := atoienv("JOURNAL_WORKER_COUNT", minWorkers)
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		DatabaseURL:     getenv("DATABASE_URL", ""),

		JournalWorkerMin:               minWorkers,
		JournalWorkerMax:               maxWorkers,
		JournalInitialWorkerCount:      initialWorkers,
		JournalScaleInterval:           durenvms("JOURNAL_SCALE_INTERVAL_MS", 500),
		JournalScaleUpBacklogPerWorker: atoienv("JOURNAL_SCALE_UP_BACKLOG_PER_WORKER", 100),
		JournalScaleDownIdleTicks:      atoienv("JOURNAL_SCALE_DOWN_IDLE_TICKS", 6),
		JournalHighWatermark:           atoienv("JOURNAL_HIGH_WATERMARK", 5000),
		JournalRecentCapacity:          atoienv("JOURNAL_RECENT_CAPACITY", 256),
	}
}
