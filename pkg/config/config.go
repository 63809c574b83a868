// Package config loads the tracker node / metadata store daemon
// configuration from YAML, with environment variable overrides,
// following the same search-path-then-env-override convention used
// across the rest of this codebase's daemons.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete configuration for a trackerd node.
type Config struct {
	Node      NodeConfig      `yaml:"node" json:"node"`
	Store     StoreConfig     `yaml:"store" json:"store"`
	Discovery DiscoveryConfig `yaml:"discovery" json:"discovery"`
	Tracker   TrackerConfig   `yaml:"tracker" json:"tracker"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// NodeConfig identifies this participant within the cluster.
type NodeConfig struct {
	ID      string `yaml:"id" json:"id"`
	Address string `yaml:"address" json:"address"`
	// ControlSocketPath is the Unix-domain socket trackerd's ctlapi
	// server listens on for trackctl requests (submit/status/kill/plan/
	// counters).
	ControlSocketPath string `yaml:"controlSocketPath" json:"controlSocketPath"`
}

// StoreConfig configures the MetadataStore client.
type StoreConfig struct {
	// Backend selects which cmd/metastored backend to address:
	// "memory" or "dynamodb".
	Backend string `yaml:"backend" json:"backend"`
	// SocketPath is the Unix-domain socket the store daemon listens on.
	SocketPath string `yaml:"socketPath" json:"socketPath"`
	// PoolSize bounds the number of pooled client connections.
	PoolSize int `yaml:"poolSize" json:"poolSize"`
	// DynamoDBTable names the backing table when Backend == "dynamodb".
	DynamoDBTable string `yaml:"dynamoDbTable" json:"dynamoDbTable"`
	// FinishedJobInfoTTL is the TTL stamped on a record once it reaches
	// COMPLETE. The store backends record it but do not evict records.
	FinishedJobInfoTTL time.Duration `yaml:"finishedJobInfoTtl" json:"finishedJobInfoTtl"`
}

// DiscoveryConfig configures cluster membership tracking.
type DiscoveryConfig struct {
	// Mode selects "static" (fixed node list) or "gossip" (heartbeat).
	Mode              string        `yaml:"mode" json:"mode"`
	SeedAddresses     []string      `yaml:"seedAddresses" json:"seedAddresses"`
	HeartbeatInterval time.Duration `yaml:"heartbeatInterval" json:"heartbeatInterval"`
	FailureTimeout    time.Duration `yaml:"failureTimeout" json:"failureTimeout"`
}

// TrackerConfig configures the JobTracker facade and its task executor.
// EventQueueDepth is validated but not passed on: the tracker's
// EventLoop buffer is fixed at 256 entries.
type TrackerConfig struct {
	EventQueueDepth    int `yaml:"eventQueueDepth" json:"eventQueueDepth"`
	ExecutorWorkerPool int `yaml:"executorWorkerPool" json:"executorWorkerPool"`
	// ReducerCount is handed to staticplan.Planner for every job this
	// node plans.
	ReducerCount int `yaml:"reducerCount" json:"reducerCount"`
}

// LoggingConfig configures pkg/logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Output string `yaml:"output" json:"output"`
}

// DefaultConfig is used whenever no config file is found and no
// environment override applies.
var DefaultConfig = Config{
	Node: NodeConfig{
		ID:                "",
		Address:           "localhost:7780",
		ControlSocketPath: "/var/run/jobtracker/trackerd.sock",
	},
	Store: StoreConfig{
		Backend:            "memory",
		SocketPath:         "/var/run/jobtracker/metastore.sock",
		PoolSize:           20,
		DynamoDBTable:      "jobtracker-metadata",
		FinishedJobInfoTTL: 10 * time.Minute,
	},
	Discovery: DiscoveryConfig{
		Mode:              "static",
		HeartbeatInterval: 2 * time.Second,
		FailureTimeout:    6 * time.Second,
	},
	Tracker: TrackerConfig{
		EventQueueDepth:    256,
		ExecutorWorkerPool: 8,
		ReducerCount:       4,
	},
	Logging: LoggingConfig{
		Level:  "INFO",
		Output: "stdout",
	},
}

// LoadConfig loads configuration from the first YAML file found on the
// search path, then applies environment variable overrides, then
// validates the result. Absence of a config file is not an error — the
// built-in defaults are used instead.
func LoadConfig() (*Config, string, error) {
	cfg := DefaultConfig

	path, err := loadFromFile(&cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config file: %w", err)
	}

	if v := os.Getenv("JOBTRACKER_NODE_ID"); v != "" {
		cfg.Node.ID = v
	}
	if v := os.Getenv("JOBTRACKER_NODE_ADDRESS"); v != "" {
		cfg.Node.Address = v
	}
	if v := os.Getenv("JOBTRACKER_STORE_SOCKET"); v != "" {
		cfg.Store.SocketPath = v
	}
	if v := os.Getenv("JOBTRACKER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, path, nil
}

// loadFromFile searches common configuration locations and merges the
// first file found onto cfg. Returns "built-in defaults" if none exist.
func loadFromFile(cfg *Config) (string, error) {
	paths := []string{
		os.Getenv("JOBTRACKER_CONFIG_PATH"),
		"/etc/jobtracker/trackerd.yml",
		"./config/trackerd.yml",
		"./trackerd.yml",
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return "", fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		return path, nil
	}

	return "built-in defaults (no config file found)", nil
}

// Validate checks the configuration for obviously invalid values.
func (c *Config) Validate() error {
	if c.Node.Address == "" {
		return fmt.Errorf("node.address must not be empty")
	}
	if c.Store.Backend != "memory" && c.Store.Backend != "dynamodb" {
		return fmt.Errorf("store.backend must be \"memory\" or \"dynamodb\", got %q", c.Store.Backend)
	}
	if c.Store.SocketPath == "" {
		return fmt.Errorf("store.socketPath must not be empty")
	}
	if c.Store.PoolSize <= 0 {
		return fmt.Errorf("store.poolSize must be positive")
	}
	if c.Discovery.Mode != "static" && c.Discovery.Mode != "gossip" {
		return fmt.Errorf("discovery.mode must be \"static\" or \"gossip\", got %q", c.Discovery.Mode)
	}
	if c.Tracker.EventQueueDepth <= 0 {
		return fmt.Errorf("tracker.eventQueueDepth must be positive")
	}
	if c.Tracker.ExecutorWorkerPool <= 0 {
		return fmt.Errorf("tracker.executorWorkerPool must be positive")
	}
	if c.Tracker.ReducerCount <= 0 {
		return fmt.Errorf("tracker.reducerCount must be positive")
	}
	if c.Node.ControlSocketPath == "" {
		return fmt.Errorf("node.controlSocketPath must not be empty")
	}
	switch c.Logging.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("logging.level must be one of DEBUG/INFO/WARN/ERROR, got %q", c.Logging.Level)
	}
	return nil
}
