package config

// Package config provides a reusable loader for enote-core configuration
// files and environment variables. It is versioned so that applications can
// depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"seraphis-core/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for a scanning/enotestore/taskpool
// deployment. It mirrors the structure of the YAML files under cmd/config.
type Config struct {
	Scan struct {
		ReorgAvoidanceDepth    int64 `mapstructure:"reorg_avoidance_depth" json:"reorg_avoidance_depth"`
		MaxChunkSize           int64 `mapstructure:"max_chunk_size" json:"max_chunk_size"`
		MaxFullscanAttempts    int   `mapstructure:"max_fullscan_attempts" json:"max_fullscan_attempts"`
		MaxPartialscanAttempts int   `mapstructure:"max_partialscan_attempts" json:"max_partialscan_attempts"`
		DefaultSpendableAge    int64 `mapstructure:"default_spendable_age" json:"default_spendable_age"`
	} `mapstructure:"scan" json:"scan"`

	TaskPool struct {
		NumPriorityLevels      int           `mapstructure:"num_priority_levels" json:"num_priority_levels"`
		NumWorkers             int           `mapstructure:"num_workers" json:"num_workers"`
		MaxQueueSize           int           `mapstructure:"max_queue_size" json:"max_queue_size"`
		NumSubmitCycleAttempts int           `mapstructure:"num_submit_cycle_attempts" json:"num_submit_cycle_attempts"`
		MaxWaitDuration        time.Duration `mapstructure:"max_wait_duration" json:"max_wait_duration"`
		NumConditionalSlots    int           `mapstructure:"num_conditional_slots" json:"num_conditional_slots"`
	} `mapstructure:"task_pool" json:"task_pool"`

	Storage struct {
		SnapshotPath string `mapstructure:"snapshot_path" json:"snapshot_path"`
	} `mapstructure:"storage" json:"storage"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up matching environment variables

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	applyEnvOverrides(&AppConfig)
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the SERAPHIS_ENV environment
// variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("SERAPHIS_ENV", ""))
}

// applyEnvOverrides lets a handful of hot-path knobs be tuned without a
// config file reload, mirroring pkg/utils/env.go's typed-fallback helpers.
func applyEnvOverrides(c *Config) {
	c.Scan.MaxChunkSize = utils.EnvOrDefaultUint64AsInt64("SERAPHIS_SCAN_MAX_CHUNK_SIZE", c.Scan.MaxChunkSize)
	c.Scan.ReorgAvoidanceDepth = utils.EnvOrDefaultUint64AsInt64("SERAPHIS_SCAN_REORG_AVOIDANCE_DEPTH", c.Scan.ReorgAvoidanceDepth)
	c.TaskPool.NumWorkers = utils.EnvOrDefaultInt("SERAPHIS_TASKPOOL_NUM_WORKERS", c.TaskPool.NumWorkers)
}

// Default returns hardcoded defaults matching the shape knobs spec.md names,
// for callers (tests, standalone binaries) that do not want to read a YAML
// file at all.
func Default() Config {
	var c Config
	c.Scan.ReorgAvoidanceDepth = 10
	c.Scan.MaxChunkSize = 1000
	c.Scan.MaxFullscanAttempts = 50
	c.Scan.MaxPartialscanAttempts = 50
	c.Scan.DefaultSpendableAge = 10
	c.TaskPool.NumPriorityLevels = 3
	c.TaskPool.NumWorkers = 4
	c.TaskPool.MaxQueueSize = 64
	c.TaskPool.NumSubmitCycleAttempts = 2
	c.TaskPool.MaxWaitDuration = 50 * time.Millisecond
	c.TaskPool.NumConditionalSlots = 4
	c.Logging.Level = "info"
	return c
}
