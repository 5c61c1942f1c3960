package config

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/engineerOfLies/MoGUL-sub000/pkg/compression"
	"github.com/engineerOfLies/MoGUL-sub000/pkg/logger"
)

// Names of the built-in pools.
const (
	PoolDocuments = "documents"
	PoolBlobs     = "blobs"
	PoolScratch   = "scratch"
)

// EngineConfig is the configuration of every resource pool the engine
// creates, plus the ambient settings those pools run with.
type EngineConfig struct {
	// Name identifies the engine instance in logs
	Name string `yaml:"name" json:"name"`

	// Logging configures the global zap logger
	Logging logger.Config `yaml:"logging" json:"logging"`

	// Observability toggles metrics and tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`

	// Maintenance controls when cached payloads are dropped
	Maintenance MaintenanceConfig `yaml:"maintenance" json:"maintenance"`

	// Assets describes where asset files come from
	Assets AssetsConfig `yaml:"assets" json:"assets"`

	// Pools maps a pool name to its sizing
	Pools map[string]PoolConfig `yaml:"pools" json:"pools"`
}

// ObservabilityConfig contains monitoring settings.
type ObservabilityConfig struct {
	// EnableMetrics records pool metrics on the default Prometheus registry
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// EnableTracing wraps loader calls in spans
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
}

// MaintenanceConfig controls memory-pressure cleaning.
type MaintenanceConfig struct {
	// MemoryHighWatermark is the system memory usage, in percent, above which
	// maintenance cleans every pool. Zero cleans on every run.
	MemoryHighWatermark float64 `yaml:"memory_high_watermark" json:"memory_high_watermark"`
	// Interval between maintenance runs when the caller schedules them
	Interval time.Duration `yaml:"interval" json:"interval"`
}

// AssetsConfig describes the asset tree.
type AssetsConfig struct {
	// Root is the directory asset keys are resolved against
	Root string `yaml:"root" json:"root"`
	// MaxFileSize bounds a single asset after decompression
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`
	// Compression is used when packing assets
	Compression compression.Config `yaml:"compression" json:"compression"`
}

// PoolConfig sizes one pool.
type PoolConfig struct {
	// Capacity is the fixed number of slots
	Capacity int `yaml:"capacity" json:"capacity"`
	// Unique gives every request a private payload
	Unique bool `yaml:"unique" json:"unique"`
	// MaxKeyLength bounds keys, 0 for the pool default
	MaxKeyLength int `yaml:"max_key_length" json:"max_key_length"`
}

// NewEngineConfig returns a configuration with defaults for every built-in
// pool.
//
// Example:
//
//	cfg := config.NewEngineConfig("editor")
//	cfg.Pools[config.PoolBlobs] = config.PoolConfig{Capacity: 2048}
func NewEngineConfig(name string) *EngineConfig {
	return &EngineConfig{
		Name: name,
		Logging: logger.Config{
			Level:    "info",
			Encoding: "json",
		},
		Observability: ObservabilityConfig{
			EnableMetrics: true,
			EnableTracing: false,
		},
		Maintenance: MaintenanceConfig{
			MemoryHighWatermark: 85,
			Interval:            30 * time.Second,
		},
		Assets: AssetsConfig{
			Root:        "assets",
			MaxFileSize: compression.DefaultMaxDecompressedSize,
			Compression: compression.Config{
				Algorithm: compression.Zstd,
				Level:     compression.Default,
			},
		},
		Pools: map[string]PoolConfig{
			PoolDocuments: {Capacity: 256},
			PoolBlobs:     {Capacity: 1024},
			PoolScratch:   {Capacity: 128, Unique: true},
		},
	}
}

// Pool returns the configuration of the named pool.
func (c *EngineConfig) Pool(name string) (PoolConfig, bool) {
	pc, ok := c.Pools[name]
	return pc, ok
}

// PoolNames returns the configured pool names in sorted order.
func (c *EngineConfig) PoolNames() []string {
	names := make([]string, 0, len(c.Pools))
	for name := range c.Pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks required fields and value ranges.
func (c *EngineConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Maintenance.MemoryHighWatermark < 0 || c.Maintenance.MemoryHighWatermark > 100 {
		return fmt.Errorf("maintenance.memory_high_watermark must be between 0 and 100")
	}
	if c.Maintenance.Interval < 0 {
		return fmt.Errorf("maintenance.interval cannot be negative")
	}
	if c.Assets.MaxFileSize < 0 {
		return fmt.Errorf("assets.max_file_size cannot be negative")
	}
	for _, name := range c.PoolNames() {
		if err := c.Pools[name].validate(); err != nil {
			return fmt.Errorf("pools.%s: %w", name, err)
		}
	}
	for name, unique := range map[string]bool{PoolDocuments: false, PoolBlobs: false, PoolScratch: true} {
		if pc, ok := c.Pools[name]; ok && pc.Unique != unique {
			return fmt.Errorf("pools.%s: unique must be %t", name, unique)
		}
	}
	return nil
}

func (p PoolConfig) validate() error {
	if p.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive")
	}
	if uint64(p.Capacity) > math.MaxUint32 {
		return fmt.Errorf("capacity %d exceeds %d", p.Capacity, uint64(math.MaxUint32))
	}
	if p.MaxKeyLength < 0 {
		return fmt.Errorf("max_key_length cannot be negative")
	}
	return nil
}
