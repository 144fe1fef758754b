// Package config provides configuration loading and access for the
// simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Streaming   StreamingConfig   `yaml:"streaming"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Burning     BurningConfig     `yaml:"burning"`
	Heat        HeatConfig        `yaml:"heat"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Contour     ContourConfig     `yaml:"contour"`
	Blast       BlastConfig       `yaml:"blast"`
	Submersion  SubmersionConfig  `yaml:"submersion"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the fixed geometry of the simulation grid.
type WorldConfig struct {
	Edge     int32  `yaml:"edge"`      // L, chunk edge length in pixels
	TileEdge int32  `yaml:"tile_edge"` // T, simulation tile edge length in pixels
	HeatEdge int32  `yaml:"heat_edge"` // H, heat cell edge length in pixels
	Seed     uint64 `yaml:"seed"`
}

// StreamingConfig holds the streaming window and chunk pool sizing.
type StreamingConfig struct {
	Width        int32 `yaml:"width"`  // window width, chunks
	Height       int32 `yaml:"height"` // window height, chunks
	PoolCapacity int   `yaml:"pool_capacity"`
}

// PhysicsConfig holds the main simulation tick rate.
type PhysicsConfig struct {
	Rate         float32 `yaml:"rate"` // P, Hz
	JitterFactor float32 `yaml:"jitter_factor"`
}

// BurningConfig holds the burning subsystem's own tick rate and the
// continuous probabilities its rates are derived from.
type BurningConfig struct {
	Rate                     float32 `yaml:"rate"` // B, Hz
	SpreadPerNeighbourPerSec float32 `yaml:"spread_per_neighbour_per_sec"`
	BurnDurationSec          float32 `yaml:"burn_duration_sec"`
}

// HeatConfig holds the heat-diffusion subsystem's own tick rate and
// cooling/ignition constants.
type HeatConfig struct {
	Rate          float32 `yaml:"rate"` // H-rate, Hz
	CoolingFactor float32 `yaml:"cooling_factor"`
	BurningHeat   uint8   `yaml:"burning_heat"`
}

// PersistenceConfig holds save-file behaviour.
type PersistenceConfig struct {
	SavePath          string  `yaml:"save_path"`
	FlushIntervalSec  float32 `yaml:"flush_interval_sec"`
	DeltaThreshold    float32 `yaml:"delta_threshold"`
	WorkerQueueDepth  int     `yaml:"worker_queue_depth"`
}

// ContourConfig holds collision mesh generation parameters.
type ContourConfig struct {
	Tolerance    float64 `yaml:"tolerance"`     // Douglas-Peucker simplification tolerance
	QueryRadius  int32   `yaml:"query_radius"`  // default CollisionQueryPoint tile radius
	MinSplitSize int     `yaml:"min_split_size"`
}

// BlastConfig holds default parameters for the blast primitive.
type BlastConfig struct {
	DefaultCost    float32 `yaml:"default_cost"`
	DefaultFalloff float32 `yaml:"default_falloff"`
}

// SubmersionConfig holds the buoyancy/submersion threshold.
type SubmersionConfig struct {
	Threshold float32 `yaml:"threshold"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TilesPerChunk  int32 // World.Edge / World.TileEdge
	BurningBudget  int   // ticks between burning-subsystem runs, from Physics.Rate/Burning.Rate
	HeatBudget     int   // ticks between heat-subsystem runs, from Physics.Rate/Heat.Rate
	FlushInterval  int   // Persistence.FlushIntervalSec expressed in physics ticks
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct -- only overwrites fields present
		// in the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from more than one loaded field.
func (c *Config) computeDerived() {
	c.Derived.TilesPerChunk = c.World.Edge / c.World.TileEdge
	c.Derived.BurningBudget = tickBudget(c.Physics.Rate, c.Burning.Rate)
	c.Derived.HeatBudget = tickBudget(c.Physics.Rate, c.Heat.Rate)
	c.Derived.FlushInterval = int(c.Physics.Rate * c.Persistence.FlushIntervalSec)
}

// tickBudget mirrors burn.TickBudget's round(P/rate) derivation without
// importing the burn package here, so config stays a leaf dependency for
// every package that reads it (including burn itself, if it ever needs a
// default).
func tickBudget(physicsRate, subsystemRate float32) int {
	if subsystemRate <= 0 {
		return 1
	}
	n := int(physicsRate/subsystemRate + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}
