// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Population PopulationConfig `yaml:"population"`
	Generation GenerationConfig `yaml:"generation"`
	Food       FoodConfig       `yaml:"food"`
	Vegan      KindConfig       `yaml:"vegan"`
	Carnivore  KindConfig       `yaml:"carnivore"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Sensors    SensorsConfig    `yaml:"sensors"`
	Neural     NeuralConfig     `yaml:"neural"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Observer   ObserverConfig   `yaml:"observer"`
	Audio      AudioConfig      `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// WorldConfig holds simulation world dimensions.
// The renderer scales the world to fit the screen.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig holds collision resolution parameters.
type PhysicsConfig struct {
	Percent float64 `yaml:"percent"` // Positional correction fraction per tick
	Slop    float64 `yaml:"slop"`    // Penetration tolerated without correction
	MaxDT   float64 `yaml:"max_dt"`  // Elapsed time per tick is clamped to this (0 = no clamp)
}

// PopulationConfig holds seeding and respawn parameters.
type PopulationConfig struct {
	Creatures      int     `yaml:"creatures"`       // Creatures seeded per generation
	Foods          int     `yaml:"foods"`           // Foods seeded and respawned per interval
	CarnivoreRatio float64 `yaml:"carnivore_ratio"` // Fraction of seeded creatures that are carnivores
	FoodInterval   float64 `yaml:"food_interval"`   // Seconds between food respawns
	TopCount       int     `yaml:"top_count"`       // Survivors exported / carried over
}

// GenerationConfig controls population reseeding.
type GenerationConfig struct {
	Duration float64 `yaml:"duration"`  // Seconds per generation (0 = endless)
	CarryTop bool    `yaml:"carry_top"` // Seed next generation with top survivors
}

// FoodConfig holds food entity parameters.
type FoodConfig struct {
	MinRadius float64 `yaml:"min_radius"`
	MaxRadius float64 `yaml:"max_radius"`
	Nutrition float64 `yaml:"nutrition"` // Hunger removed when a creature eats food
}

// KindConfig holds per-kind creature parameters.
type KindConfig struct {
	MinRadius    float64 `yaml:"min_radius"`
	MaxRadius    float64 `yaml:"max_radius"`
	Speed        float64 `yaml:"speed"`
	Starve       float64 `yaml:"starve"`        // Hunger above this kills the creature
	Cooldown     float64 `yaml:"cooldown"`      // Reproduction timeout after mating / birth
	MaxOffspring int     `yaml:"max_offspring"` // Upper bound of children per mating
	Nutrition    float64 `yaml:"nutrition"`     // Hunger removed from a predator eating this kind
}

// MutationConfig holds trait inheritance parameters.
type MutationConfig struct {
	Factor   float64 `yaml:"factor"`   // Blend weight of parent A
	Chance   float64 `yaml:"chance"`   // Probability a trait is jittered
	Mutation float64 `yaml:"mutation"` // Maximum relative jitter
}

// SensorsConfig holds raycast parameters.
type SensorsConfig struct {
	RayCount     int     `yaml:"ray_count"`
	FOVDegrees   float64 `yaml:"fov_degrees"`
	ViewDistance float64 `yaml:"view_distance"`
}

// NeuralConfig holds decision network parameters.
type NeuralConfig struct {
	Hidden     []int `yaml:"hidden"`     // Hidden layer sizes
	Directions int   `yaml:"directions"` // Output layer size (discrete movement directions)
	Memory     bool  `yaml:"memory"`     // Feed previous output back into the input
	SelfTrain  bool  `yaml:"self_train"` // Train toward Desired using the prediction cost as rate
}

// TelemetryConfig holds stats collection parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds per stats window
}

// ObserverConfig holds spectator stream parameters.
type ObserverConfig struct {
	Addr     string  `yaml:"addr"`     // Listen address for the websocket stream
	Interval float64 `yaml:"interval"` // Seconds between broadcast frames
}

// AudioConfig holds ambient audio parameters.
type AudioConfig struct {
	Enabled   bool      `yaml:"enabled"`
	Volume    float64   `yaml:"volume"`    // Linear gain (0-1)
	NoteSec   float64   `yaml:"note_sec"`  // Seconds per note
	Frequency []float64 `yaml:"frequency"` // Note frequencies in Hz, looped
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Margin    float64 // Largest body radius, used as the wrap margin
	NumInputs int     // Sensors.RayCount * 2
	Layers    []int   // Full network topology: inputs, hidden..., directions
	FOV       float64 // Sensors.FOVDegrees in radians
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
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

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
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
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %gx%g", c.World.Width, c.World.Height)
	}
	if c.Sensors.RayCount < 1 {
		return fmt.Errorf("sensors.ray_count must be at least 1, got %d", c.Sensors.RayCount)
	}
	if c.Neural.Directions < 1 {
		return fmt.Errorf("neural.directions must be at least 1, got %d", c.Neural.Directions)
	}
	for i, h := range c.Neural.Hidden {
		if h < 1 {
			return fmt.Errorf("neural.hidden[%d] must be at least 1, got %d", i, h)
		}
	}
	for name, k := range map[string]KindConfig{"vegan": c.Vegan, "carnivore": c.Carnivore} {
		if k.MinRadius <= 0 || k.MaxRadius < k.MinRadius {
			return fmt.Errorf("%s radius range [%g, %g] is invalid", name, k.MinRadius, k.MaxRadius)
		}
		if k.MaxOffspring < 1 {
			return fmt.Errorf("%s.max_offspring must be at least 1, got %d", name, k.MaxOffspring)
		}
	}
	if c.Food.MinRadius <= 0 || c.Food.MaxRadius < c.Food.MinRadius {
		return fmt.Errorf("food radius range [%g, %g] is invalid", c.Food.MinRadius, c.Food.MaxRadius)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Margin = math.Max(c.Food.MaxRadius, math.Max(c.Vegan.MaxRadius, c.Carnivore.MaxRadius))
	c.Derived.NumInputs = c.Sensors.RayCount * 2
	c.Derived.FOV = c.Sensors.FOVDegrees * math.Pi / 180

	layers := make([]int, 0, len(c.Neural.Hidden)+2)
	layers = append(layers, c.Derived.NumInputs)
	layers = append(layers, c.Neural.Hidden...)
	layers = append(layers, c.Neural.Directions)
	c.Derived.Layers = layers
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
