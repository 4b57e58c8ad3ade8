package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/natevvv/osm-path-visualizer/pkg/road"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Graph  GraphConfig  `yaml:"graph"`
	Search SearchConfig `yaml:"search"`
	Import ImportConfig `yaml:"import"`
}

type ServerConfig struct {
	Addr        string        `yaml:"addr" validate:"required,hostname_port"`
	SessionTTL  time.Duration `yaml:"session_ttl" validate:"gt=0"`
	MaxSessions int           `yaml:"max_sessions" validate:"gte=1"`
}

type GraphConfig struct {
	File string `yaml:"file" validate:"required"`
	// radius around the origin in meters, used if a session request has none
	DefaultRadius float64 `yaml:"default_radius" validate:"gt=0"`
	MaxRadius     float64 `yaml:"max_radius" validate:"gtefield=DefaultRadius"`
}

type SearchConfig struct {
	DefaultAlgorithm   string  `yaml:"default_algorithm" validate:"oneof=astar dijkstra greedy bidirectional bellmanford floydwarshall"`
	MaxStepsPerRequest int     `yaml:"max_steps_per_request" validate:"gte=1"`
	DebugLevel         int     `yaml:"debug_level" validate:"gte=0,lte=2"`
	TrailScale         float64 `yaml:"trail_scale" validate:"gt=0"`
	RouteSpeed         int     `yaml:"route_speed" validate:"gte=1"`
}

type ImportConfig struct {
	// osm highway values, empty imports all known road types
	RoadTypes  []string `yaml:"road_types" validate:"dive,oneof=motorway trunk primary secondary tertiary unclassified residential living_street service"`
	DebugLevel int      `yaml:"debug_level" validate:"gte=0,lte=2"`
}

var validate = validator.New()

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":8080",
			SessionTTL:  30 * time.Minute,
			MaxSessions: 64,
		},
		Graph: GraphConfig{
			File:          "graphs/road_graph.fmi",
			DefaultRadius: 2000,
			MaxRadius:     20000,
		},
		Search: SearchConfig{
			DefaultAlgorithm:   "astar",
			MaxStepsPerRequest: 500,
			DebugLevel:         0,
			TrailScale:         50000,
			RouteSpeed:         4,
		},
		Import: ImportConfig{
			RoadTypes: []string{},
		},
	}
}

// Load reads the yaml file over the defaults. An empty filename returns the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read the config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse the config file %v: %w", filename, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c ImportConfig) Types() []road.RoadType {
	types := make([]road.RoadType, 0, len(c.RoadTypes))
	for _, name := range c.RoadTypes {
		types = append(types, road.ParseHighway(name))
	}
	return types
}

func Write(cfg *Config, filename string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
