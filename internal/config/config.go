// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"robotops-sim/internal/geo"
)

// Duration decodes YAML values like "5s" or "1m" via time.ParseDuration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// AgentConfig configures one simulated robot process.
type AgentConfig struct {
	ID                   string   `yaml:"id"`
	CollectorURL         string   `yaml:"collector_url"`
	Username             string   `yaml:"username"`
	Password             string   `yaml:"password"`
	TelemetryInterval    Duration `yaml:"telemetry_interval"`
	CommandInterval      Duration `yaml:"command_interval"`
	SessionCheckInterval Duration `yaml:"session_check_interval"`
}

// CollectorConfig configures the telemetry collector service.
type CollectorConfig struct {
	ListenAddr       string `yaml:"listen_addr"`
	DBPath           string `yaml:"db_path"`
	SessionSecret    string `yaml:"session_secret"`
	GreptimeEndpoint string `yaml:"greptime_endpoint"`
	LogFile          string `yaml:"log_file"`
}

// ObstacleConfig is the YAML form of a workspace obstacle.
type ObstacleConfig struct {
	Name   string  `yaml:"name"`
	Shape  string  `yaml:"shape"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Radius float64 `yaml:"radius"`
}

// Config is the root configuration shared by the agent and collector
// subcommands.
type Config struct {
	Agent     AgentConfig      `yaml:"agent"`
	Collector CollectorConfig  `yaml:"collector"`
	Workspace []ObstacleConfig `yaml:"workspace"`
}

// Obstacles converts the workspace section into geometry obstacles.
func (c *Config) Obstacles() []geo.Obstacle {
	obstacles := make([]geo.Obstacle, 0, len(c.Workspace))
	for _, o := range c.Workspace {
		obstacles = append(obstacles, geo.Obstacle{
			Name:   o.Name,
			Shape:  geo.Shape(o.Shape),
			X:      o.X,
			Y:      o.Y,
			Width:  o.Width,
			Height: o.Height,
			Radius: o.Radius,
		})
	}
	return obstacles
}

// Load loads YAML config and validates it against a CUE schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Agent.TelemetryInterval == 0 {
		c.Agent.TelemetryInterval = Duration(5 * time.Second)
	}
	if c.Agent.CommandInterval == 0 {
		c.Agent.CommandInterval = Duration(3 * time.Second)
	}
	if c.Agent.SessionCheckInterval == 0 {
		c.Agent.SessionCheckInterval = Duration(time.Minute)
	}
	if c.Collector.ListenAddr == "" {
		c.Collector.ListenAddr = ":8080"
	}
	if c.Collector.DBPath == "" {
		c.Collector.DBPath = "robotops.db"
	}
}

// check enforces constraints the CUE schema cannot express against the
// decoded values (durations arrive as strings in YAML).
func (c *Config) check() error {
	for _, o := range c.Workspace {
		switch geo.Shape(o.Shape) {
		case geo.ShapeRectangle:
			if o.Width <= 0 || o.Height <= 0 {
				return fmt.Errorf("obstacle %q: rectangle needs positive width and height", o.Name)
			}
		case geo.ShapeCircle:
			if o.Radius <= 0 {
				return fmt.Errorf("obstacle %q: circle needs positive radius", o.Name)
			}
		default:
			return fmt.Errorf("obstacle %q: unknown shape %q", o.Name, o.Shape)
		}
		if o.Collides(geo.CenterX, geo.CenterY) {
			return fmt.Errorf("obstacle %q covers the workspace center fallback", o.Name)
		}
	}
	return nil
}

// Collides mirrors the geometry check for the YAML form, buffer included.
func (o ObstacleConfig) Collides(x, y float64) bool {
	g := geo.Obstacle{
		Shape:  geo.Shape(o.Shape),
		X:      o.X,
		Y:      o.Y,
		Width:  o.Width,
		Height: o.Height,
		Radius: o.Radius,
	}
	return g.Collides(x, y)
}
