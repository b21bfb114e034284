package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSchema = `
agent?: {
	id:                      string & !=""
	collector_url:           string & !=""
	username?:               string
	password?:               string
	telemetry_interval?:     string
	command_interval?:       string
	session_check_interval?: string
}

workspace?: [...{
	name:    string & !=""
	shape:   "rectangle" | "circle"
	x:       number & >=0 & <=100
	y:       number & >=0 & <=100
	width?:  number & >=0
	height?: number & >=0
	radius?: number & >=0
}]
`

func writeTestFiles(t *testing.T, yaml string) (configPath, schemaPath string) {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "config.yaml")
	schemaPath = filepath.Join(dir, "config.cue")
	if err := os.WriteFile(configPath, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := os.WriteFile(schemaPath, []byte(testSchema), 0644); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}
	return configPath, schemaPath
}

func TestLoadConfig_Valid(t *testing.T) {
	configPath, schemaPath := writeTestFiles(t, `
agent:
  id: robot-1
  collector_url: http://localhost:8080
  telemetry_interval: 2s
workspace:
  - name: rack
    shape: rectangle
    x: 15
    y: 35
    width: 25
    height: 30
`)

	cfg, err := Load(configPath, schemaPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Agent.ID != "robot-1" {
		t.Errorf("unexpected agent config: %+v", cfg.Agent)
	}
	if cfg.Agent.TelemetryInterval.Std() != 2*time.Second {
		t.Errorf("telemetry interval = %v, want 2s", cfg.Agent.TelemetryInterval.Std())
	}
	// Unset intervals fall back to defaults.
	if cfg.Agent.CommandInterval.Std() != 3*time.Second {
		t.Errorf("command interval = %v, want default 3s", cfg.Agent.CommandInterval.Std())
	}
	obstacles := cfg.Obstacles()
	if len(obstacles) != 1 || obstacles[0].Name != "rack" {
		t.Errorf("unexpected obstacles: %+v", obstacles)
	}
}

func TestLoadConfig_SchemaRejectsBadShape(t *testing.T) {
	configPath, schemaPath := writeTestFiles(t, `
workspace:
  - name: blob
    shape: triangle
    x: 10
    y: 10
`)
	if _, err := Load(configPath, schemaPath); err == nil {
		t.Fatal("expected schema validation error for unknown shape")
	}
}

func TestLoadConfig_RejectsDegenerateObstacle(t *testing.T) {
	configPath, schemaPath := writeTestFiles(t, `
workspace:
  - name: flat
    shape: rectangle
    x: 10
    y: 10
`)
	if _, err := Load(configPath, schemaPath); err == nil {
		t.Fatal("expected error for rectangle without dimensions")
	}
}

func TestLoadConfig_RejectsObstacleOnCenter(t *testing.T) {
	configPath, schemaPath := writeTestFiles(t, `
workspace:
  - name: center block
    shape: circle
    x: 50
    y: 50
    radius: 5
`)
	if _, err := Load(configPath, schemaPath); err == nil {
		t.Fatal("expected error for obstacle covering the center fallback")
	}
}

func TestLoadConfig_BadDuration(t *testing.T) {
	configPath, schemaPath := writeTestFiles(t, `
agent:
  id: robot-1
  collector_url: http://localhost:8080
  telemetry_interval: soon
`)
	if _, err := Load(configPath, schemaPath); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}
