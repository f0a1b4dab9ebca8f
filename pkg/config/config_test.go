package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "iopc.yaml")

	content := `
target: go
output: build/generated
workers: 4
maps:
  - maps/go.yaml
  - maps/extra.yaml
html: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Target != "go" {
		t.Errorf("expected target go, got %s", cfg.Target)
	}
	if cfg.Output != "build/generated" {
		t.Errorf("expected output build/generated, got %s", cfg.Output)
	}
	if cfg.Workers != 4 {
		t.Errorf("expected workers 4, got %d", cfg.Workers)
	}
	if len(cfg.Maps) != 2 || cfg.Maps[0] != "maps/go.yaml" || cfg.Maps[1] != "maps/extra.yaml" {
		t.Errorf("expected maps [maps/go.yaml maps/extra.yaml], got %v", cfg.Maps)
	}
	if !cfg.HTML {
		t.Error("expected html true")
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/iopc.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "iopc.yaml")

	content := `maps: [invalid yaml`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "iopc.yaml")

	content := ``
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Target != "" {
		t.Errorf("expected empty target, got %s", cfg.Target)
	}
	if len(cfg.Maps) != 0 {
		t.Errorf("expected empty maps, got %v", cfg.Maps)
	}
}

func TestLoadFromDir_IopcYaml(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "iopc.yaml")

	content := `target: python`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Target != "python" {
		t.Errorf("expected target python, got %s", cfg.Target)
	}
}

func TestLoadFromDir_IopcYml(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "iopc.yml")

	content := `target: typescript`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Target != "typescript" {
		t.Errorf("expected target typescript, got %s", cfg.Target)
	}
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should return empty config
	if cfg.Target != "" {
		t.Errorf("expected empty target, got %s", cfg.Target)
	}
	if len(cfg.Maps) != 0 {
		t.Errorf("expected empty maps, got %v", cfg.Maps)
	}
}

func TestLoadFromDir_PrefersYamlOverYml(t *testing.T) {
	dir := t.TempDir()

	// Create both iopc.yaml and iopc.yml
	yamlContent := `target: go`
	ymlContent := `target: python`

	if err := os.WriteFile(filepath.Join(dir, "iopc.yaml"), []byte(yamlContent), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "iopc.yml"), []byte(ymlContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should prefer iopc.yaml
	if cfg.Target != "go" {
		t.Errorf("expected target go (from iopc.yaml), got %s", cfg.Target)
	}
}
