package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  user: app
  password: secret
  database: sandwiches
rabbitmq:
  user: guest
  password: guest
auth:
  jwt_secret: sekret
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("database defaults not applied: %+v", cfg.Database)
	}
	if cfg.RabbitMQ.TaskQueue != "task-queue" || cfg.RabbitMQ.ReadyQueue != "ready-queue" {
		t.Errorf("queue defaults not applied: %+v", cfg.RabbitMQ)
	}
	if cfg.HTTP.Port != 3000 {
		t.Errorf("http port default not applied: %d", cfg.HTTP.Port)
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		t.Error("allowed origins default not applied")
	}
}

func TestLoadFromFileEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  user: app
  password: secret
  database: sandwiches
rabbitmq:
  user: guest
  password: guest
auth:
  jwt_secret: sekret
`)

	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("TASK_QUEUE", "tasks-test")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("DB_HOST override ignored: %q", cfg.Database.Host)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("HTTP_PORT override ignored: %d", cfg.HTTP.Port)
	}
	if cfg.RabbitMQ.TaskQueue != "tasks-test" {
		t.Errorf("TASK_QUEUE override ignored: %q", cfg.RabbitMQ.TaskQueue)
	}
}

func TestLoadFromFileMissingRequired(t *testing.T) {
	path := writeConfig(t, `
database:
  user: app
`)

	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("config with missing credentials accepted")
	}
}

func TestLoadFromFileMissingFileUsesEnv(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "sandwiches")
	t.Setenv("RABBIT_USER", "guest")
	t.Setenv("RABBIT_PASSWORD", "guest")
	t.Setenv("JWT_SECRET", "sekret")

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Database.User != "app" || cfg.Auth.JWTSecret != "sekret" {
		t.Errorf("env-only config not picked up: %+v", cfg)
	}
}
