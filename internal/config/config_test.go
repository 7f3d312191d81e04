package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func resetViper() {
	viper.Reset()
	Reset()
}

func TestLoadDefaults(t *testing.T) {
	resetViper()
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Embedding.Dimension != 768 {
		t.Errorf("expected default embedding dimension 768, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Ollama.Host != "http://localhost:11434" {
		t.Errorf("expected default ollama host, got %s", cfg.Ollama.Host)
	}
}

func TestLoadCachesGlobalConfig(t *testing.T) {
	resetViper()
	first, _ := Load("")
	second, _ := Load("")
	if first != second {
		t.Errorf("expected Load to return the cached config on second call")
	}
}

func TestBindEnvKeysPrefersEnvOverDefault(t *testing.T) {
	resetViper()
	os.Setenv("MYSQL_HOST", "db.internal")
	defer os.Unsetenv("MYSQL_HOST")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected MYSQL_HOST to override default, got %s", cfg.Database.Host)
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := Database{Host: "localhost", User: "root", Password: "secret", Name: "ats", Port: 3306}
	want := "root:secret@tcp(localhost:3306)/ats?parseTime=true&charset=utf8mb4"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
