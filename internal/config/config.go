// Package config defines the stockroom configuration and its defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/stockroom/internal/platform/configloader"
)

var _ configloader.Validator = (*Config)(nil)

const (
	ModeConsole = "console"
	ModeHTTP    = "http"

	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Mode     string         `koanf:"mode"`
	Log      LogConfig      `koanf:"log"`
	Storage  StorageConfig  `koanf:"storage"`
	Report   ReportConfig   `koanf:"report"`
	Server   HTTPConfig     `koanf:"server"`
	PProf    PProfConfig    `koanf:"pprof"`
	Shutdown ShutdownConfig `koanf:"shutdown"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type StorageConfig struct {
	Driver string `koanf:"driver"`
	File   struct {
		Path   string `koanf:"path"`
		Format string `koanf:"format"`
	} `koanf:"file"`
	Postgres struct {
		URL     string        `koanf:"url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"postgres"`
	Redis struct {
		Addr    string        `koanf:"addr"`
		Key     string        `koanf:"key"`
		DB      int           `koanf:"db"`
		Format  string        `koanf:"format"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"redis"`
}

type ReportConfig struct {
	LowStockThreshold int `koanf:"threshold"`
}

type HTTPConfig struct {
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	MaxHeaderBytes int    `koanf:"maxheaderbytes"`
	Timeout        struct {
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
		ReadHeader time.Duration `koanf:"readheader"`
	} `koanf:"timeout"`
}

type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// Defaults returns the lowest-priority configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"mode":                      ModeConsole,
		"log.level":                 "info",
		"storage.driver":            DriverFile,
		"storage.file.path":         "inventory.txt",
		"storage.file.format":       "json",
		"storage.postgres.timeout":  5 * time.Second,
		"storage.redis.key":         "stockroom:inventory",
		"storage.redis.format":      "json",
		"storage.redis.timeout":     5 * time.Second,
		"report.threshold":          5,
		"server.host":               "127.0.0.1",
		"server.port":               8080,
		"server.maxheaderbytes":     1 << 20,
		"server.timeout.read":       10 * time.Second,
		"server.timeout.write":      10 * time.Second,
		"server.timeout.idle":       60 * time.Second,
		"server.timeout.readheader": 5 * time.Second,
		"pprof.enabled":             false,
		"pprof.addr":                "127.0.0.1:6060",
		"shutdown.timeout":          10 * time.Second,
	}
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Application ---\n")
	b.WriteString(fmt.Sprintf("  mode: %s\n", c.Mode))
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  report.threshold: %d\n", c.Report.LowStockThreshold))

	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  storage.driver: %s\n", c.Storage.Driver))
	switch c.Storage.Driver {
	case DriverFile:
		b.WriteString(fmt.Sprintf("  storage.file.path: %s\n", c.Storage.File.Path))
		b.WriteString(fmt.Sprintf("  storage.file.format: %s\n", c.Storage.File.Format))
	case DriverPostgres:
		b.WriteString(fmt.Sprintf("  storage.postgres.url: %s\n", maskURL(c.Storage.Postgres.URL)))
		b.WriteString(fmt.Sprintf("  storage.postgres.timeout: %s\n", c.Storage.Postgres.Timeout))
	case DriverRedis:
		b.WriteString(fmt.Sprintf("  storage.redis.addr: %s\n", c.Storage.Redis.Addr))
		b.WriteString(fmt.Sprintf("  storage.redis.key: %s\n", c.Storage.Redis.Key))
		b.WriteString(fmt.Sprintf("  storage.redis.db: %d\n", c.Storage.Redis.DB))
	}

	if c.Mode == ModeHTTP {
		b.WriteString("\n--- Server ---\n")
		b.WriteString(fmt.Sprintf("  server.host: %s\n", c.Server.Host))
		b.WriteString(fmt.Sprintf("  server.port: %d\n", c.Server.Port))
		b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.Server.Timeout.Read))
		b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.Server.Timeout.Write))
		b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
		b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))
	}

	return b.String()
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	// Mask the URL by replacing the username and password with "****"
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeConsole:
	case ModeHTTP:
		if err := c.Server.Validate(); err != nil {
			return err
		}
		if c.PProf.Enabled && c.PProf.Addr == "" {
			return fmt.Errorf("pprof is enabled but address is not configured")
		}
		if c.Shutdown.Timeout <= 0 {
			return fmt.Errorf("shutdown timeout is not configured")
		}
	default:
		return fmt.Errorf("unknown mode: %q", c.Mode)
	}
	return c.Storage.Validate()
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case DriverFile:
		if c.File.Path == "" {
			return fmt.Errorf("storage file path is not configured")
		}
		return validateFormat(c.File.Format)
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("database URL is not configured")
		}
		if !isValidPostgresURL(c.Postgres.URL) {
			return fmt.Errorf("database URL must start with 'postgres://': %s", maskURL(c.Postgres.URL))
		}
		if c.Postgres.Timeout <= 0 {
			return fmt.Errorf("invalid database timeout: %v", c.Postgres.Timeout)
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is not configured")
		}
		if c.Redis.Key == "" {
			return fmt.Errorf("redis key is not configured")
		}
		if c.Redis.Timeout <= 0 {
			return fmt.Errorf("invalid redis timeout: %v", c.Redis.Timeout)
		}
		return validateFormat(c.Redis.Format)
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Driver)
	}
	return nil
}

func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Port)
	}
	if c.Timeout.Read <= 0 {
		return fmt.Errorf("invalid HTTP server read timeout: %v", c.Timeout.Read)
	}
	if c.Timeout.Write <= 0 {
		return fmt.Errorf("invalid HTTP server write timeout: %v", c.Timeout.Write)
	}
	if c.Timeout.Idle <= 0 {
		return fmt.Errorf("invalid HTTP server idle timeout: %v", c.Timeout.Idle)
	}
	if c.Timeout.ReadHeader <= 0 {
		return fmt.Errorf("invalid HTTP server read header timeout: %v", c.Timeout.ReadHeader)
	}
	return nil
}

func validateFormat(format string) error {
	switch format {
	case "json", "binary":
		return nil
	default:
		return fmt.Errorf("unknown storage format: %q", format)
	}
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}
