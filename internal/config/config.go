package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Port int `yaml:"port"`
		// RateLimit is the sustained form posts per second per client; Burst the bucket size.
		RateLimit float64 `yaml:"rateLimit"`
		Burst     int     `yaml:"burst"`
		// AllowedOrigins for the /v1 history API.
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Upstream struct {
		BaseURL    string        `yaml:"baseURL"`
		UploadPath string        `yaml:"uploadPath"`
		HealthPath string        `yaml:"healthPath"`
		Timeout    time.Duration `yaml:"timeout"`
		RPS        float64       `yaml:"rps"`
		Burst      int           `yaml:"burst"`
	} `yaml:"upstream"`

	Upload struct {
		MaxFileSize       int64    `yaml:"maxFileSize"`
		AllowedExtensions []string `yaml:"allowedExtensions"`
	} `yaml:"upload"`

	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`

	// Database menyimpan riwayat submission; kosongkan Driver untuk mematikan.
	Database struct {
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.App.Name = "Irish Law Analyzer"
	cfg.App.Version = "1.0.0"
	cfg.Server.Port = 8080
	cfg.Server.RateLimit = 1
	cfg.Server.Burst = 5
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Upstream.BaseURL = "http://localhost:8000"
	cfg.Upstream.UploadPath = "/upload/"
	cfg.Upstream.HealthPath = "/health"
	cfg.Upstream.Timeout = 60 * time.Second
	cfg.Upstream.RPS = 2
	cfg.Upstream.Burst = 4
	cfg.Upload.MaxFileSize = 10 * 1024 * 1024
	cfg.Upload.AllowedExtensions = []string{"pdf", "jpg", "jpeg", "png"}
	cfg.Log.Level = "info"
	cfg.Database.SSLMode = "disable"
	return &cfg
}

// Load baca .env (kalau ada), file config.yaml, lalu override dari environment.
// A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = parseIntOrDefault("LEXSCAN_PORT", c.Server.Port)
	c.Upstream.BaseURL = getEnvOrDefault("LEXSCAN_UPSTREAM_URL", c.Upstream.BaseURL)
	if v := os.Getenv("LEXSCAN_CORS_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	c.Log.Level = getEnvOrDefault("LEXSCAN_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnvOrDefault("LEXSCAN_LOG_FILE", c.Log.File)
	c.Database.Driver = getEnvOrDefault("LEXSCAN_DB_DRIVER", c.Database.Driver)
	c.Database.Password = getEnvOrDefault("LEXSCAN_DB_PASSWORD", c.Database.Password)
	c.Minio.AccessKey = getEnvOrDefault("LEXSCAN_MINIO_ACCESS_KEY", c.Minio.AccessKey)
	c.Minio.SecretKey = getEnvOrDefault("LEXSCAN_MINIO_SECRET_KEY", c.Minio.SecretKey)
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.baseURL is required")
	}
	if !strings.HasPrefix(c.Upstream.UploadPath, "/") {
		return fmt.Errorf("upstream.uploadPath must start with /")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload.maxFileSize must be positive")
	}
	switch c.Database.Driver {
	case "", "mysql", "postgres":
	default:
		return fmt.Errorf("database.driver %q not supported (mysql, postgres)", c.Database.Driver)
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.BucketName == "") {
		return fmt.Errorf("minio.endpoint and minio.bucketName are required when minio is enabled")
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// UploadURL is the absolute analysis endpoint.
func (c *Config) UploadURL() string {
	return strings.TrimRight(c.Upstream.BaseURL, "/") + c.Upstream.UploadPath
}

// HealthURL is the analysis service probe, empty when healthPath is unset.
func (c *Config) HealthURL() string {
	if c.Upstream.HealthPath == "" {
		return ""
	}
	return strings.TrimRight(c.Upstream.BaseURL, "/") + c.Upstream.HealthPath
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
