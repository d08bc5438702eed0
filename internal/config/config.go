package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`
	Host        string `env:"HOST" envDefault:"http://localhost:8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// StoreDriver selects the document store: "mongo" or "memory".
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`

	Mongo      Mongo      `envPrefix:"MONGODB_"`
	Redis      Redis      `envPrefix:"REDIS_"`
	Postgres   Postgres   `envPrefix:"POSTGRES_"`
	Cloudinary Cloudinary `envPrefix:"CLOUDINARY_"`
	Session    Session    `envPrefix:"SESSION_"`
	Throttle   Throttle   `envPrefix:"ENGAGEMENT_THROTTLE_"`

	FrontendURL    string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`

	// AllowedHost is the bare hostname derived from Host in production.
	AllowedHost string
}

type Mongo struct {
	URI          string `env:"URI" envDefault:"mongodb://localhost:27017/graceway"`
	Database     string `env:"DATABASE"`
	Transactions bool   `env:"TRANSACTIONS" envDefault:"false"`
}

type Redis struct {
	URI string `env:"URI"`
}

// Postgres backs the moderation audit log; empty disables it.
type Postgres struct {
	URI string `env:"URI"`
}

type Cloudinary struct {
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
}

type Session struct {
	TTL time.Duration `env:"TTL" envDefault:"168h"`
}

type Throttle struct {
	Limit  int           `env:"LIMIT" envDefault:"30"`
	Window time.Duration `env:"WINDOW" envDefault:"1m"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if cfg.StoreDriver != DriverMongo && cfg.StoreDriver != DriverMemory {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = databaseFromURI(cfg.Mongo.URI, "graceway")
	}
	if cfg.IsProduction() {
		cfg.AllowedHost = hostname(cfg.Host)
	}
	cfg.AllowedOrigins = origins(cfg.AllowedOrigins, cfg.FrontendURL, cfg.Host)
	return &cfg, nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) CloudinaryEnabled() bool {
	return c.Cloudinary.CloudName != "" && c.Cloudinary.APIKey != "" && c.Cloudinary.APISecret != ""
}

// databaseFromURI takes the path segment of a mongodb:// URI.
func databaseFromURI(uri, fallback string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i != -1 {
		rest = rest[i+3:]
	}
	i := strings.Index(rest, "/")
	if i == -1 {
		return fallback
	}
	name := strings.Split(rest[i+1:], "?")[0]
	if name == "" {
		return fallback
	}
	return name
}

func hostname(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

// origins builds the CORS allow list. A backend host such as
// api.example.org also admits https://example.org and https://www.example.org.
func origins(explicit []string, frontend, host string) []string {
	var out []string
	for _, o := range explicit {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 && strings.TrimSpace(frontend) != "" {
		out = append(out, strings.TrimSpace(frontend))
	}

	h := hostname(host)
	if h != "" && h != "localhost" {
		if parts := strings.Split(h, "."); len(parts) > 2 {
			domain := strings.Join(parts[1:], ".")
			for _, o := range []string{"https://" + domain, "https://www." + domain} {
				if !containsOrigin(out, o) {
					out = append(out, o)
				}
			}
		}
	}
	if len(out) == 0 {
		out = []string{"http://localhost:3000"}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}
