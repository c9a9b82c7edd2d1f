package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// DefaultEnvFile is read before the process environment; missing files are ignored.
const DefaultEnvFile = "configs/.env"

type Config struct {
	Env   string      `koanf:"env"`
	HTTP  HTTPConfig  `koanf:"http"`
	DB    DBConfig    `koanf:"db"`
	JWT   JWTConfig   `koanf:"jwt"`
	Log   LogConfig   `koanf:"log"`
	Login LoginConfig `koanf:"login"`
}

type HTTPConfig struct {
	Port           string   `koanf:"port"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type DBConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

type JWTConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// LoginConfig holds the login throttle in ulule/limiter notation, e.g. "10-M".
type LoginConfig struct {
	Rate string `koanf:"rate"`
}

// DSN builds the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// IsRelease reports whether the service runs with production settings.
func (c *Config) IsRelease() bool {
	return c.Env == "release" || c.Env == "production"
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Env: "development",
		HTTP: HTTPConfig{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "postgres",
			SSLMode:  "disable",
		},
		JWT: JWTConfig{
			Secret: "default_super_secret_key",
			TTL:    24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Login: LoginConfig{
			Rate: "10-M",
		},
	}
}

var envSections = map[string]bool{
	"app":   true,
	"http":  true,
	"db":    true,
	"jwt":   true,
	"log":   true,
	"login": true,
}

// envKey maps DB_HOST to db.host and HTTP_ALLOWED_ORIGINS to http.allowed_origins.
// PORT and GIN_MODE are honored for compatibility with hosting platforms.
func envKey(name string) string {
	name = strings.ToLower(name)
	switch name {
	case "port":
		return "http.port"
	case "gin_mode", "app_env":
		return "env"
	}

	section, rest, ok := strings.Cut(name, "_")
	if !ok || rest == "" || !envSections[section] {
		return ""
	}
	if section == "app" {
		return rest
	}
	return section + "." + rest
}

// Load reads envFiles (if present) and the process environment on top of Default.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}

	err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(name, value string) (string, any) {
			key := envKey(name)
			if key == "http.allowed_origins" {
				origins := strings.Split(value, ",")
				for i := range origins {
					origins[i] = strings.TrimSpace(origins[i])
				}
				return key, origins
			}
			return key, value
		},
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if cfg.IsRelease() && cfg.JWT.Secret == Default().JWT.Secret {
		return nil, errors.New("JWT_SECRET is required in release mode")
	}

	return &cfg, nil
}
