package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	Backend    `yaml:"backend"`
	Redis      `yaml:"redis"`
	Session    `yaml:"session"`
	Admin      `yaml:"admin"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Backend describes the managed data/auth service the app talks to.
// AnonKey is constrained by row-level security, ServiceKey bypasses it
// and must only ever reach the admin client.
type Backend struct {
	URL        string        `yaml:"url" env:"BACKEND_URL" env-required:"true"`
	AnonKey    string        `yaml:"anon_key" env:"BACKEND_ANON_KEY" env-required:"true"`
	ServiceKey string        `yaml:"service_key" env:"BACKEND_SERVICE_KEY" env-required:"true"`
	Timeout    time.Duration `yaml:"timeout" env-default:"10s"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"redis:6379"`
	Password   string        `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB         int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	PendingTTL time.Duration `yaml:"pending_ttl" env-default:"10m"`
}

type Session struct {
	Secret string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	TTL    time.Duration `yaml:"ttl" env-default:"168h"`
}

type Admin struct {
	// bcrypt hash of the admin panel password
	PasswordHash string `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH" env-required:"true"`
}

func MustLoad(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", configPath)
	}

	return &cfg
}
