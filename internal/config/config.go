package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Repository drivers selectable through REPO_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Port       string
	Env        string
	RepoDriver string
	DBSource   string
	RedisAddr  string
}

func Load() (*Config, error) {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	if env == "local" {
		if err := godotenv.Load(".env.local"); err != nil {
			log.Printf("Warning: .env.local not found, relying on system environment: %v", err)
		}
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	driver := os.Getenv("REPO_DRIVER")
	if driver == "" {
		driver = DriverMemory
	}

	cfg := &Config{
		Port:       port,
		Env:        env,
		RepoDriver: driver,
		DBSource:   os.Getenv("DB_SOURCE"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
	}

	switch driver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.DBSource == "" {
			return nil, fmt.Errorf("DB_SOURCE environment variable is required for the postgres driver")
		}
	case DriverRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR environment variable is required for the redis driver")
		}
	default:
		return nil, fmt.Errorf("unknown REPO_DRIVER %q", driver)
	}

	return cfg, nil
}
