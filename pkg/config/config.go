package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	GitHub    GitHubConfig
	API       APIConfig
	Workers   WorkersConfig
	Scheduler SchedulerConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

// GitHubConfig holds the token used for REST API calls. An empty token
// falls back to unauthenticated requests with the lower rate limit.
type GitHubConfig struct {
	Token string
}

type APIConfig struct {
	Token string
}

type WorkersConfig struct {
	ContributorWorkers  int
	PollIntervalSeconds int
}

type SchedulerConfig struct {
	Enabled         bool
	IntervalMinutes int
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./contribsync.db"),
		},
		GitHub: GitHubConfig{
			Token: getEnv("GITHUB_TOKEN", ""),
		},
		API: APIConfig{
			Token: getEnv("API_TOKEN", ""),
		},
		Workers: WorkersConfig{
			ContributorWorkers:  getEnvAsInt("CONTRIBUTOR_WORKERS", 2),
			PollIntervalSeconds: getEnvAsInt("WORKER_POLL_INTERVAL", 10),
		},
		Scheduler: SchedulerConfig{
			Enabled:         getEnvAsBool("SCHEDULER_ENABLED", true),
			IntervalMinutes: getEnvAsInt("SYNC_INTERVAL_MINUTES", 60),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
