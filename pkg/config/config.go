package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GitHub   GitHubConfig
	Report   ReportConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Path string
}

type GitHubConfig struct {
	Token string
	Org   string
	Repos []string
}

type ReportConfig struct {
	ClosedWindowDays      int
	MinZeroCommentAgeDays int
	ReadyLabel            string
	DoNotMergeLabel       string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Mode: getEnv("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./review_stats.db"),
		},
		GitHub: GitHubConfig{
			Token: getEnv("GITHUB_TOKEN", ""),
			Org:   getEnv("GITHUB_ORG", ""),
			Repos: getEnvAsList("GITHUB_REPOS", nil),
		},
		Report: ReportConfig{
			ClosedWindowDays:      getEnvAsInt("CLOSED_WINDOW_DAYS", 28),
			MinZeroCommentAgeDays: getEnvAsInt("MIN_ZERO_COMMENT_AGE_DAYS", 2),
			ReadyLabel:            getEnv("READY_LABEL", "ready for review"),
			DoNotMergeLabel:       getEnv("DO_NOT_MERGE_LABEL", "do not merge"),
		},
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

// getEnvAsList gets a comma-separated environment variable as a string slice
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
