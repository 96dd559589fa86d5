package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort       int
	RequestTimeout time.Duration

	BackendBaseURL string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string
}

func Load() Config {
	return Config{
		AppEnv:         getEnv("APP_ENV", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:9000/api"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:   getEnvList("KAFKA_BROKERS", "localhost:9092"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvList(key, def string) []string {
	v := getEnv(key, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
