package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"tictactoe_server/internal/logger"
)

type Config struct {
	AppPort       string
	JWTSecret     string
	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit  int
	APIRateWindow time.Duration

	// Lobby lifetimes
	RoomMaxAge     time.Duration
	ReconnectGrace time.Duration
}

// Load reads configuration from the environment, with a .env file as
// fallback. Only the token secret is mandatory.
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	cfg := &Config{
		AppPort:        port,
		JWTSecret:      jwtSecret,
		AllowedOrigin:  os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		LogJSON:        os.Getenv("LOG_JSON") == "true",
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
		APIRateLimit:   envInt("API_RATE_LIMIT", 30),
		APIRateWindow:  envSeconds("API_RATE_WINDOW_SECONDS", time.Minute),
		RoomMaxAge:     envSeconds("ROOM_MAX_AGE_SECONDS", time.Hour),
		ReconnectGrace: envSeconds("RECONNECT_GRACE_SECONDS", 30*time.Second),
	}

	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
