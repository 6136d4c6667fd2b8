package config

import (
	"os"
	"time"
)

type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	HTTPPort  string
	JWTSecret string

	// Gameplay timings. Overridable so tests and staging can shrink them.
	TurnTimeLimit    time.Duration
	HeartbeatEvery   time.Duration
	LivenessWindow   time.Duration
	ForfeitThreshold time.Duration
}

func Load() *Config {
	return &Config{
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "seabattle"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "super-secret-key-change-in-production"),

		TurnTimeLimit:    getDuration("TURN_TIME_LIMIT", 60*time.Second),
		HeartbeatEvery:   getDuration("HEARTBEAT_INTERVAL", 5*time.Second),
		LivenessWindow:   getDuration("LIVENESS_WINDOW", 10*time.Second),
		ForfeitThreshold: getDuration("FORFEIT_THRESHOLD", 30*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
