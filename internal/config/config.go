package config

import "os"

// Config holds server-level settings. MongoURI and RedisAddr are optional:
// when unset the recap archive and the evaluation cache fall back to their
// in-memory implementations.
type Config struct {
	HTTPPort           string
	MongoURI           string
	RedisAddr          string
	CORSAllowedOrigins string
}

func Load() *Config {
	return &Config{
		HTTPPort:           getEnv("PORT", "3001"),
		MongoURI:           getEnv("MONGO_URI", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
