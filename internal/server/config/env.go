package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays configuration from environment variables. Unset or
// malformed variables leave the current value untouched.
func parseEnv(config *Config) {
	setString(&config.EndpointAddrHTTP, os.Getenv("HTTP_ADDR"))
	setString(&config.DatabaseDSN, os.Getenv("DATABASE_DSN"))
	setString(&config.SecretKey, os.Getenv("JWT_SECRET"))
	envDuration(&config.TokenValidityDuration, "TOKEN_TTL")
	envDuration(&config.ResetCodeValidityDuration, "RESET_CODE_TTL")
	setString(&config.S3AccessKey, os.Getenv("S3_ACCESS_KEY"))
	setString(&config.S3SecretKey, os.Getenv("S3_SECRET_KEY"))
	setString(&config.S3Bucket, os.Getenv("S3_BUCKET"))
	setString(&config.S3Region, os.Getenv("S3_REGION"))
	setString(&config.S3BaseEndpoint, os.Getenv("S3_BASE_ENDPOINT"))
	if val := os.Getenv("MAX_UPLOAD_BYTES"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil && parsed > 0 {
			config.MaxUploadBytes = parsed
		}
	}
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		config.AllowedOrigins = splitOrigins(val)
	}
	setString(&config.RedisAddr, os.Getenv("REDIS_ADDR"))
	if val := os.Getenv("RATE_LIMIT_REQUESTS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			config.RateLimitRequests = parsed
		}
	}
	envDuration(&config.RateLimitWindow, "RATE_LIMIT_WINDOW")
}

func envDuration(dst *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			*dst = parsed
		}
	}
}
