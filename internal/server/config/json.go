package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/campusvault/pyqhub/internal/flagx"
	"github.com/campusvault/pyqhub/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. Duration fields accept both "10m" strings and
// integer nanoseconds; empty fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP          string         `json:"endpoint_addr_http"`
	DatabaseDSN               string         `json:"database_dsn"`
	SecretKey                 string         `json:"secret_key"`
	TokenValidityDuration     timex.Duration `json:"token_validity_duration"`
	ResetCodeValidityDuration timex.Duration `json:"reset_code_validity_duration"`
	S3AccessKey               string         `json:"s3_access_key"`
	S3SecretKey               string         `json:"s3_secret_key"`
	S3Bucket                  string         `json:"s3_bucket"`
	S3Region                  string         `json:"s3_region"`
	S3BaseEndpoint            string         `json:"s3_base_endpoint"`
	MaxUploadBytes            int64          `json:"max_upload_bytes"`
	AllowedOrigins            string         `json:"allowed_origins"`
	RedisAddr                 string         `json:"redis_addr"`
	RateLimitRequests         int            `json:"rate_limit_requests"`
	RateLimitWindow           timex.Duration `json:"rate_limit_window"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags, if any. Missing flag means no JSON overlay. An
// unreadable or invalid file panics: a config file that exists but cannot
// be applied is a deployment error.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.TokenValidityDuration, c.TokenValidityDuration)
	setDuration(&config.ResetCodeValidityDuration, c.ResetCodeValidityDuration)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.AllowedOrigins != "" {
		config.AllowedOrigins = splitOrigins(c.AllowedOrigins)
	}
	setString(&config.RedisAddr, c.RedisAddr)
	if c.RateLimitRequests > 0 {
		config.RateLimitRequests = c.RateLimitRequests
	}
	setDuration(&config.RateLimitWindow, c.RateLimitWindow)
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, value timex.Duration) {
	if value.Duration > 0 {
		*dst = value.Duration
	}
}

func splitOrigins(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
