package config

import (
	"os"
	"time"
)

// parseEnv overlays values from environment variables. Unset variables keep
// the current value. Durations use time.ParseDuration syntax; bad values are
// ignored rather than crashing startup.
func parseEnv(config *Config) {
	envString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	envString(&config.EndpointAddr, "ADDRESS")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	envString(&config.CORSOrigin, "CORS_ORIGIN")
	envString(&config.LogFormat, "LOG_FORMAT")
	envString(&config.S3AccessKey, "S3_ACCESS_KEY")
	envString(&config.S3SecretKey, "S3_SECRET_KEY")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_ENDPOINT")
	envString(&config.RedisAddr, "REDIS_ADDR")

	if v, ok := os.LookupEnv("SESSION_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionTTL = d
		}
	}
	if v, ok := os.LookupEnv("CACHE_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.CacheTTL = d
		}
	}
	if v, ok := os.LookupEnv("SECURE_COOKIES"); ok {
		config.SecureCookies = v == "true" || v == "1"
	}
}
