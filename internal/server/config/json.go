package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pmorel/cv-backend/internal/flagx"
	"github.com/pmorel/cv-backend/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. Duration fields use
// timex.Duration so both "24h" strings and integer nanoseconds parse.
// It is an intermediate DTO: after unmarshalling, set fields are copied
// into the runtime Config.
type JsonConfig struct {
	EndpointAddr      *string         `json:"endpoint_addr"`
	DatabaseDSN       *string         `json:"database_dsn"`
	AdminPasswordHash *string         `json:"admin_password_hash"`
	SessionTTL        *timex.Duration `json:"session_ttl"`
	SecureCookies     *bool           `json:"secure_cookies"`
	CORSOrigin        *string         `json:"cors_origin"`
	LogFormat         *string         `json:"log_format"`
	S3AccessKey       *string         `json:"s3_access_key"`
	S3SecretKey       *string         `json:"s3_secret_key"`
	S3Bucket          *string         `json:"s3_bucket"`
	S3Region          *string         `json:"s3_region"`
	S3BaseEndpoint    *string         `json:"s3_base_endpoint"`
	RedisAddr         *string         `json:"redis_addr"`
	CacheTTL          *timex.Duration `json:"cache_ttl"`
}

// parseJson overlays values from the JSON file named by -c/-config, if any.
// Absent fields keep their current (default) values. An unreadable or
// malformed file panics: a config file that exists must be valid.
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

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AdminPasswordHash, c.AdminPasswordHash)
	setString(&config.CORSOrigin, c.CORSOrigin)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RedisAddr, c.RedisAddr)

	if c.SessionTTL != nil {
		config.SessionTTL = time.Duration(c.SessionTTL.Duration)
	}
	if c.CacheTTL != nil {
		config.CacheTTL = time.Duration(c.CacheTTL.Duration)
	}
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
}
