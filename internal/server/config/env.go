package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first if present; real environment
// variables win over the file. Duration variables are integers in minutes.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setMinutes := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			if minutes, err := strconv.Atoi(v); err == nil {
				*dst = time.Duration(minutes) * time.Minute
			}
		}
	}

	setString("ADDRESS", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setMinutes("ACCESS_TOKEN_VALIDITY_MINUTES", &config.AccessTokenValidityDuration)
	setMinutes("REFRESH_TOKEN_VALIDITY_MINUTES", &config.RefreshTokenValidityDuration)
	setString("S3_ROOT_USER", &config.S3RootUser)
	setString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
}
