package config

import (
	"ns2po_server/structs"
	"sync"
	"time"
)

var (
	configInstance *structs.Config
	configOnce     sync.Once
)

func GetConfig() *structs.Config {
	configOnce.Do(func() {
		configInstance = &structs.Config{
			Server: &structs.ServerConfig{
				AppName:        getEnvAsString("APP_NAME", "NS2PO_no_env"),
				Environment:    getEnvAsString("APP_ENV", "development"),
				Port:           getEnvAsString("APP_PORT", ":8083"),
				ReadTimeout:    getEnvAsTimeDuration("SERVER_READ_TIME_OUT", 15*time.Second),
				WriteTimeout:   getEnvAsTimeDuration("SERVER_WRITE_TIME_OUT", 15*time.Second),
				IdleTimeout:    getEnvAsTimeDuration("SERVER_IDLE_TIME_OUT", 60*time.Second),
				MaxHeaderBytes: getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20), // 1 MB
			},
			Cors: &structs.CorsConfig{
				AllowedOrigins:   getEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"localhost", "http://localhost:3000"}),
				AllowedMethods:   getEnvAsSlice("CORS_ALLOW_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
				AllowedHeaders:   getEnvAsSlice("CORS_ALLOW_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
				AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
				ExposedHeaders:   getEnvAsSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length", "Authorization"}),
				MaxAge:           getEnvAsInt("CORS_MAX_AGE", 300),
			},
			Database: &structs.DatabaseConfig{
				URL:          getEnvAsString("TURSO_DATABASE_URL", "file:ns2po.db?cache=shared"),
				AuthToken:    getEnvAsString("TURSO_AUTH_TOKEN", ""),
				MaxConns:     getEnvAsInt("DB_MAX_CONNS", 10),
				MaxIdleTime:  getEnvAsTimeDuration("DB_MAX_IDLE_TIME", 5*time.Minute),
				ReadTimeout:  getEnvAsTimeDuration("DB_READ_TIMEOUT", 5*time.Second),
				WriteTimeout: getEnvAsTimeDuration("DB_WRITE_TIMEOUT", 5*time.Second),
			},
			Cache: &structs.CacheConfig{
				Address:  getEnvAsString("REDIS_ADDRESS", "localhost:6379"),
				Username: getEnvAsString("REDIS_USERNAME", ""),
				Password: getEnvAsString("REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("REDIS_DB", 0),

				PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
				MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
				MaxIdleConns: getEnvAsInt("REDIS_MAX_IDLE_CONNS", 5),
				PoolTimeout:  getEnvAsTimeDuration("REDIS_POOL_TIMEOUT", 30*time.Second),
				IdleTimeout:  getEnvAsTimeDuration("REDIS_IDLE_TIMEOUT", 5*time.Minute),

				DialTimeout:  getEnvAsTimeDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
				ReadTimeout:  getEnvAsTimeDuration("REDIS_READ_TIMEOUT", 3*time.Second),
				WriteTimeout: getEnvAsTimeDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),

				MaxRetries:      getEnvAsInt("REDIS_MAX_RETRIES", 3),
				MinRetryBackoff: getEnvAsTimeDuration("REDIS_MIN_RETRY_BACKOFF", 100*time.Millisecond),
				MaxRetryBackoff: getEnvAsTimeDuration("REDIS_MAX_RETRY_BACKOFF", 2*time.Second),

				BundleListTTL:  getEnvAsTimeDuration("CACHE_BUNDLE_LIST_TTL", 5*time.Minute),
				BundleItemTTL:  getEnvAsTimeDuration("CACHE_BUNDLE_ITEM_TTL", 10*time.Minute),
				ProductListTTL: getEnvAsTimeDuration("CACHE_PRODUCT_LIST_TTL", 5*time.Minute),
			},
			Auth: &structs.AuthConfig{
				AccessTokenSecret: getEnvAsString("AUTH_ACCESS_TOKEN_SECRET", "default_access_secret"),
				AccessTokenExpiry: getEnvAsTimeDuration("AUTH_ACCESS_TOKEN_EXPIRY", 15*time.Minute),
				AdminEmail:        getEnvAsString("ADMIN_EMAIL", "admin@ns2po.ci"),
				AdminPasswordHash: getEnvAsString("ADMIN_PASSWORD_HASH", ""),
			},
			Airtable: &structs.AirtableConfig{
				APIKey:     getEnvAsString("AIRTABLE_API_KEY", ""),
				BaseID:     getEnvAsString("AIRTABLE_BASE_ID", ""),
				APIBaseURL: getEnvAsString("AIRTABLE_API_URL", "https://api.airtable.com/v0"),
				Timeout:    getEnvAsTimeDuration("AIRTABLE_TIMEOUT", 30*time.Second),
			},
			Cloudinary: &structs.CloudinaryConfig{
				CloudName: getEnvAsString("CLOUDINARY_CLOUD_NAME", ""),
				APIKey:    getEnvAsString("CLOUDINARY_API_KEY", ""),
				APISecret: getEnvAsString("CLOUDINARY_API_SECRET", ""),
				Folder:    getEnvAsString("CLOUDINARY_FOLDER", "ns2po/assets"),
			},
			Email: &structs.EmailConfig{
				ApiKey:       getEnvAsString("RESEND_API_KEY", ""),
				From:         getEnvAsString("EMAIL_FROM", "NS2PO <noreply@ns2po.ci>"),
				SupportEmail: getEnvAsString("EMAIL_SUPPORT", "contact@ns2po.ci"),
			},
			Sync: &structs.SyncConfig{
				BatchSize:         getEnvAsInt("SYNC_BATCH_SIZE", 10),
				UsageStatsDelay:   getEnvAsTimeDuration("SYNC_USAGE_STATS_DELAY", 200*time.Millisecond),
				InvalidationDelay: getEnvAsTimeDuration("SYNC_INVALIDATION_DELAY", 100*time.Millisecond),
				MaxConcurrent:     getEnvAsInt("SYNC_MAX_CONCURRENT", 5),
			},
			RateLimit: &structs.RateLimitConfig{
				Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),

				GeneralLimit:  getEnvAsInt("RATE_LIMIT_GENERAL", 120),
				GeneralWindow: getEnvAsTimeDuration("RATE_LIMIT_GENERAL_WINDOW", 1*time.Minute),

				AdminLimit:  getEnvAsInt("RATE_LIMIT_ADMIN", 30),
				AdminWindow: getEnvAsTimeDuration("RATE_LIMIT_ADMIN_WINDOW", 1*time.Minute),

				ContactLimit:  getEnvAsInt("RATE_LIMIT_CONTACT", 10),
				ContactWindow: getEnvAsTimeDuration("RATE_LIMIT_CONTACT_WINDOW", 1*time.Minute),

				ExpensiveLimit:  getEnvAsInt("RATE_LIMIT_EXPENSIVE", 60),
				ExpensiveWindow: getEnvAsTimeDuration("RATE_LIMIT_EXPENSIVE_WINDOW", 1*time.Minute),
			},
		}
	})
	return configInstance
}

func GetLogLevel() string {
	if GetConfig().Server.Environment == "production" {
		return "info"
	}
	return "debug"
}

func IsProduction() bool {
	return GetConfig().Server.Environment == "production"
}
