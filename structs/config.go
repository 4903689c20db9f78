package structs

import "time"

type Config struct {
	Server     *ServerConfig
	Cors       *CorsConfig
	Database   *DatabaseConfig
	Cache      *CacheConfig
	Auth       *AuthConfig
	Airtable   *AirtableConfig
	Cloudinary *CloudinaryConfig
	Email      *EmailConfig
	Sync       *SyncConfig
	RateLimit  *RateLimitConfig
}

type ServerConfig struct {
	AppName        string        // NS2PO
	Environment    string        // development, production
	Port           string        // :8083
	ReadTimeout    time.Duration // in seconds
	WriteTimeout   time.Duration // in seconds
	IdleTimeout    time.Duration // in seconds
	MaxHeaderBytes int           // in bytes
}

type CorsConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DatabaseConfig describes the Turso/SQLite connection. URL is the DSN
// handed to the sqlite driver, e.g. "file:ns2po.db?cache=shared".
type DatabaseConfig struct {
	URL          string
	AuthToken    string
	MaxConns     int
	MaxIdleTime  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type CacheConfig struct {
	Address  string
	Username string
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int
	MaxIdleConns int
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration

	BundleListTTL  time.Duration
	BundleItemTTL  time.Duration
	ProductListTTL time.Duration
}

type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	AdminEmail        string
	AdminPasswordHash string // bcrypt
}

type AirtableConfig struct {
	APIKey     string
	BaseID     string
	APIBaseURL string
	Timeout    time.Duration
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type EmailConfig struct {
	ApiKey       string
	From         string
	SupportEmail string
}

type SyncConfig struct {
	BatchSize         int
	UsageStatsDelay   time.Duration // inter-batch delay on the reverse path
	InvalidationDelay time.Duration // inter-chunk delay on batch invalidation
	MaxConcurrent     int
}

type RateLimitConfig struct {
	Enabled bool

	GeneralLimit  int
	GeneralWindow time.Duration

	AdminLimit  int
	AdminWindow time.Duration

	ContactLimit  int
	ContactWindow time.Duration

	ExpensiveLimit  int
	ExpensiveWindow time.Duration
}
