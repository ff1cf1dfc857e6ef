package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string `yaml:"app_name"`
	Env     string `yaml:"env"` // development, staging, production
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`

	// Remote API and moderation service
	APIBaseURL     string        `yaml:"api_base_url"`
	AIBaseURL      string        `yaml:"ai_base_url"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	SyncTimeout    time.Duration `yaml:"sync_timeout"`
	ProfileLookups int           `yaml:"profile_lookups"` // max concurrent author lookups per load

	// Wallet / chain
	WalletKeypairPath string        `yaml:"wallet_keypair_path"`
	WalletTimeout     time.Duration `yaml:"wallet_timeout"`
	SolanaRPCURL      string        `yaml:"solana_rpc_url"`
	SolanaProgramID   string        `yaml:"solana_program_id"`

	// Local persisted cache: "redis" or "memory"
	CacheDriver   string `yaml:"cache_driver"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	CachePrefix   string `yaml:"cache_prefix"`

	// Google Cloud Storage (post images)
	GCSBucket              string `yaml:"gcs_bucket"`
	GCSCredentialsJSONPath string `yaml:"gcs_credentials_json"` // optional; if empty, Application Default Credentials are used

	// JWT for the local UI session cookie
	JWTAccessSecret string        `yaml:"jwt_access_secret"`
	AccessTTL       time.Duration `yaml:"access_ttl"`

	// Cookies
	CookieDomain string `yaml:"cookie_domain"`
	CookieSecure bool   `yaml:"cookie_secure"`

	// CORS
	CORSAllowedOrigins string `yaml:"cors_allowed_origins"` // comma-separated

	// RabbitMQ notification fan-out (empty URL disables it)
	RabbitMQURL               string `yaml:"rabbitmq_url"`
	RabbitMQNotificationQueue string `yaml:"rabbitmq_notification_queue"`

	// Elasticsearch feed index (empty addrs disables it)
	ElasticsearchAddrs string `yaml:"elasticsearch_addrs"` // comma-separated
	ElasticsearchUser  string `yaml:"elasticsearch_username"`
	ElasticsearchPass  string `yaml:"elasticsearch_password"`
	ESPostsIndex       string `yaml:"es_posts_index"`

	// Debug metrics (/api/debug/vars)
	DebugMetricsEnabled bool `yaml:"debug_metrics_enabled"`

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool `yaml:"http_log_enabled"`
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables.
// If CONFIG_FILE points at a YAML file, values present there override the environment.
func Load() *Config {
	cfg := &Config{
		AppName: getenv("APP_NAME", "vortex-feed"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8787"),
		GinMode: getenv("GIN_MODE", "release"),

		APIBaseURL:     getenv("API_BASE_URL", "http://localhost:8000"),
		AIBaseURL:      getenv("AI_BASE_URL", "http://localhost:8000"),
		HTTPTimeout:    getdur("HTTP_TIMEOUT", 10*time.Second),
		SyncTimeout:    getdur("SYNC_TIMEOUT", 15*time.Second),
		ProfileLookups: getint("PROFILE_LOOKUPS", 8),

		WalletKeypairPath: getenv("WALLET_KEYPAIR", ""),
		WalletTimeout:     getdur("WALLET_TIMEOUT", 30*time.Second),
		SolanaRPCURL:      getenv("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
		SolanaProgramID:   getenv("SOLANA_PROGRAM_ID", "7FM2ia6Q4E2RQpDEtafeuVLc8BTK1FRRUzSQpHpU7VDb"),

		CacheDriver:   getenv("CACHE_DRIVER", "redis"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),
		CachePrefix:   getenv("CACHE_PREFIX", ""),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		JWTAccessSecret: getenv("JWT_ACCESS_SECRET", "devaccesssecret"),
		AccessTTL:       getdur("JWT_ACCESS_TTL", 24*time.Hour),

		CookieDomain: getenv("COOKIE_DOMAIN", "localhost"),
		CookieSecure: getbool("COOKIE_SECURE", false),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		RabbitMQURL:               getenv("RABBITMQ_URL", ""),
		RabbitMQNotificationQueue: getenv("RABBITMQ_NOTIFICATION_QUEUE", "notifications"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESPostsIndex:       getenv("ES_POSTS_INDEX", "posts"),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", true),
		HTTPLogEnabled:      getbool("HTTP_LOG_ENABLED", false),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlay(path); err != nil {
			log.Printf("ignoring config file %s: %v", path, err)
		}
	}
	return cfg
}

// overlay decodes a YAML file on top of the already loaded values.
// Keys absent from the file keep their current value.
func (c *Config) overlay(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
