package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// EnvDevelopment enables development-only conveniences such as the OTP bypass code.
	EnvDevelopment = "development"
	// EnvProduction is the default environment.
	EnvProduction = "production"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string
	ServerPort string

	DBDriver    string
	DatabaseDSN string
	ResetDB     bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret   string
	SwaggerHost string

	UploadDir      string
	MaxUploadBytes int64

	VoteTimeout      time.Duration
	RequestTimeout   time.Duration
	BroadcastTimeout time.Duration
	ResultsCacheTTL  time.Duration
	BroadcastChannel string

	RequirePhoneVerification bool
	OTPDevBypassCode         string
	OTPRateLimit             float64

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// Load builds Config from environment with sensible defaults. A .env file in the
// working directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:        getEnv("APP_ENV", EnvProduction),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBDriver:    getEnv("DB_DRIVER", "mysql"),
		DatabaseDSN: getEnv("DATABASE_DSN", getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/campusvote?charset=utf8mb4&parseTime=True&loc=UTC")),
		ResetDB:     getEnvBool("RESET_DB", false),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),

		UploadDir:      getEnv("UPLOAD_DIR", "public/uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),

		VoteTimeout:      getEnvDuration("VOTE_TIMEOUT", 5*time.Second),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		BroadcastTimeout: getEnvDuration("BROADCAST_TIMEOUT", 2*time.Second),
		ResultsCacheTTL:  getEnvDuration("RESULTS_CACHE_TTL", 10*time.Second),
		BroadcastChannel: getEnv("BROADCAST_CHANNEL", "campusvote:vote-updated"),

		RequirePhoneVerification: getEnvBool("REQUIRE_PHONE_VERIFICATION", false),
		OTPDevBypassCode:         os.Getenv("OTP_DEV_BYPASS_CODE"),
		OTPRateLimit:             getEnvFloat("OTP_RATE_LIMIT", 1),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
	}
}

// IsDevelopment reports whether development-only behaviour is allowed.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// OTPBypassCode returns the bypass code only when it may be honoured.
func (c *Config) OTPBypassCode() string {
	if !c.IsDevelopment() {
		return ""
	}
	return c.OTPDevBypassCode
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
