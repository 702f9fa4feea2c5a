package config

import (
	"time"

	"github.com/joho/godotenv"
)

// APIConfig holds runtime configuration for the ATS API service.
type APIConfig struct {
	Environment          string
	Addr                 string
	DatabaseURL          string
	MigrationsDir        string
	AutoMigrate          bool
	LogLevel             string
	JWTSecret            string
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration
	ResetTokenTTL        time.Duration
	PIIEncryptionKey     string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	OTPSecret            string
	OTPLength            int
	OTPTTL               time.Duration
	OTPMaxAttempts       int
	OTPResendCooldown    time.Duration
	MailerFrom           string
	MailerDelay          time.Duration
	MailerPerSecond      int
	RequireVerifiedEmail bool
	CORSAllowedOrigins   []string
	TrustedProxies       []string
	MaxBodyBytes         int64
	DashboardMaxBuckets  int
	RateLimitLogin       int
	RateLimitRegister    int
	RateLimitOTP         int
	RateLimitUserWrite   int
	ConfigFile           string
}

// LoadAPIConfig constructs an APIConfig from environment variables. Values found
// in a local .env file are loaded first and never override the real environment.
func LoadAPIConfig() APIConfig {
	_ = godotenv.Load(GetString("ENV_FILE", ".env"))

	return APIConfig{
		Environment:          GetString("APP_ENV", "development"),
		Addr:                 GetString("API_ADDR", ":4000"),
		DatabaseURL:          GetString("DATABASE_URL", "postgres://ats:ats@db:5432/ats?sslmode=disable"),
		MigrationsDir:        GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		AutoMigrate:          GetBool("AUTO_MIGRATE", true),
		LogLevel:             GetString("LOG_LEVEL", "info"),
		JWTSecret:            GetString("JWT_SECRET", "supersecuresecret"),
		AccessTokenTTL:       time.Duration(GetInt("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute,
		RefreshTokenTTL:      time.Duration(GetInt("REFRESH_TOKEN_TTL_HOURS", 24*7)) * time.Hour,
		ResetTokenTTL:        time.Duration(GetInt("RESET_TOKEN_TTL_MIN", 15)) * time.Minute,
		PIIEncryptionKey:     GetString("PII_ENCRYPTION_KEY", "supersecuresecret"),
		RedisAddr:            GetString("REDIS_ADDR", ""),
		RedisPassword:        GetString("REDIS_PASSWORD", ""),
		RedisDB:              GetInt("REDIS_DB", 0),
		OTPSecret:            GetString("OTP_SECRET", "supersecureotp"),
		OTPLength:            GetInt("OTP_LENGTH", 6),
		OTPTTL:               time.Duration(GetInt("OTP_TTL_SECONDS", 600)) * time.Second,
		OTPMaxAttempts:       GetInt("OTP_MAX_ATTEMPTS", 5),
		OTPResendCooldown:    time.Duration(GetInt("OTP_RESEND_COOLDOWN_SECONDS", 60)) * time.Second,
		MailerFrom:           GetString("MAILER_FROM", "no-reply@ats.local"),
		MailerDelay:          time.Duration(GetInt("MAILER_DELAY_MS", 1500)) * time.Millisecond,
		MailerPerSecond:      GetInt("MAILER_PER_SECOND", 5),
		RequireVerifiedEmail: GetBool("REQUIRE_VERIFIED_EMAIL", false),
		CORSAllowedOrigins:   GetList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		TrustedProxies:       GetList("TRUSTED_PROXIES", nil),
		MaxBodyBytes:         int64(GetInt("MAX_BODY_BYTES", 1<<20)),
		DashboardMaxBuckets:  GetInt("DASHBOARD_MAX_BUCKETS", 400),
		RateLimitLogin:       GetInt("RATE_LIMIT_LOGIN", 12),
		RateLimitRegister:    GetInt("RATE_LIMIT_REGISTER", 5),
		RateLimitOTP:         GetInt("RATE_LIMIT_OTP", 6),
		RateLimitUserWrite:   GetInt("RATE_LIMIT_USER_WRITE", 60),
		ConfigFile:           GetString("ATS_CONFIG_FILE", ""),
	}
}
