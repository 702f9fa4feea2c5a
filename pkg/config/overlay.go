package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Overlay lists the settings that may be overridden from a YAML file.
type Overlay struct {
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	TrustedProxies []string `yaml:"trusted_proxies"`
	RateLimits struct {
		Login     *int `yaml:"login"`
		Register  *int `yaml:"register"`
		OTP       *int `yaml:"otp"`
		UserWrite *int `yaml:"user_write"`
	} `yaml:"rate_limits"`
	OTP struct {
		Length          *int `yaml:"length"`
		TTLSeconds      *int `yaml:"ttl_seconds"`
		MaxAttempts     *int `yaml:"max_attempts"`
		CooldownSeconds *int `yaml:"resend_cooldown_seconds"`
	} `yaml:"otp"`
	Dashboard struct {
		MaxBuckets *int `yaml:"max_buckets"`
	} `yaml:"dashboard"`
	RequireVerifiedEmail *bool `yaml:"require_verified_email"`
}

// ApplyOverlay merges the YAML file at path into cfg. A missing file is ignored.
func ApplyOverlay(cfg *APIConfig, path string) error {
	path = strings.TrimSpace(path)
	if cfg == nil || path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config overlay: %w", err)
	}
	var ov Overlay
	if err := yaml.Unmarshal(raw, &ov); err != nil {
		return fmt.Errorf("parse config overlay %s: %w", path, err)
	}
	ov.apply(cfg)
	return nil
}

func (ov Overlay) apply(cfg *APIConfig) {
	if len(ov.CORS.AllowedOrigins) > 0 {
		cfg.CORSAllowedOrigins = append([]string(nil), ov.CORS.AllowedOrigins...)
	}
	if len(ov.TrustedProxies) > 0 {
		cfg.TrustedProxies = append([]string(nil), ov.TrustedProxies...)
	}
	setInt(&cfg.RateLimitLogin, ov.RateLimits.Login)
	setInt(&cfg.RateLimitRegister, ov.RateLimits.Register)
	setInt(&cfg.RateLimitOTP, ov.RateLimits.OTP)
	setInt(&cfg.RateLimitUserWrite, ov.RateLimits.UserWrite)
	setInt(&cfg.OTPLength, ov.OTP.Length)
	setInt(&cfg.OTPMaxAttempts, ov.OTP.MaxAttempts)
	setInt(&cfg.DashboardMaxBuckets, ov.Dashboard.MaxBuckets)
	if ov.OTP.TTLSeconds != nil {
		cfg.OTPTTL = secondsOf(*ov.OTP.TTLSeconds)
	}
	if ov.OTP.CooldownSeconds != nil {
		cfg.OTPResendCooldown = secondsOf(*ov.OTP.CooldownSeconds)
	}
	if ov.RequireVerifiedEmail != nil {
		cfg.RequireVerifiedEmail = *ov.RequireVerifiedEmail
	}
}

func setInt(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}

func secondsOf(n int) time.Duration {
	return time.Duration(n) * time.Second
}
