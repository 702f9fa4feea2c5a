package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	"github.com/alemt19/ats-sub001/internal/app/migrate"
	httpx "github.com/alemt19/ats-sub001/internal/http"
	"github.com/alemt19/ats-sub001/internal/mailer"
	"github.com/alemt19/ats-sub001/internal/otp"
	"github.com/alemt19/ats-sub001/internal/repository/postgres"
	"github.com/alemt19/ats-sub001/internal/service/application"
	"github.com/alemt19/ats-sub001/internal/service/auth"
	"github.com/alemt19/ats-sub001/internal/service/candidate"
	"github.com/alemt19/ats-sub001/internal/service/company"
	"github.com/alemt19/ats-sub001/internal/service/dashboard"
	"github.com/alemt19/ats-sub001/internal/service/job"
	"github.com/alemt19/ats-sub001/internal/validation"
	"github.com/alemt19/ats-sub001/internal/ws"
	"github.com/alemt19/ats-sub001/pkg/config"
	"github.com/alemt19/ats-sub001/pkg/crypto"
	"github.com/alemt19/ats-sub001/pkg/logger"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("api", logger.ParseLevel(cfg.LogLevel))
	if err := config.ApplyOverlay(&cfg, cfg.ConfigFile); err != nil {
		log.Error("failed to load config overlay", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	if cfg.AutoMigrate {
		runner, err := migrate.New(cfg.DatabaseURL, cfg.MigrationsDir, log)
		if err != nil {
			log.Error("failed to configure migrations", "error", err)
			os.Exit(1)
		}
		if err := runner.Ensure(ctx); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	rdb := connectRedis(ctx, cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	var codeStore otp.Store = otp.NewMemoryStore()
	limiter := httpx.NewMemoryRateLimiter()
	if rdb != nil {
		codeStore = otp.NewRedisStore(rdb, "ats:otp:")
		limiter.Close()
		limiter = httpx.NewRedisRateLimiter(rdb, log)
	}
	codes, err := otp.NewManager(codeStore, otp.Config{
		Secret:         cfg.OTPSecret,
		Length:         cfg.OTPLength,
		TTL:            cfg.OTPTTL,
		MaxAttempts:    cfg.OTPMaxAttempts,
		ResendCooldown: cfg.OTPResendCooldown,
	})
	if err != nil {
		log.Error("invalid otp configuration", "error", err)
		os.Exit(1)
	}
	sealer, err := crypto.NewSealer(cfg.PIIEncryptionKey)
	if err != nil {
		log.Error("invalid encryption key", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	hub := ws.NewHub()
	defer hub.Close()
	mail := mailer.NewLogMailer(cfg.MailerFrom, cfg.MailerDelay, cfg.MailerPerSecond, log.With("component", "mailer"))

	services := httpx.Services{
		Auth:         auth.New(repo, codes, mail, log, cfg),
		Companies:    company.New(repo, log),
		Jobs:         job.New(repo, log),
		Candidates:   candidate.New(repo, sealer, log),
		Applications: application.New(repo, repo, repo, hub, log),
		Dashboard:    dashboard.New(repo, repo, cfg.DashboardMaxBuckets, log),
	}

	health := []httpx.HealthCheck{{Name: "database", Check: repo.Ping}}
	if rdb != nil {
		health = append(health, httpx.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	router := httpx.NewRouter(log, services, validation.New(validation.WithOTPLength(cfg.OTPLength)), hub, limiter, httpx.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		TrustedProxies: cfg.TrustedProxies,
		RateLimits: httpx.RateLimits{
			Login:     cfg.RateLimitLogin,
			Register:  cfg.RateLimitRegister,
			OTP:       cfg.RateLimitOTP,
			UserWrite: cfg.RateLimitUserWrite,
		},
		Health: health,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr, "env", cfg.Environment)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		services.Auth.Wait()
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// API then keeps rate limits and one-time codes in memory.
func connectRedis(ctx context.Context, cfg config.APIConfig, log *slog.Logger) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, using in-memory stores", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	log.Info("redis connected", "addr", addr)
	return client
}
