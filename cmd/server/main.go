// Command server starts the career readiness HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/career-readiness/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/career-readiness/internal/adapter/ai/stub"
	cachemem "github.com/fairyhunter13/career-readiness/internal/adapter/cache/memory"
	cacheredis "github.com/fairyhunter13/career-readiness/internal/adapter/cache/redis"
	httpserver "github.com/fairyhunter13/career-readiness/internal/adapter/httpserver"
	"github.com/fairyhunter13/career-readiness/internal/adapter/observability"
	"github.com/fairyhunter13/career-readiness/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/career-readiness/internal/adapter/repo/memory"
	"github.com/fairyhunter13/career-readiness/internal/adapter/repo/postgres"
	tikaext "github.com/fairyhunter13/career-readiness/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/career-readiness/internal/app"
	"github.com/fairyhunter13/career-readiness/internal/config"
	"github.com/fairyhunter13/career-readiness/internal/dataset"
	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/interview"
	"github.com/fairyhunter13/career-readiness/internal/service/ratelimiter"
	"github.com/fairyhunter13/career-readiness/internal/usecase"
	"github.com/fairyhunter13/career-readiness/pkg/randx"
)

type repositories struct {
	interviews    domain.InterviewRepository
	tests         domain.TechnicalTestRepository
	communication domain.CommunicationRepository
	ats           domain.ATSRepository
	activity      domain.ActivityRepository
	progress      domain.ProgressRepository
}

func memoryRepositories() repositories {
	return repositories{
		interviews:    memory.NewInterviewRepo(),
		tests:         memory.NewTechnicalTestRepo(),
		communication: memory.NewCommunicationRepo(),
		ats:           memory.NewATSRepo(),
		activity:      memory.NewActivityRepo(),
		progress:      memory.NewProgressRepo(),
	}
}

func postgresRepositories(pool *pgxpool.Pool) repositories {
	return repositories{
		interviews:    postgres.NewInterviewRepo(pool),
		tests:         postgres.NewTechnicalTestRepo(pool),
		communication: postgres.NewCommunicationRepo(pool),
		ats:           postgres.NewATSRepo(pool),
		activity:      postgres.NewActivityRepo(pool),
		progress:      postgres.NewProgressRepo(pool),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := dataset.Load(cfg.DatasetDir)
	if err != nil {
		slog.Error("dataset load failed", slog.String("dir", cfg.DatasetDir), slog.Any("error", err))
		os.Exit(1)
	}

	// Persistence
	var (
		repos  repositories
		dbPool *pgxpool.Pool
	)
	if cfg.UseMemoryStore() {
		repos = memoryRepositories()
		slog.Warn("using in-memory store; data is lost on restart")
	} else {
		dbPool, err = postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			slog.Error("db connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer dbPool.Close()
		if err := postgres.EnsureSchema(ctx, dbPool); err != nil {
			slog.Error("db schema failed", slog.Any("error", err))
			os.Exit(1)
		}
		repos = postgresRepositories(dbPool)

		if cfg.DataRetentionDays > 0 {
			cleanupSvc := postgres.NewCleanupService(dbPool, cfg.DataRetentionDays)
			go cleanupSvc.RunPeriodic(ctx, cfg.CleanupInterval)
			slog.Info("cleanup service started", slog.Int("retention_days", cfg.DataRetentionDays), slog.Duration("interval", cfg.CleanupInterval))
		}
	}

	// Quick-test cache and limiter
	var (
		rdb     *goredis.Client
		cache   domain.QuickTestCache
		limiter usecase.Limiter
	)
	bucket := ratelimiter.NewBucketConfigFromPerHour(cfg.QuickTestPerHour)
	if cfg.RedisURL != "" {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid redis url", slog.Any("error", err))
			os.Exit(1)
		}
		rdb = goredis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		cache = cacheredis.NewQuickTestCache(rdb)
		limiter = ratelimiter.NewRedisLuaLimiter(rdb, "quicktest", bucket)
	} else {
		cache = cachemem.NewQuickTestCache()
		limiter = ratelimiter.NewMemoryLimiter(bucket)
		slog.Warn("REDIS_URL not set; quick tests are cached in process")
	}

	// Generative content
	var generator domain.ContentGenerator
	if cfg.GeminiAPIKey != "" {
		g, err := gemini.New(ctx, cfg)
		if err != nil {
			slog.Error("gemini client failed", slog.Any("error", err))
			os.Exit(1)
		}
		generator = g
		slog.Info("gemini generator initialized", slog.String("model", cfg.GeminiModel))
	} else {
		generator = stub.New()
		slog.Warn("GEMINI_API_KEY not set; quick tests use canned questions")
	}

	// Activity events
	var publisher domain.ActivityPublisher = redpanda.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := redpanda.NewActivityPublisher(ctx, cfg.KafkaBrokers, cfg.ActivityTopic)
		if err != nil {
			slog.Error("redpanda producer connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = p.Close() }()
		publisher = p
	}

	rnd := randx.New(cfg.RandomSeed)

	// Usecases
	act := usecase.NewActivityLogger(repos.activity, publisher)
	prog := usecase.NewProgressService(repos.progress)
	svc := httpserver.Services{
		Interviews:    usecase.NewInterviewService(repos.interviews, interview.NewMachine(repos.interviews, store, rnd), act, prog),
		Tests:         usecase.NewTechnicalTestService(repos.tests, store, rnd, act, prog),
		Communication: usecase.NewCommunicationService(repos.communication, store, act, prog),
		Resumes:       usecase.NewResumeService(repos.ats, store, act, prog),
		QuickTests:    usecase.NewQuickTestService(generator, cache, limiter, cfg.QuickTestTTL, act),
		Progress:      prog,
		Activity:      act,
	}

	ext := tikaext.New(cfg.TikaURL)

	var (
		pinger  app.Pinger
		redisCl app.RedisClient
	)
	if dbPool != nil {
		pinger = dbPool
	}
	if rdb != nil {
		redisCl = rdb
	}
	checks := app.BuildReadinessChecks(cfg, pinger, redisCl, ext)

	srv := httpserver.NewServer(cfg, svc, ext, checks...)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.String("store", cfg.StoreBackend))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
	stop()
}
