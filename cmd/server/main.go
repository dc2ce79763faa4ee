package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/adcontract/api/handler"
	"github.com/fastygo/adcontract/internal/config"
	"github.com/fastygo/adcontract/internal/infrastructure/buffer"
	"github.com/fastygo/adcontract/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/adcontract/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/adcontract/internal/infrastructure/redis"
	"github.com/fastygo/adcontract/internal/metrics"
	"github.com/fastygo/adcontract/internal/middleware"
	"github.com/fastygo/adcontract/internal/router"
	"github.com/fastygo/adcontract/internal/services"
	"github.com/fastygo/adcontract/internal/services/lifecycle"
	"github.com/fastygo/adcontract/pkg/clock"
	"github.com/fastygo/adcontract/pkg/httpcontext"
	"github.com/fastygo/adcontract/pkg/logger"
	"github.com/fastygo/adcontract/repository"
	"github.com/fastygo/adcontract/repository/memory"
	"github.com/fastygo/adcontract/repository/postgres"
	redisRepo "github.com/fastygo/adcontract/repository/redis"
	companyUC "github.com/fastygo/adcontract/usecase/company"
	contractUC "github.com/fastygo/adcontract/usecase/contract"
	productUC "github.com/fastygo/adcontract/usecase/product"
)

type repositories struct {
	companies repository.CompanyRepository
	products  repository.ProductRepository
	contracts repository.ContractRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Fields:   map[string]string{"service": cfg.AppName, "env": cfg.Environment},
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	var (
		pool  *pgxpool.Pool
		repos repositories
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		memory.Seed(store, time.Now().UTC())
		repos = repositories{
			companies: memory.NewCompanyRepository(store),
			products:  memory.NewProductRepository(store),
			contracts: memory.NewContractRepository(store),
		}
		zapLogger.Warn("using in-memory storage; data is lost on restart")
	default:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err = pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		repos = repositories{
			companies: postgres.NewCompanyRepository(pool),
			products:  postgres.NewProductRepository(pool),
			contracts: postgres.NewContractRepository(pool),
		}
	}

	var redisClient *goRedis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger).WithObserver(appMetrics)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		repos.contracts,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	var guard contractUC.DuplicateGuard = contractUC.NewStoreGuard(repos.contracts, cfg.Contracts.DuplicateWindow)
	if cfg.Contracts.DuplicateGuard == config.GuardRedis {
		guard = redisRepo.NewDuplicateGuard(redisClient, cfg.Contracts.DuplicateWindow)
	}

	contractUseCase := contractUC.New(contractUC.Deps{
		Companies: repos.companies,
		Products:  repos.products,
		Contracts: repos.contracts,
		Guard:     guard,
		Buffer:    services.NewBufferBridge(bufferProcessor),
		Clock:     clock.System{},
		Recorder:  appMetrics,
		Logger:    zapLogger,
	}, contractUC.Config{
		DefaultPageSize: cfg.Contracts.DefaultPageSize,
		MaxPageSize:     cfg.Contracts.MaxPageSize,
		Location:        cfg.Contracts.Location,
	})

	sweeper, err := services.NewStatusSweeper(contractUseCase, mon, cfg.Contracts.SweepSchedule, zapLogger)
	if err != nil {
		zapLogger.Fatal("invalid status sweep schedule", zap.Error(err))
	}
	sweeper.Start()
	manager.Register("status_sweeper", func(ctx context.Context) error {
		sweeper.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Contract: apiHandler.NewContractHandler(contractUseCase, ctxAdapter, zapLogger),
		Company:  apiHandler.NewCompanyHandler(companyUC.New(repos.companies, zapLogger), ctxAdapter, zapLogger),
		Product:  apiHandler.NewProductHandler(productUC.New(repos.products, zapLogger), ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	if cfg.HTTP.EnableMetrics {
		handlers.Metrics = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	r := router.New(handlers)

	server := &fasthttp.Server{
		Handler: middleware.Chain(r.Handler,
			middleware.RequestID(),
			middleware.RequestLogger(zapLogger, appMetrics),
			middleware.Recover(zapLogger),
		),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("duplicate_guard", cfg.Contracts.DuplicateGuard))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
