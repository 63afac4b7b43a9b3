package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/ceramica/backend/internal/application/catalog"
	ecommerceapp "github.com/ceramica/backend/internal/application/ecommerce"
	financeapp "github.com/ceramica/backend/internal/application/finance"
	inventoryapp "github.com/ceramica/backend/internal/application/inventory"
	notificationapp "github.com/ceramica/backend/internal/application/notification"
	recordsapp "github.com/ceramica/backend/internal/application/records"
	tasksapp "github.com/ceramica/backend/internal/application/tasks"
	ventasapp "github.com/ceramica/backend/internal/application/ventas"
	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/infrastructure/auth"
	"github.com/ceramica/backend/internal/infrastructure/cache"
	"github.com/ceramica/backend/internal/infrastructure/config"
	"github.com/ceramica/backend/internal/infrastructure/logger"
	"github.com/ceramica/backend/internal/infrastructure/migration"
	"github.com/ceramica/backend/internal/infrastructure/persistence"
	"github.com/ceramica/backend/internal/infrastructure/printing"
	"github.com/ceramica/backend/internal/infrastructure/storage"
	"github.com/ceramica/backend/internal/infrastructure/telemetry"
	"github.com/ceramica/backend/internal/interfaces/http/handler"
	"github.com/ceramica/backend/internal/interfaces/http/middleware"
	"github.com/ceramica/backend/internal/interfaces/http/router"
	"github.com/ceramica/backend/migrations"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	level, _ := logger.ParseLevel(cfg.Log.Level)
	log := logProvider.Bridge(baseLog, level)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Ceramica Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Profiling.SpanProfiles && profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if err := runMigrations(db, cfg, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis backs token revocation and idempotency keys. When it is
	// configured but unreachable the server still starts with in-process
	// stores, which only protect a single instance.
	var (
		redisClient *redis.Client
		blacklist   auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
		idemStore   cache.IdempotencyStore
	)
	if cfg.Redis.Enabled {
		redisClient, err = auth.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, falling back to in-memory stores", zap.Error(err))
		} else {
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
			blacklist = auth.NewRedisTokenBlacklist(redisClient)
		}
	}
	if cfg.Idempotency.Enabled {
		if redisClient != nil {
			idemStore = cache.NewRedisIdempotencyStore(redisClient, "ceramica:idem:")
		} else {
			idemStore = cache.NewInMemoryIdempotencyStore()
		}
	}

	inventoryMetrics, err := telemetry.NewInventoryMetrics(meterProvider.Meter("ceramica/inventory"))
	if err != nil {
		log.Fatal("Failed to register inventory metrics", zap.Error(err))
	}

	// Repositories, transaction scope and services
	repos := persistence.NewRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	allocator := inventoryapp.NewAllocator(log)
	allocator.SetMetrics(inventoryMetrics)

	produccionService := inventoryapp.NewProduccionService(
		repos.ProduccionRepo(), repos.MovementRepo(), repos.AllocationRepo(), scope, allocator, log,
	)
	embalajeService := inventoryapp.NewEmbalajeService(repos.EmbalajeRepo(), repos.MovementRepo(), scope, produccionService)
	embalajeService.SetMetrics(inventoryMetrics)

	attachmentService := recordsapp.NewAttachmentService(repos.AttachmentRepo(), scope)
	if cfg.Storage.Enabled {
		objectStore, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		bucketCtx, cancelBucket := context.WithTimeout(ctx, 10*time.Second)
		if err := objectStore.EnsureBucket(bucketCtx); err != nil {
			log.Warn("Object storage bucket check failed", zap.Error(err))
		}
		cancelBucket()
		attachmentService.SetPresigner(objectStore)
		log.Info("Object storage enabled", zap.String("bucket", objectStore.Bucket()))
	}

	quotationService := ventasapp.NewQuotationService(repos.QuotationRepo(), scope, log)
	pdfRenderer := printing.NewChromedpRenderer(printing.ChromedpConfig{
		ExecPath:  cfg.Printing.ChromePath,
		RemoteURL: cfg.Printing.RemoteURL,
		Timeout:   cfg.Printing.Timeout,
		NoSandbox: cfg.Printing.NoSandbox,
		Logger:    log,
	})
	quotationPrinter, err := printing.NewQuotationPrinter(pdfRenderer, printing.Company{
		Name:  cfg.Printing.CompanyName,
		RFC:   cfg.Printing.CompanyRFC,
		Phone: cfg.Printing.CompanyPhone,
	}, log)
	if err != nil {
		log.Fatal("Failed to load quotation templates", zap.Error(err))
	}
	quotationService.SetRenderer(quotationPrinter)

	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(blacklist, log),
		System:        handler.NewSystemHandler(cfg.App.Version, db.Ping, redisPing(redisClient)),
		Areas:         handler.NewAreaHandler(catalogapp.NewAreaService(repos.AreaRepo(), scope, log)),
		Tasks:         handler.NewTaskHandler(tasksapp.NewTaskService(repos.TaskRepo(), scope, log)),
		PersonalTasks: handler.NewPersonalTaskHandler(tasksapp.NewPersonalTaskService(repos.PersonalTaskRepo())),
		Projects:      handler.NewProjectHandler(tasksapp.NewProjectService(repos.ProjectRepo(), repos.TaskRepo(), scope)),
		Contacts:      handler.NewContactHandler(recordsapp.NewContactService(repos.ContactRepo(), scope)),
		Documents:     handler.NewDocumentHandler(recordsapp.NewDocumentService(repos.DocumentRepo(), scope)),
		Attachments:   handler.NewAttachmentHandler(attachmentService),
		LedgerUSD: handler.NewLedgerHandler(
			financeapp.NewLedgerService(repos.LedgerRepo(), repos.FacturaRepo(), scope), shared.CurrencyUSD),
		LedgerMXN: handler.NewLedgerHandler(
			financeapp.NewLedgerService(repos.LedgerRepo(), repos.FacturaRepo(), scope), shared.CurrencyMXN),
		Cotizaciones:  handler.NewCotizacionHandler(financeapp.NewCotizacionService(repos.CotizacionRepo())),
		Notifications: handler.NewNotificationHandler(notificationapp.NewService(repos.NotificationRepo())),
		Produccion:    handler.NewProduccionHandler(produccionService),
		Embalaje:      handler.NewEmbalajeHandler(embalajeService),
		Quotations:    handler.NewQuotationHandler(quotationService),
		Pedidos: handler.NewPedidoHandler(ventasapp.NewPedidoService(
			repos.PedidoRepo(), repos.AllocationRepo(), scope, allocator, log)),
		Kits: handler.NewKitHandler(ecommerceapp.NewKitService(
			repos.KitRepo(), repos.AllocationRepo(), scope, allocator, log)),
		EcommercePedidos: handler.NewEcommercePedidoHandler(ecommerceapp.NewPedidoService(
			repos.EcommercePedidoRepo(), scope, allocator, log)),
	}

	jobs, err := startJobs(ctx, cfg.Scheduler, produccionService, log)
	if err != nil {
		log.Fatal("Failed to start background jobs", zap.Error(err))
	}

	engine, err := newEngine(cfg, log, meterProvider, blacklist, idemStore, handlers)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Warn("Error stopping background jobs", zap.Error(err))
	}
	if err := pdfRenderer.Close(); err != nil {
		log.Warn("Error closing PDF renderer", zap.Error(err))
	}
	if idemStore != nil {
		if err := idemStore.Close(); err != nil {
			log.Warn("Error closing idempotency store", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Error closing Redis client", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing traces", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runMigrations applies pending schema migrations before serving
func runMigrations(db *persistence.Database, cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	migrator, err := migration.New(sqlDB, migrations.FS, cfg.Database.MigrationsPath, log)
	if err != nil {
		return err
	}
	// closing the migrator would close the shared pool
	return migrator.Up()
}

func redisPing(client *redis.Client) handler.PingFunc {
	if client == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// newEngine assembles the middleware chain and mounts every route
func newEngine(
	cfg *config.Config,
	log *zap.Logger,
	meterProvider *telemetry.MeterProvider,
	blacklist auth.TokenBlacklist,
	idemStore cache.IdempotencyStore,
	handlers router.Handlers,
) (*gin.Engine, error) {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter("ceramica/http"))
	if err != nil {
		return nil, err
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	secureCfg := middleware.DefaultSecurityConfig()
	secureCfg.HSTSEnabled = cfg.App.IsProduction()

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Recovery(),
		middleware.Tracing(cfg.Telemetry.ServiceName),
		httpMetrics,
		middleware.Profiling(cfg.Profiling.Enabled),
		middleware.SecureWithConfig(secureCfg),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	jwtService := auth.NewJWTService(cfg.JWT)
	jwtAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})

	router.RegisterHealth(engine, handlers.System)

	r := router.NewRouter(engine, router.WithMiddleware(jwtAuth, middleware.SpanAttributes()))
	guards := router.Guards{Admin: middleware.RequireRole(auth.RoleAdmin)}
	if idemStore != nil {
		guards.Idempotent = middleware.Idempotency(middleware.IdempotencyConfig{
			Store: idemStore,
			TTL:   cfg.Idempotency.TTL,
		})
	}
	for _, group := range router.APIGroups(handlers, guards) {
		r.Register(group)
	}
	r.Setup()

	log.Info("Routes registered", zap.Int("count", len(engine.Routes())))
	return engine, nil
}
