package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/docs"
	"github.com/Sooraj-Rao/college-resume-project/internal/ai"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/handlers"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/routes"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/analytics"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/feedback"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/otp"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/resume"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/user"
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/cache"
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/geo"
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/mail"
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/pdf"
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/persistence/postgres/connection"
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/persistence/postgres/migrations"
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/scheduler"
	"github.com/Sooraj-Rao/college-resume-project/internal/infrastructure/storage"
	"github.com/Sooraj-Rao/college-resume-project/pkg/config"
	"github.com/Sooraj-Rao/college-resume-project/pkg/logger"
	"github.com/Sooraj-Rao/college-resume-project/pkg/security/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// @title           ResumeHub API
// @version         1.0
// @description     Resume hosting with share links, viewer analytics and AI feedback.

// @host      localhost:5000
// @BasePath

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	isDevelopment := cfg.Server.Mode != "production"
	log.Info("Configuration loaded", zap.String("mode", cfg.Server.Mode))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if isDevelopment {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = os.Stdout

	// Persistence
	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sessionsInPostgres := cfg.Analytics.Driver != "mongo"
	if err := migrations.AutoMigrate(db, log.Logger, migrations.Options{SessionsInPostgres: sessionsInPostgres}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	sessionRepo, closeSessions := setupSessionRepository(ctx, cfg, db, log)
	defer closeSessions()

	// Redis is optional: without it dashboards are not cached, rate limits
	// are per process and the live feed stays in process.
	var redisClient *cache.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cache.NewConfigFromEnv(cfg))
		if err != nil {
			log.Warn("Redis unavailable, continuing without it", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var limiter auth.RateLimiter
	if redisClient != nil {
		limiter = auth.NewRedisRateLimiter(redisClient.GetClient(), time.Minute, int64(cfg.Auth.RateLimitPerMinute))
	} else {
		limiter = auth.NewMemoryRateLimiter(time.Minute, int64(cfg.Auth.RateLimitPerMinute))
	}
	trackLimiter := limiter.WithLimit(int64(cfg.Analytics.TrackRatePerMin), time.Minute)

	live := SetupLiveSystem(redisClient, cfg.Analytics.LiveChannel, log, isDevelopment)
	defer live.Shutdown()

	// Infrastructure adapters
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	locator, err := geo.Open(cfg.Analytics.GeoIPDatabase)
	if err != nil {
		log.Warn("GeoIP database unavailable, using default locations", zap.Error(err))
		locator, _ = geo.Open("")
	}
	defer locator.Close()

	var sender otp.Sender
	if cfg.Mail.Enabled() {
		sender = mail.NewMailer(cfg.Mail, cfg.Auth.OTPExpiryMinutes)
	} else {
		log.Warn("SMTP not configured, OTP codes will only be logged")
	}

	aiClient, err := ai.NewClient(cfg.AI)
	if err != nil {
		log.Fatal("Failed to initialize AI client", zap.Error(err))
	}

	// Repositories and services
	userRepo := user.NewRepository(db)
	resumeRepo := resume.NewRepository(db)
	otpRepo := otp.NewRepository(db)

	analyticsService := analytics.NewService(sessionRepo, resumeRepo, locator, live.Notifier)
	var dashboards resume.DashboardInvalidator
	if redisClient != nil {
		dashboards = redisClient
	}
	resumeService := resume.NewService(resumeRepo, store, analyticsService, dashboards, resume.Config{
		MaxFileBytes:  cfg.Storage.MaxFileBytes,
		PublicBaseURL: cfg.Client.PublicBaseURL,
	})
	userService := user.NewService(userRepo, resumeService)
	otpService := otp.NewService(otpRepo, sender, otp.Config{
		TTL:         time.Duration(cfg.Auth.OTPExpiryMinutes) * time.Minute,
		MaxAttempts: cfg.Auth.OTPMaxAttempts,
	})
	feedbackService := feedback.NewService(resumeService, pdf.NewExtractor(), aiClient)

	otpScheduler := scheduler.NewScheduler(otpService, log, 0)
	otpScheduler.Start(ctx)
	defer otpScheduler.Stop()

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.NewTracingMiddleware(log).TraceRequest())
	router.Use(middleware.NewMetricsMiddleware().CollectMetrics())
	router.Use(cors.New(corsConfig(cfg.CORS)))
	router.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPathsRegexs([]string{`.*/(file|download)$`, `^/api/analytics/live$`}),
	))
	if len(cfg.Server.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies", zap.Error(err))
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Swagger.Enabled {
		if cfg.Swagger.Title != "" {
			docs.SwaggerInfo.Title = cfg.Swagger.Title
		}
		if cfg.Swagger.Version != "" {
			docs.SwaggerInfo.Version = cfg.Swagger.Version
		}
		if cfg.Swagger.Host != "" {
			docs.SwaggerInfo.Host = cfg.Swagger.Host
		}
		docs.SwaggerInfo.BasePath = cfg.Swagger.BasePath
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		log.Info("Registered swagger route at /swagger/*")
	}

	var cacheProbe handlers.CacheProbe
	if redisClient != nil {
		cacheProbe = redisClient
	}
	routes.SetupHealthRoutes(router, handlers.NewHealthHandler(db, cacheProbe))

	validation := middleware.NewValidationMiddleware()
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, userService)
	rateLimit := middleware.RateLimitMiddleware(limiter)
	cacheHandler := middleware.NewCacheMiddleware(redisClient, cfg.Analytics.DashboardTTL).CacheResponse()
	aiBreaker := middleware.NewCircuitBreaker("ai-feedback", middleware.CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 1,
		Timeout:          30 * time.Second,
	})

	authHandler := handlers.NewAuthHandler(userService, otpService, handlers.AuthConfig{
		JWTSecret:                cfg.Auth.JWTSecret,
		JWTExpiryHours:           cfg.Auth.JWTExpiryHours,
		RequireEmailVerification: cfg.Auth.RequireEmailVerification,
	})
	resumeHandler := handlers.NewResumeHandler(resumeService, cfg.Storage.MaxFileBytes)
	publicHandler := handlers.NewPublicHandler(resumeService, analyticsService, cfg.Auth.JWTSecret)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, live.Source, cfg.Analytics.LiveChannel, cfg.Auth.JWTSecret, cfg.CORS.AllowedOrigins)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	adminHandler := handlers.NewAdminHandler(userService, resumeService, analyticsService, handlers.AdminConfig{
		Email:          cfg.Admin.Email,
		Password:       cfg.Admin.Password,
		JWTSecret:      cfg.Auth.JWTSecret,
		JWTExpiryHours: cfg.Admin.JWTExpiryHours,
	})

	routes.NewAuthRoutes(authHandler, authMiddleware, rateLimit, validation).RegisterRoutes(router)
	log.Info("Registered auth routes at /api/auth")

	routes.NewResumeRoutes(resumeHandler, publicHandler, authMiddleware, middleware.RateLimitMiddleware(trackLimiter), validation).RegisterRoutes(router)
	log.Info("Registered resume routes at /api/resumes")

	api := router.Group("/api")
	routes.NewAnalyticsRoutes(analyticsHandler, authMiddleware, cacheHandler, validation).Register(api)
	log.Info("Registered analytics routes at /api/analytics")

	routes.NewAIRoutes(feedbackHandler, authMiddleware, aiBreaker, validation).Register(api)
	log.Info("Registered AI routes at /api/ai", zap.String("provider", string(aiClient.Provider())))

	routes.NewAdminRoutes(adminHandler, cfg.Auth.JWTSecret, rateLimit, validation).RegisterRoutes(router)
	log.Info("Registered admin routes at /api/admin")

	if routes.SetupStaticRoutes(router, cfg.Client.StaticDir) {
		log.Info("Serving client build", zap.String("dir", cfg.Client.StaticDir))
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:     c.AllowedMethods,
		AllowHeaders:     append(c.AllowedHeaders, "Accept-Encoding", "X-Forwarded-For", "X-Real-IP"),
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID", "X-Cache", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: c.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(c.AllowedOrigins) == 0 || (len(c.AllowedOrigins) == 1 && c.AllowedOrigins[0] == "*") {
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cc
}

// setupSessionRepository returns the analytics session store named by
// analytics.driver and a func that releases it.
func setupSessionRepository(ctx context.Context, cfg *config.Config, db *connection.Database, log *logger.Logger) (analytics.Repository, func()) {
	if cfg.Analytics.Driver != "mongo" {
		return analytics.NewPostgresRepository(db), func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", zap.Error(err))
	}

	repo, err := analytics.NewMongoRepository(connectCtx, client.Database(cfg.Mongo.Database))
	if err != nil {
		log.Fatal("Failed to prepare analytics collection", zap.Error(err))
	}
	log.Info("Analytics sessions stored in MongoDB", zap.String("database", cfg.Mongo.Database))

	return repo, func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}
}
