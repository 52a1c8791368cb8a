package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/ais-api/api/swagger"
	"github.com/noah-isme/ais-api/internal/handler"
	"github.com/noah-isme/ais-api/internal/middleware"
	"github.com/noah-isme/ais-api/internal/models"
	"github.com/noah-isme/ais-api/internal/repository"
	"github.com/noah-isme/ais-api/internal/service"
	"github.com/noah-isme/ais-api/pkg/cache"
	"github.com/noah-isme/ais-api/pkg/config"
	"github.com/noah-isme/ais-api/pkg/database"
	"github.com/noah-isme/ais-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ais-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ais-api/pkg/middleware/requestid"
)

// @title AIS Tutor API
// @version 1.0.0
// @description Scheduling assistant for private tutors: slot ranking, conflict-aware booking and client management
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Ranking.WeightsCacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	slotRequestRepo := repository.NewSlotRequestRepository(db)
	slotWeightRepo := repository.NewSlotWeightRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	}, logr)

	weightSvc := service.NewSlotWeightService(slotWeightRepo, cacheRepo, cfg.Ranking.WeightsCacheTTL, metricsSvc, validate, logr)
	rankingSvc := service.NewSlotRankingService(lessonRepo, clientRepo, weightSvc, cfg.Ranking.MaxProposedSlots, validate, logr)
	bookingSvc := service.NewLessonBookingService(lessonRepo, clientRepo, validate, logr)
	clientSvc := service.NewClientService(clientRepo, validate, logr)
	lessonSvc := service.NewLessonService(lessonRepo, bookingSvc, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, clientRepo, validate, logr)
	slotRequestSvc := service.NewSlotRequestService(slotRequestRepo, clientRepo, bookingSvc, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var auditTrail *service.AuditTrailService
	if cfg.Audit.Enabled {
		auditTrail = service.NewAuditTrailService(auditLogRepo, service.AuditTrailConfig{
			Workers:    cfg.Audit.Workers,
			BufferSize: cfg.Audit.BufferSize,
		}, logr)
		auditTrail.Start(ctx)
		defer auditTrail.Stop()
	}

	rankingHandler := handler.NewSlotRankingHandler(rankingSvc, bookingSvc, metricsSvc)
	weightHandler := handler.NewSlotWeightHandler(weightSvc)
	clientHandler := handler.NewClientHandler(clientSvc)
	lessonHandler := handler.NewLessonHandler(lessonSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	slotRequestHandler := handler.NewSlotRequestHandler(slotRequestSvc)
	systemHandler := handler.NewSystemHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", systemHandler.Health)
	r.GET("/ready", systemHandler.Ready)
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))

	slots := api.Group("/slots")
	{
		slots.POST("/rank", rankingHandler.Rank)
		slots.POST("/select", middleware.Audit(auditTrail, "book", "lesson"), rankingHandler.Select)
		slots.POST("/replace", middleware.Audit(auditTrail, "replace", "lesson"), rankingHandler.Replace)

		slots.GET("/weights", weightHandler.Get)
		slots.PUT("/weights", middleware.Audit(auditTrail, "update", "slot_weights"), weightHandler.Update)
		slots.DELETE("/weights", middleware.Audit(auditTrail, "reset", "slot_weights"), weightHandler.Delete)
		slots.GET("/weights/all", middleware.RequireRoles(models.RoleAdmin), weightHandler.ListAll)
	}

	clients := api.Group("/clients")
	{
		clients.GET("", clientHandler.List)
		clients.POST("", middleware.Audit(auditTrail, "create", "client"), clientHandler.Create)
		clients.GET("/:id", clientHandler.Get)
		clients.PUT("/:id", middleware.Audit(auditTrail, "update", "client"), clientHandler.Update)
		clients.DELETE("/:id", middleware.Audit(auditTrail, "delete", "client"), clientHandler.Delete)
	}

	lessons := api.Group("/lessons")
	{
		lessons.GET("", lessonHandler.List)
		lessons.POST("", middleware.Audit(auditTrail, "create", "lesson"), lessonHandler.Create)
		lessons.GET("/:id", lessonHandler.Get)
		lessons.PUT("/:id", middleware.Audit(auditTrail, "update", "lesson"), lessonHandler.Update)
		lessons.DELETE("/:id", middleware.Audit(auditTrail, "delete", "lesson"), lessonHandler.Delete)
	}

	payments := api.Group("/payments")
	{
		payments.GET("", paymentHandler.List)
		payments.GET("/summary", paymentHandler.Summary)
		payments.POST("", middleware.Audit(auditTrail, "create", "payment"), paymentHandler.Create)
		payments.GET("/:id", paymentHandler.Get)
		payments.PUT("/:id", middleware.Audit(auditTrail, "update", "payment"), paymentHandler.Update)
		payments.DELETE("/:id", middleware.Audit(auditTrail, "delete", "payment"), paymentHandler.Delete)
	}

	slotRequests := api.Group("/slot-requests")
	{
		slotRequests.GET("", slotRequestHandler.List)
		slotRequests.POST("", middleware.Audit(auditTrail, "create", "slot_request"), slotRequestHandler.Create)
		slotRequests.GET("/:id", slotRequestHandler.Get)
		slotRequests.POST("/:id/accept", middleware.Audit(auditTrail, "accept", "slot_request"), slotRequestHandler.Accept)
		slotRequests.POST("/:id/reject", middleware.Audit(auditTrail, "reject", "slot_request"), slotRequestHandler.Reject)
		slotRequests.DELETE("/:id", middleware.Audit(auditTrail, "delete", "slot_request"), slotRequestHandler.Delete)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
