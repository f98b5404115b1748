package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/rajat7300609030-maker/education-hills-api/api/swagger"
	"github.com/rajat7300609030-maker/education-hills-api/internal/handler"
	"github.com/rajat7300609030-maker/education-hills-api/internal/middleware"
	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	"github.com/rajat7300609030-maker/education-hills-api/internal/repository"
	"github.com/rajat7300609030-maker/education-hills-api/internal/service"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/cache"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/config"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/database"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/jobs"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/logger"
	corsmiddleware "github.com/rajat7300609030-maker/education-hills-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rajat7300609030-maker/education-hills-api/pkg/middleware/requestid"
)

// @title Education Hills Fee API
// @version 1.0.0
// @description Session-scoped fee ledger, recycle bin and session management for a school office.
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	defer cacheRepo.Close() //nolint:errcheck

	// Repositories.
	studentRepo := repository.NewStudentRepository(db)
	feeRepo := repository.NewFeeStructureRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	trashRepo := repository.NewTrashRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(service.CacheServiceParams{
		Store:        cacheRepo,
		Enabled:      cfg.Cache.Enabled,
		ProfileTTL:   cfg.Cache.ProfileTTL,
		DashboardTTL: cfg.Cache.DashboardTTL,
		Logger:       logr,
	})
	ledger := service.NewLedgerService()
	authSvc := service.NewAuthService(service.AuthServiceParams{
		Users:      userRepo,
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
		Logger:     logr,
	})
	sessionSvc := service.NewSessionService(service.SessionServiceParams{
		Repo:   profileRepo,
		Cache:  cacheSvc,
		Logger: logr,
	})
	studentSvc := service.NewStudentService(service.StudentServiceParams{
		Repo:     studentRepo,
		Fees:     feeRepo,
		Payments: paymentRepo,
		Trash:    trashRepo,
		Profiles: profileRepo,
		Ledger:   ledger,
		Cache:    cacheSvc,
		Logger:   logr,
	})
	feeSvc := service.NewFeeStructureService(service.FeeStructureServiceParams{
		Repo:     feeRepo,
		Payments: paymentRepo,
		Profiles: profileRepo,
		Logger:   logr,
	})
	paymentSvc := service.NewPaymentService(service.PaymentServiceParams{
		Repo:     paymentRepo,
		Students: studentRepo,
		Trash:    trashRepo,
		Ledger:   ledger,
		Cache:    cacheSvc,
		Metrics:  metricsSvc,
		Logger:   logr,
	})
	expenseSvc := service.NewExpenseService(service.ExpenseServiceParams{
		Repo:     expenseRepo,
		Trash:    trashRepo,
		Profiles: profileRepo,
		Cache:    cacheSvc,
		Logger:   logr,
	})
	trashSvc := service.NewTrashService(service.TrashServiceParams{
		Repo:     trashRepo,
		Students: studentRepo,
		Payments: paymentRepo,
		Expenses: expenseRepo,
		Cache:    cacheSvc,
		Metrics:  metricsSvc,
		Logger:   logr,
	})
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students: studentRepo,
		Fees:     feeRepo,
		Payments: paymentRepo,
		Expenses: expenseRepo,
		Ledger:   ledger,
		Cache:    cacheSvc,
		Logger:   logr,
	})
	exportSvc := service.NewExportService(service.ExportServiceParams{
		Payments: paymentSvc,
		Students: studentRepo,
		Fees:     feeRepo,
		Logger:   logr,
	})

	sessionSvc.Subscribe(func(profile models.SchoolProfile) {
		logr.Info("school profile changed", zap.String("current_session", profile.CurrentSession))
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background trash retention.
	var purgeQueue *jobs.Queue
	if cfg.Trash.PurgeEnabled {
		retention := time.Duration(cfg.Trash.RetentionDays) * 24 * time.Hour
		purgeQueue = jobs.NewQueue("trash-purge", func(ctx context.Context, job jobs.Job) error {
			_, err := trashSvc.PurgeExpired(ctx, retention)
			return err
		}, jobs.QueueConfig{Workers: 1, Logger: logr})
		purgeQueue.Start(ctx)
		defer purgeQueue.Stop()

		go func() {
			ticker := time.NewTicker(cfg.Trash.PurgeInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					job := jobs.Job{ID: service.NewPurgeJobID(), Type: "purge"}
					if err := purgeQueue.Enqueue(job); err != nil {
						logr.Sugar().Warnw("failed to enqueue purge", "error", err)
					}
				}
			}
		}()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, sessionSvc)
	feeHandler := handler.NewFeeStructureHandler(feeSvc, sessionSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, sessionSvc)
	expenseHandler := handler.NewExpenseHandler(expenseSvc, sessionSvc)
	trashHandler := handler.NewTrashHandler(trashSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, sessionSvc)
	exportHandler := handler.NewExportHandler(exportSvc, sessionSvc)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleClerk)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	authed.GET("/dashboard", anyRole, dashboardHandler.Stats)

	authed.GET("/students", anyRole, studentHandler.List)
	authed.GET("/students/:id", anyRole, studentHandler.Get)
	authed.GET("/students/:id/balance", anyRole, studentHandler.Balance)
	authed.POST("/students", anyRole, studentHandler.Create)
	authed.PUT("/students/:id", anyRole, studentHandler.Update)
	authed.DELETE("/students/:id", adminOnly, studentHandler.Delete)

	authed.GET("/fee-structures", anyRole, feeHandler.List)
	authed.GET("/fee-structures/:id", anyRole, feeHandler.Get)
	authed.POST("/fee-structures", adminOnly, feeHandler.Create)
	authed.PUT("/fee-structures/:id", adminOnly, feeHandler.Update)
	authed.DELETE("/fee-structures/:id", adminOnly, feeHandler.Delete)

	authed.GET("/payments", anyRole, paymentHandler.List)
	authed.GET("/payments/stats", anyRole, paymentHandler.Stats)
	authed.GET("/payments/:id", anyRole, paymentHandler.Get)
	authed.POST("/payments", anyRole, paymentHandler.Create)
	authed.PUT("/payments/:id", anyRole, paymentHandler.Update)
	authed.DELETE("/payments/:id", adminOnly, paymentHandler.Delete)

	authed.GET("/expenses", anyRole, expenseHandler.List)
	authed.GET("/expenses/:id", anyRole, expenseHandler.Get)
	authed.POST("/expenses", anyRole, expenseHandler.Create)
	authed.PUT("/expenses/:id", anyRole, expenseHandler.Update)
	authed.DELETE("/expenses/:id", adminOnly, expenseHandler.Delete)

	authed.GET("/trash", adminOnly, trashHandler.List)
	authed.GET("/trash/:id", adminOnly, trashHandler.Get)
	authed.POST("/trash/:id/restore", adminOnly, trashHandler.Restore)
	authed.DELETE("/trash/:id", adminOnly, trashHandler.Delete)

	authed.GET("/profile", anyRole, sessionHandler.Profile)
	authed.PUT("/profile", adminOnly, sessionHandler.UpdateProfile)
	authed.GET("/sessions", anyRole, sessionHandler.List)
	authed.GET("/sessions/next", anyRole, sessionHandler.Next)
	authed.POST("/sessions", adminOnly, sessionHandler.Add)
	authed.PUT("/sessions/current", adminOnly, sessionHandler.SetCurrent)
	authed.PUT("/sessions/:label", adminOnly, sessionHandler.Rename)
	authed.DELETE("/sessions/:label", adminOnly, sessionHandler.Delete)

	if cfg.Exports.Enabled {
		authed.GET("/exports/payments", anyRole, exportHandler.PaymentRegister)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
