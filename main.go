package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	apperrors "attire-service/common/errors"
	"attire-service/common/logger"
	"attire-service/controllers"
	"attire-service/database"
	"attire-service/events"
	"attire-service/kafka"
	"attire-service/middleware"
	"attire-service/notifier"
	aws_pkg "attire-service/pkg/aws"
	"attire-service/reminder"
	"attire-service/repository"
	"attire-service/routes"
	"attire-service/sender"
	"attire-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	zlog, err := logger.New(appEnv())
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	cfg, err := LoadConfig(zlog)
	if err != nil {
		zlog.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	orderRepo := repository.NewGormOrderRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)
	credentialRepo := repository.NewGormCredentialRepository(db)

	store := notifier.NewStore(zlog, time.Now)
	dispatcher := notifier.NewDispatcher(store, sender.NewSimulated(time.Now), cfg.NotificationSendDelay, zlog)
	scheduler := reminder.NewScheduler(orderRepo, customerRepo, store, dispatcher, cfg.ReminderInterval, time.Now, zlog)

	publisher, closePublisher := buildPublisher(ctx, cfg, zlog)
	defer closePublisher()

	orderService := services.NewOrderService(orderRepo, customerRepo, store, dispatcher, scheduler, zlog,
		services.OrderServiceOptions{
			Publisher:        publisher,
			ReevaluateOnEdit: cfg.ReevaluateRemindersOnEdit,
			Now:              time.Now,
		})
	customerService := services.NewCustomerService(customerRepo, orderRepo, time.Now, zlog)
	summaryService := services.NewSummaryService(orderRepo, time.Now)

	tokens, err := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		zlog.Fatal("Failed to init token service", zap.Error(err))
	}
	authService := services.NewAuthService(credentialRepo, tokens, zlog)
	if err := authService.EnsureCredential(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		zlog.Fatal("Failed to seed credentials", zap.Error(err))
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	controllers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(zlog))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(apperrors.ErrorMiddleware())

	loginLimiter := middleware.LoginRateLimit()
	notifications := controllers.NewNotificationController(store, time.Now, zlog)
	routes.Register(r, routes.Controllers{
		Auth:          controllers.NewAuthController(authService),
		Customers:     controllers.NewCustomerController(customerService),
		Orders:        controllers.NewOrderController(orderService),
		Notifications: notifications,
		Dashboard:     controllers.NewDashboardController(summaryService, scheduler),
	}, authService, loginLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(notifications.CloseStreams)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("Attire service started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		loginLimiter.Cleanup(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("Shutting down attire service...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zlog.Error("Service stopped with error", zap.Error(err))
	}
	// sends from handlers abandoned by Shutdown are marked failed
	dispatcher.Close()
	zlog.Info("Server exited cleanly")
}

// buildPublisher wires the order event targets that are configured. The
// returned close func drains queued events and releases broker connections.
func buildPublisher(ctx context.Context, cfg *Config, zlog *zap.Logger) (events.Publisher, func()) {
	var targets []events.Publisher
	closers := []func(){}

	if cfg.OrderEventsSNSTopicARN != "" {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			zlog.Warn("AWS config unavailable, SNS disabled", zap.Error(err))
		} else {
			targets = append(targets, events.NewSNSPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.OrderEventsSNSTopicARN))
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic, zlog)
		targets = append(targets, events.NewKafkaPublisher(producer))
		closers = append(closers, func() {
			if err := producer.Close(); err != nil {
				zlog.Warn("kafka producer close failed", zap.Error(err))
			}
		})
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(targets) == 0 {
		zlog.Info("no order event targets configured")
		return nil, closeAll
	}
	queue := events.NewQueue(events.NewMulti(zlog, targets...), events.DefaultQueueSize, zlog)
	return queue, func() {
		queue.Close()
		closeAll()
	}
}
