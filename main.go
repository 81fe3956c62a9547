package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homeease/config"
	"homeease/cron"
	"homeease/database"
	"homeease/database/repository"
	bookingRepo "homeease/database/repository/booking"
	catalogRepo "homeease/database/repository/catalog"
	"homeease/database/repository/memory"
	providerRepo "homeease/database/repository/provider"
	userRepo "homeease/database/repository/user"
	"homeease/handlers"
	"homeease/middleware"
	"homeease/routes"
	"homeease/services/availability"
	"homeease/services/booking"
	"homeease/services/notification"
	"homeease/services/payment"
	"homeease/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const lockTTL = 10 * time.Second

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	zap.ReplaceGlobals(logger)

	if err := utils.RegisterValidators(); err != nil {
		logger.Sugar().Fatalf("main: failed to register validators: %v", err)
	}
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		repos      repository.Set
		locker     booking.Locker
		notifier   notification.Dispatcher = notification.Noop{}
		queue      *asynq.Client
		worker     *asynq.Server
		redisPools []*redis.Client
	)

	if config.UsesMemoryStore() {
		store := memory.NewStore()
		if seed := config.AppConfig.MemorySeedFile; seed != "" {
			if err := store.LoadSeed(seed); err != nil {
				logger.Sugar().Fatalf("main: failed to load seed file %s: %v", seed, err)
			}
		}
		repos = store.Repositories()
		locker = booking.NewLocalLocker()
		logger.Warn("running on the in-memory store; notifications are disabled")
	} else {
		database.InitDB()
		db := database.DB()

		bookings, err := bookingRepo.NewMongoBookingRepo(db)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to prepare booking repository: %v", err)
		}
		providers, err := providerRepo.NewMongoProviderRepo(db)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to prepare provider repository: %v", err)
		}
		cache := utils.GetCacheClient()
		lockClient := utils.GetLockClient()
		redisPools = append(redisPools, cache, lockClient)

		repos = repository.Set{
			Bookings:  bookings,
			Providers: providerRepo.NewCachedProviderRepo(providers, cache, config.AppConfig.AvailabilityCacheTTL(), logger),
			Users:     userRepo.NewMongoUserRepo(db),
			Services:  catalogRepo.NewMongoServiceRepo(db),
		}
		locker = booking.NewRedisLocker(lockClient, lockTTL)

		queue = asynq.NewClient(cron.RedisOpt())
		notifier = notification.NewQueueDispatcher(queue, config.AppConfig.ReminderLead(), logger)

		utils.FirebaseInit()
		var messenger notification.Messenger
		if utils.FCMClient != nil {
			messenger = utils.FCMClient
		}
		sender := notification.NewPushSender(messenger, repos.Users, repos.Providers, logger)
		worker = cron.InitNotificationWorker(sender, repos.Bookings, logger)
	}

	gateway, err := newGateway()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize payment gateway: %v", err)
	}
	logger.Info("payment gateway selected", zap.String("gateway", gateway.Name()))

	checker := availability.NewChecker(repos.Providers, repos.Bookings, logger)

	bookingService := booking.NewService(repos, checker, notifier, locker, logger)
	bookingService.CancellationWindow = config.AppConfig.CancellationWindow()

	paymentService := payment.NewService(repos.Bookings, gateway, notifier, config.AppConfig.GatewayTimeout(), logger)
	paymentService.ReturnURL = config.AppConfig.PaymentReturnURL

	handlerBundle := handlers.NewHandlerBundle(bookingService, paymentService, logger)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	routes.RegisterRoutes(router, handlerBundle)

	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	utils.StartHealthMonitor(healthCtx, redisPools, database.MongoClient)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	if queue != nil {
		if err := queue.Close(); err != nil {
			logger.Sugar().Warnf("main: closing task queue: %v", err)
		}
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: disconnecting database: %v", err)
	}

	_ = logger.Sync()
	logger.Sugar().Info("main: server stopped gracefully")
}

// newGateway picks the payment provider named by PAYMENT_GATEWAY.
func newGateway() (payment.Gateway, error) {
	cfg := config.AppConfig
	switch cfg.PaymentGateway {
	case "omise":
		return payment.NewOmiseGateway(cfg.OmisePublicKey, cfg.OmiseSecretKey, cfg.GatewayTimeout())
	default:
		return payment.NewStripeGateway(cfg.StripeKey, cfg.StripeWebhookSecret, cfg.GatewayTimeout()), nil
	}
}
