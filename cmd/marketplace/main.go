package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	affiliateadapters "marketplace/internal/affiliate/adapters"
	affiliateapp "marketplace/internal/affiliate/application"
	affiliatehttp "marketplace/internal/affiliate/infrastructure"
	customersadapters "marketplace/internal/customers/adapters"
	customersapp "marketplace/internal/customers/application"
	customershttp "marketplace/internal/customers/infrastructure"
	fraudadapters "marketplace/internal/fraud/adapters"
	fraudapp "marketplace/internal/fraud/application"
	fraudhttp "marketplace/internal/fraud/infrastructure"
	ordersadapters "marketplace/internal/orders/adapters"
	ordersapp "marketplace/internal/orders/application"
	ordershttp "marketplace/internal/orders/infrastructure"
	"marketplace/pkg/config"
	"marketplace/pkg/db"
	"marketplace/pkg/events"
	"marketplace/pkg/logger"
	"marketplace/pkg/middleware"
	"marketplace/pkg/rabbitmq"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := logger.New(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting marketplace service")

	// Connect to database
	dbConn, err := db.NewConnection(cfg.DSN(), cfg.DBTimeout)
	if err != nil {
		log.Fatal("failed to connect to database: " + err.Error())
	}
	log.Info("connected to database")

	// Initialize repositories and run migrations
	orderRepo := ordersadapters.NewPostgresOrderRepository(dbConn)
	catalog := ordersadapters.NewPostgresCatalog(dbConn)
	ledger := ordersadapters.NewPostgresPaymentLedger(dbConn)
	linkRepo := affiliateadapters.NewPostgresLinkRepository(dbConn)
	customerRepo := customersadapters.NewPostgresCustomerRepository(dbConn)
	analysisStore := fraudadapters.NewPostgresAnalysisStore(dbConn)

	for _, migrate := range []func() error{
		customerRepo.Migrate,
		catalog.Migrate,
		orderRepo.Migrate,
		ledger.Migrate,
		linkRepo.Migrate,
		analysisStore.Migrate,
	} {
		if err := migrate(); err != nil {
			log.Fatal("failed to migrate database: " + err.Error())
		}
	}

	// Connect to RabbitMQ
	rabbitConn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ: " + err.Error())
	}
	defer rabbitConn.Close()

	orderExchange, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeOrders, log)
	if err != nil {
		log.Fatal("failed to create orders publisher: " + err.Error())
	}
	notificationExchange, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeNotifications, log)
	if err != nil {
		log.Fatal("failed to create notifications publisher: " + err.Error())
	}
	gamificationExchange, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeGamification, log)
	if err != nil {
		log.Fatal("failed to create gamification publisher: " + err.Error())
	}

	publisher := ordersadapters.NewRabbitMQPublisher(orderExchange, log)
	notifier := ordersadapters.NewRabbitMQNotifier(notificationExchange, log)
	gamification := affiliateadapters.NewRabbitMQGamification(gamificationExchange, log)

	// Initialize use cases
	customerUseCase := customersapp.NewCustomerUseCase(customerRepo, log)
	directory := customersadapters.NewDirectory(customerRepo)

	orderUseCase := ordersapp.NewOrderUseCase(orderRepo, catalog, directory, notifier, ledger, publisher, log, cfg.TaxRate)

	affiliateUseCase := affiliateapp.NewAffiliateUseCase(
		linkRepo,
		affiliateadapters.NewOrderAdapter(orderRepo),
		gamification,
		notifier,
		log,
		cfg.AffiliateDefaultRate,
		cfg.PlatformCommissionRate,
	)

	fraudUseCase := fraudapp.NewFraudUseCase(
		fraudadapters.NewOrderAdapter(orderRepo, catalog, log),
		fraudadapters.NewPostgresSignalSource(dbConn),
		analysisStore,
		log,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the advisory consumers for order.created
	affiliateConsumer, err := affiliateadapters.NewOrderCreatedConsumer(rabbitConn, affiliateUseCase, log)
	if err != nil {
		log.Fatal("failed to create affiliate consumer: " + err.Error())
	}
	if err := affiliateConsumer.Start(ctx); err != nil {
		log.Fatal("failed to start affiliate consumer: " + err.Error())
	}

	fraudConsumer, err := fraudadapters.NewOrderCreatedConsumer(rabbitConn, fraudUseCase, log)
	if err != nil {
		log.Fatal("failed to create fraud consumer: " + err.Error())
	}
	if err := fraudConsumer.Start(ctx); err != nil {
		log.Fatal("failed to start fraud consumer: " + err.Error())
	}

	// Start HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())

	api := router.Group("/api/v1")
	ordershttp.NewHTTPHandler(orderUseCase).RegisterRoutes(api)
	affiliatehttp.NewHTTPHandler(affiliateUseCase).RegisterRoutes(api)
	fraudhttp.NewHTTPHandler(fraudUseCase).RegisterRoutes(api)
	customershttp.NewHTTPHandler(customerUseCase).RegisterRoutes(api)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	go func() {
		log.Info("HTTP server listening on :" + cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error: " + err.Error())
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error: " + err.Error())
	}

	log.Info("server stopped")
}
