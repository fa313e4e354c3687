package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloud-wave-best-zizon/checkout-service/internal/audit"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/events"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/handler"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/metrics"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/repository"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/service"
	"github.com/cloud-wave-best-zizon/checkout-service/pkg/config"
	"github.com/cloud-wave-best-zizon/checkout-service/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	logger.Info("Service configuration",
		zap.String("port", cfg.Port),
		zap.String("kafka_brokers", cfg.KafkaBrokers),
		zap.String("order_table", cfg.OrderTableName),
		zap.String("product_table", cfg.ProductTableName))

	metrics.Register()

	// Initialize components
	dynamoClient, err := repository.NewDynamoDBClient(cfg)
	if err != nil {
		log.Fatal("Failed to create DynamoDB client:", err)
	}

	kafkaProducer, err := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.OrderTopic, logger)
	if err != nil {
		log.Fatal("Failed to create Kafka producer:", err)
	}
	defer kafkaProducer.Close()

	compensationProducer := events.NewCompensationProducer(cfg.KafkaBrokers, cfg.CompensationTopic, logger)
	defer compensationProducer.Close()

	stockRepo := repository.NewStockRepository(dynamoClient, cfg.ProductTableName)
	orderRepo := repository.NewOrderRepository(dynamoClient, cfg.OrderTableName)
	idempotencyRepo := repository.NewIdempotencyRepository(dynamoClient, cfg.IdempotencyTableName, cfg.IdempotencyTTL)
	auditRepo := repository.NewAuditRepository(dynamoClient, cfg.AuditTableName)

	auditRecorder := audit.NewRecorder(auditRepo, logger)

	checkoutService := service.NewCheckoutService(
		stockRepo, orderRepo, idempotencyRepo, auditRecorder, kafkaProducer, compensationProducer, logger)
	orderService := service.NewOrderService(orderRepo, auditRecorder, logger)
	stockService := service.NewStockService(stockRepo, auditRecorder, logger)

	orderHandler := handler.NewOrderHandler(checkoutService, orderService, logger)
	stockHandler := handler.NewStockHandler(stockService, logger)

	// Setup Gin Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RequestID())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/checkout", orderHandler.Checkout)
		v1.GET("/orders", orderHandler.ListOrders)
		v1.GET("/orders/:id", orderHandler.GetOrder)
		v1.PATCH("/orders/:id", orderHandler.UpdateOrder)
		v1.POST("/products", stockHandler.CreateProduct)
		v1.POST("/products/:id/stock", stockHandler.AdjustStock)
		v1.GET("/health", func(c *gin.Context) {
			status := gin.H{
				"status":  "healthy",
				"service": "checkout-service",
				"port":    cfg.Port,
			}
			if err := kafkaProducer.HealthCheck(); err != nil {
				status["kafka"] = "unhealthy"
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
			status["kafka"] = "healthy"
			c.JSON(http.StatusOK, status)
		})
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	// Let queued audit entries drain before the process exits.
	if err := auditRecorder.Close(ctx); err != nil {
		logger.Error("Audit recorder drain timed out", zap.Error(err))
	}

	logger.Info("Server stopped")
}
