package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/stock-chat-service/internal/client"
	"github.com/yourorg/stock-chat-service/internal/config"
	"github.com/yourorg/stock-chat-service/internal/events"
	"github.com/yourorg/stock-chat-service/internal/handler"
	"github.com/yourorg/stock-chat-service/internal/middleware"
	"github.com/yourorg/stock-chat-service/internal/repository"
	"github.com/yourorg/stock-chat-service/internal/service"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize market data client
	marketClient := client.NewYahooClient(cfg.Market.BaseURL, cfg.Market.Timeout, logger)

	// Initialize the history store per the configured backend
	historyStore, db, err := createHistoryStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize history store", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	// Initialize the optional Kafka event publisher
	var eventPublisher service.EventPublisher
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer publisher.Close()
		eventPublisher = publisher
		logger.Info("Initialized Kafka publisher",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}

	// Initialize the generative model; a failure here only disables the
	// primary classification strategy
	var answerModel service.AnswerModel
	if cfg.Gemini.Enabled() {
		gemini, err := service.NewGeminiModel(context.Background(), cfg.Gemini, logger)
		if err != nil {
			logger.Warn("Gemini configuration failed, using keyword fallback only", zap.Error(err))
		} else {
			answerModel = gemini
			logger.Info("Gemini model configured", zap.String("model", cfg.Gemini.Model))
		}
	} else {
		logger.Info("No Gemini API key configured, using keyword fallback only")
	}

	// Initialize services
	classifier := service.NewClassifier(answerModel, logger)
	queryService := service.NewQueryService(
		marketClient,
		classifier,
		historyStore,
		eventPublisher,
		cfg.Market.DefaultPeriod,
		cfg.History.WriteTimeout,
		logger,
	)
	overviewService := service.NewOverviewService(marketClient, cfg.Market.Watchlist, logger)

	// Initialize handlers
	queryHandler := handler.NewQueryHandler(queryService, logger)
	overviewHandler := handler.NewOverviewHandler(overviewService, logger)
	historyHandler := handler.NewHistoryHandler(historyStore, logger)

	// Set up HTTP server with Gin
	router := setupRouter(queryHandler, overviewHandler, historyHandler, logger, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// createHistoryStore builds the interaction log backend. The returned DB
// handle is non-nil only for the postgres backend.
func createHistoryStore(cfg *config.Config, logger *zap.Logger) (service.HistoryStore, *sqlx.DB, error) {
	switch cfg.History.Backend {
	case "nocodb":
		store := client.NewNocoDBClient(
			cfg.History.NocoDB.URL,
			cfg.History.NocoDB.Token,
			cfg.History.NocoDB.TableID,
			cfg.History.WriteTimeout,
			logger,
		)
		if !store.Configured() {
			logger.Warn("NocoDB backend selected but token or table ID missing")
		}
		return store, nil, nil

	case "postgres":
		db, err := connectToDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewHistoryRepository(db, logger), db, nil

	default:
		logger.Info("No history backend configured")
		return nil, nil, nil
	}
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func setupRouter(
	queryHandler *handler.QueryHandler,
	overviewHandler *handler.OverviewHandler,
	historyHandler *handler.HistoryHandler,
	logger *zap.Logger,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.POST("/query", queryHandler.Query)
	router.POST("/chat", queryHandler.Chat)
	router.GET("/market-overview", overviewHandler.Overview)
	router.GET("/history", historyHandler.History)

	return router
}
