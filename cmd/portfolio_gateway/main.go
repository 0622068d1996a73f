package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"move_portfolio/internal/app/service"
	"move_portfolio/internal/infrastructure/configloader"
	"move_portfolio/internal/infrastructure/httpclient"
	"move_portfolio/internal/infrastructure/restapi"
	"move_portfolio/internal/infrastructure/storage"
	"move_portfolio/internal/pkg/logger"
	"move_portfolio/internal/pkg/metrics"
	"move_portfolio/internal/pkg/utils"
)

func main() {
	// Bootstrap logger for the phase before config is loaded.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	slogHandler := zapslog.NewHandler(zapLogger.Core(), &zapslog.HandlerOptions{})
	slog.SetDefault(slog.New(slogHandler))
	appLogger := logger.NewSlogAdapter()

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			log.SetOutput(file)
		} else {
			log.Infof("Failed to log to file, using default stdout: %v", err)
		}
	}

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	network := cfg.ActiveNetwork(utils.GetEnv("NETWORK", "mainnet"))
	zapLogger.Info("Serving network",
		zap.String("name", network.Name),
		zap.Uint64("chainId", network.ChainID))

	upstreamTimeout := time.Duration(cfg.Performance.UpstreamTimeoutSeconds) * time.Second
	quoteTimeout := time.Duration(cfg.Quotes.RequestTimeoutMillis) * time.Millisecond

	indexerClient := httpclient.NewIndexerClient(network.IndexerURL, upstreamTimeout, zapLogger)
	fullnodeClient := httpclient.NewFullnodeClient(network.FullnodeURL, upstreamTimeout, cfg.Rewards.PagesPerSecond, zapLogger)
	quoteClient := httpclient.NewQuoteClient(cfg.Quotes.BaseURL, quoteTimeout, cfg.Quotes.MaxRetries, zapLogger)
	zapLogger.Info("Upstream clients initialized")

	priceService := service.NewPriceService(
		quoteClient,
		time.Duration(cfg.PriceSvc.CacheTTLSeconds)*time.Second,
		time.Duration(cfg.PriceSvc.RateCacheTTLMinutes)*time.Minute,
		time.Duration(cfg.Performance.FetchTimeoutSeconds)*time.Second,
		appLogger,
	)
	rewardService := service.NewRewardService(
		fullnodeClient,
		cfg.Rewards.ContractAddress,
		cfg.Rewards.PageSize,
		cfg.Rewards.MaxPages,
		appLogger,
	)
	positionService := service.NewPositionService(
		fullnodeClient,
		indexerClient,
		rewardService,
		priceService,
		cfg.Performance.MaxConcurrentRoutines,
		appLogger,
	)
	historyService := service.NewHistoryService(indexerClient, appLogger)
	portfolioService := service.NewPortfolioService(indexerClient, positionService, priceService, appLogger)
	zapLogger.Info("Services initialized")

	// The address book is optional: without a DSN the API runs read-only.
	var addressBookHandler *restapi.AddressBookHandler
	if cfg.Database.DSN != "" {
		if cfg.Database.Migrate {
			if err := storage.RunMigrations(context.Background(), cfg.Database.DSN); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
			zapLogger.Info("Database migrations applied")
		}
		store, err := storage.NewStore(context.Background(), cfg.Database.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer store.Close()
		addressBookHandler = restapi.NewAddressBookHandler(store, appLogger)
		zapLogger.Info("Address book store initialized")
	} else {
		zapLogger.Warn("No database DSN configured, address book endpoints disabled")
	}

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(utils.ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	restapi.RegisterRoutes(router, restapi.Handlers{
		Proxy:       restapi.NewProxyHandler(indexerClient, time.Duration(cfg.Proxy.TimeoutSeconds)*time.Second, appLogger),
		Price:       restapi.NewPriceHandler(priceService, cfg.PriceSvc.FallbackMovePrice, appLogger),
		Rewards:     restapi.NewRewardHandler(rewardService, appLogger),
		Portfolio:   restapi.NewPortfolioHandler(portfolioService, rewardService, positionService, historyService),
		AddressBook: addressBookHandler,
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	zapLogger.Info("Prometheus metrics endpoint enabled", zap.String("path", "/metrics"))

	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	}
	zapLogger.Info("Pprof endpoints enabled under /debug/pprof")

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited")
}
