package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"signal-backtest/internal/api/handlers"
	"signal-backtest/internal/api/middleware"
	"signal-backtest/internal/data"
)

func main() {
	dataDir := flag.String("data", envOr("DATA_DIR", "./data"), "directory of bar CSV datasets")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	port := envOr("API_PORT", "8080")
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := data.NewRegistry(*dataDir)
	if datasets, err := registry.List(); err != nil {
		log.WithError(err).Warnf("data directory %s not readable; only inline backtests will work", *dataDir)
	} else {
		log.WithField("count", len(datasets)).Infof("serving datasets from %s", *dataDir)
	}

	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler())

	backtestHandler := handlers.NewBacktestHandler(registry)
	datasetHandler := handlers.NewDatasetHandler(registry)
	strategyHandler := handlers.NewStrategyHandler()
	rankHandler := handlers.NewRankHandler(registry)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/backtest", backtestHandler.RunBacktest)
		api.GET("/strategies", strategyHandler.ListStrategies)
		api.GET("/datasets", datasetHandler.ListDatasets)
		api.GET("/rank", rankHandler.RankSymbols)
	}

	addr := fmt.Sprintf(":%s", port)
	log.Infof("starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
