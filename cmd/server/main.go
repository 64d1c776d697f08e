// HTTP API - balances, tiers, transaction history, sale settlement,
// recurring series preview and creation, program settings
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/UmarEjaz/AestheTech-sub001/internal/api"
	db "github.com/UmarEjaz/AestheTech-sub001/internal/db"
	interf "github.com/UmarEjaz/AestheTech-sub001/internal/interfaces"
	loyalty "github.com/UmarEjaz/AestheTech-sub001/internal/services/loyalty"
	schedule "github.com/UmarEjaz/AestheTech-sub001/internal/services/schedule"
	otel "github.com/UmarEjaz/AestheTech-sub001/observability/otel"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	// log
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// config
	port := os.Getenv("SALON_PORT")
	if port == "" {
		panic("env SALON_PORT is not set")
	}

	// tracing
	ctx := context.Background()
	shutdownTracer := otel.InitTracer(ctx, "salon-api")
	defer shutdownTracer()

	// database
	pool, err := db.NewPool()
	if err != nil {
		panic(err)
	}
	defer pool.Close()
	loyaltyDB := db.NewLoyaltyDB(logger, pool)
	scheduleDB := db.NewScheduleDB(logger, pool)
	lock := db.NewExpiryLock(pool)

	// settings
	settings, err := db.NewSettingsDB()
	if err != nil {
		panic(err)
	}

	// cache
	var cache interf.CacheStorage
	redisCache, err := db.NewCacheService()
	if err != nil {
		logger.Error(err.Error())
	} else {
		cache = redisCache
	}

	// services
	clock := loyalty.SystemClock{}
	loyaltyService := loyalty.NewLoyaltyService(logger, loyaltyDB, cache, settings, clock, lock)
	scheduleService := schedule.NewScheduleService(logger, scheduleDB, nil, settings, clock)

	// api handlers
	handler := api.NewHandler(loyaltyService, scheduleService, settings, logger)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", otelhttp.NewHandler(handler, "salon-api"))

	srv := &http.Server{
		Handler:      mux,
		Addr:         ":" + port,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	go srv.ListenAndServe()

	// shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	timeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(timeout)
	if err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
