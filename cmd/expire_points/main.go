// Job - points expiry. Finds EARNED/BONUS transactions past their
// horizon, expires what the client still holds, marks sources processed.
// Guarded by an advisory lock: overlapping runs no-op.
package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	db "github.com/UmarEjaz/AestheTech-sub001/internal/db"
	interf "github.com/UmarEjaz/AestheTech-sub001/internal/interfaces"
	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	loyalty "github.com/UmarEjaz/AestheTech-sub001/internal/services/loyalty"
)

func main() {
	// log
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// database
	pool, err := db.NewPool()
	if err != nil {
		panic(err)
	}
	defer pool.Close()
	storage := db.NewLoyaltyDB(logger, pool)
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

	serv := loyalty.NewLoyaltyService(logger, storage, cache, settings, loyalty.SystemClock{}, lock)
	report, err := serv.RunExpiry(context.Background())
	if err != nil {
		if errors.Is(err, model.ErrLockHeld) {
			logger.Info("Job points expiry is already running, skipping")
			return
		}
		logger.Error(err.Error())
		return
	}
	logger.Info("Job points expiry is finished",
		zap.Int64("clients", report.ClientsAffected),
		zap.Int64("points", report.TotalPointsExpired),
	)
}
