// Job - completed sales. Poll Kafka -> settle points (redeem, earn,
// birthday bonus) per sale.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	db "github.com/UmarEjaz/AestheTech-sub001/internal/db"
	kafka "github.com/UmarEjaz/AestheTech-sub001/internal/external/kafka"
	interf "github.com/UmarEjaz/AestheTech-sub001/internal/interfaces"
	loyalty "github.com/UmarEjaz/AestheTech-sub001/internal/services/loyalty"
	"go.uber.org/zap"
)

func main() {
	// log
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// kafka
	reader, err := kafka.NewSalesReader("sales")
	if err != nil {
		panic(err)
	}
	defer reader.CloseReader()

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

	// services
	serv := loyalty.NewLoyaltyService(logger, storage, cache, settings, loyalty.SystemClock{}, lock)

	// start
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var semcount int
	semenv := os.Getenv("SALON_SALES_COUNT")
	if semenv == "" {
		semcount = 5
	} else {
		semcount, err = strconv.Atoi(semenv)
		if err != nil {
			semcount = 5
		}
	}
	if semcount == 0 {
		semcount = 1
	}

	wg := &sync.WaitGroup{}
	semaphore := make(chan struct{}, semcount)

loop:
	for {
		select {
		case <-interrupt:
			cancel()
			break loop
		case <-ctx.Done():
			break loop
		default:

			sale, err := reader.GetNewMessage(ctx)
			if err != nil {
				logger.Error(err.Error())
				return
			}

			semaphore <- struct{}{}
			wg.Add(1)
			go func(sale string) {
				defer wg.Done()
				defer func() { <-semaphore }()

				var in loyalty.SaleInput
				if err := json.Unmarshal([]byte(sale), &in); err != nil {
					logger.Error(err.Error())
					return
				}
				settlement, err := serv.SettleSale(ctx, in)
				if err != nil {
					logger.Error(err.Error(),
						zap.String("sale", in.SaleID),
					)
					return
				}
				logger.Info("sale settled",
					zap.String("sale", in.SaleID),
					zap.Int64("earned", settlement.EarnedPoints),
					zap.Int64("bonus", settlement.BonusPoints),
					zap.Int64("redeemed", settlement.RedeemedPoints),
				)
			}(sale)
		}
	}
	wg.Wait()
}
