// Job - refunds. Consume refund events from RabbitMQ, reverse the
// proportional share of earned points, publish the result.
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
	rabbit "github.com/UmarEjaz/AestheTech-sub001/internal/external/rabbitmq"
	interf "github.com/UmarEjaz/AestheTech-sub001/internal/interfaces"
	loyalty "github.com/UmarEjaz/AestheTech-sub001/internal/services/loyalty"
	"go.uber.org/zap"
)

type RefundEvent struct {
	RefundId    string `json:"refundId"`
	ClientId    string `json:"clientId"`
	SaleId      string `json:"saleId"`
	RefundCents int64  `json:"refundCents"`
}

func main() {
	// log
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// rabbitmq
	reader, err := rabbit.NewRefundConsumer()
	if err != nil {
		logger.Error(err.Error())
		panic(err)
	}
	defer reader.Close()

	// database
	pool, err := db.NewPool()
	if err != nil {
		logger.Error(err.Error())
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
	semenv := os.Getenv("SALON_REFUNDS_COUNT")
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

	// os signals
	go func() {
		<-interrupt
		cancel()
	}()

	// workers
	wg := &sync.WaitGroup{}
	wg.Add(semcount)
	for i := 0; i < semcount; i++ {
		go worker(ctx, serv, wg, logger, reader)
	}
	wg.Wait()
}

// worker for rabbitmq messages
func worker(ctx context.Context, serv *loyalty.LoyaltyService, wg *sync.WaitGroup, logger *zap.Logger, reader *rabbit.RefundConsumer) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, ok := <-reader.Msg
			if !ok {
				return
			}
			var event RefundEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				logger.Error(err.Error())
				continue
			}
			reversal, err := serv.ReverseRefundPoints(ctx, event.ClientId, event.SaleId, event.RefundCents)
			if err != nil {
				logger.Error(err.Error())
				_ = reader.Processed(ctx, event.RefundId, false, 0)
				continue
			}
			err = reader.Processed(ctx, event.RefundId, true, reversal.PointsReversed)
			if err != nil {
				logger.Error(err.Error())
				continue
			}
		}
	}
}
