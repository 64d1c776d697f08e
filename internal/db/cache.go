package db

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
}

func NewCacheService() (serv *CacheService, err error) {

	// config
	addr := os.Getenv("SALON_CACHE_URL")
	if addr == "" {
		return nil, fmt.Errorf("env SALON_CACHE_URL is not set")
	}
	user := os.Getenv("SALON_CACHE_USER")
	pwd := os.Getenv("SALON_CACHE_PWD")

	// redis
	db := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    pwd,
		Username:    user,
		DB:          0,
		MaxRetries:  5,
		DialTimeout: 10 * time.Second,
	})
	err = db.Ping(context.Background()).Err()
	if err != nil {
		return nil, err
	}

	return &CacheService{db}, nil
}

func (c *CacheService) GetBalance(ctx context.Context, clientId string) (points int64, err error) {
	val, err := c.client.Get(ctx, balanceKey(clientId)).Result()
	if err == redis.Nil {
		return 0, fmt.Errorf("not cached")
	} else if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (c *CacheService) SetBalance(ctx context.Context, clientId string, points int64) (err error) {
	return c.client.Set(ctx, balanceKey(clientId), points, 5*time.Minute).Err()
}

func (c *CacheService) InvalidateBalance(ctx context.Context, clientId string) error {
	return c.client.Del(ctx, balanceKey(clientId)).Err()
}

func balanceKey(clientId string) string {
	return "balance:" + clientId
}
