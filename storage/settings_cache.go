package storage

import (
	"context"
	"errors"
	"fmt"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/redis/go-redis/v9"
	"time"
)

const settingsKeyPrefix = "settings:"

// NewRedisClient connects and pings the server before returning.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 100,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	logging.Log.Infof("STORAGE: connected to redis at %s", addr)
	return client, nil
}

// CachedSettingStorage serves reads from redis and falls back to the wrapped storage.
// Redis failures never fail a read.
type CachedSettingStorage struct {
	Next   SettingStorage
	Client *redis.Client
	TTL    time.Duration
}

func NewCachedSettingStorage(next SettingStorage, client *redis.Client, ttl time.Duration) *CachedSettingStorage {
	return &CachedSettingStorage{Next: next, Client: client, TTL: ttl}
}

func (s *CachedSettingStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.Client.Get(ctx, settingsKeyPrefix+key).Result()
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, redis.Nil) {
		logging.Log.Warnf("SETTINGS: redis read of %s failed, using database: %v", key, err)
	}

	value, err = s.Next.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if err := s.Client.Set(ctx, settingsKeyPrefix+key, value, s.TTL).Err(); err != nil {
		logging.Log.Warnf("SETTINGS: redis write-back of %s failed: %v", key, err)
	}
	return value, nil
}

// Set writes through to the database and drops the cached copy.
func (s *CachedSettingStorage) Set(ctx context.Context, key, value string) error {
	if err := s.Next.Set(ctx, key, value); err != nil {
		return err
	}
	if err := s.Client.Del(ctx, settingsKeyPrefix+key).Err(); err != nil {
		logging.Log.Warnf("SETTINGS: redis invalidation of %s failed: %v", key, err)
	}
	return nil
}

func (s *CachedSettingStorage) GetAll(ctx context.Context) (map[string]string, error) {
	return s.Next.GetAll(ctx)
}
