package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hypernova-labs/catalog-service/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const imageIndexPrefix = "catalog:image:etag:"

// Redis representa la conexión a Redis usada como índice ETag -> objeto
type Redis struct {
	*redis.Client
	ttl time.Duration
}

// ConnectRedis establece la conexión a Redis
func ConnectRedis(cfg *config.Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	// Verificar conexión
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging Redis: %w", err)
	}

	return &Redis{Client: client, ttl: cfg.Redis.IndexTTL}, nil
}

// NewRedis envuelve un cliente existente
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{Client: client, ttl: ttl}
}

// Close cierra la conexión a Redis
func (r *Redis) Close() error {
	return r.Client.Close()
}

// HealthCheck verifica la salud de Redis
func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.Ping(ctx).Err()
}

// LookupObject retorna el nombre de objeto indexado para un ETag
func (r *Redis) LookupObject(ctx context.Context, etag string) (string, error) {
	objectName, err := r.Client.Get(ctx, imageIndexPrefix+etag).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error reading image index: %w", err)
	}
	return objectName, nil
}

// RememberObject indexa un ETag con su nombre de objeto
func (r *Redis) RememberObject(ctx context.Context, etag, objectName string) error {
	if err := r.Client.Set(ctx, imageIndexPrefix+etag, objectName, r.ttl).Err(); err != nil {
		return fmt.Errorf("error writing image index: %w", err)
	}
	return nil
}

// ForgetObject elimina la entrada de un ETag
func (r *Redis) ForgetObject(ctx context.Context, etag string) error {
	if err := r.Client.Del(ctx, imageIndexPrefix+etag).Err(); err != nil {
		return fmt.Errorf("error deleting image index entry: %w", err)
	}
	return nil
}

// GetStats retorna estadísticas del pool de Redis
func (r *Redis) GetStats() map[string]interface{} {
	s := r.PoolStats()
	return map[string]interface{}{
		"hits":        s.Hits,
		"misses":      s.Misses,
		"timeouts":    s.Timeouts,
		"total_conns": s.TotalConns,
		"idle_conns":  s.IdleConns,
		"stale_conns": s.StaleConns,
	}
}

// LogStats registra las estadísticas de Redis
func (r *Redis) LogStats(logger *logrus.Logger) {
	logger.WithFields(logrus.Fields(r.GetStats())).Info("Redis statistics")
}
