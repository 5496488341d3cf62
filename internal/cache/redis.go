package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"sensor-monitor/internal/models"
)

// RedisCache зеркалирует обработанные измерения в Redis
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
	prefix string
	seq    atomic.Uint64
}

// cachedRecord формат записи в Redis
type cachedRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	NodeID          string    `json:"node"`
	Temperature     float64   `json:"temperature"`
	Humidity        float64   `json:"humidity"`
	Emergency       bool      `json:"emergency"`
	TempAnomaly     bool      `json:"temp_anomaly"`
	HumidityAnomaly bool      `json:"humidity_anomaly"`
	Description     string    `json:"anomaly_type"`
}

// NewRedisCache создает новый Redis кэш. Ключи прогона начинаются с monitor:<runID>:
func NewRedisCache(addr, password string, db int, ttl time.Duration, runID string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	ctx := context.Background()

	// Проверяем подключение
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ctx:    ctx,
		ttl:    ttl,
		prefix: fmt.Sprintf("monitor:%s:", runID),
	}, nil
}

// Append сохраняет строку истории; аномальные строки попадают
// в индекс узла в порядке поступления (с более длительным TTL).
// Время в записях округлено до секунды, поэтому ключ дополняется номером записи в прогоне.
func (r *RedisCache) Append(rec models.Record) error {
	seq := r.seq.Add(1)
	key := fmt.Sprintf("%sreading:%s:%d:%d", r.prefix, rec.NodeID, rec.Timestamp.Unix(), seq)

	jsonData, err := json.Marshal(cachedRecord(rec))
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if rec.Description == models.NormalMarker {
		return r.client.Set(r.ctx, key, jsonData, r.ttl).Err()
	}

	anomalyTTL := r.ttl * 24
	listKey := r.anomalyListKey(rec.NodeID)

	pipe := r.client.Pipeline()
	pipe.Set(r.ctx, key, jsonData, anomalyTTL)
	pipe.ZAdd(r.ctx, listKey, redis.Z{Score: float64(seq), Member: key})
	pipe.Expire(r.ctx, listKey, anomalyTTL)
	pipe.Incr(r.ctx, r.prefix+"anomalous_readings")

	_, err = pipe.Exec(r.ctx)
	return err
}

// GetRecentAnomalies получает последние аномальные записи узла, новые первыми
func (r *RedisCache) GetRecentAnomalies(nodeID string, limit int) ([]models.Record, error) {
	if limit <= 0 {
		return nil, nil
	}

	keys, err := r.client.ZRevRange(r.ctx, r.anomalyListKey(nodeID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get anomalies: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.client.MGet(r.ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load anomalies: %w", err)
	}

	records := make([]models.Record, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// ключ успел истечь
			continue
		}
		var cr cachedRecord
		if err := json.Unmarshal([]byte(s), &cr); err != nil {
			return nil, fmt.Errorf("failed to decode anomaly: %w", err)
		}
		records = append(records, models.Record(cr))
	}

	return records, nil
}

// AnomalousReadings возвращает число аномальных строк за прогон
func (r *RedisCache) AnomalousReadings() (int64, error) {
	val, err := r.client.Get(r.ctx, r.prefix+"anomalous_readings").Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

func (r *RedisCache) anomalyListKey(nodeID string) string {
	return fmt.Sprintf("%sanomaly_list:%s", r.prefix, nodeID)
}

// Close закрывает соединение с Redis
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Ping проверяет доступность Redis
func (r *RedisCache) Ping() error {
	return r.client.Ping(r.ctx).Err()
}

// GetStats возвращает статистику пула соединений
func (r *RedisCache) GetStats() map[string]interface{} {
	stats := r.client.PoolStats()

	return map[string]interface{}{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}
