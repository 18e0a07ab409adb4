package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const settingsKey = "settings:store"

// Store persists settings and goals.
type Store interface {
	Settings(ctx context.Context) (StoreSettings, error)
	SaveSettings(ctx context.Context, s StoreSettings) error
	Targets(ctx context.Context, year int) (map[string]int64, error)
	SaveTargets(ctx context.Context, year int, targets map[string]int64) error
	Achieved(ctx context.Context, year int) (map[string]int64, error)
	AddAchieved(ctx context.Context, year int, month string, amount int64) error
}

// RedisStore keeps the settings record as JSON and each year's goals in two
// hashes, targets and achieved amounts, keyed by month name.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func targetsKey(year int) string  { return fmt.Sprintf("settings:goals:%d:target", year) }
func achievedKey(year int) string { return fmt.Sprintf("settings:goals:%d:achieved", year) }

// Settings returns the saved record, or Defaults when none was saved.
func (s *RedisStore) Settings(ctx context.Context) (StoreSettings, error) {
	data, err := s.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Defaults(), nil
	}
	if err != nil {
		return StoreSettings{}, fmt.Errorf("settings: load: %w", err)
	}
	out := Defaults()
	if err := json.Unmarshal(data, &out); err != nil {
		return StoreSettings{}, fmt.Errorf("settings: decode: %w", err)
	}
	return out, nil
}

func (s *RedisStore) SaveSettings(ctx context.Context, record StoreSettings) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, settingsKey, data, 0).Err()
}

func (s *RedisStore) Targets(ctx context.Context, year int) (map[string]int64, error) {
	return s.readHash(ctx, targetsKey(year))
}

// SaveTargets replaces every target of year atomically.
func (s *RedisStore) SaveTargets(ctx context.Context, year int, targets map[string]int64) error {
	key := targetsKey(year)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(targets) == 0 {
			return nil
		}
		values := make(map[string]any, len(targets))
		for month, target := range targets {
			values[month] = target
		}
		pipe.HSet(ctx, key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("settings: save targets: %w", err)
	}
	return nil
}

func (s *RedisStore) Achieved(ctx context.Context, year int) (map[string]int64, error) {
	return s.readHash(ctx, achievedKey(year))
}

// AddAchieved increments the achieved amount of a month.
func (s *RedisStore) AddAchieved(ctx context.Context, year int, month string, amount int64) error {
	if err := s.client.HIncrBy(ctx, achievedKey(year), month, amount).Err(); err != nil {
		return fmt.Errorf("settings: add achieved: %w", err)
	}
	return nil
}

// SeedGoals writes goals for years that have no targets yet.
func (s *RedisStore) SeedGoals(ctx context.Context, goals []MonthlyGoal) error {
	byYear := make(map[int][]MonthlyGoal)
	for _, g := range goals {
		byYear[g.Year] = append(byYear[g.Year], g)
	}
	for year, yearGoals := range byYear {
		exists, err := s.client.Exists(ctx, targetsKey(year)).Result()
		if err != nil {
			return fmt.Errorf("settings: seed goals: %w", err)
		}
		if exists > 0 {
			continue
		}
		_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, g := range yearGoals {
				pipe.HSet(ctx, targetsKey(year), g.Month, g.Target)
				pipe.HSet(ctx, achievedKey(year), g.Month, g.Achieved)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("settings: seed goals %d: %w", year, err)
		}
	}
	return nil
}

func (s *RedisStore) readHash(ctx context.Context, key string) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", key, err)
	}
	out := make(map[string]int64, len(raw))
	for month, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("settings: %s %s: %w", key, month, err)
		}
		out[month] = n
	}
	return out, nil
}

var _ Store = (*RedisStore)(nil)
