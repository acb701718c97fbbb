package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"production-simulator/internal/models"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "simulation:snapshot:"

// Store persists exported simulation documents in Redis, keyed by name.
// Live simulation state never touches it; only explicit save/load calls do.
type Store struct {
	rdb *redis.Client
}

// NewStore connects to Redis and verifies the connection.
func NewStore(addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Store{rdb: rdb}, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Save stores an exported document under the given name, overwriting any
// previous snapshot with that name.
func (s *Store) Save(ctx context.Context, name string, doc models.SimulationExport) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.rdb.Set(ctx, keyPrefix+name, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot %q: %w", name, err)
	}
	return nil
}

// Load retrieves an exported document by name.
func (s *Store) Load(ctx context.Context, name string) (models.SimulationExport, error) {
	var doc models.SimulationExport

	data, err := s.rdb.Get(ctx, keyPrefix+name).Bytes()
	if err == redis.Nil {
		return doc, fmt.Errorf("snapshot %q not found", name)
	}
	if err != nil {
		return doc, fmt.Errorf("failed to load snapshot %q: %w", name, err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to unmarshal snapshot %q: %w", name, err)
	}
	return doc, nil
}

// List returns the names of all stored snapshots, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	keys, err := s.rdb.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, strings.TrimPrefix(key, keyPrefix))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a snapshot by name.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.rdb.Del(ctx, keyPrefix+name).Err()
}
