package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"probook/internal/models"
)

// DefaultRedisKey is the key the collection lives under when the config
// does not name one.
const DefaultRedisKey = "probook:bookings:v1"

// RedisStore keeps the whole collection as one JSON value under a single
// key, mirroring the original single-slot durable store.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zerolog.Logger
}

// NewRedisStore wraps an existing client. The key may be empty, in which
// case DefaultRedisKey is used.
func NewRedisStore(client *redis.Client, key string, logger *zerolog.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

func (s *RedisStore) Load(ctx context.Context) ([]models.Booking, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return []models.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bookings key: %w", err)
	}

	var bookings []models.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("bookings key unreadable, starting empty")
		return []models.Booking{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

func (s *RedisStore) Save(ctx context.Context, bookings []models.Booking) error {
	if bookings == nil {
		bookings = []models.Booking{}
	}
	data, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("encode bookings: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("write bookings key: %w", err)
	}
	return nil
}
