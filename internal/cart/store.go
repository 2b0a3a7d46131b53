package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OG2511/maccabi-stickers-shop/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store persists cart snapshots in Redis, keyed by session token. The
// engine never reads the store itself; it always receives cart values.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(token string) string {
	return "cart:" + token
}

func (s *Store) Get(ctx context.Context, token string) ([]Line, error) {
	data, err := s.rdb.Get(ctx, key(token)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		// A corrupt snapshot is unrecoverable; drop it.
		logger.FromCtx(ctx).Warn("discarding corrupt cart snapshot",
			zap.String("token", token),
			zap.Error(err),
		)
		_ = s.rdb.Del(ctx, key(token)).Err()
		return nil, nil
	}

	return lines, nil
}

func (s *Store) Save(ctx context.Context, token string, lines []Line) error {
	if len(lines) == 0 {
		return s.Clear(ctx, token)
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}

	if err := s.rdb.Set(ctx, key(token), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return nil
}
