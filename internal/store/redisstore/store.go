package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fitmind/fitmind/internal/profile"
	"github.com/redis/go-redis/v9"
)

const profileTTL = 10 * time.Minute

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// NewWithClient wraps an existing client, e.g. one pointed at a test server.
func NewWithClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func profileKey(userID uint64) string {
	return fmt.Sprintf("profile:%d", userID)
}

// GetProfile returns (nil, nil) on a cache miss.
func (s *Store) GetProfile(ctx context.Context, userID uint64) (*profile.Profile, error) {
	raw, err := s.rdb.Get(ctx, profileKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeProfile(raw)
}

func (s *Store) SetProfile(ctx context.Context, p *profile.Profile) error {
	raw, err := encodeProfile(p)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, profileKey(p.UserID), raw, profileTTL).Err()
}

func (s *Store) DeleteProfile(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, profileKey(userID)).Err()
}

// cachedProfile carries the ids and timestamps that Profile hides from JSON.
type cachedProfile struct {
	ID        uint64           `json:"id"`
	UserID    uint64           `json:"user_id"`
	CreatedAt time.Time        `json:"created_at"`
	Profile   *profile.Profile `json:"profile"`
}

func encodeProfile(p *profile.Profile) ([]byte, error) {
	return json.Marshal(cachedProfile{
		ID:        p.ID,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
		Profile:   p,
	})
}

func decodeProfile(raw []byte) (*profile.Profile, error) {
	var c cachedProfile
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.Profile == nil {
		return nil, errors.New("redisstore: cached profile is empty")
	}
	c.Profile.ID = c.ID
	c.Profile.UserID = c.UserID
	c.Profile.CreatedAt = c.CreatedAt
	return c.Profile, nil
}
