package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/zeebo/blake3"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

// ErrMiss is returned when no device id is cached for a token.
var ErrMiss = errors.New("cache miss")

var errStale = errors.New("token evicted during resolution")

// generationTTL outlives any resolution in flight.
const generationTTL = 24 * time.Hour

// TokenCache remembers which device an access token resolved to.
// Keys hold a blake3 digest so raw tokens never reach redis.
type TokenCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenCache(client *redis.Client, ttl time.Duration) *TokenCache {
	return &TokenCache{client: client, ttl: ttl}
}

func (c *TokenCache) Get(ctx context.Context, token string, protocol domain.Protocol) (uuid.UUID, error) {
	val, err := c.client.Get(ctx, key(token, protocol)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrMiss
		}
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

// Generation returns the eviction counter of token. Read it before the
// registry lookup whose result is passed to Save.
func (c *TokenCache) Generation(ctx context.Context, token string) (int64, error) {
	n, err := c.client.Get(ctx, generationKey(token)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Save stores deviceID for token unless Evict ran since generation was read.
// A skipped save is not an error.
func (c *TokenCache) Save(ctx context.Context, token string, protocol domain.Protocol, deviceID uuid.UUID, generation int64) error {
	gk := generationKey(token)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, gk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(token, protocol), deviceID.String(), c.ttl)
			return nil
		})
		return err
	}, gk)
	if errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Evict drops the entries for token under every protocol and bumps its
// generation so in-flight resolutions cannot re-add them.
func (c *TokenCache) Evict(ctx context.Context, token string) error {
	gk := generationKey(token)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, gk)
		pipe.Expire(ctx, gk, generationTTL)
		pipe.Del(ctx, key(token, domain.ProtocolHTTP), key(token, domain.ProtocolCoAP))
		return nil
	})
	return err
}

func digest(token string) string {
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func key(token string, protocol domain.Protocol) string {
	return "access_token:" + string(protocol) + ":" + digest(token)
}

func generationKey(token string) string {
	return "access_token_gen:" + digest(token)
}
