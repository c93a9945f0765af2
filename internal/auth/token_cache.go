package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

// TokenCache keeps verified claims in redis so repeated requests with the
// same bearer token skip signature checks. A nil redis client disables it.
type TokenCache struct {
	redis radix.Client
	ttl   time.Duration
	now   func() time.Time
}

func NewTokenCache(redis radix.Client, ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TokenCache{redis: redis, ttl: ttl, now: time.Now}
}

func (c *TokenCache) cacheKey(token string) string {
	sum := sha1.Sum([]byte(token))
	return "auth:jwt:" + hex.EncodeToString(sum[:])
}

// Get returns cached claims for token. Expired entries are ignored.
func (c *TokenCache) Get(ctx context.Context, token string) (*Claims, bool, error) {
	if c == nil || c.redis == nil {
		return nil, false, nil
	}
	key := c.cacheKey(token)
	var raw string
	if err := c.redis.Do(radix.Cmd(&raw, "GET", key)); err != nil {
		return nil, false, err
	}
	if raw == "" {
		return nil, false, nil
	}
	var claims Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		_ = c.redis.Do(radix.Cmd(nil, "DEL", key))
		return nil, false, nil
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(c.now()) {
		return nil, false, nil
	}
	return &claims, true, nil
}

// Set caches claims for at most the configured ttl and never past token expiry.
func (c *TokenCache) Set(ctx context.Context, token string, claims *Claims) error {
	if c == nil || c.redis == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := c.ttl
	if left := claims.ExpiresAt.Sub(c.now()); left < ttl {
		ttl = left
	}
	secs := int64(ttl / time.Second)
	if secs <= 0 {
		return nil
	}
	body, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	return c.redis.Do(radix.FlatCmd(nil, "SETEX", c.cacheKey(token), secs, body))
}

// Verifier checks bearer tokens, consulting the cache first.
type Verifier struct {
	Issuer *Issuer
	Cache  *TokenCache
}

func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	if claims, ok, err := v.Cache.Get(ctx, token); err == nil && ok {
		return claims, nil
	}
	claims, err := v.Issuer.Verify(token)
	if err != nil {
		return nil, err
	}
	_ = v.Cache.Set(ctx, token, claims)
	return claims, nil
}
