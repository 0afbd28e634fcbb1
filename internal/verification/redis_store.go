package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// issueScript atomically replaces any prior entry for the key. The Redis
// key lives past the logical expiry so Validate can distinguish an expired
// code from one that never existed.
var issueScript = redis.NewScript(`
local key = KEYS[1]
local code = ARGV[1]
local expires_at_ms = ARGV[2]
local retain_ms = ARGV[3]

redis.call("DEL", key)
redis.call("HSET", key, "code", code, "attempts", 0, "expires_at", expires_at_ms)
redis.call("PEXPIRE", key, retain_ms)
return 1
`)

// validateScript performs the read-compare-increment-delete sequence as a
// single atomic unit per key, mirroring MemoryCodeStore.Validate.
var validateScript = redis.NewScript(`
local key = KEYS[1]
local candidate = ARGV[1]
local now_ms = tonumber(ARGV[2])
local max_attempts = tonumber(ARGV[3])

if redis.call("EXISTS", key) == 0 then
  return "not_found"
end

local expires_at = tonumber(redis.call("HGET", key, "expires_at"))
if now_ms > expires_at then
  redis.call("DEL", key)
  return "expired"
end

local attempts = redis.call("HINCRBY", key, "attempts", 1)
if attempts > max_attempts then
  redis.call("DEL", key)
  return "too_many_attempts"
end

if redis.call("HGET", key, "code") ~= candidate then
  return "mismatch"
end

redis.call("DEL", key)
return "ok"
`)

// RedisCodeStore is a CodeStore backed by a shared Redis instance, for
// deployments running more than one replica. All mutations run inside Lua
// scripts so the attempt ceiling holds across instances.
type RedisCodeStore struct {
	client      redis.UniversalClient
	prefix      string
	ttl         time.Duration
	maxAttempts int
}

// NewRedisCodeStore creates a Redis-backed code store. Zero values for ttl
// and maxAttempts select the defaults.
func NewRedisCodeStore(client redis.UniversalClient, ttl time.Duration, maxAttempts int) *RedisCodeStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &RedisCodeStore{
		client:      client,
		prefix:      "verify",
		ttl:         ttl,
		maxAttempts: maxAttempts,
	}
}

func (s *RedisCodeStore) redisKey(phone, organizationID string) string {
	return s.prefix + ":" + codeKey(phone, organizationID)
}

// Issue generates a fresh code for the key, superseding any prior entry
func (s *RedisCodeStore) Issue(ctx context.Context, phone, organizationID string) (string, error) {
	code, err := GenerateCode(DefaultCodeLength)
	if err != nil {
		return "", err
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl).UnixMilli()
	// Retain past logical expiry so the next Validate reports Expired
	// instead of NotFound, then let Redis reclaim the key.
	retain := s.ttl + time.Hour

	_, err = issueScript.Run(
		ctx,
		s.client,
		[]string{s.redisKey(phone, organizationID)},
		code,
		expiresAt,
		retain.Milliseconds(),
	).Result()
	if err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}
	return code, nil
}

// Validate evaluates a candidate code atomically against the shared entry
func (s *RedisCodeStore) Validate(ctx context.Context, phone, organizationID, candidate string) error {
	raw, err := validateScript.Run(
		ctx,
		s.client,
		[]string{s.redisKey(phone, organizationID)},
		candidate,
		time.Now().UnixMilli(),
		s.maxAttempts,
	).Result()
	if err != nil {
		return fmt.Errorf("failed to validate verification code: %w", err)
	}

	outcome, ok := raw.(string)
	if !ok {
		return fmt.Errorf("unexpected validate result type %T", raw)
	}

	switch outcome {
	case "ok":
		return nil
	case "not_found":
		return ErrCodeNotFound
	case "expired":
		return ErrCodeExpired
	case "too_many_attempts":
		return ErrTooManyAttempts
	case "mismatch":
		return ErrCodeMismatch
	default:
		return fmt.Errorf("unknown validate outcome %q", outcome)
	}
}

// Invalidate removes any entry for the key
func (s *RedisCodeStore) Invalidate(ctx context.Context, phone, organizationID string) error {
	if err := s.client.Del(ctx, s.redisKey(phone, organizationID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate verification code: %w", err)
	}
	return nil
}
