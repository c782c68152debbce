package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"udyam/pkg/platform/sentinel"
)

// RedisStore keeps issued codes in a per-Aadhaar list. Entries are never
// expired by Redis: expiry stays a computed predicate so the full issuance
// history remains available for audit, matching the SQL store.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func codesKey(aadhaarNumber string) string {
	return "otp:codes:" + aadhaarNumber
}

type redisCode struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Used      bool   `json:"used"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
	UsedAt    int64  `json:"used_at,omitempty"`
}

// redeemScript scans newest-first and marks the first eligible entry used.
// Running server-side keeps check-and-mark atomic against replays.
var redeemScript = redis.NewScript(`
local items = redis.call('LRANGE', KEYS[1], 0, -1)
for i, raw in ipairs(items) do
  local c = cjson.decode(raw)
  if c.used == false and tonumber(c.expires_at) > tonumber(ARGV[2]) and c.code == ARGV[1] then
    c.used = true
    c.used_at = tonumber(ARGV[2])
    redis.call('LSET', KEYS[1], i - 1, cjson.encode(c))
    return cjson.encode(c)
  end
end
return false
`)

func (s *RedisStore) Save(ctx context.Context, code *Code) error {
	id, err := s.client.Incr(ctx, "otp:next-id").Result()
	if err != nil {
		return fmt.Errorf("allocate otp id: %w", err)
	}
	code.ID = id

	payload, err := json.Marshal(redisCode{
		ID:        code.ID,
		Code:      code.Code,
		Used:      code.Used,
		CreatedAt: code.CreatedAt.Unix(),
		ExpiresAt: code.ExpiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal otp code: %w", err)
	}
	if err := s.client.LPush(ctx, codesKey(code.AadhaarNumber), payload).Err(); err != nil {
		return fmt.Errorf("store otp code: %w", err)
	}
	return nil
}

func (s *RedisStore) Redeem(ctx context.Context, aadhaarNumber, submitted string, now time.Time) (*Code, error) {
	raw, err := redeemScript.Run(ctx, s.client, []string{codesKey(aadhaarNumber)}, submitted, now.Unix()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("redeem otp code: %w", err)
	}

	var rc redisCode
	if err := json.Unmarshal([]byte(raw.(string)), &rc); err != nil {
		return nil, fmt.Errorf("unmarshal otp code: %w", err)
	}
	return rc.toCode(aadhaarNumber), nil
}

func (s *RedisStore) ListByAadhaar(ctx context.Context, aadhaarNumber string) ([]*Code, error) {
	items, err := s.client.LRange(ctx, codesKey(aadhaarNumber), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list otp codes: %w", err)
	}

	// LPUSH stores newest first; return creation order like the SQL store.
	out := make([]*Code, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		var rc redisCode
		if err := json.Unmarshal([]byte(items[i]), &rc); err != nil {
			return nil, fmt.Errorf("unmarshal otp code: %w", err)
		}
		out = append(out, rc.toCode(aadhaarNumber))
	}
	return out, nil
}

func (rc redisCode) toCode(aadhaarNumber string) *Code {
	c := &Code{
		ID:            rc.ID,
		AadhaarNumber: aadhaarNumber,
		Code:          rc.Code,
		Used:          rc.Used,
		CreatedAt:     time.Unix(rc.CreatedAt, 0).UTC(),
		ExpiresAt:     time.Unix(rc.ExpiresAt, 0).UTC(),
	}
	if rc.UsedAt != 0 {
		usedAt := time.Unix(rc.UsedAt, 0).UTC()
		c.UsedAt = &usedAt
	}
	return c
}
