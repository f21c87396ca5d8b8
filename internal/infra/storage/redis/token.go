package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/herowatch/herowatch/internal/deathwatch"
	"github.com/herowatch/herowatch/internal/hero"
	"github.com/herowatch/herowatch/internal/revealwatch"

	redis "github.com/redis/go-redis/v9"
)

const (
	// tokenKeyPrefix namespaces all token state keys.
	tokenKeyPrefix = "herowatch:token"

	// unrevealedSetKey holds the IDs of every token persisted with
	// revealed=false, for the bootstrap scan.
	unrevealedSetKey = "herowatch:token:unrevealed"
)

func tokenKey(tokenID uint64) string {
	return fmt.Sprintf("%s:%d", tokenKeyPrefix, tokenID)
}

// ensureTrackedScript creates the record with revealed=false unless the
// token is already revealed. It also repairs a missing unrevealed-set
// entry for a known unrevealed token.
var ensureTrackedScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'revealed') == '1' then
	return 0
end
redis.call('HSETNX', KEYS[1], 'revealed', '0')
redis.call('HSETNX', KEYS[1], 'death', '0')
redis.call('SADD', KEYS[2], ARGV[1])
return 1
`)

// markRevealedScript performs the atomic false-to-true transition. Only
// the first writer gets 1 back; it never runs the downgrade direction.
var markRevealedScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'revealed') == '1' then
	return 0
end
redis.call('HSET', KEYS[1], 'revealed', '1', 'image', ARGV[2], 'attributes', ARGV[3])
redis.call('SREM', KEYS[2], ARGV[1])
return 1
`)

var (
	_ revealwatch.TokenStorage = (*client)(nil)
	_ deathwatch.DeathRecorder = (*client)(nil)
)

// Get returns the persisted record for tokenID, or
// revealwatch.ErrTokenNotFound when no record exists.
func (c *client) Get(ctx context.Context, tokenID uint64) (hero.Record, error) {
	fields, err := c.conn.HGetAll(ctx, tokenKey(tokenID)).Result()
	if err != nil {
		return hero.Record{}, err
	}

	if len(fields) == 0 {
		return hero.Record{}, revealwatch.ErrTokenNotFound
	}

	record := hero.Record{
		TokenID:       tokenID,
		Revealed:      fields["revealed"] == "1",
		DeathRecorded: fields["death"] == "1",
		Image:         fields["image"],
	}

	if raw, ok := fields["attributes"]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &record.Attributes); err != nil {
			return hero.Record{}, fmt.Errorf("decoding stored attributes for token %d: %w", tokenID, err)
		}
	}

	return record, nil
}

// EnsureTracked creates the unrevealed record for an unknown token. It is
// a no-op for revealed tokens.
func (c *client) EnsureTracked(ctx context.Context, tokenID uint64) error {
	keys := []string{tokenKey(tokenID), unrevealedSetKey}
	return ensureTrackedScript.Run(ctx, c.conn, keys, tokenID).Err()
}

// MarkRevealed transitions the token to revealed=true exactly once. The
// first caller gets first=true; later callers observe the already-set
// flag and must not announce.
func (c *client) MarkRevealed(ctx context.Context, tokenID uint64, image string, attrs []hero.TraitAttribute) (bool, error) {
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return false, fmt.Errorf("encoding attributes for token %d: %w", tokenID, err)
	}

	keys := []string{tokenKey(tokenID), unrevealedSetKey}
	first, err := markRevealedScript.Run(ctx, c.conn, keys, tokenID, image, string(encoded)).Int()
	if err != nil {
		return false, err
	}

	return first == 1, nil
}

// ListUnrevealed returns every token ID persisted with revealed=false.
func (c *client) ListUnrevealed(ctx context.Context) ([]uint64, error) {
	members, err := c.conn.SMembers(ctx, unrevealedSetKey).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt unrevealed set member %q: %w", member, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// MarkDeath records the death marker on the token hash. Best effort by
// contract; callers ignore failures beyond logging.
func (c *client) MarkDeath(ctx context.Context, tokenID uint64) error {
	return c.conn.HSet(ctx, tokenKey(tokenID), "death", "1").Err()
}
