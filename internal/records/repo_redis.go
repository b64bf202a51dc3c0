package records

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// redisAddScript admits a record only when its member was not yet in the
// key set. KEYS[1] is the key set, KEYS[2] the ordered list.
var redisAddScript = redis.NewScript(`
if redis.call("SADD", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("RPUSH", KEYS[2], ARGV[2])
return 1
`)

const defaultRedisPrefix = "records"

// RedisRepo stores records in Redis: a list keeps insertion order and a set
// holds one member per admitted value.
type RedisRepo struct {
	Client redis.UniversalClient
	Prefix string
}

func NewRedisRepo(client redis.UniversalClient, prefix string) *RedisRepo {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisRepo{Client: client, Prefix: prefix}
}

func (r *RedisRepo) Add(ctx context.Context, rec Record) error {
	if err := Validate(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	added, err := redisAddScript.Run(ctx, r.Client, []string{r.setKey(), r.listKey()}, redisMember(rec), data).Int()
	if err != nil {
		return fmt.Errorf("redis add record: %w", err)
	}
	if added == 0 {
		return &DuplicateError{Record: rec}
	}
	return nil
}

func (r *RedisRepo) AddWith(ctx context.Context, name string, age int) error {
	return r.Add(ctx, NewRecord(name, age))
}

func (r *RedisRepo) All(ctx context.Context) ([]Record, error) {
	vals, err := r.Client.LRange(ctx, r.listKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list records: %w", err)
	}
	out := make([]Record, 0, len(vals))
	for _, v := range vals {
		var rec Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// AllWithName scans the full list; Redis keeps no per-name index here.
func (r *RedisRepo) AllWithName(ctx context.Context, name string) ([]Record, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterByName(all, name), nil
}

func (r *RedisRepo) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisRepo) Close() error {
	return r.Client.Close()
}

func (r *RedisRepo) setKey() string  { return r.Prefix + ":keys" }
func (r *RedisRepo) listKey() string { return r.Prefix + ":list" }

// redisMember encodes the full value. The name length keeps names that
// contain ':' from colliding.
func redisMember(rec Record) string {
	return strconv.Itoa(len(rec.Name)) + ":" + rec.Name + ":" + strconv.Itoa(rec.Age)
}

var _ Repo = (*RedisRepo)(nil)
