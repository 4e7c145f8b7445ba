package collection

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis keeps each collection in a hash (id to JSON body) plus a list that
// remembers insertion order.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis stores collections under prefix, "campuslink:coll:" by default.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "campuslink:coll:"
	}
	return &Redis{client: client, prefix: prefix}
}

// createScript appends the id to the order list and stores the body in one
// server-side step. The push runs first so a failure leaves nothing behind.
var createScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	return 0
end
redis.call('RPUSH', KEYS[2], ARGV[1])
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

func (r *Redis) hashKey(coll string) string  { return r.prefix + coll }
func (r *Redis) orderKey(coll string) string { return r.prefix + coll + ":order" }

func (r *Redis) List(ctx context.Context, coll string, filter map[string]string) ([]Record, error) {
	ids, err := r.client.LRange(ctx, r.orderKey(coll), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := []Record{}
	if len(ids) == 0 {
		return out, nil
	}
	bodies, err := r.client.HMGet(ctx, r.hashKey(coll), ids...).Result()
	if err != nil {
		return nil, err
	}
	for _, b := range bodies {
		s, ok := b.(string)
		if !ok {
			continue
		}
		rec, err := decode([]byte(s))
		if err != nil {
			return nil, err
		}
		if Matches(rec, filter) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *Redis) Get(ctx context.Context, coll, id string) (Record, error) {
	s, err := r.client.HGet(ctx, r.hashKey(coll), id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode([]byte(s))
}

func (r *Redis) Create(ctx context.Context, coll string, rec Record) (Record, error) {
	rec, err := forCreate(rec)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	keys := []string{r.hashKey(coll), r.orderKey(coll)}
	created, err := createScript.Run(ctx, r.client, keys, rec.ID(), string(body)).Int()
	if err != nil {
		return nil, err
	}
	if created == 0 {
		return nil, ErrDuplicateID
	}
	return rec, nil
}

func (r *Redis) Replace(ctx context.Context, coll, id string, rec Record) (Record, error) {
	rec, err := forReplace(id, rec)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	exists, err := r.client.HExists(ctx, r.hashKey(coll), id).Result()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	if err := r.client.HSet(ctx, r.hashKey(coll), id, body).Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Redis) Delete(ctx context.Context, coll, id string) error {
	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, r.hashKey(coll), id)
		pipe.LRem(ctx, r.orderKey(coll), 0, id)
		return nil
	})
	if err != nil {
		return err
	}
	if removed.Val() == 0 {
		return ErrNotFound
	}
	return nil
}
