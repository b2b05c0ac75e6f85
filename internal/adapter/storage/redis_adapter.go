package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/stockroom/internal/core/domain"
)

const DefaultInventoryKey = "inventory"

// Result codes shared by the Lua scripts below.
const (
	scriptLimit      = -2
	scriptNotFound   = -1
	scriptOutOfStock = 0
	scriptOK         = 1
)

var setQuantityScript = redis.NewScript(`
local key = KEYS[1]
local name = ARGV[1]

if redis.call('HEXISTS', key, name) == 0 then
	return -1
end

redis.call('HSET', key, name, ARGV[2])
return 1
`)

var adjustStockScript = redis.NewScript(`
local key = KEYS[1]
local name = ARGV[1]
local delta = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

local current = redis.call('HGET', key, name)
if not current then
	return {-1, 0}
end

current = tonumber(current)
if current + delta > max then
	return {-2, current}
end
if current + delta < 0 then
	return {0, current}
end

return {1, redis.call('HINCRBY', key, name, delta)}
`)

// RedisAdapter stores every item as a field of one hash. Each script runs
// atomically on the server, which serializes mutations per item.
type RedisAdapter struct {
	client *redis.Client
	key    string
}

func NewRedisAdapter(client *redis.Client, key string) *RedisAdapter {
	if key == "" {
		key = DefaultInventoryKey
	}
	return &RedisAdapter{client: client, key: key}
}

// EnsureSchema only checks connectivity; the hash appears on first write.
func (r *RedisAdapter) EnsureSchema(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *RedisAdapter) Create(ctx context.Context, name string, quantity int) error {
	if err := domain.ValidateName(name); err != nil {
		return err
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return err
	}

	ok, err := r.client.HSetNX(ctx, r.key, name, quantity).Result()
	if err != nil {
		return fmt.Errorf("hsetnx: %w", err)
	}
	if !ok {
		return fmt.Errorf("create %q: %w", name, domain.ErrAlreadyExists)
	}
	return nil
}

func (r *RedisAdapter) Delete(ctx context.Context, name string) error {
	n, err := r.client.HDel(ctx, r.key, name).Result()
	if err != nil {
		return fmt.Errorf("hdel: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

func (r *RedisAdapter) SetQuantity(ctx context.Context, name string, quantity int) error {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return err
	}

	result, err := setQuantityScript.Run(ctx, r.client, []string{r.key}, name, quantity).Int()
	if err != nil {
		return fmt.Errorf("set quantity script: %w", err)
	}
	if result == scriptNotFound {
		return fmt.Errorf("set quantity %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

func (r *RedisAdapter) Adjust(ctx context.Context, name string, delta int) (int, error) {
	result, err := adjustStockScript.Run(ctx, r.client, []string{r.key}, name, delta, domain.MaxQuantity).Int64Slice()
	if err != nil {
		return 0, fmt.Errorf("adjust script: %w", err)
	}
	if len(result) != 2 {
		return 0, fmt.Errorf("adjust script: unexpected reply %v", result)
	}

	quantity := int(result[1])
	switch result[0] {
	case scriptOK:
		return quantity, nil
	case scriptOutOfStock:
		return quantity, fmt.Errorf("adjust %q: %w", name, domain.ErrOutOfStock)
	case scriptLimit:
		return quantity, fmt.Errorf("adjust %q: %w", name, domain.ErrQuantityLimit)
	case scriptNotFound:
		return 0, fmt.Errorf("adjust %q: %w", name, domain.ErrNotFound)
	default:
		return 0, fmt.Errorf("adjust script: unknown status %d", result[0])
	}
}

func (r *RedisAdapter) List(ctx context.Context) ([]domain.Item, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall: %w", err)
	}

	items := make([]domain.Item, 0, len(fields))
	for name, raw := range fields {
		quantity, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("item %q has non-integer quantity %q", name, raw)
		}
		items = append(items, domain.Item{Name: name, Quantity: quantity})
	}
	return items, nil
}

func (r *RedisAdapter) Close() error {
	return r.client.Close()
}
