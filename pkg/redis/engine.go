package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Address  string
	Password string
	DB       int
}

func RedisClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
		Protocol: 2,
	})
}

// Connect builds a client and checks it answers before handing it out.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	client := RedisClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
