package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const lockRetryInterval = 25 * time.Millisecond

// Only the holder's token may release the lock.
var unlockScript = redisclient.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a SET NX based mutex shared by every process talking to the
// same Redis. The TTL bounds how long a crashed holder blocks others.
type Locker struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewLocker(client *redisclient.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// Lock blocks until key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:" + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				if err := unlockScript.Run(context.Background(), l.client, []string{lockKey}, token).Err(); err != nil {
					log.Warn().Err(err).Str("key", lockKey).Msg("failed to release lock")
				}
			}, nil
		}

		timer := time.NewTimer(lockRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
