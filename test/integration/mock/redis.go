package mock

import (
	"context"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var redisOnce sync.Once
var redisMock *Redis

// Redis pairs an in-process miniredis server with a client pointed at it.
type Redis struct {
	Server *miniredis.Miniredis
	Client *redis.Client
}

func NewRedis() *Redis {
	if redisMock == nil {
		redisOnce.Do(
			func() {
				redisMock = openRedis()
			},
		)
	}

	return redisMock
}

func openRedis() *Redis {
	server, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	client := redis.NewClient(
		&redis.Options{
			Addr: server.Addr(),
		},
	)

	return &Redis{Server: server, Client: client}
}

// FastForward moves key expiry forward together with the mocked clock.
func (r *Redis) FastForward(d time.Duration) {
	r.Server.FastForward(d)
}

func (r *Redis) Clear() error {
	return r.Client.FlushAll(context.TODO()).Err()
}
