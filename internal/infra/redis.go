// README: Redis client initialization for the pricing settings cache.
package infra

import "github.com/redis/go-redis/v9"

func NewRedis(addr string) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
}
