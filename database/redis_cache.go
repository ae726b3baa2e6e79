package database

import (
	"fmt"

	"github.com/go-redis/redis"
)

const onlineUsersKey = "relay:online"

// RedisOnlineCache redis OnlineCache. Lets other processes (and the
// /q/online endpoint) observe presence without touching the record store.
type RedisOnlineCache struct {
	client *redis.Client
}

// NewRedisOnlineCache NewRedisOnlineCache
func NewRedisOnlineCache(client *redis.Client) *RedisOnlineCache {
	return &RedisOnlineCache{client: client}
}

// SetOnline SetOnline
func (c *RedisOnlineCache) SetOnline(username string) error {
	return c.client.SAdd(onlineUsersKey, username).Err()
}

// SetOffline SetOffline
func (c *RedisOnlineCache) SetOffline(username string) error {
	return c.client.SRem(onlineUsersKey, username).Err()
}

// IsOnline IsOnline
func (c *RedisOnlineCache) IsOnline(username string) (bool, error) {
	return c.client.SIsMember(onlineUsersKey, username).Result()
}

// OnlineUsers OnlineUsers
func (c *RedisOnlineCache) OnlineUsers() ([]string, error) {
	return c.client.SMembers(onlineUsersKey).Result()
}

// InitRedis return a redis instance
func InitRedis(ip string, port int, pass string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", ip, port),
		Password: pass,
	})
}
