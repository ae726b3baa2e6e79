package database

import "sync"

// MemOnlineCache 在线状态缓存. Written from the hub goroutine, read from
// HTTP handlers, hence the lock.
type MemOnlineCache struct {
	mu     sync.RWMutex
	online map[string]bool
}

// NewMemOnlineCache NewMemOnlineCache
func NewMemOnlineCache() *MemOnlineCache {
	return &MemOnlineCache{online: make(map[string]bool)}
}

// SetOnline SetOnline
func (c *MemOnlineCache) SetOnline(username string) error {
	c.mu.Lock()
	c.online[username] = true
	c.mu.Unlock()
	return nil
}

// SetOffline SetOffline
func (c *MemOnlineCache) SetOffline(username string) error {
	c.mu.Lock()
	delete(c.online, username)
	c.mu.Unlock()
	return nil
}

// IsOnline IsOnline
func (c *MemOnlineCache) IsOnline(username string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online[username], nil
}

// OnlineUsers OnlineUsers
func (c *MemOnlineCache) OnlineUsers() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	users := make([]string, 0, len(c.online))
	for username := range c.online {
		users = append(users, username)
	}
	return users, nil
}
