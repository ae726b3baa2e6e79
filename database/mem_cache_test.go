package database

import (
	"fmt"
	"testing"
)

func TestMemOnlineCache(t *testing.T) {
	cache := NewMemOnlineCache()
	for index := 0; index < 100; index++ {
		cache.SetOnline(fmt.Sprintf("user%v", index))
	}
	for index := 0; index < 50; index++ {
		cache.SetOffline(fmt.Sprintf("user%v", index))
	}

	users, err := cache.OnlineUsers()
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 50 {
		t.Error("OnlineUsers ", len(users))
	}

	online, _ := cache.IsOnline("user75")
	if !online {
		t.Error("user75 should be online")
	}
	online, _ = cache.IsOnline("user25")
	if online {
		t.Error("user25 should be offline")
	}
}
