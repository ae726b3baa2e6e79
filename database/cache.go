package database

// OnlineCache 定义了在线状态缓存操作接口. It mirrors the online username
// set for cheap presence probes; the durable truth stays in UserStore.
type OnlineCache interface {
	SetOnline(username string) error
	SetOffline(username string) error
	IsOnline(username string) (bool, error)
	OnlineUsers() ([]string, error)
}
