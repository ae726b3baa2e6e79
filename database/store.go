package database

import "github.com/pkg/errors"

// ErrNotFound the referenced record does not exist
var ErrNotFound = errors.New("record not found")

// UserStore 定义了用户记录操作接口
type UserStore interface {
	FindUser(username string) (*User, error)
	// UpdateOnline flips the durable online flag. ErrNotFound when no such
	// user exists.
	UpdateOnline(username string, online bool) error
	ListUsers() ([]*User, error)
	SaveUser(user *User) error
}

// GroupStore 定义了群记录操作接口
type GroupStore interface {
	SaveGroup(group *Group) error
	FindGroup(id string) (*Group, error)
	FindGroupsByMember(username string) ([]*Group, error)
}

// MessageFilter selects one conversation. Exactly one of the three forms is
// used: Public, GroupID, or the PeerA/PeerB pair (both directions).
type MessageFilter struct {
	Public  bool
	GroupID string
	PeerA   string
	PeerB   string
}

// MessageStore 定义了消息记录操作接口
type MessageStore interface {
	SaveMessage(msg *Message) error
	// MarkRead sets the read flag. ErrNotFound when no such message exists.
	MarkRead(id string) error
	// QueryMessages returns the conversation in creation order.
	QueryMessages(filter MessageFilter) ([]*Message, error)
}

// Store bundles the three record stores one driver provides.
type Store interface {
	UserStore
	GroupStore
	MessageStore
}
