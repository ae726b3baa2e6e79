package database

import (
	"sync"

	"github.com/pkg/errors"
)

// MemStore in-process record store, for the memory driver and tests.
// Messages keep insertion order, which is creation order for records written
// by the hub.
type MemStore struct {
	mu       sync.RWMutex
	users    map[string]*User // keyed by username
	groups   map[string]*Group
	messages []*Message
}

// NewMemStore NewMemStore
func NewMemStore() *MemStore {
	return &MemStore{
		users:  make(map[string]*User),
		groups: make(map[string]*Group),
	}
}

// FindUser FindUser
func (s *MemStore) FindUser(username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, username)
	}
	clone := *user
	return &clone, nil
}

// UpdateOnline UpdateOnline
func (s *MemStore) UpdateOnline(username string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return errors.Wrap(ErrNotFound, username)
	}
	user.Online = online
	return nil
}

// ListUsers ListUsers
func (s *MemStore) ListUsers() ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*User, 0, len(s.users))
	for _, user := range s.users {
		clone := *user
		users = append(users, &clone)
	}
	return users, nil
}

// SaveUser SaveUser
func (s *MemStore) SaveUser(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *user
	s.users[user.Username] = &clone
	return nil
}

// SaveGroup SaveGroup
func (s *MemStore) SaveGroup(group *Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *group
	s.groups[group.ID] = &clone
	return nil
}

// FindGroup FindGroup
func (s *MemStore) FindGroup(id string) (*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.groups[id]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	clone := *group
	return &clone, nil
}

// FindGroupsByMember FindGroupsByMember
func (s *MemStore) FindGroupsByMember(username string) ([]*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]*Group, 0)
	for _, group := range s.groups {
		for _, member := range group.Members {
			if member == username {
				clone := *group
				groups = append(groups, &clone)
				break
			}
		}
	}
	return groups, nil
}

// SaveMessage SaveMessage
func (s *MemStore) SaveMessage(msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *msg
	s.messages = append(s.messages, &clone)
	return nil
}

// MarkRead MarkRead
func (s *MemStore) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range s.messages {
		if msg.ID == id {
			msg.Read = true
			return nil
		}
	}
	return errors.Wrap(ErrNotFound, id)
}

// QueryMessages QueryMessages
func (s *MemStore) QueryMessages(filter MessageFilter) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]*Message, 0)
	for _, msg := range s.messages {
		if matchFilter(msg, filter) {
			clone := *msg
			msgs = append(msgs, &clone)
		}
	}
	return msgs, nil
}

func matchFilter(msg *Message, filter MessageFilter) bool {
	switch {
	case filter.Public:
		return msg.Receiver == "" && msg.GroupID == ""
	case filter.GroupID != "":
		return msg.GroupID == filter.GroupID
	default:
		return (msg.Sender == filter.PeerA && msg.Receiver == filter.PeerB) ||
			(msg.Sender == filter.PeerB && msg.Receiver == filter.PeerA)
	}
}
