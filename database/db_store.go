package database

import (
	"fmt"
	"strings"

	// mysql driver, register only
	_ "github.com/go-sql-driver/mysql"
	"github.com/go-xorm/xorm"
	"github.com/pkg/errors"
	"xorm.io/core"
)

// DbStore mysql record store
type DbStore struct {
	engine *xorm.Engine
}

// NewDbStore new a DbStore, syncing the schema
func NewDbStore(engine *xorm.Engine) (*DbStore, error) {
	if err := engine.Sync2(new(User), new(Group), new(Message)); err != nil {
		return nil, errors.Wrap(err, "sync schema")
	}
	return &DbStore{engine: engine}, nil
}

// FindUser FindUser
func (s *DbStore) FindUser(username string) (*User, error) {
	user := User{Username: username}
	has, err := s.engine.Get(&user)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, errors.Wrap(ErrNotFound, username)
	}
	return &user, nil
}

// UpdateOnline UpdateOnline
func (s *DbStore) UpdateOnline(username string, online bool) error {
	aff, err := s.engine.Cols("online").Where("username = ?", username).
		Update(&User{Online: online})
	if err != nil {
		return err
	}
	if aff == 0 {
		return errors.Wrap(ErrNotFound, username)
	}
	return nil
}

// ListUsers ListUsers
func (s *DbStore) ListUsers() ([]*User, error) {
	users := make([]*User, 0)
	err := s.engine.Find(&users)
	return users, err
}

// SaveUser SaveUser
func (s *DbStore) SaveUser(user *User) error {
	_, err := s.engine.Insert(user)
	return err
}

// SaveGroup SaveGroup
func (s *DbStore) SaveGroup(group *Group) error {
	_, err := s.engine.Insert(group)
	return err
}

// FindGroup FindGroup
func (s *DbStore) FindGroup(id string) (*Group, error) {
	group := Group{ID: id}
	has, err := s.engine.Get(&group)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	return &group, nil
}

// FindGroupsByMember FindGroupsByMember. Members is a json column; the
// quoted-name match relies on usernames not containing quotes.
func (s *DbStore) FindGroupsByMember(username string) ([]*Group, error) {
	groups := make([]*Group, 0)
	err := s.engine.Where("members LIKE ?", fmt.Sprintf("%%%q%%", username)).
		Find(&groups)
	return groups, err
}

// SaveMessage SaveMessage
func (s *DbStore) SaveMessage(msg *Message) error {
	_, err := s.engine.Insert(msg)
	return err
}

// MarkRead MarkRead
func (s *DbStore) MarkRead(id string) error {
	aff, err := s.engine.Cols("read").Where("id = ?", id).
		Update(&Message{Read: true})
	if err != nil {
		return err
	}
	if aff == 0 {
		return errors.Wrap(ErrNotFound, id)
	}
	return nil
}

// QueryMessages QueryMessages
func (s *DbStore) QueryMessages(filter MessageFilter) ([]*Message, error) {
	session := s.engine.Asc("create_at")
	switch {
	case filter.Public:
		session.Where("receiver = ? AND group_id = ?", "", "")
	case filter.GroupID != "":
		session.Where("group_id = ?", filter.GroupID)
	default:
		session.Where("(sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?)",
			filter.PeerA, filter.PeerB, filter.PeerB, filter.PeerA)
	}
	msgs := make([]*Message, 0)
	err := session.Find(&msgs)
	return msgs, err
}

// InitMysqlDb init mysql database
func InitMysqlDb(source string) (*xorm.Engine, error) {
	url := source
	if !strings.Contains(url, "?") {
		url = fmt.Sprintf("%s?charset=utf8mb4&parseTime=True&loc=Local", source)
	}
	engine, err := xorm.NewEngine("mysql", url)
	if err != nil {
		return nil, err
	}

	engine.SetTableMapper(core.NewPrefixMapper(core.SnakeMapper{}, "t_"))
	engine.SetColumnMapper(core.SnakeMapper{})

	return engine, nil
}
