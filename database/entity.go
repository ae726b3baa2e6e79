package database

import "time"

// User 用户身份对象. Credentials live elsewhere; the relay only flips the
// online flag and reads the list for presence broadcasts.
type User struct {
	ID       string    `xorm:"pk varchar(36) 'id'" bson:"_id" json:"id"`
	Username string    `xorm:"varchar(64) unique" bson:"username" json:"username"`
	Online   bool      `bson:"online" json:"online"`
	CreateAt time.Time `bson:"createAt" json:"createAt"`
}

// Group 代表一个群，发往这个群的消息会转发给所有成员。
// 成员列表在创建后不再变化。
type Group struct {
	ID       string    `xorm:"pk varchar(36) 'id'" bson:"_id" json:"id"`
	Name     string    `xorm:"varchar(128)" bson:"name" json:"name"`
	Members  []string  `xorm:"json" bson:"members" json:"members"`
	CreateAt time.Time `bson:"createAt" json:"createAt"`
}

// Message 聊天消息. Exactly one conversation class per record: Receiver set
// for a direct message, GroupID set for a group message, neither for the
// public channel. The id is generated by the relay so all store drivers
// share one identity scheme.
type Message struct {
	ID       string    `xorm:"pk varchar(36) 'id'" bson:"_id" json:"id"`
	Sender   string    `xorm:"varchar(64) index" bson:"sender" json:"sender"`
	Receiver string    `xorm:"varchar(64) index" bson:"receiver" json:"receiver,omitempty"`
	GroupID  string    `xorm:"varchar(36) index" bson:"groupId" json:"groupId,omitempty"`
	Content  string    `xorm:"varchar(1024)" bson:"content" json:"content"`
	CreateAt time.Time `bson:"createAt" json:"createAt"`
	Read     bool      `bson:"read" json:"read"`
}
