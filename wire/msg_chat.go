package wire

import "github.com/Shivanshu9120/Messenger-backend/database"

// MsgChat 聊天消息. At most one of Receiver/GroupID may be set: receiver
// only for a direct message, group id only for a group message, neither for
// the public channel.
type MsgChat struct {
	Sender   string `json:"sender" validate:"required"`
	Receiver string `json:"receiver,omitempty"`
	GroupID  string `json:"groupId,omitempty"`
	Content  string `json:"content" validate:"required"`
}

// Cmd Cmd
func (m *MsgChat) Cmd() uint8 { return CmdChat }

// MsgReceive carries one persisted message to its receivers. The record is
// the stored one, id and timestamp included.
type MsgReceive struct {
	Message *database.Message `json:"message" validate:"required"`
}

// Cmd Cmd
func (m *MsgReceive) Cmd() uint8 { return CmdReceive }
