package wire

import "github.com/Shivanshu9120/Messenger-backend/database"

// MsgLogin binds a username to the session. The credential check happened
// out of band; the relay only maps the connection to an identity.
type MsgLogin struct {
	Username string `json:"username" validate:"required"`
}

// Cmd Cmd
func (m *MsgLogin) Cmd() uint8 { return CmdLogin }

// MsgPresence 全量在线状态列表. A full refresh, not a delta: every
// login/disconnect pushes the complete list to every session.
type MsgPresence struct {
	Users []*database.User `json:"users"`
}

// Cmd Cmd
func (m *MsgPresence) Cmd() uint8 { return CmdPresence }
