package wire

import "github.com/Shivanshu9120/Messenger-backend/database"

// MsgCreateGroup 创建群. Membership is fixed at creation, there is no
// join/leave for groups.
type MsgCreateGroup struct {
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members" validate:"required,min=1,dive,required"`
}

// Cmd Cmd
func (m *MsgCreateGroup) Cmd() uint8 { return CmdCreateGroup }

// MsgJoin subscribes the session to a chat channel (direct id, group id or
// the public channel).
type MsgJoin struct {
	ChatID string `json:"chatId" validate:"required"`
}

// Cmd Cmd
func (m *MsgJoin) Cmd() uint8 { return CmdJoin }

// MsgGroupList groups the receiving user is a member of.
type MsgGroupList struct {
	Groups []*database.Group `json:"groups"`
}

// Cmd Cmd
func (m *MsgGroupList) Cmd() uint8 { return CmdGroupList }
