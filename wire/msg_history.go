package wire

import "github.com/Shivanshu9120/Messenger-backend/database"

// History query types. Anything but public/group resolves as a direct chat.
const (
	HistoryPublic = "public"
	HistoryGroup  = "group"
	HistoryDirect = "direct"
)

// MsgHistory 历史消息查询. A request/response operation: the reply carries
// the request seq in its ack header.
type MsgHistory struct {
	ChatID string `json:"chatId" validate:"required"`
	Type   string `json:"type,omitempty"`
}

// Cmd Cmd
func (m *MsgHistory) Cmd() uint8 { return CmdHistory }

// MsgHistoryAck messages of one conversation, in creation order.
type MsgHistoryAck struct {
	Messages []*database.Message `json:"messages"`
}

// Cmd Cmd
func (m *MsgHistoryAck) Cmd() uint8 { return CmdHistoryAck }
