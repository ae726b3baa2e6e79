package wire

// MsgMarkRead 消息已读上报. ChatID selects the channel that receives the
// read receipt.
type MsgMarkRead struct {
	MessageID string `json:"messageId" validate:"required"`
	ChatID    string `json:"chatId" validate:"required"`
}

// Cmd Cmd
func (m *MsgMarkRead) Cmd() uint8 { return CmdMarkRead }

// MsgReadAck read receipt pushed to every session subscribed to the chat.
type MsgReadAck struct {
	MessageID string `json:"messageId" validate:"required"`
}

// Cmd Cmd
func (m *MsgReadAck) Cmd() uint8 { return CmdReadAck }
