package wire

import (
	"encoding/json"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Commands are a closed set. Unknown values are rejected at decode time,
// every dispatch site switches exhaustively over them.
const (
	// CmdLogin bind a username to the session
	CmdLogin = uint8(1)
	// CmdCreateGroup create a group room
	CmdCreateGroup = uint8(2)
	// CmdJoin subscribe the session to a chat channel
	CmdJoin = uint8(3)
	// CmdChat send a direct, group or public message
	CmdChat = uint8(4)
	// CmdMarkRead flag a message as read
	CmdMarkRead = uint8(5)
	// CmdHistory fetch conversation history
	CmdHistory = uint8(6)

	// CmdPresence full presence list, pushed on every login/disconnect
	CmdPresence = uint8(20)
	// CmdGroupList groups the receiving user is a member of
	CmdGroupList = uint8(21)
	// CmdReceive one delivered message
	CmdReceive = uint8(22)
	// CmdReadAck read receipt notification
	CmdReadAck = uint8(23)
	// CmdHistoryAck response to CmdHistory
	CmdHistoryAck = uint8(24)
	// CmdErr error outcome for a request
	CmdErr = uint8(25)
)

// CmdNames command names, for logs only
var CmdNames = map[uint8]string{
	CmdLogin:       "login",
	CmdCreateGroup: "createGroup",
	CmdJoin:        "join",
	CmdChat:        "chat",
	CmdMarkRead:    "markRead",
	CmdHistory:     "history",
	CmdPresence:    "presence",
	CmdGroupList:   "groupList",
	CmdReceive:     "receive",
	CmdReadAck:     "readAck",
	CmdHistoryAck:  "historyAck",
	CmdErr:         "err",
}

var (
	// ErrUnknownCmd command outside the closed set
	ErrUnknownCmd = errors.New("unknown command")
	// ErrBadPayload malformed or incomplete message body
	ErrBadPayload = errors.New("bad payload")
)

var validate = validator.New()

// Body is one message payload. Cmd ties the concrete type to its command.
type Body interface {
	Cmd() uint8
}

// Header is the frame header. Seq is assigned by the requester; a response
// carries the request Seq back in Ack.
type Header struct {
	Seq uint32 `json:"seq,omitempty"`
	Ack uint32 `json:"ack,omitempty"`
	Cmd uint8  `json:"cmd"`
}

// Message 一条完整消息
type Message struct {
	Header Header
	Body   Body
}

// envelope is the raw json frame layout.
type envelope struct {
	Header Header          `json:"header"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// MakeEmptyBody 创建一个空的消息体
func MakeEmptyBody(cmd uint8) (Body, error) {
	var body Body
	switch cmd {
	case CmdLogin:
		body = &MsgLogin{}
	case CmdCreateGroup:
		body = &MsgCreateGroup{}
	case CmdJoin:
		body = &MsgJoin{}
	case CmdChat:
		body = &MsgChat{}
	case CmdMarkRead:
		body = &MsgMarkRead{}
	case CmdHistory:
		body = &MsgHistory{}
	case CmdPresence:
		body = &MsgPresence{}
	case CmdGroupList:
		body = &MsgGroupList{}
	case CmdReceive:
		body = &MsgReceive{}
	case CmdReadAck:
		body = &MsgReadAck{}
	case CmdHistoryAck:
		body = &MsgHistoryAck{}
	case CmdErr:
		body = &MsgErr{}
	default:
		return nil, errors.Wrapf(ErrUnknownCmd, "cmd[%d]", cmd)
	}
	return body, nil
}

// MakeMessage wraps body in a frame with an empty header except the command.
func MakeMessage(body Body) *Message {
	return &Message{
		Header: Header{Cmd: body.Cmd()},
		Body:   body,
	}
}

// MakeAckMessage wraps body in a frame responding to request seq.
func MakeAckMessage(seq uint32, body Body) *Message {
	return &Message{
		Header: Header{Ack: seq, Cmd: body.Cmd()},
		Body:   body,
	}
}

// Validate checks a body against its `validate` tags. ReadMessage does
// this on every decode; callers that build bodies directly use it too.
func Validate(body Body) error {
	if err := validate.Struct(body); err != nil {
		return errors.Wrap(ErrBadPayload, err.Error())
	}
	return nil
}

// ReadMessage decodes one frame. The body is validated against its
// `validate` tags; a failure is reported as ErrBadPayload.
func ReadMessage(r io.Reader) (*Message, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, errors.Wrap(ErrBadPayload, err.Error())
	}
	body, err := MakeEmptyBody(env.Header.Cmd)
	if err != nil {
		return nil, err
	}
	if len(env.Body) > 0 {
		if err := json.Unmarshal(env.Body, body); err != nil {
			return nil, errors.Wrap(ErrBadPayload, err.Error())
		}
	}
	if err := Validate(body); err != nil {
		return nil, err
	}
	return &Message{Header: env.Header, Body: body}, nil
}

// WriteMessage encodes one frame to w.
func WriteMessage(w io.Writer, m *Message) error {
	raw, err := json.Marshal(m.Body)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(&envelope{Header: m.Header, Body: raw})
}
