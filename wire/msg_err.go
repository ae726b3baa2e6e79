package wire

// Error codes, a closed set mirroring the failure taxonomy of the relay.
const (
	// ErrCodeBadPayload malformed event payload
	ErrCodeBadPayload = uint16(1)
	// ErrCodeNotFound referenced group or message does not exist
	ErrCodeNotFound = uint16(2)
	// ErrCodeStoreFailed durable store operation failed
	ErrCodeStoreFailed = uint16(3)
	// ErrCodeUnauthorized operation requires an identified session
	ErrCodeUnauthorized = uint16(4)
)

// ErrCodeNames error code names, for logs only
var ErrCodeNames = map[uint16]string{
	ErrCodeBadPayload:   "badPayload",
	ErrCodeNotFound:     "notFound",
	ErrCodeStoreFailed:  "storeFailed",
	ErrCodeUnauthorized: "unauthorized",
}

// MsgErr error outcome for a request. Sent to the requesting session only,
// with the request seq in the ack header when the request carried one.
type MsgErr struct {
	Code   uint16 `json:"code" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

// Cmd Cmd
func (m *MsgErr) Cmd() uint8 { return CmdErr }
