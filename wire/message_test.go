package wire

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMessage(t *testing.T) {
	m1 := MakeMessage(&MsgChat{Sender: "alice", Receiver: "bob", Content: "hello"})
	m1.Header.Seq = 7

	w := &bytes.Buffer{}
	require.NoError(t, WriteMessage(w, m1))

	got, err := ReadMessage(w)
	require.NoError(t, err)
	assert.Equal(t, m1.Header, got.Header)
	assert.Equal(t, m1.Body, got.Body)
}

func TestReadMessageUnknownCmd(t *testing.T) {
	_, err := ReadMessage(strings.NewReader(`{"header":{"cmd":99}}`))
	assert.True(t, errors.Is(err, ErrUnknownCmd))
}

func TestReadMessageValidation(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"login without username", `{"header":{"cmd":1},"body":{}}`},
		{"chat without content", `{"header":{"cmd":4},"body":{"sender":"alice"}}`},
		{"group without members", `{"header":{"cmd":2},"body":{"name":"team"}}`},
		{"not json", `]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMessage(strings.NewReader(tt.frame))
			assert.True(t, errors.Is(err, ErrBadPayload), "err = %v", err)
		})
	}
}

func TestMakeAckMessage(t *testing.T) {
	msg := MakeAckMessage(42, &MsgReadAck{MessageID: "m1"})
	assert.Equal(t, uint32(42), msg.Header.Ack)
	assert.Equal(t, CmdReadAck, msg.Header.Cmd)
}

func TestMakeEmptyBodyCovered(t *testing.T) {
	for cmd := range CmdNames {
		body, err := MakeEmptyBody(cmd)
		require.NoError(t, err)
		assert.Equal(t, cmd, body.Cmd())
	}
}
