package wire

import (
	"strings"

	"github.com/pkg/errors"
)

// PublicChatID 公共频道的固定地址
const PublicChatID = "public"

// chatIDSep joins the two usernames of a direct chat. Usernames must not
// contain it, see ValidUsername.
const chatIDSep = "-"

var (
	// ErrInvalidUsername ErrInvalidUsername
	ErrInvalidUsername = errors.New("invalid username")
	// ErrNotParticipant the caller is not part of the chat id
	ErrNotParticipant = errors.New("not a participant of chat")
)

// DirectChatID 单聊会话地址。The pair is sorted before joining so that both
// participants derive the same id without any shared lookup.
func DirectChatID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + chatIDSep + b
}

// PeerOf resolves the other participant of a direct chat id. When both
// usernames are equal (a chat with oneself) it returns self.
func PeerOf(chatID, self string) (string, error) {
	if rest, ok := strings.CutPrefix(chatID, self+chatIDSep); ok {
		return rest, nil
	}
	if rest, ok := strings.CutSuffix(chatID, chatIDSep+self); ok {
		return rest, nil
	}
	return "", errors.Wrap(ErrNotParticipant, chatID)
}

// ValidUsername reports whether name can be used as a client address.
// The chat id separator is reserved, and so is the public channel id.
func ValidUsername(name string) bool {
	if name == "" || name == PublicChatID {
		return false
	}
	return !strings.Contains(name, chatIDSep)
}
