package wire

import (
	"testing"
)

func TestDirectChatID(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want string
	}{
		{"ordered", "alice", "bob", "alice-bob"},
		{"reversed", "bob", "alice", "alice-bob"},
		{"self", "alice", "alice", "alice-alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DirectChatID(tt.a, tt.b); got != tt.want {
				t.Errorf("DirectChatID(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPeerOf(t *testing.T) {
	tests := []struct {
		name    string
		chatID  string
		self    string
		want    string
		wantErr bool
	}{
		{"first", "alice-bob", "alice", "bob", false},
		{"second", "alice-bob", "bob", "alice", false},
		{"self chat", "alice-alice", "alice", "alice", false},
		{"outsider", "alice-bob", "carol", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PeerOf(tt.chatID, tt.self)
			if (err != nil) != tt.wantErr {
				t.Errorf("PeerOf() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("PeerOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"alice", true},
		{"", false},
		{"public", false},
		{"a-b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidUsername(tt.name); got != tt.want {
				t.Errorf("ValidUsername(%v) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
