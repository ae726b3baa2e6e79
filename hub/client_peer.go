package hub

import (
	mapset "github.com/deckarep/golang-set"
	"github.com/google/uuid"

	"github.com/Shivanshu9120/Messenger-backend/peer"
	"github.com/Shivanshu9120/Messenger-backend/wire"
)

// Session states. A session starts anonymous, one successful login binds a
// username, unregistration closes it for good.
const (
	stateAnonymous = iota
	stateIdentified
	stateClosed
)

// ClientPeer 代表一个客户端会话: one live connection, optionally bound to a
// username after login, plus the chat channels it joined. username, state
// and channels are owned by the hub goroutine.
type ClientPeer struct {
	*peer.Peer
	hub *Hub

	state    int
	username string
	channels mapset.Set // joined chat ids
}

// OnMessage 接收消息, hands the frame to the hub queue. Ordering per
// connection is preserved: the read pump calls this synchronously.
func (p *ClientPeer) OnMessage(msg *wire.Message) error {
	p.hub.packetQueue <- &Packet{use: useForFrame, peer: p, message: msg}
	return nil
}

// OnDisconnect 接连断开
func (p *ClientPeer) OnDisconnect() error {
	p.hub.packetQueue <- &Packet{use: useForDelPeer, peer: p}
	return nil
}

func newClientPeer(h *Hub) *ClientPeer {
	clientPeer := &ClientPeer{
		hub:      h,
		state:    stateAnonymous,
		channels: mapset.NewSet(),
	}

	clientPeer.Peer = peer.NewPeer(uuid.NewString(), &peer.Config{
		Listeners: &peer.MessageListeners{
			OnMessage:    clientPeer.OnMessage,
			OnDisconnect: clientPeer.OnDisconnect,
		},
		MaxMessageSize: h.config.Peer.MaxMessageSize,
		WriteWait:      h.config.Peer.WriteWaitDuration(),
		PongWait:       h.config.Peer.PongWaitDuration(),
		PingPeriod:     h.config.Peer.PingPeriodDuration(),
	})

	return clientPeer
}
