package peer

import (
	"bytes"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Shivanshu9120/Messenger-backend/wire"
)

const (
	// Time allowed to write a message to the peer.
	defaultWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	defaultPongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	defaultPingPeriod = (defaultPongWait * 8) / 10

	// Maximum message size allowed from peer.
	defaultMaxMessageSize = 4096

	defaultMessageQueueLen = 32
)

// MessageListeners 消息监听
type MessageListeners struct {
	// OnMessage is invoked for every decoded frame, in arrival order.
	OnMessage func(msg *wire.Message) error

	OnDisconnect func() error
}

// Config 节点配置
type Config struct {
	// Time allowed to write a message to the peer.
	WriteWait time.Duration
	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration
	// Send pings to peer with this period. Must be less than pongWait.
	PingPeriod time.Duration
	// Maximum message size allowed from peer.
	MaxMessageSize int

	// MessageQueueLen send queue length
	MessageQueueLen int

	Listeners *MessageListeners
}

type outMessage struct {
	message *wire.Message
	done    chan<- struct{}
}

// Peer 封装了 websocket 通信底层接口
type Peer struct {
	id     string
	config *Config
	conn   *websocket.Conn
	send   chan outMessage
	quit   chan struct{}

	timeConnected time.Time

	connected int32
}

// NewPeer 创建一个新的节点
func NewPeer(id string, config *Config) *Peer {
	if config.WriteWait == 0 {
		config.WriteWait = defaultWriteWait
	}
	if config.PongWait == 0 {
		config.PongWait = defaultPongWait
	}
	if config.PingPeriod == 0 {
		config.PingPeriod = defaultPingPeriod
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = defaultMaxMessageSize
	}
	if config.MessageQueueLen == 0 {
		config.MessageQueueLen = defaultMessageQueueLen
	}
	if config.PingPeriod >= config.PongWait {
		config.PingPeriod = (config.PongWait * 9) / 10
	}
	return &Peer{
		id:     id,
		config: config,
		send:   make(chan outMessage, config.MessageQueueLen),
		quit:   make(chan struct{}),
	}
}

// ID peer id
func (p *Peer) ID() string {
	return p.id
}

// SetConnection bind connection, start the read/write pumps
func (p *Peer) SetConnection(conn *websocket.Conn) {
	// Already connected?
	if !atomic.CompareAndSwapInt32(&p.connected, 0, 1) {
		return
	}

	p.conn = conn
	p.timeConnected = time.Now()

	go p.handleRead()
	go p.handleWrite()
}

func (p *Peer) handleRead() {
	defer func() {
		p.config.Listeners.OnDisconnect()
		p.disconnect()
	}()
	p.conn.SetReadLimit(int64(p.config.MaxMessageSize))
	p.conn.SetReadDeadline(time.Now().Add(p.config.PongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(p.config.PongWait))
		return nil
	})
	for {
		messageType, payload, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("peer %v read: %v", p.id, err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		msg, err := wire.ReadMessage(bytes.NewReader(payload))
		if err != nil {
			log.Printf("peer %v bad frame: %v", p.id, err)
			continue
		}
		// Frames of one connection are handled in arrival order.
		if err := p.config.Listeners.OnMessage(msg); err != nil {
			log.Printf("peer %v: %v", p.id, err)
		}
	}
}

func (p *Peer) handleWrite() {
	ticker := time.NewTicker(p.config.PingPeriod)
	defer func() {
		ticker.Stop()
		p.disconnect()
	}()
	for {
		select {
		case out := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(p.config.WriteWait))
			w, err := p.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				notifyDone(out.done)
				return
			}
			if err := wire.WriteMessage(w, out.message); err != nil {
				log.Printf("peer %v write: %v", p.id, err)
			}
			err = w.Close()
			notifyDone(out.done)
			if err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(p.config.WriteWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-p.quit:
			p.conn.SetWriteDeadline(time.Now().Add(p.config.WriteWait))
			p.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// PushMessage 把消息写到发送队列中. Never blocks: a closed peer or a full
// queue drops the message, so one stalled connection cannot hold up the
// caller. done is still notified for dropped messages.
func (p *Peer) PushMessage(message *wire.Message, done chan<- struct{}) {
	if atomic.LoadInt32(&p.connected) == 0 {
		if done != nil {
			go notifyDone(done)
		}
		return
	}
	select {
	case p.send <- outMessage{message: message, done: done}:
	default:
		log.Printf("peer %v send queue full, dropping message", p.id)
		if done != nil {
			go notifyDone(done)
		}
	}
}

// Connected reports whether the underlying connection is alive.
func (p *Peer) Connected() bool {
	return atomic.LoadInt32(&p.connected) == 1
}

// Close close conn. The send queue stays open so late PushMessage calls
// land on the non-blocking path instead of a closed channel.
func (p *Peer) Close() {
	if !atomic.CompareAndSwapInt32(&p.connected, 1, 0) {
		return
	}
	close(p.quit)
}

func (p *Peer) disconnect() {
	atomic.StoreInt32(&p.connected, 0)
	p.conn.Close()
}

func notifyDone(done chan<- struct{}) {
	if done != nil {
		done <- struct{}{}
	}
}
