package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/Shivanshu9120/Messenger-backend/config"
	"github.com/Shivanshu9120/Messenger-backend/database"
	"github.com/Shivanshu9120/Messenger-backend/filelog"
	"github.com/Shivanshu9120/Messenger-backend/wire"
)

// Packet kinds on the hub queue. Registration, unregistration and inbound
// frames all flow through the one queue, so the hub goroutine is the only
// writer of the routing state.
const (
	useForAddPeer = uint8(1)
	useForDelPeer = uint8(2)
	useForFrame   = uint8(3)
)

// Packet to hub
type Packet struct {
	use uint8
	// peer is nil for frames injected over plain HTTP
	peer    *ClientPeer
	message *wire.Message
	err     chan error
}

var (
	errNoSession     = errors.New("operation requires a live session")
	errNotIdentified = errors.New("session is not identified, login first")
	errBothTargets   = errors.New("message addresses both a receiver and a group")
)

// Hub 是一个服务中心: it owns the session/channel indexes and serializes
// every mutate-then-fanout sequence on one goroutine.
type Hub struct {
	upgrader *websocket.Upgrader
	config   *config.Config
	store    database.Store
	online   database.OnlineCache
	journal  *filelog.FileLog

	// peers 缓存所有会话, byUser indexes the identified ones (a user may
	// have several devices connected), channels indexes subscriptions.
	peers    map[string]*ClientPeer
	byUser   map[string]map[string]*ClientPeer
	channels map[string]map[string]*ClientPeer

	packetQueue chan *Packet
	quit        chan struct{}
}

// NewHub 创建一个 Hub 对象并启动消息处理. The packet loop runs until Close.
func NewHub(cfg *config.Config, store database.Store, online database.OnlineCache) (*Hub, error) {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if cfg.Server.Origin == "" || cfg.Server.Origin == "*" {
				return true
			}
			rOrigin := r.Header.Get("Origin")
			if strings.Contains(cfg.Server.Origin, rOrigin) {
				return true
			}
			log.Println("refuse origin", rOrigin)
			return false
		},
	}

	hub := &Hub{
		upgrader:    upgrader,
		config:      cfg,
		store:       store,
		online:      online,
		peers:       make(map[string]*ClientPeer, 1000),
		byUser:      make(map[string]map[string]*ClientPeer),
		channels:    make(map[string]map[string]*ClientPeer),
		packetQueue: make(chan *Packet, 1000),
		quit:        make(chan struct{}),
	}

	if cfg.Journal.Enable {
		journal, err := filelog.NewFileLog(&filelog.Config{
			File:    cfg.Journal.File,
			SubFunc: hub.flushJournal,
		})
		if err != nil {
			return nil, err
		}
		hub.journal = journal
	}

	go hub.packetHandler()

	return hub, nil
}

// Run serves HTTP until the process is stopped.
func (h *Hub) Run() error {
	return httplisten(h)
}

func (h *Hub) packetHandler() {
	log.Println("start packetHandler")
	for {
		select {
		case packet := <-h.packetQueue:
			err := h.handlePacket(packet)
			if err != nil {
				log.Printf("packet %v: %v", packetName(packet), err)
				h.respondErr(packet, err)
			}
			if packet.err != nil {
				packet.err <- err
			}
		case <-h.quit:
			return
		}
	}
}

func (h *Hub) handlePacket(packet *Packet) error {
	switch packet.use {
	case useForAddPeer:
		h.peers[packet.peer.ID()] = packet.peer
		log.Printf("client %v connected", packet.peer.ID())
		return nil
	case useForDelPeer:
		h.handleDisconnect(packet.peer)
		return nil
	case useForFrame:
		return h.handleFrame(packet.peer, packet.message)
	}
	return nil
}

// handleFrame is the router: one branch per inbound command, each persists
// first and fans out only after persistence succeeded.
func (h *Hub) handleFrame(p *ClientPeer, msg *wire.Message) error {
	seq := msg.Header.Seq
	switch body := msg.Body.(type) {
	case *wire.MsgLogin:
		return h.handleLogin(p, seq, body)
	case *wire.MsgCreateGroup:
		return h.handleCreateGroup(body)
	case *wire.MsgJoin:
		return h.handleJoin(p, body)
	case *wire.MsgChat:
		return h.handleChat(body)
	case *wire.MsgMarkRead:
		return h.handleMarkRead(body)
	case *wire.MsgHistory:
		return h.handleHistory(p, seq, body)
	default:
		return errors.Wrapf(wire.ErrUnknownCmd, "cmd[%d] is not an inbound command", msg.Header.Cmd)
	}
}

// handleLogin binds the username to the session, flips the durable online
// flag, subscribes the session to its own address and its group addresses,
// then pushes the full presence list to everyone and the group list to the
// requester only.
func (h *Hub) handleLogin(p *ClientPeer, seq uint32, body *wire.MsgLogin) error {
	if p == nil {
		return errNoSession
	}
	if !wire.ValidUsername(body.Username) {
		return errors.Wrap(wire.ErrBadPayload, "invalid username")
	}

	// first login registers the user
	err := h.store.UpdateOnline(body.Username, true)
	if errors.Is(err, database.ErrNotFound) {
		err = h.store.SaveUser(&database.User{
			ID:       uuid.NewString(),
			Username: body.Username,
			Online:   true,
			CreateAt: time.Now(),
		})
	}
	if err != nil {
		return err
	}

	groups, err := h.store.FindGroupsByMember(body.Username)
	if err != nil {
		return err
	}
	users, err := h.store.ListUsers()
	if err != nil {
		return err
	}

	if p.username != "" && p.username != body.Username {
		// relogin under another name, drop the old identity and its
		// channel subscriptions
		h.unbindUser(p)
		p.channels.Each(func(chatID interface{}) bool {
			h.unsubscribe(p, chatID.(string))
			return false
		})
		p.channels.Clear()
	}
	p.username = body.Username
	p.state = stateIdentified
	if h.byUser[p.username] == nil {
		h.byUser[p.username] = make(map[string]*ClientPeer)
	}
	h.byUser[p.username][p.ID()] = p

	h.subscribe(p, p.username)
	for _, group := range groups {
		h.subscribe(p, group.ID)
	}

	if err := h.online.SetOnline(p.username); err != nil {
		log.Println("online cache:", err)
	}

	h.broadcast(wire.MakeMessage(&wire.MsgPresence{Users: users}))
	p.PushMessage(wire.MakeAckMessage(seq, &wire.MsgGroupList{Groups: groups}), nil)

	log.Printf("client %v identified as %v", p.ID(), p.username)
	return nil
}

// handleCreateGroup persists the group, subscribes the live sessions of
// each member to its channel and hands them the record. Targeted fan-out:
// non-members never see it.
func (h *Hub) handleCreateGroup(body *wire.MsgCreateGroup) error {
	group := &database.Group{
		ID:       uuid.NewString(),
		Name:     body.Name,
		Members:  body.Members,
		CreateAt: time.Now(),
	}
	if err := h.store.SaveGroup(group); err != nil {
		return err
	}

	for _, member := range body.Members {
		for _, peer := range h.byUser[member] {
			h.subscribe(peer, group.ID)
		}
	}

	update := wire.MakeMessage(&wire.MsgGroupList{Groups: []*database.Group{group}})
	h.sendToUsers(body.Members, update)
	return nil
}

// handleJoin subscribes the session to a channel. Idempotent; any session
// may subscribe to any chat id.
func (h *Hub) handleJoin(p *ClientPeer, body *wire.MsgJoin) error {
	if p == nil {
		return errNoSession
	}
	h.subscribe(p, body.ChatID)
	return nil
}

// handleChat persists one message and fans it out: group members for a
// group message, both sides for a direct message (every device of either
// user), every session for a public one.
func (h *Hub) handleChat(body *wire.MsgChat) error {
	if body.Receiver != "" && body.GroupID != "" {
		return errors.Wrap(wire.ErrBadPayload, errBothTargets.Error())
	}

	// resolve the group before persisting so a bad id does not leave an
	// undeliverable record behind
	var members []string
	if body.GroupID != "" {
		group, err := h.store.FindGroup(body.GroupID)
		if err != nil {
			return err
		}
		members = group.Members
	}

	msg := &database.Message{
		ID:       uuid.NewString(),
		Sender:   body.Sender,
		Receiver: body.Receiver,
		GroupID:  body.GroupID,
		Content:  body.Content,
		CreateAt: time.Now(),
	}
	if err := h.persistMessage(msg); err != nil {
		return err
	}

	// the fan-out payload is the persisted record, id and timestamp included
	receive := wire.MakeMessage(&wire.MsgReceive{Message: msg})
	switch {
	case body.GroupID != "":
		h.sendToUsers(members, receive)
	case body.Receiver != "":
		h.sendToUsers([]string{body.Sender, body.Receiver}, receive)
	default:
		h.broadcast(receive)
	}
	return nil
}

// handleMarkRead flags the message read, then notifies every session
// subscribed to the chat channel.
func (h *Hub) handleMarkRead(body *wire.MsgMarkRead) error {
	if err := h.store.MarkRead(body.MessageID); err != nil {
		return err
	}
	ack := wire.MakeMessage(&wire.MsgReadAck{MessageID: body.MessageID})
	for _, peer := range h.channels[body.ChatID] {
		peer.PushMessage(ack, nil)
	}
	return nil
}

// handleHistory resolves the conversation filter on the hub goroutine, then
// runs the read-only query off it so slow stores do not stall routing. The
// response goes to the requester only.
func (h *Hub) handleHistory(p *ClientPeer, seq uint32, body *wire.MsgHistory) error {
	if p == nil {
		return errNoSession
	}

	var filter database.MessageFilter
	switch body.Type {
	case wire.HistoryPublic:
		filter.Public = true
	case wire.HistoryGroup:
		filter.GroupID = body.ChatID
	default:
		if p.state != stateIdentified {
			return errNotIdentified
		}
		other, err := wire.PeerOf(body.ChatID, p.username)
		if err != nil {
			return errors.Wrap(wire.ErrBadPayload, err.Error())
		}
		filter.PeerA = p.username
		filter.PeerB = other
	}

	go func() {
		msgs, err := h.store.QueryMessages(filter)
		if err != nil {
			log.Printf("history %v: %v", body.ChatID, err)
			p.PushMessage(wire.MakeAckMessage(seq, &wire.MsgErr{
				Code:   wire.ErrCodeStoreFailed,
				Reason: err.Error(),
			}), nil)
			return
		}
		// a session closed while we were reading drops the push
		p.PushMessage(wire.MakeAckMessage(seq, &wire.MsgHistoryAck{Messages: msgs}), nil)
	}()
	return nil
}

// handleDisconnect releases the session. Identified sessions flip the
// durable online flag first; when that fails the presence broadcast is
// skipped so the broadcast view never runs ahead of the store.
func (h *Hub) handleDisconnect(p *ClientPeer) {
	if p.state == stateClosed {
		return
	}
	if _, ok := h.peers[p.ID()]; !ok {
		return
	}
	delete(h.peers, p.ID())

	if p.state == stateIdentified {
		h.unbindUser(p)
		if err := h.online.SetOffline(p.username); err != nil {
			log.Println("online cache:", err)
		}
		if err := h.store.UpdateOnline(p.username, false); err != nil {
			log.Printf("set %v offline: %v", p.username, err)
		} else if users, err := h.store.ListUsers(); err != nil {
			log.Println("list users:", err)
		} else {
			h.broadcast(wire.MakeMessage(&wire.MsgPresence{Users: users}))
		}
	}

	p.channels.Each(func(chatID interface{}) bool {
		h.unsubscribe(p, chatID.(string))
		return false
	})
	p.state = stateClosed
	log.Printf("client %v disconnected", p.ID())
}

func (h *Hub) subscribe(p *ClientPeer, chatID string) {
	p.channels.Add(chatID)
	if h.channels[chatID] == nil {
		h.channels[chatID] = make(map[string]*ClientPeer)
	}
	h.channels[chatID][p.ID()] = p
}

func (h *Hub) unsubscribe(p *ClientPeer, chatID string) {
	if subs, ok := h.channels[chatID]; ok {
		delete(subs, p.ID())
		if len(subs) == 0 {
			delete(h.channels, chatID)
		}
	}
}

func (h *Hub) unbindUser(p *ClientPeer) {
	if sessions, ok := h.byUser[p.username]; ok {
		delete(sessions, p.ID())
		if len(sessions) == 0 {
			delete(h.byUser, p.username)
		}
	}
}

// sendToUsers delivers msg to every session of every named user, once per
// session even when usernames repeat.
func (h *Hub) sendToUsers(usernames []string, msg *wire.Message) {
	seen := make(map[string]bool, len(usernames))
	for _, username := range usernames {
		if seen[username] {
			continue
		}
		seen[username] = true
		for _, peer := range h.byUser[username] {
			peer.PushMessage(msg, nil)
		}
	}
}

// broadcast delivers msg to every connected session, anonymous included.
func (h *Hub) broadcast(msg *wire.Message) {
	for _, peer := range h.peers {
		peer.PushMessage(msg, nil)
	}
}

// persistMessage stores one chat message, either straight into the record
// store or through the journal when write-behind mode is on.
func (h *Hub) persistMessage(msg *database.Message) error {
	if h.journal == nil {
		return h.store.SaveMessage(msg)
	}
	record, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return h.journal.Write(record)
}

// flushJournal sinks one journal batch into the record store.
func (h *Hub) flushJournal(records [][]byte) error {
	for _, record := range records {
		var msg database.Message
		if err := json.Unmarshal(record, &msg); err != nil {
			log.Println("journal record:", err)
			continue
		}
		if err := h.store.SaveMessage(&msg); err != nil {
			return err
		}
	}
	return nil
}

// respondErr reports a failed request back to the requesting session.
func (h *Hub) respondErr(packet *Packet, err error) {
	if packet.use != useForFrame || packet.peer == nil {
		return
	}
	packet.peer.PushMessage(wire.MakeAckMessage(packet.message.Header.Seq, &wire.MsgErr{
		Code:   errCode(err),
		Reason: err.Error(),
	}), nil)
}

func packetName(packet *Packet) string {
	switch packet.use {
	case useForAddPeer:
		return "addpeer"
	case useForDelPeer:
		return "delpeer"
	}
	if name, ok := wire.CmdNames[packet.message.Header.Cmd]; ok {
		return name
	}
	return "unknown"
}

func errCode(err error) uint16 {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return wire.ErrCodeNotFound
	case errors.Is(err, wire.ErrBadPayload), errors.Is(err, wire.ErrUnknownCmd):
		return wire.ErrCodeBadPayload
	case errors.Is(err, errNotIdentified), errors.Is(err, errNoSession):
		return wire.ErrCodeUnauthorized
	}
	return wire.ErrCodeStoreFailed
}

// Close stops the packet loop and drops every session.
func (h *Hub) Close() {
	close(h.quit)
	for _, peer := range h.peers {
		peer.Close()
	}
	if h.journal != nil {
		h.journal.Close()
	}
}
