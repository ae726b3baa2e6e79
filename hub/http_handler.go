package hub

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/Shivanshu9120/Messenger-backend/wire"
)

// Handler builds the http surface: the websocket endpoint, the message
// inject endpoint and the online query.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/client", func(w http.ResponseWriter, r *http.Request) {
		handleClientWebSocket(h, w, r)
	})

	mux.HandleFunc("/msg/send", func(w http.ResponseWriter, r *http.Request) {
		httpSendMsgHandler(h, w, r)
	})

	mux.HandleFunc("/q/online", func(w http.ResponseWriter, r *http.Request) {
		httpQueryOnlineHandler(h, w, r)
	})

	return mux
}

// start http server, this function blocks
func httplisten(hub *Hub) error {
	conf := &hub.config.Server
	addr := fmt.Sprintf("%s:%d", conf.ListenIP, conf.ListenPort)
	log.Println("listen on ", addr)
	return http.ListenAndServe(addr, hub.Handler())
}

// 处理来自客户端的连接. The session is registered with the hub before the
// read pump starts, so no frame can arrive ahead of registration.
func handleClientWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request) {
	if hub.config.Server.Secret != "" {
		q := r.URL.Query()
		nonce := q.Get("nonce")
		digest := q.Get("digest")
		if nonce == "" || !checkDigest(hub.config.Server.Secret, nonce, digest) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
	}

	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		handleHTTPErr(w, err)
		return
	}

	clientPeer := newClientPeer(hub)

	errchan := make(chan error)
	hub.packetQueue <- &Packet{use: useForAddPeer, peer: clientPeer, err: errchan}
	if err = <-errchan; err != nil {
		log.Println("register client:", err)
		conn.Close()
		return
	}

	clientPeer.SetConnection(conn)
}

// 处理 http 过来的消息发送
func httpSendMsgHandler(hub *Hub, w http.ResponseWriter, r *http.Request) {
	var body wire.MsgChat
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := wire.Validate(&body); err != nil {
		handleHTTPErr(w, err)
		return
	}

	errchan := make(chan error)
	hub.packetQueue <- &Packet{use: useForFrame, message: wire.MakeMessage(&body), err: errchan}
	if err := <-errchan; err != nil {
		handleHTTPErr(w, err)
		return
	}
	fmt.Fprint(w, "ok")
}

// 在线状态查询. A username query returns one flag, no query returns the
// whole online set.
func httpQueryOnlineHandler(hub *Hub, w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	w.Header().Set("Content-Type", "application/json")
	if username != "" {
		online, err := hub.online.IsOnline(username)
		if err != nil {
			handleHTTPErr(w, err)
			return
		}
		json.NewEncoder(w).Encode(map[string]bool{username: online})
		return
	}
	users, err := hub.online.OnlineUsers()
	if err != nil {
		handleHTTPErr(w, err)
		return
	}
	json.NewEncoder(w).Encode(users)
}

func checkDigest(secret, text, digest string) bool {
	h := md5.New()
	io.WriteString(h, text)
	io.WriteString(h, secret)
	return digest == hex.EncodeToString(h.Sum(nil))
}

func handleHTTPErr(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprint(w, err.Error())
}
