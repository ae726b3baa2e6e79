// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Shivanshu9120/Messenger-backend/peer"
	"github.com/Shivanshu9120/Messenger-backend/wire"
)

var (
	addr     = flag.String("addr", "localhost:8380", "relay address")
	username = flag.String("user", "", "username to login as")
	secret   = flag.String("secret", "", "relay secret, empty when the relay runs open")
)

// ClientPeer 代表一个客户端节点, prints whatever the relay pushes.
type ClientPeer struct {
	*peer.Peer
	username string
}

// OnMessage 接收消息
func (p *ClientPeer) OnMessage(msg *wire.Message) error {
	switch body := msg.Body.(type) {
	case *wire.MsgReceive:
		m := body.Message
		switch {
		case m.GroupID != "":
			fmt.Printf("[%v] %v: %v\n", m.GroupID, m.Sender, m.Content)
		case m.Receiver != "":
			fmt.Printf("[direct] %v: %v\n", m.Sender, m.Content)
		default:
			fmt.Printf("[public] %v: %v\n", m.Sender, m.Content)
		}
	case *wire.MsgPresence:
		online := make([]string, 0, len(body.Users))
		for _, u := range body.Users {
			if u.Online {
				online = append(online, u.Username)
			}
		}
		fmt.Printf("online: %v\n", strings.Join(online, ", "))
	case *wire.MsgGroupList:
		for _, g := range body.Groups {
			fmt.Printf("group %v (%v): %v\n", g.Name, g.ID, strings.Join(g.Members, ", "))
		}
	case *wire.MsgReadAck:
		fmt.Printf("read: %v\n", body.MessageID)
	case *wire.MsgHistoryAck:
		for _, m := range body.Messages {
			fmt.Printf("  %v %v: %v\n", m.CreateAt.Format("15:04"), m.Sender, m.Content)
		}
	case *wire.MsgErr:
		fmt.Printf("error[%v]: %v\n", wire.ErrCodeNames[body.Code], body.Reason)
	}
	return nil
}

// OnDisconnect OnDisconnect
func (p *ClientPeer) OnDisconnect() error {
	log.Println("disconnected")
	os.Exit(0)
	return nil
}

func dial(addr, secret string) (*ClientPeer, error) {
	query := ""
	if secret != "" {
		nonce := fmt.Sprint(time.Now().UnixNano())
		h := md5.New()
		io.WriteString(h, nonce)
		io.WriteString(h, secret)
		query = fmt.Sprintf("nonce=%v&digest=%v", nonce, hex.EncodeToString(h.Sum(nil)))
	}

	u := url.URL{Scheme: "ws", Host: addr, Path: "/client", RawQuery: query}
	log.Printf("connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}

	clientPeer := &ClientPeer{}
	clientPeer.Peer = peer.NewPeer("chat", &peer.Config{
		Listeners: &peer.MessageListeners{
			OnMessage:    clientPeer.OnMessage,
			OnDisconnect: clientPeer.OnDisconnect,
		},
	})
	clientPeer.SetConnection(conn)

	return clientPeer, nil
}

func (p *ClientPeer) send(body wire.Body) {
	done := make(chan struct{})
	p.PushMessage(wire.MakeMessage(body), done)
	<-done
}

// handleLine turns one input line into a frame.
//
//	/create <name> <member,member,...>   create a group
//	/join <chatID>                       subscribe to a channel
//	/read <messageID> <chatID>           mark a message read
//	/history <public|group|direct> <id>  fetch history
//	@<user> <text>                       direct message
//	#<groupID> <text>                    group message
//	<text>                               public message
func (p *ClientPeer) handleLine(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch {
	case fields[0] == "/create" && len(fields) >= 3:
		p.send(&wire.MsgCreateGroup{Name: fields[1], Members: strings.Split(fields[2], ",")})
	case fields[0] == "/join" && len(fields) >= 2:
		p.send(&wire.MsgJoin{ChatID: fields[1]})
	case fields[0] == "/read" && len(fields) >= 3:
		p.send(&wire.MsgMarkRead{MessageID: fields[1], ChatID: fields[2]})
	case fields[0] == "/history" && len(fields) >= 2:
		body := &wire.MsgHistory{Type: fields[1], ChatID: wire.PublicChatID}
		if len(fields) >= 3 {
			body.ChatID = fields[2]
		}
		p.send(body)
	case strings.HasPrefix(fields[0], "@"):
		p.send(&wire.MsgChat{
			Sender:   p.username,
			Receiver: strings.TrimPrefix(fields[0], "@"),
			Content:  strings.Join(fields[1:], " "),
		})
	case strings.HasPrefix(fields[0], "#"):
		p.send(&wire.MsgChat{
			Sender:  p.username,
			GroupID: strings.TrimPrefix(fields[0], "#"),
			Content: strings.Join(fields[1:], " "),
		})
	default:
		p.send(&wire.MsgChat{Sender: p.username, Content: line})
	}
}

func main() {
	flag.Parse()
	if *username == "" {
		log.Fatal("-user is required")
	}

	clientPeer, err := dial(*addr, *secret)
	if err != nil {
		log.Fatal("dial: ", err)
	}
	clientPeer.username = *username
	clientPeer.send(&wire.MsgLogin{Username: *username})

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		clientPeer.handleLine(scanner.Text())
	}
}
