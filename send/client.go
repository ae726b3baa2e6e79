// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Shivanshu9120/Messenger-backend/wire"
)

var (
	addr     = flag.String("addr", "localhost:8380", "relay address")
	sender   = flag.String("from", "sys", "sender username")
	receiver = flag.String("to", "", "receiver username, empty for public")
	groupID  = flag.String("group", "", "group id, empty for public")
	count    = flag.Int("n", 1, "number of messages to send")
)

// send one message over the http inject endpoint
func send(url string, i int) error {
	body := wire.MsgChat{
		Sender:   *sender,
		Receiver: *receiver,
		GroupID:  *groupID,
		Content:  fmt.Sprintf("message %d from %v", i, *sender),
	}
	d, _ := json.Marshal(&body)

	client := &http.Client{Timeout: time.Second * 5}
	resp, err := client.Post(url, "application/json", bytes.NewReader(d))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %v: %s", resp.StatusCode, out)
	}
	return nil
}

func main() {
	flag.Parse()

	url := fmt.Sprintf("http://%v/msg/send", *addr)
	start := time.Now()
	for i := 0; i < *count; i++ {
		if err := send(url, i); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Printf("sent %d messages in %v\n", *count, time.Since(start))
}
