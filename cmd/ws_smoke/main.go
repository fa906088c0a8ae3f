// Command ws_smoke drives one scripted match against a running server: two
// guests, one room, X wins on the top row. Useful for eyeballing the event
// flow end to end.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	base := os.Getenv("SERVER_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	tokenA := mintToken(base, "smokeA")
	tokenB := mintToken(base, "smokeB")

	wsBase := strings.Replace(base, "http", "ws", 1)
	connA := dial(wsBase, tokenA)
	defer connA.Close()
	connB := dial(wsBase, tokenB)
	defer connB.Close()

	outA := startReader("A", connA)
	outB := startReader("B", connB)

	sendEvent(connA, "create_game", map[string]any{
		"room_id": "smoke-room",
		"profile": map[string]any{"name": "smokeA"},
	})
	waitFor(outA, "created")

	sendEvent(connB, "join_game", map[string]any{
		"room_id": "smoke-room",
		"profile": map[string]any{"name": "smokeB"},
	})

	startA := waitFor(outA, "game_start")
	waitFor(outB, "game_start")

	var start struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(startA.Payload, &start); err != nil {
		log.Fatalf("decode game_start: %v", err)
	}

	xConn, oConn := connA, connB
	if start.Symbol != "X" {
		xConn, oConn = connB, connA
	}

	moves := []struct {
		conn   *websocket.Conn
		index  int
		symbol string
	}{
		{xConn, 0, "X"}, {oConn, 3, "O"},
		{xConn, 1, "X"}, {oConn, 4, "O"},
		{xConn, 2, "X"},
	}
	for _, mv := range moves {
		sendEvent(mv.conn, "make_move", map[string]any{
			"room_id": "smoke-room",
			"index":   mv.index,
			"symbol":  mv.symbol,
		})
		time.Sleep(100 * time.Millisecond)
	}

	over := waitFor(outA, "game_over")
	fmt.Printf("game over: %s\n", over.Payload)
}

func mintToken(base, name string) string {
	body, _ := json.Marshal(map[string]any{"name": name})
	res, err := http.Post(base+"/api/v1/session", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("create session for %s: %v", name, err)
	}
	defer res.Body.Close()

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		log.Fatalf("decode session response: %v", err)
	}
	return out.Token
}

func dial(wsBase, token string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(wsBase+"/ws?token="+token, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	return conn
}

func startReader(label string, conn *websocket.Conn) chan envelope {
	out := make(chan envelope, 32)
	go func() {
		defer close(out)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg envelope
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			fmt.Printf("[%s] %s %s\n", label, msg.Type, msg.Payload)
			out <- msg
		}
	}()
	return out
}

func sendEvent(conn *websocket.Conn, typ string, payload any) {
	data, _ := json.Marshal(map[string]any{"type": typ, "payload": payload})
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Fatalf("send %s: %v", typ, err)
	}
}

func waitFor(out chan envelope, typ string) envelope {
	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg, ok := <-out:
			if !ok {
				log.Fatalf("connection closed waiting for %s", typ)
			}
			if msg.Type == typ {
				return msg
			}
		case <-deadline:
			log.Fatalf("timed out waiting for %s", typ)
		}
	}
}
