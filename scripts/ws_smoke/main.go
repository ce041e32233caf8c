package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/chatrelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ws_smoke: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("addr", "ws://localhost:8080", "server base address")
	room := flag.String("room", "lobby", "room name")
	token := flag.String("token", "", "access token sent as the access_token cookie")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	opts := &websocket.DialOptions{}
	if *token != "" {
		opts.HTTPHeader = http.Header{"Cookie": []string{"access_token=" + *token}}
	}

	url := fmt.Sprintf("%s/ws/chat/%s/", *base, *room)
	conn, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	msg := *text
	if err := wsjson.Write(ctx, conn, proto.Inbound{Message: &msg}); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	var out proto.Outbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if out.Message != *text {
		return fmt.Errorf("unexpected echo %q", out.Message)
	}
	fmt.Printf("echo ok: room=%s message=%q\n", *room, out.Message)
	return nil
}
