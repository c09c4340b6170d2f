package commands

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
)

// Events attaches to the node's event stream and prints every message
// until the connection drops or the program is interrupted.
func Events(publicURL string) error {
	u, err := url.Parse(publicURL)
	if err != nil {
		return fmt.Errorf("parsing node url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/v1/events"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dialing node: %w", err)
	}
	defer conn.Close()

	fmt.Println("connected, streaming events, ctrl-c to stop")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				done <- err
				return
			}
			fmt.Println(string(msg))
		}
	}()

	select {
	case err := <-done:
		return err

	case <-shutdown:
		return nil
	}
}
