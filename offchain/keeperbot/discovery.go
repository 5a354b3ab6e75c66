package keeperbot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// CloneEventKey is the composite key of the clone address in CometBFT event maps
const CloneEventKey = "cloned.clone"

// cloneQuery subscribes to every transaction that created a clone
const cloneQuery = "tm.event='Tx' AND cloned.clone EXISTS"

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	ID      int               `json:"id"`
	Params  map[string]string `json:"params"`
}

type rpcResponse struct {
	ID     int `json:"id"`
	Result struct {
		Events map[string][]string `json:"events"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ClonesFromEvents extracts clone addresses from a CometBFT event map
func ClonesFromEvents(events map[string][]string) []string {
	return events[CloneEventKey]
}

// discoveryLoop keeps a subscription open, reconnecting after RetryDelay
func (b *Bot) discoveryLoop(ctx context.Context) error {
	for {
		err := b.subscribe(ctx)
		if ctx.Err() != nil {
			return nil
		}
		b.logger.Warn("clone subscription lost", "url", b.config.WebSocketURL, "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.config.RetryDelay):
		}
	}
}

// subscribe streams clone events until the connection or ctx ends
func (b *Bot) subscribe(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: b.config.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, b.config.WebSocketURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	// unblock ReadJSON on shutdown
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  "subscribe",
		ID:      1,
		Params:  map[string]string{"query": cloneQuery},
	}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var resp rpcResponse
		if err := json.Unmarshal(message, &resp); err != nil {
			b.logger.Debug("ignoring malformed message", "error", err)
			continue
		}
		if resp.Error != nil {
			return fmt.Errorf("subscription rejected: %s", resp.Error.Message)
		}
		for _, clone := range ClonesFromEvents(resp.Result.Events) {
			b.Track(clone, b.now())
		}
	}
}
