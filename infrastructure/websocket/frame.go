// Package websocket exposes a contract.Store over a websocket connection.
//
// Frames are JSON objects. A client sends subscribe, unsubscribe and append
// frames, each with its own id. The server answers every request with an ack
// or an error frame carrying the same id, and streams record frames tagged
// with the id of the subscription they belong to.
package websocket

import (
	"message-board/domain"
	"time"
)

const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FrameAppend      = "append"
	FrameRecord      = "record"
	FrameAck         = "ack"
	FrameError       = "error"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer.
	maxFrameSize = 64 * 1024

	// Record frames a client may have queued before delivery waits for its writer.
	maxPendingFrames = 1024
)

type Frame struct {
	Type      string        `json:"type"`
	ID        string        `json:"id,omitempty"`
	Namespace string        `json:"namespace,omitempty"`
	Fields    domain.Fields `json:"fields,omitempty"`
	Error     string        `json:"error,omitempty"`
}
