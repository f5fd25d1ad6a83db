package client

import (
	"io"
)

// Client target receiving catalog payloads
type Client interface {
	// SendOrDrop queues the payload, it fails once the client is closed
	SendOrDrop(data []byte) error
	Start() error
	io.Closer
}
