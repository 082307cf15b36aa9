// Package channel provides generic channel interfaces for decoupled communication.
package channel

// Receiver provides read access to a channel.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender provides write access to a channel.
type Sender[T any] interface {
	Send(T)
}

// Channel combines read and write access.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}

// trySender is implemented by channels that support non-blocking sends.
type trySender[T any] interface {
	TrySend(T) bool
}

// TrySend sends without blocking when the channel supports it, dropping the
// value if the buffer is full. Falls back to a blocking send otherwise.
// Returns false only when the value was dropped.
func TrySend[T any](c Sender[T], v T) bool {
	if ts, ok := c.(trySender[T]); ok {
		return ts.TrySend(v)
	}
	c.Send(v)
	return true
}
