package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrQueueClosed = errors.New("queue is closed")
	ErrQueueFull   = errors.New("queue is full")
)
