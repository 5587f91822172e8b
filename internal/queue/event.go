// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

import "time"

// RegisteredQueueName is the queue that carries registration events.
const RegisteredQueueName = "user.registered"

// UserRegisteredEvent is published after a successful registration.  It
// contains enough for downstream consumers (welcome mail, analytics) to act
// without querying the primary database.  It never carries credentials.
type UserRegisteredEvent struct {
	UserID       uint64    `json:"user_id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}
