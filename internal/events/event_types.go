package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventUserLoggedIn           EventType = "user_logged_in"
	EventUserUpdated            EventType = "user_updated"
	EventUserDeleted            EventType = "user_deleted"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordResetCompleted EventType = "password_reset_completed"
)

// Event represents an account-lifecycle event emitted by services. Payloads
// never carry passwords or digests.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserUpdatedPayload notes what changed without echoing the values.
type UserUpdatedPayload struct {
	PasswordChanged bool   `json:"password_changed"`
	ActorEmail      string `json:"actor_email"`
}

// UserDeletedPayload records who removed the account.
type UserDeletedPayload struct {
	ActorEmail string `json:"actor_email"`
}
