package domain

import "time"

// AuthEventKind classifies an entry in the authentication audit trail.
type AuthEventKind string

const (
	AuthEventRegistered     AuthEventKind = "registered"
	AuthEventLoginSucceeded AuthEventKind = "login_succeeded"
	AuthEventLoginFailed    AuthEventKind = "login_failed"
)

// AuthEvent records a single authentication attempt.
type AuthEvent struct {
	Kind      AuthEventKind
	Subject   string
	Reason    string // set for failures
	Timestamp time.Time
}
