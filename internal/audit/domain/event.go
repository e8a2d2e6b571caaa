package domain

import "time"

// Audit actions recorded by the auth and funds code paths.
const (
	ActionOTPSent             = "otp_sent"
	ActionOTPLogin            = "otp_login"
	ActionPasswordLogin       = "password_login"
	ActionLoginFailure        = "login_failure"
	ActionPushTokenRegistered = "push_token_registered"
)

// Event represents an audit event. Persisted to the audit_logs table and,
// when the Kafka pipeline is configured, emitted as JSON for the worker.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
