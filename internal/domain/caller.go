// Package domain defines the core domain models for the library assistant.
package domain

// Caller identifies who is asking. It is created by the caller before a run,
// threaded explicitly through every handler, and never mutated by the core.
type Caller struct {
	Name        string `json:"name"`
	MemberToken string `json:"member_token,omitempty"`
}
