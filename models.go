package authflow

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a finalized account in the credential store.
type User struct {
	ID           uuid.UUID `json:"id,omitempty"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// EmailMatches compares emails case-insensitively. Email is the only field
// with case-insensitive semantics; passwords and entry codes compare exact.
func (u *User) EmailMatches(email string) bool {
	return strings.EqualFold(u.Email, email)
}

// PendingVerification is the single in-flight registration or login attempt.
// A registration attempt carries a password hash and no code until the user
// logs in; a login attempt carries a code and no password hash.
type PendingVerification struct {
	Username     string     `json:"username,omitempty"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash,omitempty"`
	Code         string     `json:"code,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// CodeIssued tells whether an entry code was generated for this attempt.
func (p *PendingVerification) CodeIssued() bool {
	return p.Code != "" && p.ExpiresAt != nil
}

// ExpiredAt tells whether the entry code is stale at the given instant.
// Expiry is strict: the code is still valid at the exact expiry instant.
func (p *PendingVerification) ExpiredAt(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// IsRegistration tells whether finalizing this attempt creates an account.
func (p *PendingVerification) IsRegistration() bool {
	return p.PasswordHash != ""
}

// SessionUser is the authenticated principal persisted for the client.
type SessionUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// FlowState is the derived state of the authentication flow.
type FlowState string

const (
	// StateAnonymous means no session and no pending attempt.
	StateAnonymous FlowState = "anonymous"
	// StatePendingRegistration means a registration awaits its login step.
	StatePendingRegistration FlowState = "pending_registration"
	// StatePendingCode means an entry code was emailed and awaits VerifyCode.
	StatePendingCode FlowState = "pending_code"
	// StateAuthenticated means a session is open.
	StateAuthenticated FlowState = "authenticated"
)
