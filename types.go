package authflow

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Dispatcher delivers a single email on behalf of the flow. Implementations
// own transport details; the flow only cares whether delivery was accepted.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, body string) error
}

// DispatcherFunc adapts a function into a Dispatcher.
type DispatcherFunc func(ctx context.Context, to, subject, body string) error

// Send satisfies the Dispatcher interface.
func (f DispatcherFunc) Send(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}

// SlotStore persists JSON documents under well known keys. An absent slot is
// equivalent to "empty"; a slot whose payload no longer decodes is treated as
// absent rather than surfacing a decode error.
type SlotStore interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}

// TokenService mints and validates session tokens for authenticated users.
type TokenService interface {
	Generate(user SessionUser) (string, error)
	Validate(tokenString string) (*SessionClaims, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHFLOW "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHFLOW "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHFLOW "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
