package authflow

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// CredentialStore is the durable registry of finalized accounts, persisted as
// a users list in a single slot. Email membership is case-insensitive;
// passwords are matched through their bcrypt hashes.
type CredentialStore struct {
	store SlotStore
	key   string
}

func NewCredentialStore(store SlotStore) *CredentialStore {
	return &CredentialStore{store: store, key: SlotUsers}
}

func (s *CredentialStore) load(ctx context.Context) ([]User, error) {
	var users []User
	if _, err := s.store.Get(ctx, s.key, &users); err != nil {
		return nil, err
	}

	return users, nil
}

// Exists reports whether an account with the given email is registered.
func (s *CredentialStore) Exists(ctx context.Context, email string) (bool, error) {
	users, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	for i := range users {
		if users[i].EmailMatches(email) {
			return true, nil
		}
	}

	return false, nil
}

// Find returns the account matching email and password, if any. The email is
// compared case-insensitively, the password against the stored hash.
func (s *CredentialStore) Find(ctx context.Context, email, password string) (*User, bool, error) {
	users, err := s.load(ctx)
	if err != nil {
		return nil, false, err
	}

	for i := range users {
		if !users[i].EmailMatches(email) {
			continue
		}
		if err := ComparePasswordAndHash(password, users[i].PasswordHash); err == nil {
			u := users[i]
			return &u, true, nil
		}
	}

	return nil, false, nil
}

// Add appends a new account. Callers must have checked uniqueness; Add itself
// only guards against blatantly invalid records.
func (s *CredentialStore) Add(ctx context.Context, user User) error {
	if strings.TrimSpace(user.Email) == "" {
		return goerrors.New("user email must not be empty", goerrors.CategoryBadInput)
	}

	users, err := s.load(ctx)
	if err != nil {
		return err
	}

	users = append(users, user)

	return s.store.Set(ctx, s.key, users)
}
