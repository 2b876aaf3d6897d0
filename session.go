package authflow

import "context"

// SessionStore persists the authenticated principal. Exactly one session
// exists per store; signing out removes the slot.
type SessionStore struct {
	store SlotStore
	key   string
}

func NewSessionStore(store SlotStore) *SessionStore {
	return &SessionStore{store: store, key: SlotSession}
}

func (s *SessionStore) Set(ctx context.Context, user SessionUser) error {
	return s.store.Set(ctx, s.key, user)
}

// Get returns the signed-in user, or nil when anonymous.
func (s *SessionStore) Get(ctx context.Context) (*SessionUser, error) {
	var user SessionUser
	ok, err := s.store.Get(ctx, s.key, &user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return &user, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.store.Remove(ctx, s.key)
}
