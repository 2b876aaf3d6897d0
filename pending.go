package authflow

import "context"

// PendingTracker holds the single in-flight verification attempt. Every
// mutation persists synchronously; Clear removes the slot entirely so no
// empty placeholder is left behind.
type PendingTracker struct {
	store SlotStore
	key   string
}

func NewPendingTracker(store SlotStore) *PendingTracker {
	return &PendingTracker{store: store, key: SlotPending}
}

// Set stores the attempt, overwriting any previous one.
func (t *PendingTracker) Set(ctx context.Context, pending PendingVerification) error {
	return t.store.Set(ctx, t.key, pending)
}

// Get returns the in-flight attempt, or nil when none exists.
func (t *PendingTracker) Get(ctx context.Context) (*PendingVerification, error) {
	var pending PendingVerification
	ok, err := t.store.Get(ctx, t.key, &pending)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return &pending, nil
}

// Clear removes the attempt.
func (t *PendingTracker) Clear(ctx context.Context) error {
	return t.store.Remove(ctx, t.key)
}
