package authflow

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const (
	// DefaultSiteName is used in entry code mail subjects.
	DefaultSiteName = "Safe Haven"

	// DefaultCodeTTL tells how long an entry code remains valid.
	DefaultCodeTTL = 10 * time.Minute

	// DefaultDispatchTimeout bounds a single mail relay call.
	DefaultDispatchTimeout = 10 * time.Second
)

// Flow orchestrates register, login, verify and signout over the credential
// store, the pending tracker and the mail dispatcher. Each operation runs to
// completion; callers are responsible for not overlapping operations against
// the same store.
type Flow struct {
	creds      *CredentialStore
	pending    *PendingTracker
	sessions   *SessionStore
	dispatcher Dispatcher

	logger          Logger
	now             func() time.Time
	genCode         CodeSource
	siteName        string
	codeTTL         time.Duration
	dispatchTimeout time.Duration
}

type FlowOption func(*Flow)

// WithLogger overrides the logger.
func WithLogger(logger Logger) FlowOption {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) FlowOption {
	return func(f *Flow) {
		if clock != nil {
			f.now = clock
		}
	}
}

// WithCodeSource injects a custom entry code source (useful for tests).
func WithCodeSource(source CodeSource) FlowOption {
	return func(f *Flow) {
		if source != nil {
			f.genCode = source
		}
	}
}

// WithSiteName sets the name used in mail subjects.
func WithSiteName(name string) FlowOption {
	return func(f *Flow) {
		if name != "" {
			f.siteName = name
		}
	}
}

// WithCodeTTL sets the entry code validity window.
func WithCodeTTL(ttl time.Duration) FlowOption {
	return func(f *Flow) {
		if ttl > 0 {
			f.codeTTL = ttl
		}
	}
}

// WithDispatchTimeout bounds each mail relay call. A timed out dispatch is
// reported as a dispatch failure.
func WithDispatchTimeout(timeout time.Duration) FlowOption {
	return func(f *Flow) {
		if timeout > 0 {
			f.dispatchTimeout = timeout
		}
	}
}

// NewFlow creates a new Flow over the given store and dispatcher.
// This function panics if store or dispatcher are nil.
func NewFlow(store SlotStore, dispatcher Dispatcher, opts ...FlowOption) *Flow {
	if store == nil {
		panic("store must be provided")
	}
	if dispatcher == nil {
		panic("dispatcher must be provided")
	}

	f := &Flow{
		creds:           NewCredentialStore(store),
		pending:         NewPendingTracker(store),
		sessions:        NewSessionStore(store),
		dispatcher:      dispatcher,
		logger:          defLogger{},
		now:             time.Now,
		genCode:         GenerateEntryCode,
		siteName:        DefaultSiteName,
		codeTTL:         DefaultCodeTTL,
		dispatchTimeout: DefaultDispatchTimeout,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// Credentials exposes the credential store, e.g. for admin tooling.
func (f *Flow) Credentials() *CredentialStore {
	return f.creds
}

// Register parks a registration as the pending verification attempt. The
// account is not durable until VerifyCode succeeds. Any previous pending
// attempt is overwritten.
func (f *Flow) Register(ctx context.Context, username, email, password string) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during registration")
	default:
	}

	exists, err := f.creds.Exists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		f.logger.Debug("register rejected, duplicate email")
		return ErrDuplicateEmail
	}

	hash, err := HashPassword(password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	if err := f.pending.Set(ctx, PendingVerification{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}); err != nil {
		return err
	}

	f.logger.Info("registration pending, awaiting login step")
	return nil
}

// Login requests an entry code. When a pending registration matches the
// given credentials, the code confirms that signup; otherwise the credential
// store is consulted and a login code is issued for the matched account,
// replacing any previous pending attempt. The code is persisted before
// dispatch, so a failed dispatch leaves the attempt in place; a retry mints
// a fresh code.
func (f *Flow) Login(ctx context.Context, email, password string) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during login")
	default:
	}

	pending, err := f.pending.Get(ctx)
	if err != nil {
		return err
	}

	if pending != nil && pending.IsRegistration() &&
		strings.EqualFold(pending.Email, email) &&
		ComparePasswordAndHash(password, pending.PasswordHash) == nil {
		return f.issueCode(ctx, *pending, verificationMail)
	}

	user, ok, err := f.creds.Find(ctx, email, password)
	if err != nil {
		return err
	}
	if !ok {
		f.logger.Debug("login rejected, no matching account")
		return ErrInvalidCredentials
	}

	// the signup payload of any prior pending attempt is dropped here
	return f.issueCode(ctx, PendingVerification{
		Username: user.Username,
		Email:    user.Email,
	}, loginMail)
}

type mailRenderer func(params MailParams) (subject, body string, err error)

func (f *Flow) issueCode(ctx context.Context, pending PendingVerification, render mailRenderer) error {
	code, err := f.genCode()
	if err != nil {
		return err
	}

	expiresAt := f.now().Add(f.codeTTL)
	pending.Code = code
	pending.ExpiresAt = &expiresAt

	if err := f.pending.Set(ctx, pending); err != nil {
		return err
	}

	subject, body, err := render(MailParams{
		SiteName:   f.siteName,
		Code:       code,
		Expiration: f.codeTTL,
	})
	if err != nil {
		return err
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, f.dispatchTimeout)
	defer cancel()

	if err := f.dispatcher.Send(dispatchCtx, pending.Email, subject, body); err != nil {
		f.logger.Error("entry code dispatch failed: %v", err)
		return dispatchFailed(err)
	}

	f.logger.Info("entry code dispatched")
	return nil
}

// VerifyCode checks the submitted entry code against the pending attempt.
// On a match it finalizes a pending registration (re-checking email
// uniqueness first), opens the session and clears the attempt. An incorrect
// code preserves the attempt for retry; an expired code clears it.
func (f *Flow) VerifyCode(ctx context.Context, code string) (*SessionUser, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification")
	default:
	}

	pending, err := f.pending.Get(ctx)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, ErrNoPendingVerification
	}

	if !pending.CodeIssued() {
		return nil, ErrCodeNotRequested
	}

	if pending.ExpiredAt(f.now()) {
		if err := f.pending.Clear(ctx); err != nil {
			return nil, err
		}
		f.logger.Debug("entry code expired, attempt cleared")
		return nil, ErrCodeExpired
	}

	if pending.Code != code {
		return nil, ErrIncorrectCode
	}

	if pending.IsRegistration() {
		if err := f.finalizeRegistration(ctx, pending); err != nil {
			return nil, err
		}
	}

	user := SessionUser{Username: pending.Username, Email: pending.Email}

	if err := f.sessions.Set(ctx, user); err != nil {
		return nil, err
	}

	if err := f.pending.Clear(ctx); err != nil {
		return nil, err
	}

	f.logger.Info("verification succeeded, session opened")
	return &user, nil
}

func (f *Flow) finalizeRegistration(ctx context.Context, pending *PendingVerification) error {
	// uniqueness is re-checked at finalization time, not only at submission
	exists, err := f.creds.Exists(ctx, pending.Email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	user := User{
		Username:     pending.Username,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		CreatedAt:    f.now(),
	}

	if id, err := hashid.NewUUID(pending.Email); err == nil {
		user.ID = id
	} else {
		user.ID = uuid.New()
	}

	return f.creds.Add(ctx, user)
}

// Signout clears the session only; a pending verification survives.
func (f *Flow) Signout(ctx context.Context) error {
	return f.sessions.Clear(ctx)
}

// CurrentUser returns the signed-in user, or nil when anonymous.
func (f *Flow) CurrentUser(ctx context.Context) (*SessionUser, error) {
	return f.sessions.Get(ctx)
}

// State derives the flow state from the persisted session and pending slots.
func (f *Flow) State(ctx context.Context) (FlowState, error) {
	user, err := f.sessions.Get(ctx)
	if err != nil {
		return "", err
	}
	if user != nil {
		return StateAuthenticated, nil
	}

	pending, err := f.pending.Get(ctx)
	if err != nil {
		return "", err
	}
	if pending == nil {
		return StateAnonymous, nil
	}
	if pending.CodeIssued() {
		return StatePendingCode, nil
	}

	return StatePendingRegistration, nil
}
