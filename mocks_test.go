package authflow_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	authflow "github.com/safehaven-app/go-authflow"
)

// MockDispatcher implements authflow.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// recordingDispatcher captures every dispatched mail and answers with a
// scripted error.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (d *recordingDispatcher) Send(ctx context.Context, to, subject, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.err != nil {
		return d.err
	}

	d.sent = append(d.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (d *recordingDispatcher) last() sentMail {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.sent) == 0 {
		return sentMail{}
	}
	return d.sent[len(d.sent)-1]
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

// testClock is a settable clock for flows under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(at time.Time) *testClock {
	return &testClock{now: at}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// seqCodes returns the given codes in order, then falls back to the last one.
func seqCodes(codes ...string) authflow.CodeSource {
	i := 0
	return func() (string, error) {
		code := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return code, nil
	}
}
