package mocks

import (
	"context"
	"sync"

	"github.com/taskflow/taskflow-api/internal/platform/mailer"
)

// MockSender implements mailer.Sender for testing. It records every
// delivered message and can be told to fail a number of times before
// succeeding, or to fail every attempt.
type MockSender struct {
	// SendFn overrides the default behavior entirely when set.
	SendFn func(ctx context.Context, msg mailer.Message) error

	// FailFirst makes the first n Send calls fail with FailErr.
	FailFirst int
	// FailAlways makes every Send call fail with FailErr.
	FailAlways bool
	// FailErr is the error returned on induced failures.
	FailErr error

	mu       sync.Mutex
	attempts int
	Sent     []mailer.Message
}

// NewMockSender creates a sender that succeeds on every call.
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send implements the Sender interface.
func (m *MockSender) Send(ctx context.Context, msg mailer.Message) error {
	if m.SendFn != nil {
		return m.SendFn(ctx, msg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.FailAlways || m.attempts <= m.FailFirst {
		return m.FailErr
	}

	m.Sent = append(m.Sent, msg)
	return nil
}

// Attempts returns how many times Send has been called, including
// failures.
func (m *MockSender) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Messages returns a copy of the successfully delivered messages.
func (m *MockSender) Messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mailer.Message, len(m.Sent))
	copy(out, m.Sent)
	return out
}
