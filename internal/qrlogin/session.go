package qrlogin

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Credential is the opaque proof of a confirmed login (the session cookie).
type Credential struct {
	Value string
}

// Result is the single outcome of a session.
type Result struct {
	Credential Credential
	Err        error
}

// Hooks observe a session. Both are optional and run on the session's
// goroutine; they must not call Session.Cancel synchronously.
type Hooks struct {
	OnCodeReady    func(Code)
	OnStatusChange func(Status)
}

// Session is one login attempt started by Coordinator.Start.
type Session struct {
	ID           string
	StartedAt    time.Time
	ExpiresAfter time.Duration

	hooks  Hooks
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	key     string
	status  Status
	result  Result
	settled bool

	// emitMu serializes hook calls with Cancel so no hook starts after
	// Cancel returns.
	emitMu    sync.Mutex
	cancelled atomic.Bool
}

// Key returns the issued key, empty until issue-key succeeds.
func (s *Session) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Status returns the last accepted status, zero before the first poll.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Done is closed once the session has settled.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Result returns the outcome and whether the session has settled.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.settled
}

// Wait blocks until the session settles or ctx ends.
func (s *Session) Wait(ctx context.Context) (Credential, error) {
	select {
	case <-s.done:
		res, _ := s.Result()
		return res.Credential, res.Err
	case <-ctx.Done():
		return Credential{}, ctx.Err()
	}
}

// Cancel abandons the session. The timer stops, in-flight requests are
// aborted, and no hook runs after Cancel returns. The session settles with
// ErrCancelled. Cancelling a settled session does nothing.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.settled {
		s.mu.Unlock()
		return
	}
	s.cancelled.Store(true)
	s.mu.Unlock()

	s.cancel()

	// Wait out a hook that was already running.
	s.emitMu.Lock()
	s.emitMu.Unlock()
}

func (s *Session) emit(ctx context.Context, fn func()) {
	if fn == nil {
		return
	}
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if s.cancelled.Load() || ctx.Err() != nil {
		return
	}
	fn()
}

func (s *Session) setKey(key string) {
	s.mu.Lock()
	s.key = key
	s.mu.Unlock()
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *Session) settle(res Result) {
	s.mu.Lock()
	if s.cancelled.Load() {
		res = Result{Err: ErrCancelled}
	}
	s.result = res
	s.settled = true
	s.mu.Unlock()
	close(s.done)
}
