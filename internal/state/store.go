package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/cadence/internal/qrlogin"
)

// Phase is the coarse stage of the login shown to the user.
type Phase int

const (
	PhaseStarting Phase = iota
	PhaseCode
	PhaseWaiting
	PhaseConfirmed
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseCode:
		return "code"
	case PhaseWaiting:
		return "waiting"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Account is the logged-in user shown after confirmation.
type Account struct {
	UserID   int64
	Nickname string
}

// Snapshot represents the latest login data available to the UI.
type Snapshot struct {
	SessionID string
	Phase     Phase
	Code      qrlogin.Code
	HasCode   bool
	Status    qrlogin.Status
	Message   string
	Account   *Account
	Err       error
	UpdatedAt time.Time
}

// Done reports whether the login has finished either way.
func (s Snapshot) Done() bool {
	return s.Phase == PhaseConfirmed || s.Phase == PhaseFailed
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// Reset starts a fresh login for sessionID, dropping any previous code,
// status, or error.
func (s *Store) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = Snapshot{SessionID: sessionID, Phase: PhaseStarting, UpdatedAt: s.clock()}
}

// SetSessionID labels the current login once its session exists.
func (s *Store) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.SessionID = id
}

// SetCode records the code to display.
func (s *Store) SetCode(code qrlogin.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Code = code
	s.snapshot.HasCode = true
	if !s.snapshot.Done() {
		s.snapshot.Phase = PhaseCode
	}
	s.snapshot.UpdatedAt = s.clock()
}

// SetStatus records a status reported by the remote.
func (s *Store) SetStatus(status qrlogin.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Status = status
	if !s.snapshot.Done() {
		s.snapshot.Phase = PhaseWaiting
	}
	s.snapshot.UpdatedAt = s.clock()
}

// SetMessage sets the line shown under the code.
func (s *Store) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Message = msg
	s.snapshot.UpdatedAt = s.clock()
}

// Finish records the session outcome. A nil err means the login was
// confirmed; account may be nil when the lookup failed.
func (s *Store) Finish(account *Account, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.Phase = PhaseFailed
		s.snapshot.Err = err
	} else {
		s.snapshot.Phase = PhaseConfirmed
		s.snapshot.Err = nil
	}
	if account != nil {
		dup := *account
		s.snapshot.Account = &dup
	}
	s.snapshot.UpdatedAt = s.clock()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.Account != nil {
		dup := *s.snapshot.Account
		snap.Account = &dup
	}
	return snap
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
