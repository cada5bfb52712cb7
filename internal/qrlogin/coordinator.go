package qrlogin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	// DefaultInterval is the spacing between status checks.
	DefaultInterval = 1500 * time.Millisecond
	// DefaultExpiresAfter is the local login deadline used by callers that
	// do not configure one.
	DefaultExpiresAfter = 3 * time.Minute

	defaultImageSize = 256
	keyOKCode        = 200
)

// Options tune a Coordinator. Zero values use defaults; ExpiresAfter <= 0
// disables the local deadline and relies on the remote's 800 status.
type Options struct {
	Interval     time.Duration
	ExpiresAfter time.Duration
	ImageSize    int
	Clock        clockwork.Clock
	Logger       *zap.Logger
}

// Coordinator drives login sessions against a Remote.
type Coordinator struct {
	remote       Remote
	interval     time.Duration
	expiresAfter time.Duration
	imageSize    int
	clock        clockwork.Clock
	logger       *zap.Logger
}

// NewCoordinator builds a Coordinator for remote.
func NewCoordinator(remote Remote, opts Options) *Coordinator {
	c := &Coordinator{
		remote:       remote,
		interval:     opts.Interval,
		expiresAfter: opts.ExpiresAfter,
		imageSize:    opts.ImageSize,
		clock:        opts.Clock,
		logger:       opts.Logger,
	}
	if c.interval <= 0 {
		c.interval = DefaultInterval
	}
	if c.imageSize <= 0 {
		c.imageSize = defaultImageSize
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Start begins a new session and returns immediately. The session runs
// until it settles, ctx is cancelled, or Session.Cancel is called.
func (c *Coordinator) Start(ctx context.Context, hooks Hooks) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ID:           uuid.NewString(),
		StartedAt:    c.clock.Now(),
		ExpiresAfter: c.expiresAfter,
		hooks:        hooks,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	go c.run(ctx, s)
	return s
}

func (c *Coordinator) run(ctx context.Context, s *Session) {
	defer s.cancel()

	log := c.logger.With(zap.String("session", s.ID))
	log.Info("qr login started")

	cred, err := c.login(ctx, s, log)
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
	}

	switch {
	case err == nil:
		log.Info("qr login confirmed")
	case errors.Is(err, ErrCancelled):
		log.Info("qr login cancelled")
	case errors.Is(err, ErrExpired):
		log.Info("qr login expired", zap.Error(err))
	default:
		log.Warn("qr login failed", zap.Error(err))
	}
	s.settle(Result{Credential: cred, Err: err})
}

func (c *Coordinator) login(ctx context.Context, s *Session, log *zap.Logger) (Credential, error) {
	key, err := c.acquireKey(ctx)
	if err != nil {
		return Credential{}, err
	}
	s.setKey(key)
	log.Debug("qr key issued", zap.String("key", key))

	code, err := c.renderCode(ctx, key)
	if err != nil {
		return Credential{}, err
	}
	if fn := s.hooks.OnCodeReady; fn != nil {
		s.emit(ctx, func() { fn(code) })
	}

	return c.poll(ctx, s, key, log)
}

func (c *Coordinator) acquireKey(ctx context.Context) (string, error) {
	reply, err := c.remote.IssueKey(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrKeyIssuance, err)
	}
	if reply.Code != keyOKCode {
		return "", fmt.Errorf("%w: remote returned code %d", ErrKeyIssuance, reply.Code)
	}
	key := strings.TrimSpace(reply.Key)
	if key == "" {
		return "", fmt.Errorf("%w: remote returned an empty key", ErrKeyIssuance)
	}
	return key, nil
}

func (c *Coordinator) renderCode(ctx context.Context, key string) (Code, error) {
	reply, err := c.remote.RenderCode(ctx, key)
	if err != nil {
		return Code{}, fmt.Errorf("%w: %w", ErrCodeRender, err)
	}
	src, err := ResolveCodeSource(reply)
	if err != nil {
		return Code{}, err
	}
	return BuildCode(src, c.imageSize)
}

// poll checks the status once per interval. The wait for the next check
// starts after the previous one returns, so checks never overlap.
func (c *Coordinator) poll(ctx context.Context, s *Session, key string, log *zap.Logger) (Credential, error) {
	for {
		timer := c.clock.NewTimer(c.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Credential{}, ctx.Err()
		case <-timer.Chan():
		}
		if err := ctx.Err(); err != nil {
			return Credential{}, err
		}

		if c.expiresAfter > 0 && c.clock.Since(s.StartedAt) >= c.expiresAfter {
			return Credential{}, fmt.Errorf("%w: not confirmed within %s", ErrExpired, c.expiresAfter)
		}

		reply, err := c.remote.CheckStatus(ctx, key)
		if err != nil {
			return Credential{}, fmt.Errorf("%w: %w", ErrPoll, err)
		}
		status := Status(reply.Code)
		if !status.Valid() {
			return Credential{}, fmt.Errorf("%w: %w", ErrPoll, &StatusError{Code: reply.Code, Message: reply.Message})
		}

		s.setStatus(status)
		log.Info("qr status", zap.Stringer("status", status), zap.String("message", reply.Message))
		if fn := s.hooks.OnStatusChange; fn != nil {
			s.emit(ctx, func() { fn(status) })
		}

		switch status {
		case StatusConfirmed:
			cookie := strings.TrimSpace(reply.Cookie)
			if cookie == "" {
				return Credential{}, fmt.Errorf("%w: confirmed without a credential", ErrPoll)
			}
			return Credential{Value: cookie}, nil
		case StatusExpired:
			return Credential{}, fmt.Errorf("%w: remote reported the code expired", ErrExpired)
		}
	}
}
