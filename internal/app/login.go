package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/cadence/internal/credstore"
	"github.com/five82/cadence/internal/netease"
	"github.com/five82/cadence/internal/prefs"
	"github.com/five82/cadence/internal/qrlogin"
	"github.com/five82/cadence/internal/state"
	"github.com/five82/cadence/internal/ui"
)

func (a *app) coordinator() *qrlogin.Coordinator {
	return qrlogin.NewCoordinator(netease.NewQRRemote(a.client), qrlogin.Options{
		Interval:     a.cfg.PollInterval,
		ExpiresAfter: a.cfg.LoginTimeout,
		Logger:       a.logger,
	})
}

// complete persists a confirmed login. A failed account lookup is logged and
// the credential is saved without it.
func (a *app) complete(ctx context.Context, cred qrlogin.Credential) (credstore.Record, error) {
	rec := credstore.NewRecord(cred.Value, a.now(), credstore.DefaultTTL)

	account, err := a.client.Account(ctx, rec.CookieHeader())
	if err != nil {
		a.logger.Warn("account lookup failed", zap.Error(err))
	} else {
		rec.UserID = account.UserID()
		rec.Nickname = account.Nickname()
	}

	if err := a.creds.Save(rec); err != nil {
		return rec, fmt.Errorf("save credential: %w", err)
	}
	a.logger.Info("credential saved",
		zap.Int64("user_id", rec.UserID),
		zap.Time("expires_at", rec.ExpiresAt),
	)
	return rec, nil
}

// saveCode writes the code PNG when -save-qr is set and reports whether it
// was written.
func (a *app) saveCode(code qrlogin.Code) bool {
	if a.opts.SaveQR == "" {
		return false
	}
	data, err := code.PNG()
	if err == nil {
		err = os.MkdirAll(filepath.Dir(a.opts.SaveQR), 0o755)
	}
	if err == nil {
		err = os.WriteFile(a.opts.SaveQR, data, 0o644)
	}
	if err != nil {
		a.logger.Warn("save code image failed", zap.String("path", a.opts.SaveQR), zap.Error(err))
		return false
	}
	return true
}

// loginPlain runs a single session printing the code and each status change.
func (a *app) loginPlain(ctx context.Context) error {
	var last qrlogin.Status
	session := a.coordinator().Start(ctx, qrlogin.Hooks{
		OnCodeReady: func(code qrlogin.Code) {
			saved := a.saveCode(code)
			text, err := ui.RenderText(code)
			if err != nil {
				a.logger.Warn("render code failed", zap.Error(err))
				text = code.URL + "\n"
			}
			fmt.Fprint(a.out, text)
			if saved {
				fmt.Fprintf(a.out, "Code image saved to %s\n", a.opts.SaveQR)
			}
		},
		OnStatusChange: func(status qrlogin.Status) {
			if status == last {
				return
			}
			last = status
			fmt.Fprintln(a.out, ui.StatusText(status))
		},
	})
	defer session.Cancel()

	cred, err := session.Wait(context.WithoutCancel(ctx))
	if err != nil {
		if errors.Is(err, qrlogin.ErrCancelled) {
			fmt.Fprintln(a.out, ui.FailureText(err))
			return nil
		}
		return err
	}

	rec, err := a.complete(ctx, cred)
	if err != nil {
		return err
	}
	a.printAccount(rec)
	return nil
}

// tuiLogin owns the current session behind the Bubble Tea screen.
type tuiLogin struct {
	a     *app
	ctx   context.Context
	coord *qrlogin.Coordinator
	store *state.Store

	mu      sync.Mutex
	current *qrlogin.Session
	wg      sync.WaitGroup
}

func (t *tuiLogin) start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	store := t.store
	store.Reset("")
	session := t.coord.Start(t.ctx, qrlogin.Hooks{
		OnCodeReady: func(code qrlogin.Code) {
			if t.a.saveCode(code) {
				store.SetMessage("Code image saved to " + t.a.opts.SaveQR)
			}
			store.SetCode(code)
		},
		OnStatusChange: store.SetStatus,
	})
	store.SetSessionID(session.ID)
	t.current = session

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		<-session.Done()
		res, _ := session.Result()
		if res.Err != nil {
			store.Finish(nil, res.Err)
			return
		}
		rec, err := t.a.complete(t.ctx, res.Credential)
		if err != nil {
			store.Finish(nil, err)
			return
		}
		store.Finish(&state.Account{UserID: rec.UserID, Nickname: rec.Nickname}, nil)
	}()
}

func (t *tuiLogin) cancel() {
	t.mu.Lock()
	session := t.current
	t.mu.Unlock()
	if session != nil {
		session.Cancel()
	}
}

func (a *app) loginTUI(ctx context.Context, theme string) error {
	t := &tuiLogin{
		a:     a,
		ctx:   ctx,
		coord: a.coordinator(),
		store: &state.Store{},
	}
	t.start()

	err := ui.Run(ui.Options{
		Store:     t.store,
		ThemeName: theme,
		Tick:      a.cfg.PollInterval / 4,
		Retry:     t.start,
		Quit:      t.cancel,
		ThemeChanged: func(name string) {
			if err := prefs.Save(a.opts.PrefsPath, prefs.Prefs{Theme: name}); err != nil {
				a.logger.Warn("save prefs failed", zap.Error(err))
			}
		},
	}, tea.WithContext(ctx))

	t.cancel()
	t.wg.Wait()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}

	snap := t.store.Snapshot()
	switch {
	case snap.Phase == state.PhaseConfirmed:
		rec, loadErr := a.creds.Load()
		if loadErr != nil {
			return loadErr
		}
		a.printAccount(rec)
		return nil
	case snap.Err == nil || errors.Is(snap.Err, qrlogin.ErrCancelled):
		fmt.Fprintln(a.out, ui.FailureText(qrlogin.ErrCancelled))
		return nil
	default:
		return snap.Err
	}
}
