package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/five82/cadence/internal/config"
	"github.com/five82/cadence/internal/credstore"
	"github.com/five82/cadence/internal/logging"
	"github.com/five82/cadence/internal/netease"
	"github.com/five82/cadence/internal/prefs"
)

// Options configure a cadence run.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/cadence/prefs.toml

	Force  bool   // log in again even when a valid credential is saved
	Status bool   // report the saved credential and exit
	Logout bool   // log out remotely and clear the saved credential
	Plain  bool   // line output instead of the TUI
	SaveQR string // write each login code PNG here

	Out io.Writer // defaults to os.Stdout
}

type app struct {
	cfg    config.Config
	opts   Options
	out    io.Writer
	logger *zap.Logger
	client *netease.Client
	creds  *credstore.Store
	now    func() time.Time
}

// Run executes one cadence command until it finishes or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := netease.NewClient(cfg.APIBase, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	creds, err := credstore.New(cfg.CredentialPath)
	if err != nil {
		return err
	}

	a := &app{
		cfg:    cfg,
		opts:   opts,
		out:    opts.Out,
		logger: logger,
		client: client,
		creds:  creds,
		now:    time.Now,
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	logger.Debug("cadence starting", zap.String("api", client.BaseURL()), zap.String("credential", creds.Path()))

	switch {
	case opts.Logout:
		return a.logout(ctx)
	case opts.Status:
		return a.status()
	}

	if !opts.Force {
		rec, err := a.creds.Load()
		switch {
		case err == nil && rec.Valid(a.now()):
			a.printAccount(rec)
			return nil
		case err != nil && !errors.Is(err, credstore.ErrNotFound):
			logger.Warn("saved credential unreadable, logging in again", zap.Error(err))
		}
	}

	if opts.Plain {
		return a.loginPlain(ctx)
	}
	userPrefs := prefs.Load(opts.PrefsPath)
	return a.loginTUI(ctx, userPrefs.ThemeOr(cfg.Theme))
}

func (a *app) status() error {
	rec, err := a.creds.Load()
	if errors.Is(err, credstore.ErrNotFound) {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}
	if !rec.Valid(a.now()) {
		fmt.Fprintf(a.out, "Saved login expired at %s.\n", rec.ExpiresAt.Local().Format(time.DateTime))
		return nil
	}
	a.printAccount(rec)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	rec, err := a.creds.Load()
	if errors.Is(err, credstore.ErrNotFound) {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	if err == nil {
		if err := a.client.Logout(ctx, rec.CookieHeader()); err != nil {
			a.logger.Warn("remote logout failed", zap.Error(err))
		}
	} else {
		a.logger.Warn("saved credential unreadable, clearing it", zap.Error(err))
	}
	if err := a.creds.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *app) printAccount(rec credstore.Record) {
	name := rec.Nickname
	if name == "" {
		name = "an unnamed account"
	}
	if rec.UserID != 0 {
		name = fmt.Sprintf("%s (%d)", name, rec.UserID)
	}
	fmt.Fprintf(a.out, "Logged in as %s until %s.\n", name, rec.ExpiresAt.Local().Format(time.DateTime))
}
