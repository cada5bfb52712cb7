package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cadence/internal/qrlogin"
	"github.com/five82/cadence/internal/state"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_QuitKeysCancel(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			quits := 0
			m := New(Options{Quit: func() { quits++ }})

			m, cmd := update(t, m, keyMsg(k))
			if !isQuit(cmd) {
				t.Fatalf("%s did not quit", k)
			}
			if quits != 1 {
				t.Fatalf("Quit called %d times, want 1", quits)
			}
			if m.View() != "" {
				t.Fatalf("View after quit = %q, want empty", m.View())
			}
		})
	}
}

func TestModel_RetryOnlyAfterFailure(t *testing.T) {
	store := &state.Store{}
	retries := 0
	m := New(Options{Store: store, Retry: func() { retries++ }})

	store.SetStatus(qrlogin.StatusWaitingForScan)
	m, _ = update(t, m, snapshotMsg(store.Snapshot()))
	m, _ = update(t, m, keyMsg("r"))
	if retries != 0 {
		t.Fatalf("retry fired while waiting")
	}

	store.Finish(nil, fmt.Errorf("%w: remote", qrlogin.ErrExpired))
	m, _ = update(t, m, snapshotMsg(store.Snapshot()))
	if !strings.Contains(m.View(), "expired") {
		t.Fatalf("View = %q, want expired badge", m.View())
	}
	m, cmd := update(t, m, keyMsg("r"))
	if retries != 1 {
		t.Fatalf("retries = %d, want 1", retries)
	}
	if cmd == nil {
		t.Fatalf("retry returned no snapshot refresh")
	}

	// Disabled again until the next failure arrives.
	_, _ = update(t, m, keyMsg("r"))
	if retries != 1 {
		t.Fatalf("retries = %d after second press, want 1", retries)
	}
}

func TestModel_ConfirmedQuits(t *testing.T) {
	store := &state.Store{}
	store.Finish(&state.Account{Nickname: "listener"}, nil)

	m := New(Options{Store: store})
	_, cmd := update(t, m, snapshotMsg(store.Snapshot()))
	if !isQuit(cmd) {
		t.Fatalf("confirmed snapshot did not quit")
	}
}

func TestModel_CycleThemeNotifies(t *testing.T) {
	var saved string
	m := New(Options{ThemeName: "Slate", ThemeChanged: func(name string) { saved = name }})

	m, _ = update(t, m, keyMsg("T"))
	if m.theme.Name != "Nightfox" || saved != "Nightfox" {
		t.Fatalf("theme = %q saved = %q, want Nightfox", m.theme.Name, saved)
	}
}

func TestModel_RendersCodeOnce(t *testing.T) {
	store := &state.Store{}
	m := New(Options{Store: store})
	if !strings.Contains(m.View(), "Requesting a login code") {
		t.Fatalf("View before code = %q", m.View())
	}

	store.SetCode(qrlogin.Code{URL: loginURL})
	store.SetStatus(qrlogin.StatusScanned)
	store.SetMessage("Code image saved to /tmp/code.png")
	m, _ = update(t, m, snapshotMsg(store.Snapshot()))
	if m.codeErr != nil || m.codeText == "" {
		t.Fatalf("code not rendered: %v", m.codeErr)
	}
	view := m.View()
	if !strings.Contains(view, "█") || !strings.Contains(view, "Confirm the login") || !strings.Contains(view, "/tmp/code.png") {
		t.Fatalf("View = %q, want code and scanned line", view)
	}

	rendered := m.codeText
	m, _ = update(t, m, snapshotMsg(store.Snapshot()))
	if m.codeText != rendered {
		t.Fatalf("code re-rendered for an unchanged snapshot")
	}
}

func TestFailureText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: boom", qrlogin.ErrKeyIssuance), "login key"},
		{qrlogin.ErrCancelled, "cancelled"},
		{fmt.Errorf("%w: x", qrlogin.ErrCodeRender), "login code"},
		{fmt.Errorf("%w: x", qrlogin.ErrPoll), "Lost track"},
		{errors.New("odd"), "odd"},
	}
	for _, tt := range tests {
		if got := FailureText(tt.err); !strings.Contains(got, tt.want) {
			t.Fatalf("FailureText(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}

func TestStatusText_Unknown(t *testing.T) {
	if got := StatusText(qrlogin.Status(999)); !strings.Contains(got, "status(999)") {
		t.Fatalf("StatusText(999) = %q", got)
	}
}
