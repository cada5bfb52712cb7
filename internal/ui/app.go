package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cadence/internal/qrlogin"
	"github.com/five82/cadence/internal/state"
)

const defaultTick = 250 * time.Millisecond

// Options configures the UI.
type Options struct {
	Store     *state.Store
	ThemeName string
	Tick      time.Duration

	// Retry starts a new login after the previous one failed.
	Retry func()
	// Quit is called once when the user leaves before confirmation.
	Quit func()
	// ThemeChanged is called with the new theme name after T.
	ThemeChanged func(string)
}

// Model is the root application state for Bubble Tea.
type Model struct {
	store        *state.Store
	tick         time.Duration
	retry        func()
	quit         func()
	themeChanged func(string)

	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int

	snapshot state.Snapshot
	codeText string
	codeErr  error
	rendered qrlogin.Code
	quitting bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		store:        opts.Store,
		tick:         tick,
		retry:        opts.Retry,
		quit:         opts.Quit,
		themeChanged: opts.ThemeChanged,
		theme:        GetTheme(opts.ThemeName),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick), m.spinner.Tick}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		cmds = append(cmds, tickCmd(m.tick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		return m.applySnapshot(state.Snapshot(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) applySnapshot(snap state.Snapshot) (tea.Model, tea.Cmd) {
	m.snapshot = snap
	if !snap.HasCode {
		m.codeText, m.codeErr, m.rendered = "", nil, qrlogin.Code{}
	} else if snap.Code != m.rendered {
		m.codeText, m.codeErr = RenderText(snap.Code)
		m.rendered = snap.Code
	}
	m.keys.Retry.SetEnabled(snap.Phase == state.PhaseFailed && m.retry != nil)

	if snap.Phase == state.PhaseConfirmed {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.quit != nil {
			m.quit()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Retry):
		m.keys.Retry.SetEnabled(false)
		m.retry()
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.themeChanged != nil {
			m.themeChanged(m.theme.Name)
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Title.Render("cadence"))
	b.WriteString("  ")
	b.WriteString(m.renderBadge(styles))
	b.WriteString("\n\n")
	b.WriteString(m.renderCode(styles))
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine(styles))
	if msg := m.snapshot.Message; msg != "" {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render(msg))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.Footer.Render(m.help.View(m.keys)))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) renderBadge(styles Styles) string {
	name := badgeName(m.snapshot)
	return styles.StatusStyle(name).Render(name)
}

func (m Model) renderCode(styles Styles) string {
	switch {
	case !m.snapshot.HasCode:
		return styles.Panel.Render(styles.MutedText.Render(m.spinner.View() + " Requesting a login code..."))
	case m.codeErr != nil:
		return styles.Panel.Render(styles.DangerText.Render("Cannot draw the code: " + m.codeErr.Error()))
	default:
		return styles.Panel.Render(strings.TrimRight(m.codeText, "\n"))
	}
}

func (m Model) renderStatusLine(styles Styles) string {
	snap := m.snapshot
	switch snap.Phase {
	case state.PhaseFailed:
		line := styles.DangerText.Render(FailureText(snap.Err))
		if m.keys.Retry.Enabled() {
			line += styles.MutedText.Render("  Press r for a new code.")
		}
		return line
	case state.PhaseConfirmed:
		return styles.SuccessText.Render("Login confirmed.")
	case state.PhaseWaiting:
		text := StatusText(snap.Status)
		if snap.Status == qrlogin.StatusScanned {
			return styles.WarningText.Render(m.spinner.View() + " " + text)
		}
		return styles.Text.Render(m.spinner.View() + " " + text)
	case state.PhaseCode:
		return styles.Text.Render(StatusText(qrlogin.StatusWaitingForScan))
	default:
		return styles.FaintText.Render("Starting...")
	}
}

func badgeName(snap state.Snapshot) string {
	switch snap.Phase {
	case state.PhaseWaiting:
		if snap.Status.Valid() {
			return snap.Status.String()
		}
		return "waiting"
	case state.PhaseFailed:
		if errors.Is(snap.Err, qrlogin.ErrExpired) {
			return "expired"
		}
		return "failed"
	default:
		return snap.Phase.String()
	}
}

// StatusText is the user-facing line for a login status.
func StatusText(status qrlogin.Status) string {
	switch status {
	case qrlogin.StatusWaitingForScan:
		return "Scan the code with the NetEase Cloud Music app."
	case qrlogin.StatusScanned:
		return "Scanned. Confirm the login on your phone."
	case qrlogin.StatusConfirmed:
		return "Login confirmed."
	case qrlogin.StatusExpired:
		return "The code has expired."
	default:
		return fmt.Sprintf("Unexpected status %s.", status)
	}
}

// FailureText is the user-facing line for a session that ended in err.
func FailureText(err error) string {
	switch {
	case err == nil:
		return "Login failed."
	case errors.Is(err, qrlogin.ErrExpired):
		return "The code has expired."
	case errors.Is(err, qrlogin.ErrCancelled):
		return "Login cancelled."
	case errors.Is(err, qrlogin.ErrKeyIssuance):
		return "Could not get a login key from the server."
	case errors.Is(err, qrlogin.ErrCodeRender):
		return "Could not create a login code."
	case errors.Is(err, qrlogin.ErrPoll):
		return "Lost track of the login: " + err.Error()
	default:
		return "Login failed: " + err.Error()
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options, progOpts ...tea.ProgramOption) error {
	m := New(opts)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)...)
	_, err := p.Run()
	return err
}
