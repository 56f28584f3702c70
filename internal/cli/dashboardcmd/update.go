package dashboardcmd

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gcstr/cardtrack/internal/api"
	"github.com/gcstr/cardtrack/internal/apperr"
	"github.com/gcstr/cardtrack/internal/config"
	"github.com/gcstr/cardtrack/internal/tracker"
)

// Every message produced by a command carries the session it was issued
// under; results for a superseded session are dropped.
type (
	refreshMsg  struct{ session uint64 }
	pollTickMsg struct{ session uint64 }
	statusMsg   struct {
		session uint64
		gen     uint64
		snap    tracker.StatusSnapshot
		err     error
	}
	rejectedMsg struct {
		session uint64
		gen     uint64
		card    *tracker.RejectedCard
		err     error
	}
	advanceMsg struct {
		session uint64
		token   uint64
	}
	ackReadyMsg struct {
		session uint64
		err     error
	}
	ackRejectedMsg struct {
		session uint64
		err     error
	}
)

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		requestRefresh(m.state.Session),
		m.pollCmd(),
	)
}

func requestRefresh(session uint64) tea.Cmd {
	return func() tea.Msg { return refreshMsg{session: session} }
}

func (m model) pollCmd() tea.Cmd {
	if m.opts.PollInterval <= 0 || !m.state.HasIdentity() {
		return nil
	}
	session := m.state.Session
	return tea.Tick(m.opts.PollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{session: session}
	})
}

// refresh issues the status and rejected-card fetches for the current
// identity. A refresh is skipped while the previous one is outstanding.
func (m *model) refresh() tea.Cmd {
	if !m.state.HasIdentity() || m.fetching > 0 {
		return nil
	}
	m.fetching = 2
	ctx, c := m.sessionCtx, m.client
	reg, session, gen := m.state.Identity, m.state.Session, m.fetchGen
	return tea.Batch(
		func() tea.Msg {
			snap, err := c.Status(ctx, reg)
			return statusMsg{session: session, gen: gen, snap: snap, err: err}
		},
		func() tea.Msg {
			card, err := c.RejectedCard(ctx, reg)
			return rejectedMsg{session: session, gen: gen, card: card, err: err}
		},
	)
}

// forceRefresh supersedes any outstanding fetches and issues a new pair.
func (m *model) forceRefresh() tea.Cmd {
	m.fetchGen++
	m.fetching = 0
	return m.refresh()
}

// fresh reports whether a fetch result still applies.
func (m model) fresh(session, gen uint64) bool {
	return m.state.Current(session) && gen == m.fetchGen
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = barWidth(msg.Width)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshMsg:
		if !m.state.Current(msg.session) {
			return m, nil
		}
		return m, m.refresh()

	case pollTickMsg:
		if !m.state.Current(msg.session) {
			// the loop for a previous identity ends here
			return m, nil
		}
		return m, tea.Batch(m.refresh(), m.pollCmd())

	case statusMsg:
		if !m.fresh(msg.session, msg.gen) {
			return m, nil
		}
		m.fetching--
		if msg.err != nil {
			m.state.ApplyStatusError(msg.session)
			m.lastErr = apperr.UserMessage(msg.err, "Could not reach the card office.")
			m.log.Warn("status_fetch_failed", "register_number", m.state.Identity, "error", msg.err)
			return m, nil
		}
		m.state.ApplyStatus(msg.session, msg.snap)
		m.lastSynced = m.opts.Now()
		m.lastErr = ""
		m.log.Debug("status_synced", "register_number", m.state.Identity, "status", string(msg.snap.Status), "success", msg.snap.Success)
		return m, nil

	case rejectedMsg:
		if !m.fresh(msg.session, msg.gen) {
			return m, nil
		}
		m.fetching--
		if msg.err != nil {
			m.log.Warn("rejected_fetch_failed", "register_number", m.state.Identity, "error", msg.err)
			return m, nil
		}
		if m.state.ApplyRejected(msg.session, msg.card) {
			if msg.card != nil {
				m.log.Info("rejected_card_shown", "register_number", m.state.Identity)
			} else {
				m.log.Info("rejected_card_cleared", "register_number", m.state.Identity)
			}
		}
		return m, nil

	case advanceMsg:
		m.state.AdvanceSubmitted(msg.session, msg.token)
		return m, nil

	case ackReadyMsg:
		if !m.state.Current(msg.session) {
			return m, nil
		}
		if msg.err != nil {
			m.log.Warn("ack_ready_failed", "register_number", m.state.Identity, "error", msg.err)
		}
		if m.state.FinishAckReady(msg.session, msg.err) {
			m.log.Info("ack_ready_done", "register_number", m.state.Identity)
			return m, m.forceRefresh()
		}
		return m, nil

	case ackRejectedMsg:
		if !m.state.Current(msg.session) {
			return m, nil
		}
		if msg.err != nil {
			m.log.Warn("ack_rejected_failed", "register_number", m.state.Identity, "error", msg.err)
		}
		if m.state.FinishAckRejected(msg.session, msg.err) {
			m.log.Info("ack_rejected_done", "register_number", m.state.Identity)
			return m, m.forceRefresh()
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Acknowledge) && m.state.Popup.Open():
		return m, m.acknowledge()

	case m.state.Popup.Open():
		// the popup blocks everything else
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()

	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keys.Identity):
		m.editing = true
		m.inputErr = ""
		m.input.SetValue(m.state.Identity)
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *model) submit() tea.Cmd {
	if m.state.Form().Disabled {
		return nil
	}
	token, ok := m.state.Submit()
	if !ok {
		return nil
	}
	m.log.Info("request_submitted", "register_number", m.state.Identity)
	session := m.state.Session
	return tea.Tick(m.opts.SubmitDelay, func(time.Time) tea.Msg {
		return advanceMsg{session: session, token: token}
	})
}

// acknowledge starts the transfer for the popup currently shown. A second
// press while the transfer is in flight does nothing.
func (m *model) acknowledge() tea.Cmd {
	ctx, c := m.sessionCtx, m.client
	reg, session := m.state.Identity, m.state.Session
	switch m.state.Popup.Kind {
	case tracker.PopupReady:
		if !m.state.BeginAckReady() {
			return nil
		}
		m.log.Info("ack_ready_start", "register_number", reg)
		return func() tea.Msg {
			return ackReadyMsg{session: session, err: transferErr(c.TransferAccepted(ctx, reg))}
		}
	case tracker.PopupRejected:
		if !m.state.BeginAckRejected() {
			return nil
		}
		m.log.Info("ack_rejected_start", "register_number", reg)
		return func() tea.Msg {
			return ackRejectedMsg{session: session, err: transferErr(c.TransferRejected(ctx, reg))}
		}
	}
	return nil
}

// transferErr folds an unsuccessful transfer result into an error so the
// state machine sees a single failure path.
func transferErr(res api.TransferResult, err error) error {
	if err != nil {
		return err
	}
	if !res.Success {
		msg := strings.TrimSpace(res.Message)
		if msg == "" {
			msg = "the card office could not complete the transfer"
		}
		return apperr.New("dashboard.Transfer", apperr.External, "%s", msg)
	}
	return nil
}

func (m model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m.quit()
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.inputErr = ""
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.input.Value())
		if value != "" && !config.ValidRegisterNumber(value) {
			m.inputErr = "register number must be alphanumeric"
			return m, nil
		}
		m.editing = false
		m.inputErr = ""
		m.input.Blur()
		return m, m.switchIdentity(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// switchIdentity moves the dashboard to another student. In-flight calls for
// the previous one are cancelled and their late results ignored.
func (m *model) switchIdentity(identity string) tea.Cmd {
	prev := m.state.Identity
	if !m.state.SetIdentity(identity) {
		return nil
	}
	m.cancelSession()
	m.sessionCtx, m.cancelSession = context.WithCancel(m.parent)
	m.fetching = 0
	m.lastSynced = time.Time{}
	m.lastErr = ""
	m.log.Info("identity_changed", "from", prev, "to", identity)
	return tea.Batch(m.refresh(), m.pollCmd())
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancelSession()
	return m, tea.Quit
}

func barWidth(total int) int {
	w := total - totalHorizontalPadding - 20
	if w > 60 {
		w = 60
	}
	if w < 10 {
		w = 10
	}
	return w
}
