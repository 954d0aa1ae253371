// Package console is the interactive operator dashboard: a live alert list
// fed by the WebSocket stream, an incident detail view, and the simulate /
// mitigate triggers.
package console

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/netsentinel/sentryview/internal/client"
	"github.com/netsentinel/sentryview/internal/feed"
	"github.com/netsentinel/sentryview/internal/history"
	"github.com/netsentinel/sentryview/internal/metrics"
	"github.com/netsentinel/sentryview/internal/model"
	"github.com/netsentinel/sentryview/internal/resolver"
)

// noticeTTL is how long a transient confirmation stays on screen; the
// mitigation flow also closes the detail view after this delay.
const noticeTTL = 2 * time.Second

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Dismiss  key.Binding
	PortScan key.Binding
	UDPFlood key.Binding
	Mitigate key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k")),
	Down:     key.NewBinding(key.WithKeys("down", "j")),
	Select:   key.NewBinding(key.WithKeys("enter")),
	Dismiss:  key.NewBinding(key.WithKeys("esc")),
	PortScan: key.NewBinding(key.WithKeys("s")),
	UDPFlood: key.NewBinding(key.WithKeys("u")),
	Mitigate: key.NewBinding(key.WithKeys("m")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
}

// Messages produced by the console's async work.
type (
	alertMsg      model.AlertSummary
	feedClosedMsg struct{ err error }
	resolvedMsg   struct {
		generation uint64
		incident   *model.FullIncident
	}
	actionDoneMsg struct {
		action     string // history.ActionSimulate or ActionMitigate
		target     string
		incidentID string
		err        error
	}
	noticeExpiredMsg struct{ seq int }
	closeDetailMsg   struct{ generation uint64 }
)

// Model is the bubbletea model for the console.
type Model struct {
	sub      *feed.Subscription
	window   *feed.Window
	res      *resolver.Resolver
	api      *client.Client
	hist     *history.Store // nil when history is disabled
	logger   *slog.Logger
	detail   viewport.Model
	width    int
	height   int
	ready    bool
	quitting bool

	alerts   []model.AlertSummary
	cursor   int
	active   *model.FullIncident
	feedErr  error
	feedDead bool

	notice    string
	noticeSeq int
}

// New assembles the console model. The subscription is owned by the model
// and released exactly once when the program quits.
func New(sub *feed.Subscription, window *feed.Window, res *resolver.Resolver, api *client.Client, hist *history.Store, logger *slog.Logger) Model {
	return Model{
		sub:    sub,
		window: window,
		res:    res,
		api:    api,
		hist:   hist,
		logger: logger,
		detail: viewport.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return waitForAlert(m.sub)
}

// waitForAlert blocks on the subscription until a summary arrives or the
// stream ends.
func waitForAlert(sub *feed.Subscription) tea.Cmd {
	return func() tea.Msg {
		alert, ok := <-sub.Alerts()
		if !ok {
			return feedClosedMsg{err: sub.Err()}
		}
		return alertMsg(alert)
	}
}

func (m Model) resolveCmd(generation uint64, summary model.AlertSummary) tea.Cmd {
	return func() tea.Msg {
		inc := m.res.Resolve(context.Background(), summary)
		return resolvedMsg{generation: generation, incident: inc}
	}
}

func (m Model) simulateCmd(kind string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := m.api.Simulate(ctx, kind)
		return actionDoneMsg{action: history.ActionSimulate, target: kind, err: err}
	}
}

func (m Model) mitigateCmd(ip, incidentID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := m.api.Mitigate(ctx, ip)
		return actionDoneMsg{action: history.ActionMitigate, target: ip, incidentID: incidentID, err: err}
	}
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.notice = text
	m.noticeSeq++
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = msg.Width - 4
		m.detail.Height = msg.Height / 2
		m.ready = true
		return m, nil

	case alertMsg:
		m.window.Push(model.AlertSummary(msg))
		m.alerts = m.window.Snapshot()
		// New entries prepend; keep the cursor on the same alert when it
		// simply shifted down, clamp when it fell off the window.
		if m.cursor < len(m.alerts)-1 {
			m.cursor++
		}
		if m.cursor >= len(m.alerts) {
			m.cursor = len(m.alerts) - 1
		}
		return m, waitForAlert(m.sub)

	case feedClosedMsg:
		// Best-effort stream: no reconnection. The operator sees a dead
		// feed banner and can restart the console.
		m.feedDead = true
		m.feedErr = msg.err
		if msg.err != nil {
			m.logger.Error("live feed dead for this session", "error", msg.err)
		}
		return m, nil

	case resolvedMsg:
		if m.res.Complete(msg.generation, msg.incident) {
			m.active = m.res.Active()
			m.detail.SetContent(m.detailContent())
			m.detail.GotoTop()
		}
		return m, nil

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case closeDetailMsg:
		// Scheduled by a mitigation; ignore if the operator has since
		// selected something else.
		if msg.generation == m.res.Generation() {
			m.res.Dismiss()
			m.active = nil
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.sub.Close()
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.active != nil {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.active != nil {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		if m.cursor < len(m.alerts)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, keys.Select):
		if len(m.alerts) == 0 || m.cursor >= len(m.alerts) {
			return m, nil
		}
		summary := m.alerts[m.cursor]
		generation := m.res.Begin()
		return m, m.resolveCmd(generation, summary)

	case key.Matches(msg, keys.Dismiss):
		m.res.Dismiss()
		m.active = nil
		return m, nil

	case key.Matches(msg, keys.PortScan):
		cmd := m.setNotice("Simulation triggered: port scan")
		return m, tea.Batch(cmd, m.simulateCmd(client.SimPortScan))

	case key.Matches(msg, keys.UDPFlood):
		cmd := m.setNotice("Simulation triggered: UDP flood")
		return m, tea.Batch(cmd, m.simulateCmd(client.SimUDPFlood))

	case key.Matches(msg, keys.Mitigate):
		if m.active == nil {
			return m, nil
		}
		ip := m.active.AttackerIP
		incidentID := m.active.IncidentID
		generation := m.res.Generation()
		notice := m.setNotice("Mitigation requested: rerouting " + ip + " to honeypot")
		closeLater := tea.Tick(noticeTTL, func(time.Time) tea.Msg {
			return closeDetailMsg{generation: generation}
		})
		return m, tea.Batch(notice, closeLater, m.mitigateCmd(ip, incidentID))
	}

	return m, nil
}

// handleActionDone records the outcome. The confirmation notice was already
// shown when the action fired; failures stay out of the operator's way but
// land in the log, the metrics, and the history trail.
func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	outcome := history.OutcomeOK
	detail := ""
	if msg.err != nil {
		outcome = history.OutcomeFailed
		detail = msg.err.Error()
		m.logger.Warn("backend action failed", "action", msg.action, "target", msg.target, "error", msg.err)
	}
	metrics.Actions.WithLabelValues(msg.action, outcome).Inc()
	if m.hist != nil {
		m.hist.Record(history.Entry{
			Action:     msg.action,
			Target:     msg.target,
			IncidentID: msg.incidentID,
			Outcome:    outcome,
			Detail:     detail,
		})
	}
	return m, nil
}

// Run starts the console program and blocks until the operator quits.
func Run(m Model) error {
	defer m.sub.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
