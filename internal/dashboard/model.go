package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jobguard/jobguard/internal/identity"
	"github.com/jobguard/jobguard/internal/logstream"
	"github.com/jobguard/jobguard/internal/model"
	"github.com/jobguard/jobguard/internal/monitor"
	"github.com/jobguard/jobguard/internal/render"
	"github.com/jobguard/jobguard/internal/session"
)

// Trigger labels in the order a scan moves through them.
const (
	TriggerReady    = "INITIALIZE SCAN"
	TriggerScanning = "SCANNING..."
	TriggerComplete = "SCAN COMPLETE"
)

// StatusAnalyzing replaces the buffer indicator while a request is in flight.
const StatusAnalyzing = ">> ANALYZING PACKETS..."

// Operator notices.
const (
	NoticeNoLogs        = "NO LOG DATA FOUND"
	NoticeClipboard     = "CLIPBOARD ACCESS DENIED"
	NoticeCopied        = "LOGS COPIED"
	PromptLogout        = "TERMINATE SESSION?"
	PromptDeleteAccount = "DELETE ACCOUNT? THIS CANNOT BE UNDONE."
)

// Exit tells the caller why the dashboard closed.
type Exit int

const (
	// ExitQuit means the operator closed the dashboard.
	ExitQuit Exit = iota
	// ExitLoggedOut means the session was terminated.
	ExitLoggedOut
	// ExitAccountDeleted means the account was deleted.
	ExitAccountDeleted
)

type action int

const (
	actionNone action = iota
	actionLogout
	actionDelete
)

type pane int

const (
	paneInput pane = iota
	paneLogs
)

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx        context.Context
	ctrl       *session.Controller
	ident      *identity.Reconciler
	stream     *logstream.Stream
	clip       logstream.Clipboard
	feed       *StatusFeed
	monitor    *monitor.Monitor
	styles     render.Styles
	logger     *slog.Logger
	now        func() time.Time
	server     string
	debounce   time.Duration
	meterDelay time.Duration

	input   textarea.Model
	spin    spinner.Model
	logs    viewport.Model
	width   int
	height  int
	focus   pane
	blurred bool

	identity identity.State
	scanning bool
	status   model.SessionStatus
	trigger  string

	report     *render.Report
	meter      render.Meter
	meterStart time.Time
	meterGen   uint64
	fill       float64
	verdictUp  bool

	notice      string
	noticeError bool
	noticeGen   uint64

	logsVersion uint64
	confirm     action
	exit        Exit
}

// Option configures a Model.
type Option func(*Model)

// WithLogStream shares the stream the controller and reconciler write to.
func WithLogStream(s *logstream.Stream) Option {
	return func(m *Model) {
		m.stream = s
	}
}

// WithClipboard replaces the system clipboard.
func WithClipboard(cb logstream.Clipboard) Option {
	return func(m *Model) {
		m.clip = cb
	}
}

// WithStatusFeed subscribes the model to controller status changes.
func WithStatusFeed(f *StatusFeed) Option {
	return func(m *Model) {
		m.feed = f
	}
}

// WithDebounce sets the input settle delay.
func WithDebounce(d time.Duration) Option {
	return func(m *Model) {
		m.debounce = d
	}
}

// WithMeterDelay sets the pause before the meter fills.
func WithMeterDelay(d time.Duration) Option {
	return func(m *Model) {
		m.meterDelay = d
	}
}

// WithServer sets the server address shown in the header.
func WithServer(url string) Option {
	return func(m *Model) {
		m.server = url
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// New creates the dashboard. The cached identity is painted before New
// returns; the server is asked in Init.
func New(ctx context.Context, ctrl *session.Controller, ident *identity.Reconciler, opts ...Option) Model {
	m := Model{
		ctx:        ctx,
		ctrl:       ctrl,
		ident:      ident,
		clip:       logstream.SystemClipboard{},
		styles:     render.DefaultStyles(),
		now:        time.Now,
		debounce:   monitor.DefaultDelay,
		meterDelay: render.MeterDelay,
		trigger:    TriggerReady,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if m.stream == nil {
		m.stream = logstream.NewStream()
	}
	m.monitor = monitor.New(m.debounce)
	m.status = ctrl.Status()

	in := textarea.New()
	in.Placeholder = "Paste the job posting here..."
	in.CharLimit = 0
	in.ShowLineNumbers = false
	in.SetWidth(72)
	in.SetHeight(8)
	in.Focus()
	m.input = in
	m.monitor.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = m.styles.Heading
	m.spin = sp

	m.logs = viewport.New(40, 16)
	m.logs.SetContent(m.styles.Muted.Render("NO LOG DATA"))

	m.identity = ident.Paint(ctx)
	m.refreshLogs()
	return m
}

// Init starts the identity query and the status subscription.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, reconcileCmd(m.ctx, m.ident)}
	if m.feed != nil {
		cmds = append(cmds, m.feed.wait())
	}
	return tea.Batch(cmds...)
}

// Exit reports why the dashboard closed.
func (m Model) Exit() Exit {
	return m.exit
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case settleMsg:
		if m.monitor.Settle(msg.gen) {
			m.ctrl.Observe(m.monitor.State().SessionStatus())
		}
		return m, nil

	case meterTickMsg:
		if msg.gen != m.meterGen || m.report == nil {
			return m, nil
		}
		elapsed := m.now().Sub(m.meterStart)
		m.fill = m.meter.At(elapsed)
		if m.meter.Done(elapsed) {
			return m, nil
		}
		return m, meterTickCmd(msg.gen)

	case noticeExpiredMsg:
		if msg.gen == m.noticeGen {
			m.notice = ""
		}
		return m, nil

	case statusMsg:
		m.logger.Debug("session status", "status", msg.status.String())
		m.status = msg.status
		if m.feed != nil {
			return m, m.feed.wait()
		}
		return m, nil

	case scanDoneMsg:
		return m.finishScan(msg)

	case identityMsg:
		if msg.err != nil {
			m.logger.Warn("identity refresh failed", "error", msg.err)
		}
		m.identity = msg.state
		if !m.identity.AdminPanel && m.focus == paneLogs {
			m.focus = paneInput
		}
		m.refreshLogs()
		if m.width > 0 {
			m.resize()
		}
		return m, nil

	case copiedMsg:
		switch {
		case msg.err == nil:
			return m, m.setNotice(NoticeCopied, false)
		case errors.Is(msg.err, logstream.ErrNoLogData):
			return m, m.setNotice(NoticeNoLogs, true)
		default:
			m.logger.Warn("copy logs failed", "error", msg.err)
			return m, m.setNotice(NoticeClipboard, true)
		}

	case exitMsg:
		if msg.err != nil {
			m.logger.Warn("session end request failed", "error", msg.err)
		}
		if !msg.result.Navigated {
			return m, nil
		}
		m.exit = ExitLoggedOut
		if msg.action == actionDelete {
			m.exit = ExitAccountDeleted
		}
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.exit = ExitQuit
		return m, tea.Quit
	}

	if m.confirm != actionNone {
		a := m.confirm
		m.confirm = actionNone
		if key == "y" || key == "Y" {
			return m, exitCmd(m.ctx, m.ident, a)
		}
		return m, nil
	}

	switch key {
	case "ctrl+s":
		return m.startScan()
	case "ctrl+r":
		return m, reconcileCmd(m.ctx, m.ident)
	case "ctrl+o":
		m.confirm = actionLogout
		return m, nil
	case "ctrl+x":
		m.confirm = actionDelete
		return m, nil
	case "ctrl+y":
		if !m.identity.AdminPanel {
			return m, nil
		}
		return m, copyCmd(m.stream, m.clip, m.now())
	case "tab":
		if !m.identity.AdminPanel {
			return m, nil
		}
		if m.focus == paneInput {
			m.focus = paneLogs
			return m, m.blurInput()
		}
		m.focus = paneInput
		return m, m.focusInput()
	case "esc":
		if m.focus != paneInput {
			return m, nil
		}
		if m.blurred {
			return m, m.focusInput()
		}
		return m, m.blurInput()
	}

	if m.focus == paneLogs {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}
	if m.blurred {
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		return m, tea.Batch(cmd, m.onInput(after))
	}
	return m, cmd
}

// onInput feeds a buffer change to the monitor and arms its settle tick.
func (m *Model) onInput(text string) tea.Cmd {
	arm := m.monitor.Input(text)
	m.ctrl.Observe(m.monitor.State().SessionStatus())
	m.verdictUp = false
	if m.trigger == TriggerComplete {
		m.trigger = TriggerReady
	}
	return settleCmd(arm.Gen, arm.Delay)
}

func (m *Model) blurInput() tea.Cmd {
	m.input.Blur()
	m.blurred = true
	m.monitor.Blur()
	m.ctrl.Observe(m.monitor.State().SessionStatus())
	return nil
}

func (m *Model) focusInput() tea.Cmd {
	m.blurred = false
	m.monitor.Focus()
	return m.input.Focus()
}

func (m Model) startScan() (tea.Model, tea.Cmd) {
	if m.scanning || !m.ctrl.TriggerEnabled() {
		return m, nil
	}
	text := m.input.Value()
	if err := m.ctrl.Validate(text); err != nil {
		return m, m.setNotice(session.Message(err), true)
	}

	m.scanning = true
	m.trigger = TriggerScanning
	m.report = nil
	m.verdictUp = false
	m.meterGen++
	m.notice = ""
	return m, tea.Batch(m.spin.Tick, scanCmd(m.ctx, m.ctrl, text))
}

func (m Model) finishScan(msg scanDoneMsg) (tea.Model, tea.Cmd) {
	m.scanning = false
	m.status = m.ctrl.Status()
	m.refreshLogs()

	if msg.err != nil {
		m.trigger = TriggerReady
		return m, m.setNotice(session.Message(msg.err), true)
	}

	m.report = msg.outcome.Report
	m.meter = m.report.View.Meter
	m.meter.Delay = m.meterDelay
	m.meterStart = m.now()
	m.meterGen++
	m.fill = 0
	m.trigger = TriggerComplete
	m.verdictUp = true
	return m, meterTickCmd(m.meterGen)
}

// triggerEnabled reports whether the trigger is drawn as pressable. The
// controller's listener reports Submitting for any scan it runs.
func (m Model) triggerEnabled() bool {
	return !m.scanning && m.status != model.StatusSubmitting
}

func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.notice = text
	m.noticeError = isErr
	m.noticeGen++
	return noticeExpiryCmd(m.noticeGen)
}

// refreshLogs redraws the log panel when the stream changed.
func (m *Model) refreshLogs() {
	v := m.stream.Version()
	if v == m.logsVersion {
		return
	}
	m.logsVersion = v
	m.logs.SetContent(m.renderLogLines())
	m.logs.GotoTop()
}

func (m *Model) resize() {
	logW := 0
	if m.identity.AdminPanel {
		logW = max(30, m.width/3)
	}
	inW := max(30, m.width-logW-6)
	m.input.SetWidth(inW)
	m.input.SetHeight(max(4, m.height/4))
	m.logs.Width = max(20, logW-4)
	m.logs.Height = max(6, m.height-8)
}
