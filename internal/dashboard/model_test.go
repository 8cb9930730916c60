package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jobguard/jobguard/internal/client"
	"github.com/jobguard/jobguard/internal/identity"
	"github.com/jobguard/jobguard/internal/logstream"
	"github.com/jobguard/jobguard/internal/model"
	"github.com/jobguard/jobguard/internal/monitor"
	"github.com/jobguard/jobguard/internal/session"
)

const posting = "Remote data entry clerk, $5000 per week, pay a starter fee."

type fakePredictor struct {
	calls  atomic.Int32
	result *model.ScanResult
	err    error
}

func (f *fakePredictor) Predict(_ context.Context, _ string) (*model.ScanResult, error) {
	f.calls.Add(1)
	return f.result, f.err
}

type fakeAPI struct {
	mu          sync.Mutex
	username    string
	logs        []string
	logoutCalls int
	deleteCalls int
}

func (f *fakeAPI) UserInfo(_ context.Context) (*client.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &client.UserInfo{Username: f.username}, nil
}

func (f *fakeAPI) SystemLogs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logs, nil
}

func (f *fakeAPI) Logout(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return nil
}

func (f *fakeAPI) DeleteAccount(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return nil
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type harness struct {
	m         Model
	predictor *fakePredictor
	api       *fakeAPI
	store     *identity.MemoryStore
	stream    *logstream.Stream
	ctrl      *session.Controller
	rec       *identity.Reconciler
	clip      *fakeClipboard
	now       *time.Time
}

func newHarness(t *testing.T, cached string, p float64) *harness {
	t.Helper()

	h := &harness{
		predictor: &fakePredictor{result: &model.ScanResult{FraudProbability: &p}},
		api:       &fakeAPI{username: cached},
		store:     identity.NewMemoryStore(cached),
		stream:    logstream.NewStream(),
		clip:      &fakeClipboard{},
	}
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h.now = &start

	h.ctrl = session.NewController(h.predictor, session.WithLogStream(h.stream))
	h.rec = identity.NewReconciler(h.store, h.api, identity.WithLogStream(h.stream))
	h.m = New(context.Background(), h.ctrl, h.rec,
		WithLogStream(h.stream),
		WithClipboard(h.clip),
		WithDebounce(50*time.Millisecond),
		WithClock(func() time.Time { return *h.now }),
	)
	return h
}

func (h *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()

	next, cmd := h.m.Update(msg)
	m, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	h.m = m
	return cmd
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewPaintsCachedIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cached    string
		wantLabel string
		wantPanel bool
	}{
		{name: "no cache", cached: "", wantLabel: "OPERATOR: UNKNOWN", wantPanel: false},
		{name: "cached operator", cached: "alice", wantLabel: "OPERATOR: ALICE", wantPanel: false},
		{name: "cached admin", cached: "Yoge", wantLabel: "OPERATOR: YOGE", wantPanel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, tt.cached, 10)
			if h.m.identity.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", h.m.identity.Label, tt.wantLabel)
			}
			if h.m.identity.AdminPanel != tt.wantPanel {
				t.Errorf("admin panel = %v, want %v", h.m.identity.AdminPanel, tt.wantPanel)
			}
			if got := strings.Contains(h.m.View(), "LIVE SYSTEM LOGS"); got != tt.wantPanel {
				t.Errorf("log panel rendered = %v, want %v", got, tt.wantPanel)
			}
		})
	}
}

func TestTypingSettlesOnCurrentGeneration(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "", 10)
	if got := h.m.monitor.State(); got != monitor.StateAwaitingInput {
		t.Fatalf("initial state = %v, want AwaitingInput", got)
	}

	if cmd := h.send(t, runes("a")); cmd == nil {
		t.Fatal("expected a settle tick after a keystroke")
	}
	h.send(t, runes("b"))

	if got := h.m.monitor.State(); got != monitor.StateTyping {
		t.Fatalf("state after typing = %v, want Typing", got)
	}
	if got := h.ctrl.Status(); got != model.StatusTyping {
		t.Errorf("controller status = %v, want Typing", got)
	}
	if !strings.Contains(h.m.View(), ">> RECEIVING DATA...") {
		t.Error("expected receiving indicator while typing")
	}

	// The first keystroke's tick is stale.
	h.send(t, settleMsg{gen: 1})
	if got := h.m.monitor.State(); got != monitor.StateTyping {
		t.Errorf("stale settle changed state to %v", got)
	}

	h.send(t, settleMsg{gen: 2})
	if got := h.m.monitor.State(); got != monitor.StateStandby {
		t.Errorf("state after settle = %v, want Standby", got)
	}
	if got := h.ctrl.Status(); got != model.StatusStandby {
		t.Errorf("controller status = %v, want Standby", got)
	}
	if !strings.Contains(h.m.View(), "BUFFER: 2 chars | 2 bytes") {
		t.Error("expected buffer readout in view")
	}
}

func TestScanRejectsShortInput(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "", 10)
	h.m.input.SetValue("hi")

	cmd := h.send(t, key(tea.KeyCtrlS))
	if cmd == nil {
		t.Fatal("expected notice expiry command")
	}
	if h.m.scanning {
		t.Error("short input started a scan")
	}
	if h.m.notice != session.MessageDataEmpty {
		t.Errorf("notice = %q, want %q", h.m.notice, session.MessageDataEmpty)
	}
	if h.predictor.calls.Load() != 0 {
		t.Errorf("predictor called %d times, want 0", h.predictor.calls.Load())
	}
}

func TestScanSuccessAnimatesMeter(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "", 90)
	h.m.input.SetValue(posting)

	h.send(t, key(tea.KeyCtrlS))
	if !h.m.scanning || h.m.trigger != TriggerScanning {
		t.Fatalf("scanning = %v trigger = %q", h.m.scanning, h.m.trigger)
	}
	if !strings.Contains(h.m.View(), StatusAnalyzing) {
		t.Error("expected analyzing status while scanning")
	}

	// A second trigger while scanning is ignored.
	if cmd := h.send(t, key(tea.KeyCtrlS)); cmd != nil {
		t.Error("expected no command for a trigger while scanning")
	}

	done := scanCmd(context.Background(), h.ctrl, posting)()
	cmd := h.send(t, done)
	if cmd == nil {
		t.Fatal("expected meter tick after a verdict")
	}

	if h.m.scanning {
		t.Error("still scanning after the verdict")
	}
	if h.m.trigger != TriggerComplete {
		t.Errorf("trigger = %q, want %q", h.m.trigger, TriggerComplete)
	}
	if h.m.report == nil || h.m.report.View.Tier != model.TierCritical {
		t.Fatalf("expected critical report, got %+v", h.m.report)
	}
	if h.m.fill != 0 {
		t.Errorf("fill = %v, want 0 before the first tick", h.m.fill)
	}
	if !strings.Contains(h.m.View(), ">> MALICIOUS PATTERN") {
		t.Error("expected tier status line")
	}

	gen := h.m.meterGen
	*h.now = h.now.Add(50 * time.Millisecond)
	if cmd := h.send(t, meterTickMsg{gen: gen}); cmd == nil {
		t.Error("expected another tick during the delay")
	}
	if h.m.fill != 0 {
		t.Errorf("fill = %v during the delay, want 0", h.m.fill)
	}

	*h.now = h.now.Add(time.Second)
	if cmd := h.send(t, meterTickMsg{gen: gen}); cmd != nil {
		t.Error("expected the animation to stop at its target")
	}
	if h.m.fill != 90 {
		t.Errorf("fill = %v, want 90", h.m.fill)
	}

	// Ticks from an older animation are dropped.
	h.m.fill = 12
	h.send(t, meterTickMsg{gen: gen - 1})
	if h.m.fill != 12 {
		t.Error("stale meter tick changed the fill")
	}

	// The next keystroke resets the trigger label.
	h.send(t, runes("x"))
	if h.m.trigger != TriggerReady {
		t.Errorf("trigger after keystroke = %q, want %q", h.m.trigger, TriggerReady)
	}
}

func TestScanFailureReenablesTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "connection error",
			err:  fmt.Errorf("%w: dial tcp: refused", client.ErrConnection),
			want: session.MessageConnectionError,
		},
		{
			name: "server error",
			err:  &client.ServerError{Status: 500, Message: "Model offline"},
			want: "ERROR: Model offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, "", 10)
			h.predictor.err = tt.err
			h.m.input.SetValue(posting)

			h.send(t, key(tea.KeyCtrlS))
			h.send(t, scanCmd(context.Background(), h.ctrl, posting)())

			if h.m.scanning {
				t.Error("still scanning after failure")
			}
			if h.m.trigger != TriggerReady {
				t.Errorf("trigger = %q, want %q", h.m.trigger, TriggerReady)
			}
			if !h.ctrl.TriggerEnabled() {
				t.Error("controller trigger disabled after failure")
			}
			if h.m.notice != tt.want {
				t.Errorf("notice = %q, want %q", h.m.notice, tt.want)
			}
			if h.m.report != nil {
				t.Error("failure left a report on screen")
			}
		})
	}
}

func TestIdentityRefreshRevealsLogPanel(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "", 10)
	h.api.username = "Yoge"
	h.api.logs = []string{"[INIT] core online", "[ERROR] BLOCK 10.0.0.1"}

	h.send(t, reconcileCmd(context.Background(), h.rec)())

	if !h.m.identity.AdminPanel {
		t.Fatal("expected admin panel after server confirmed admin")
	}
	view := h.m.View()
	if !strings.Contains(view, "LIVE SYSTEM LOGS") {
		t.Error("expected log panel")
	}
	if !strings.Contains(view, "[ERROR] BLOCK 10.0.0.1") {
		t.Errorf("expected log lines in panel, got:\n%s", view)
	}

	// Demotion hides the panel and returns focus to the input.
	h.m.focus = paneLogs
	h.api.username = ""
	h.send(t, reconcileCmd(context.Background(), h.rec)())
	if h.m.identity.AdminPanel {
		t.Error("panel still visible for guest")
	}
	if h.m.focus != paneInput {
		t.Error("focus left on hidden log panel")
	}
	if h.m.identity.Label != "OPERATOR: GUEST" {
		t.Errorf("label = %q", h.m.identity.Label)
	}
}

func TestCopyLogs(t *testing.T) {
	t.Parallel()

	t.Run("ignored for non-admin", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "alice", 10)
		if cmd := h.send(t, key(tea.KeyCtrlY)); cmd != nil {
			t.Error("expected no copy for non-admin")
		}
	})

	t.Run("empty stream", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "Yoge", 10)
		cmd := h.send(t, key(tea.KeyCtrlY))
		if cmd == nil {
			t.Fatal("expected copy command")
		}
		h.send(t, cmd())
		if h.m.notice != NoticeNoLogs || !h.m.noticeError {
			t.Errorf("notice = %q error = %v", h.m.notice, h.m.noticeError)
		}
	})

	t.Run("copies banner and lines", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "Yoge", 10)
		h.stream.Replace([]string{"[AI] token weights computed"})
		h.send(t, h.send(t, key(tea.KeyCtrlY))())

		if h.m.notice != NoticeCopied || h.m.noticeError {
			t.Errorf("notice = %q error = %v", h.m.notice, h.m.noticeError)
		}
		if !strings.HasPrefix(h.clip.text, logstream.Banner) {
			t.Errorf("clipboard = %q", h.clip.text)
		}
		if !strings.Contains(h.clip.text, "[AI] token weights computed") {
			t.Errorf("clipboard missing log line: %q", h.clip.text)
		}
	})

	t.Run("clipboard failure", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "Yoge", 10)
		h.clip.err = errors.New("no display")
		h.stream.Replace([]string{"line"})
		h.send(t, h.send(t, key(tea.KeyCtrlY))())

		if h.m.notice != NoticeClipboard {
			t.Errorf("notice = %q, want %q", h.m.notice, NoticeClipboard)
		}
	})
}

func TestNoticeExpires(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "", 10)
	h.m.input.SetValue("hi")
	h.send(t, key(tea.KeyCtrlS))
	first := h.m.noticeGen

	h.send(t, key(tea.KeyCtrlS))
	h.send(t, noticeExpiredMsg{gen: first})
	if h.m.notice == "" {
		t.Error("stale expiry cleared a newer notice")
	}

	h.send(t, noticeExpiredMsg{gen: h.m.noticeGen})
	if h.m.notice != "" {
		t.Errorf("notice = %q, want cleared", h.m.notice)
	}
}

func TestSessionEndConfirmation(t *testing.T) {
	t.Parallel()

	t.Run("declined logout", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "alice", 10)
		h.send(t, key(tea.KeyCtrlO))
		if !strings.Contains(h.m.View(), PromptLogout) {
			t.Error("expected logout prompt")
		}
		if cmd := h.send(t, runes("n")); cmd != nil {
			t.Error("expected no command after declining")
		}
		if h.m.confirm != actionNone {
			t.Error("prompt still pending")
		}
		if h.api.logoutCalls != 0 {
			t.Error("logout called after declining")
		}
	})

	tests := []struct {
		name     string
		trigger  tea.KeyType
		wantExit Exit
	}{
		{name: "logout", trigger: tea.KeyCtrlO, wantExit: ExitLoggedOut},
		{name: "delete account", trigger: tea.KeyCtrlX, wantExit: ExitAccountDeleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, "alice", 10)
			h.send(t, key(tt.trigger))
			cmd := h.send(t, runes("y"))
			if cmd == nil {
				t.Fatal("expected session end command")
			}

			quit := h.send(t, cmd())
			if quit == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := quit().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
			if h.m.Exit() != tt.wantExit {
				t.Errorf("Exit() = %v, want %v", h.m.Exit(), tt.wantExit)
			}
			if cached, _ := h.store.LoadIdentity(context.Background()); cached != "" {
				t.Errorf("cached identity = %q, want cleared", cached)
			}
		})
	}
}

func TestStatusFeedNeverBlocks(t *testing.T) {
	t.Parallel()

	f := NewStatusFeed()
	for range 100 {
		f.Notify(model.StatusTyping)
	}

	msg := f.wait()()
	if sm, ok := msg.(statusMsg); !ok || sm.status != model.StatusTyping {
		t.Errorf("wait() = %#v", msg)
	}
}

func TestStatusFeedDrivesTrigger(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "", 25)
	if !h.m.triggerEnabled() {
		t.Fatal("trigger disabled before any scan")
	}

	h.send(t, statusMsg{status: model.StatusSubmitting})
	if h.m.triggerEnabled() {
		t.Error("trigger enabled while the controller reports Submitting")
	}
	h.send(t, statusMsg{status: model.StatusReady})
	if !h.m.triggerEnabled() {
		t.Error("trigger disabled after the controller reported Ready")
	}

	// A dropped Ready notification is repaired when the scan result lands.
	h.send(t, statusMsg{status: model.StatusSubmitting})
	h.send(t, scanDoneMsg{err: client.ErrConnection})
	if !h.m.triggerEnabled() {
		t.Error("trigger still disabled after the scan finished")
	}
}

func TestStatusFeedCloseReleasesWait(t *testing.T) {
	t.Parallel()

	f := NewStatusFeed()
	got := make(chan tea.Msg, 1)
	go func() { got <- f.wait()() }()

	f.Close()
	f.Close()
	select {
	case msg := <-got:
		if msg != nil {
			t.Errorf("wait() after Close = %#v, want nil", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wait() still blocked after Close")
	}
}
