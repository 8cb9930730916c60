package dashboard

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jobguard/jobguard/internal/identity"
	"github.com/jobguard/jobguard/internal/logstream"
	"github.com/jobguard/jobguard/internal/model"
	"github.com/jobguard/jobguard/internal/session"
)

// meterFrame is the redraw interval of the meter animation.
const meterFrame = 30 * time.Millisecond

// noticeTTL is how long a transient notice stays on screen.
const noticeTTL = 2 * time.Second

type settleMsg struct {
	gen uint64
}

type meterTickMsg struct {
	gen uint64
}

type noticeExpiredMsg struct {
	gen uint64
}

type scanDoneMsg struct {
	outcome *session.Outcome
	err     error
}

type identityMsg struct {
	state identity.State
	err   error
}

type exitMsg struct {
	action action
	result identity.Result
	err    error
}

type copiedMsg struct {
	err error
}

type statusMsg struct {
	status model.SessionStatus
}

func settleCmd(gen uint64, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return settleMsg{gen: gen}
	})
}

func meterTickCmd(gen uint64) tea.Cmd {
	return tea.Tick(meterFrame, func(time.Time) tea.Msg {
		return meterTickMsg{gen: gen}
	})
}

func noticeExpiryCmd(gen uint64) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{gen: gen}
	})
}

func scanCmd(ctx context.Context, ctrl *session.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		out, err := ctrl.Submit(ctx, text)
		return scanDoneMsg{outcome: out, err: err}
	}
}

func reconcileCmd(ctx context.Context, r *identity.Reconciler) tea.Cmd {
	return func() tea.Msg {
		state, err := r.Reconcile(ctx)
		return identityMsg{state: state, err: err}
	}
}

func exitCmd(ctx context.Context, r *identity.Reconciler, a action) tea.Cmd {
	return func() tea.Msg {
		var (
			res identity.Result
			err error
		)
		switch a {
		case actionLogout:
			res, err = r.Logout(ctx)
		case actionDelete:
			res, err = r.DeleteAccount(ctx)
		}
		return exitMsg{action: a, result: res, err: err}
	}
}

func copyCmd(s *logstream.Stream, cb logstream.Clipboard, now time.Time) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: logstream.Copy(s, cb, now)}
	}
}

// StatusFeed carries controller status changes into the program.
// Pass Notify to session.WithListener and the feed to WithStatusFeed.
type StatusFeed struct {
	ch   chan model.SessionStatus
	done chan struct{}
	once sync.Once
}

// NewStatusFeed creates a feed.
func NewStatusFeed() *StatusFeed {
	return &StatusFeed{
		ch:   make(chan model.SessionStatus, 16),
		done: make(chan struct{}),
	}
}

// Notify queues a status. It never blocks; when the program lags behind,
// the status is dropped and the model resyncs when the scan finishes.
func (f *StatusFeed) Notify(status model.SessionStatus) {
	select {
	case f.ch <- status:
	default:
	}
}

// Close releases a pending wait. Run calls it when the program exits.
func (f *StatusFeed) Close() {
	f.once.Do(func() { close(f.done) })
}

func (f *StatusFeed) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case status := <-f.ch:
			return statusMsg{status: status}
		case <-f.done:
			return nil
		}
	}
}
