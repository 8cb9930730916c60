package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jobguard/jobguard/internal/client"
	"github.com/jobguard/jobguard/internal/logstream"
	"github.com/jobguard/jobguard/internal/model"
)

// DefaultAdminUser is the operator allowed to see the system log panel.
const DefaultAdminUser = "Yoge"

// API is the part of the server client the reconciler needs.
type API interface {
	UserInfo(ctx context.Context) (*client.UserInfo, error)
	SystemLogs(ctx context.Context) ([]string, error)
	Logout(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
}

// SessionClearer drops the stored server session.
type SessionClearer interface {
	ClearSession(ctx context.Context) error
}

// State is what the dashboard shows for the operator.
type State struct {
	Identity   model.Identity
	Label      string
	AdminPanel bool
}

// Result reports the outcome of Logout and DeleteAccount.
type Result struct {
	// Navigated is true once the local identity was cleared and the caller
	// should leave the dashboard.
	Navigated bool
}

// Reconciler owns the displayed identity. It is safe for concurrent use;
// when writers race, the one that resolves last wins.
type Reconciler struct {
	// writeMu makes each resolution (store write, then display write) atomic
	// so the cache and the display never disagree.
	writeMu sync.Mutex
	// mu guards identity and logsFetched.
	mu        sync.Mutex
	store     Store
	api       API
	stream    *logstream.Stream
	sessions  SessionClearer
	adminUser string
	logger    *slog.Logger
	onChange  func(State)

	identity    model.Identity
	logsFetched bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithAdminUser sets the operator allowed to see the log panel.
func WithAdminUser(name string) Option {
	return func(r *Reconciler) {
		r.adminUser = name
	}
}

// WithLogStream sets the stream that receives the admin log fetch.
func WithLogStream(s *logstream.Stream) Option {
	return func(r *Reconciler) {
		r.stream = s
	}
}

// WithSessionClearer clears the stored server session on logout.
func WithSessionClearer(s SessionClearer) Option {
	return func(r *Reconciler) {
		r.sessions = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = l
	}
}

// WithOnChange registers a callback invoked after every identity write.
func WithOnChange(f func(State)) Option {
	return func(r *Reconciler) {
		r.onChange = f
	}
}

// NewReconciler creates a reconciler over store and api.
func NewReconciler(store Store, api API, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:     store,
		api:       api,
		adminUser: DefaultAdminUser,
		identity:  model.Identity{Source: model.SourceNone},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Paint shows the cached identity without touching the network.
func (r *Reconciler) Paint(ctx context.Context) State {
	return r.resolve(func() model.Identity {
		cached, err := r.store.LoadIdentity(ctx)
		if err != nil {
			r.logger.Warn("failed to read cached identity", "error", err)
		}
		if cached == "" {
			return model.Identity{Source: model.SourceNone}
		}
		return model.Identity{Username: cached, Source: model.SourceCache}
	})
}

// Reconcile asks the server who the session belongs to and makes the cache
// and the display agree with the answer.
func (r *Reconciler) Reconcile(ctx context.Context) (State, error) {
	info, err := r.api.UserInfo(ctx)
	if err != nil {
		r.logger.Warn("identity query failed, keeping cached identity", "error", err)
		return r.State(), fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	if info.Username == "" {
		return r.resolve(func() model.Identity {
			if err := r.store.ClearIdentity(ctx); err != nil {
				r.logger.Warn("failed to clear cached identity", "error", err)
			}
			return model.Identity{Source: model.SourceServer}
		}), nil
	}

	state := r.resolve(func() model.Identity {
		r.save(ctx, info.Username)
		return model.Identity{Username: info.Username, Source: model.SourceServer}
	})

	if state.AdminPanel && r.claimLogFetch() {
		r.fetchSystemLogs(ctx)
	}
	return state, nil
}

// Remember records an identity the server just confirmed through login or
// signup.
func (r *Reconciler) Remember(ctx context.Context, username string) State {
	return r.resolve(func() model.Identity {
		r.save(ctx, username)
		return model.Identity{Username: username, Source: model.SourceServer}
	})
}

// Logout ends the server session. The cache is cleared whatever the
// endpoint answered.
func (r *Reconciler) Logout(ctx context.Context) (Result, error) {
	err := r.api.Logout(ctx)
	if err != nil {
		r.logger.Warn("logout request failed", "error", err)
	}
	r.forget(ctx)
	return Result{Navigated: true}, err
}

// DeleteAccount deletes the account. The cache is cleared whatever the
// endpoint answered.
func (r *Reconciler) DeleteAccount(ctx context.Context) (Result, error) {
	err := r.api.DeleteAccount(ctx)
	if err != nil {
		r.logger.Warn("delete account request failed", "error", err)
	}
	r.forget(ctx)
	return Result{Navigated: true}, err
}

func (r *Reconciler) forget(ctx context.Context) {
	r.resolve(func() model.Identity {
		if err := r.store.ClearIdentity(ctx); err != nil {
			r.logger.Warn("failed to clear cached identity", "error", err)
		}
		if r.sessions != nil {
			if err := r.sessions.ClearSession(ctx); err != nil {
				r.logger.Warn("failed to clear session", "error", err)
			}
		}
		return model.Identity{Source: model.SourceNone}
	})
}

func (r *Reconciler) save(ctx context.Context, username string) {
	if err := r.store.SaveIdentity(ctx, username); err != nil {
		r.logger.Warn("failed to cache identity", "error", err)
	}
}

// State returns the current display state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

// Label formats the operator label for a name.
func Label(name string) string {
	// A Caser is stateful, so each call gets its own.
	return "OPERATOR: " + cases.Upper(language.English).String(name)
}

// IsAdmin reports whether id is the admin operator.
func (r *Reconciler) IsAdmin(id model.Identity) bool {
	return id.Username != "" && id.Username == r.adminUser
}

// resolve runs apply and shows the identity it returns. No other resolution
// runs between apply's store work and the display update.
func (r *Reconciler) resolve(apply func() model.Identity) State {
	r.writeMu.Lock()
	id := apply()
	r.mu.Lock()
	r.identity = id
	if !r.IsAdmin(id) {
		r.logsFetched = false
	}
	state := r.stateLocked()
	r.mu.Unlock()
	r.writeMu.Unlock()

	r.logger.Debug("identity updated", "username", id.Username, "source", string(id.Source))
	if r.onChange != nil {
		r.onChange(state)
	}
	return state
}

func (r *Reconciler) stateLocked() State {
	return State{
		Identity:   r.identity,
		Label:      Label(r.identity.DisplayName()),
		AdminPanel: r.IsAdmin(r.identity),
	}
}

// claimLogFetch reports whether this caller should fetch the admin logs. A
// resolution that replaced the admin in the meantime cancels the fetch.
func (r *Reconciler) claimLogFetch() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.logsFetched || !r.IsAdmin(r.identity) {
		return false
	}
	r.logsFetched = true
	return true
}

func (r *Reconciler) fetchSystemLogs(ctx context.Context) {
	if r.stream == nil {
		return
	}
	lines, err := r.api.SystemLogs(ctx)
	if err != nil {
		r.logger.Warn("failed to fetch system logs", "error", err)
		return
	}
	r.stream.Replace(lines)
}
