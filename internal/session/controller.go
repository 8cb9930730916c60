package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jobguard/jobguard/internal/client"
	"github.com/jobguard/jobguard/internal/logstream"
	"github.com/jobguard/jobguard/internal/model"
	"github.com/jobguard/jobguard/internal/pipeline"
	"github.com/jobguard/jobguard/internal/render"
)

// DefaultMinInput is the minimum trimmed length of a scannable text.
const DefaultMinInput = 5

// Predictor sends text to the analysis endpoint.
type Predictor interface {
	Predict(ctx context.Context, text string) (*model.ScanResult, error)
}

// Outcome is a successful scan.
type Outcome struct {
	Session     *model.ScanSession
	Result      *model.ScanResult
	Tier        model.Tier
	Probability float64
	Report      *render.Report
}

// Controller owns the scan session state. It is safe for concurrent use.
type Controller struct {
	api      Predictor
	stream   *logstream.Stream
	recorder pipeline.Recorder
	minInput int
	logger   *slog.Logger
	listener func(model.SessionStatus)

	// guard holds a token while a scan is in flight.
	guard chan struct{}
	post  *pipeline.Pipeline
	logs  *pipeline.LogStep

	mu      sync.Mutex
	status  model.SessionStatus
	current *model.ScanSession
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogStream sets the stream fed by responses' system logs.
func WithLogStream(s *logstream.Stream) Option {
	return func(c *Controller) {
		c.stream = s
	}
}

// WithRecorder enables local history.
func WithRecorder(r pipeline.Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithMinInput overrides the minimum trimmed input length.
func WithMinInput(n int) Option {
	return func(c *Controller) {
		c.minInput = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithListener registers a callback for every status change. It runs
// synchronously on the goroutine that changed the status.
func WithListener(f func(model.SessionStatus)) Option {
	return func(c *Controller) {
		c.listener = f
	}
}

// NewController creates a controller that submits through api.
func NewController(api Predictor, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		minInput: DefaultMinInput,
		guard:    make(chan struct{}, 1),
		status:   model.StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.minInput < 1 {
		c.minInput = 1
	}
	c.post = pipeline.Standard(c.stream, c.recorder, c.logger)
	c.logs = pipeline.NewLogStep(c.stream)
	return c
}

// Validate reports ErrInputTooShort for text that Submit would reject
// before making a request.
func (c *Controller) Validate(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < c.minInput {
		return ErrInputTooShort
	}
	return nil
}

// Submit scans text. It blocks until the server answers or ctx ends.
func (c *Controller) Submit(ctx context.Context, text string) (*Outcome, error) {
	if err := c.Validate(text); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(text)

	select {
	case c.guard <- struct{}{}:
	default:
		return nil, ErrScanInFlight
	}
	var once sync.Once
	release := func() { once.Do(func() { <-c.guard }) }
	defer release()

	session := model.NewScanSession(trimmed)
	c.begin(session)
	c.logger.Debug("scan submitted", "id", session.ID, "chars", utf8.RuneCountInString(trimmed))

	result, err := c.api.Predict(ctx, trimmed)
	if err != nil {
		c.finish(session, model.StatusError, release)
		c.logger.Warn("scan request failed", "id", session.ID, "error", err)
		return nil, err
	}

	scan := &pipeline.Scan{Session: session, Result: result}

	if result.HasError() {
		// Logs are forwarded before the failure is surfaced.
		_ = c.logs.Do(ctx, scan) //nolint:errcheck // never fails
		c.finish(session, model.StatusError, release)
		return nil, &client.ServerError{Message: result.Error, Logs: result.SystemLogs}
	}

	if err := c.post.Execute(ctx, scan); err != nil {
		c.finish(session, model.StatusError, release)
		return nil, fmt.Errorf("scan %s: %w", session.ID, err)
	}

	c.finish(session, model.StatusReady, release)
	return &Outcome{
		Session:     session,
		Result:      result,
		Tier:        scan.Tier,
		Probability: scan.Probability,
		Report:      scan.Report,
	}, nil
}

// TriggerEnabled reports whether a new scan may be submitted.
func (c *Controller) TriggerEnabled() bool {
	return len(c.guard) == 0
}

// Status returns the current status.
func (c *Controller) Status() model.SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Current returns the latest session, or nil before the first scan.
func (c *Controller) Current() *model.ScanSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Observe records an input status (Idle, Typing, Standby) from the buffer
// monitor. It is ignored while a scan is in flight.
func (c *Controller) Observe(status model.SessionStatus) {
	switch status {
	case model.StatusIdle, model.StatusTyping, model.StatusStandby:
	default:
		return
	}

	c.mu.Lock()
	if c.status == model.StatusSubmitting || c.status == status {
		c.mu.Unlock()
		return
	}
	c.status = status
	c.mu.Unlock()
	c.notify(status)
}

func (c *Controller) begin(s *model.ScanSession) {
	c.mu.Lock()
	c.current = s
	c.status = model.StatusSubmitting
	c.mu.Unlock()
	c.notify(model.StatusSubmitting)
}

// finish records a terminal status and frees the slot before listeners run,
// so they observe an enabled trigger.
func (c *Controller) finish(s *model.ScanSession, status model.SessionStatus, release func()) {
	s.Finish(status)
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
	release()
	c.notify(status)
}

func (c *Controller) notify(status model.SessionStatus) {
	if c.listener != nil {
		c.listener(status)
	}
}

func isConnection(err error) bool {
	return errors.Is(err, client.ErrConnection)
}

func serverMessage(err error) string {
	var se *client.ServerError
	if errors.As(err, &se) {
		return se.Message
	}
	if errors.Is(err, ErrMissingProbability) {
		return "NO PROBABILITY IN RESPONSE"
	}
	return err.Error()
}
