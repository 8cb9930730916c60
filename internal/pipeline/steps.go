package pipeline

import (
	"context"
	"log/slog"

	"github.com/jobguard/jobguard/internal/logstream"
	"github.com/jobguard/jobguard/internal/model"
	"github.com/jobguard/jobguard/internal/render"
	"github.com/jobguard/jobguard/internal/risk"
)

// LogStep replaces the log stream with the response's system logs.
// A response without a system_logs field leaves the stream untouched; an
// explicit empty list clears it.
type LogStep struct {
	stream *logstream.Stream
}

// NewLogStep creates the logs step.
func NewLogStep(stream *logstream.Stream) *LogStep {
	return &LogStep{stream: stream}
}

// Name implements Step.
func (s *LogStep) Name() string { return "logs" }

// Do implements Step.
func (s *LogStep) Do(_ context.Context, scan *Scan) error {
	if s.stream != nil && scan.Result.SystemLogs != nil {
		s.stream.Replace(scan.Result.SystemLogs)
	}
	return nil
}

// ClassifyStep derives the risk tier.
type ClassifyStep struct{}

// NewClassifyStep creates the classify step.
func NewClassifyStep() *ClassifyStep {
	return &ClassifyStep{}
}

// Name implements Step.
func (s *ClassifyStep) Name() string { return "classify" }

// Do implements Step.
func (s *ClassifyStep) Do(_ context.Context, scan *Scan) error {
	p, ok := scan.Result.Probability()
	if !ok && !scan.Result.IsGibberish {
		return ErrMissingProbability
	}
	scan.Probability = p
	scan.Tier = risk.Classify(p, scan.Result.IsGibberish)
	return nil
}

// RenderStep builds the report for the classified result.
type RenderStep struct{}

// NewRenderStep creates the render step.
func NewRenderStep() *RenderStep {
	return &RenderStep{}
}

// Name implements Step.
func (s *RenderStep) Name() string { return "render" }

// Do implements Step.
func (s *RenderStep) Do(_ context.Context, scan *Scan) error {
	scan.Report = render.NewReport(scan.Session, scan.Result, scan.Tier)
	return nil
}

// Recorder persists finished scans.
type Recorder interface {
	SaveScan(ctx context.Context, rec *model.ScanRecord) error
}

// RecordStep appends the scan to local history. A failure to record is
// logged and does not fail the scan.
type RecordStep struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewRecordStep creates the record step.
func NewRecordStep(recorder Recorder, logger *slog.Logger) *RecordStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStep{recorder: recorder, logger: logger}
}

// Name implements Step.
func (s *RecordStep) Name() string { return "record" }

// Do implements Step.
func (s *RecordStep) Do(ctx context.Context, scan *Scan) error {
	if s.recorder == nil {
		return nil
	}

	rec := &model.ScanRecord{
		ID:          scan.Session.ID,
		ScannedAt:   scan.Session.StartedAt,
		Text:        scan.Session.RawText,
		Probability: scan.Probability,
		Tier:        scan.Tier,
		TierName:    scan.Tier.String(),
		Result:      scan.Result,
	}
	if err := s.recorder.SaveScan(ctx, rec); err != nil {
		s.logger.Warn("failed to record scan", "id", rec.ID, "error", err)
	}
	return nil
}

// Standard builds the post-response pipeline in its fixed order. recorder
// may be nil to skip history.
func Standard(stream *logstream.Stream, recorder Recorder, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(
		NewLogStep(stream),
		NewClassifyStep(),
		NewRenderStep(),
		NewRecordStep(recorder, logger),
	)
	return p
}
