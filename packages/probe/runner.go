package probe

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/secprobe/packages/http"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sender performs one HTTP exchange. *http.Client implements it.
type Sender interface {
	Send(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Runner executes the sequences of one run
type Runner struct {
	client         Sender
	identifierFile string
	endpoints      []Endpoint

	runID   string
	logger  *zap.Logger
	console io.Writer
	noColor bool
	pacing  map[Sequence]time.Duration
}

// RunnerOption configures the runner
type RunnerOption func(*Runner)

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConsole sets where result lines are mirrored, os.Stdout by default
func WithConsole(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.console = w
	}
}

// WithNoColor disables colored console lines
func WithNoColor(noColor bool) RunnerOption {
	return func(r *Runner) {
		r.noColor = noColor
	}
}

// WithRunID sets the run id instead of generating one
func WithRunID(id string) RunnerOption {
	return func(r *Runner) {
		r.runID = id
	}
}

// WithPacing overrides the delay after every call of a sequence
func WithPacing(seq Sequence, d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.pacing[seq] = d
	}
}

// NewRunner creates a runner for the given endpoints. Every sequence reads
// its identifiers from identifierFile.
func NewRunner(client Sender, identifierFile string, endpoints []Endpoint, opts ...RunnerOption) *Runner {
	r := &Runner{
		client:         client,
		identifierFile: identifierFile,
		endpoints:      endpoints,
		logger:         zap.NewNop(),
		console:        os.Stdout,
		pacing:         make(map[Sequence]time.Duration),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.console != nil {
		r.console = &syncWriter{w: r.console}
	}

	if r.runID == "" {
		r.runID = uuid.New().String()
	}
	r.logger = r.logger.With(zap.String("run_id", r.runID))

	return r
}

// syncWriter serializes the console writes of concurrent sequences so that
// result lines never interleave
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// RunID returns the id tagging this run's log entries
func (r *Runner) RunID() string {
	return r.runID
}

func (r *Runner) pacingFor(seq Sequence) time.Duration {
	if d, ok := r.pacing[seq]; ok {
		return d
	}
	return seq.Pacing()
}

// RunResult holds the outcome of a run, one entry per endpoint in the order
// they were given.
type RunResult struct {
	RunID     string
	Started   time.Time
	Duration  time.Duration
	Sequences []SequenceResult
}

// Interrupted reports whether any sequence stopped before its list was done
func (r *RunResult) Interrupted() bool {
	for _, s := range r.Sequences {
		if s.Interrupted {
			return true
		}
	}
	return false
}

// Failures returns the number of failed calls across all sequences
func (r *RunResult) Failures() int64 {
	var n int64
	for _, s := range r.Sequences {
		n += s.Summary.Failures
	}
	return n
}

// Run starts every sequence concurrently and waits for all of them. Failed
// calls do not make Run fail; the returned error is set only when a
// sequence could not start or its log could not be written, and even then
// the other sequences run to completion.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{
		RunID:     r.runID,
		Started:   time.Now(),
		Sequences: make([]SequenceResult, len(r.endpoints)),
	}

	if len(r.endpoints) == 0 {
		return result, errors.New("no sequences to run")
	}

	r.logger.Info("run started", zap.Int("sequences", len(r.endpoints)))

	var g errgroup.Group
	for i, ep := range r.endpoints {
		i, ep := i, ep
		g.Go(func() error {
			seqResult, err := r.runSequence(ctx, ep)
			result.Sequences[i] = seqResult
			return err
		})
	}
	err := g.Wait()

	result.Duration = time.Since(result.Started)
	r.logger.Info("run finished",
		zap.Duration("duration", result.Duration),
		zap.Int64("failures", result.Failures()),
		zap.Bool("interrupted", result.Interrupted()),
	)

	return result, err
}
