package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/secprobe/packages/http"
	"github.com/abdul-hamid-achik/secprobe/packages/metrics"
	"github.com/abdul-hamid-achik/secprobe/packages/output"
	"github.com/abdul-hamid-achik/secprobe/packages/security"
	"github.com/abdul-hamid-achik/secprobe/packages/source"
	"go.uber.org/zap"
)

// Endpoint is one sequence of a run: where it sends and where it logs
type Endpoint struct {
	Sequence Sequence
	URL      string
	LogPath  string
}

// sequenceRun holds the per-sequence state. Nothing in it is shared with
// other sequences.
type sequenceRun struct {
	runner   *Runner
	endpoint Endpoint
	log      *output.Log
	recorder *metrics.Recorder
	logger   *zap.Logger
	pacing   time.Duration
}

// runSequence loads the identifiers, opens the log and walks the list. An
// error is returned only when the sequence could not start.
func (r *Runner) runSequence(ctx context.Context, ep Endpoint) (SequenceResult, error) {
	result := SequenceResult{
		Sequence: ep.Sequence,
		URL:      ep.URL,
		LogPath:  ep.LogPath,
	}

	logger := r.logger.With(
		zap.String("sequence", string(ep.Sequence)),
		zap.String("url", ep.URL),
	)

	ids := source.LoadOrEmpty(r.identifierFile)
	if ids.Failed() {
		logger.Warn("identifier file unreadable, sequence has nothing to send",
			zap.String("path", ids.Path),
			zap.Error(ids.Err),
		)
	}
	result.Identifiers = ids.Len()

	log, err := output.OpenLog(ep.LogPath,
		output.WithConsole(r.console),
		output.WithNoColor(r.noColor),
	)
	if err != nil {
		result.Err = fmt.Errorf("%s sequence: %w", ep.Sequence, err)
		logger.Error("sequence not started", zap.Error(err))
		return result, result.Err
	}

	seq := &sequenceRun{
		runner:   r,
		endpoint: ep,
		log:      log,
		recorder: metrics.NewRecorder(),
		logger:   logger,
		pacing:   r.pacingFor(ep.Sequence),
	}

	logger.Info("sequence started",
		zap.Int("identifiers", ids.Len()),
		zap.String("log", ep.LogPath),
	)

	seq.recorder.Start()
	switch ep.Sequence {
	case Resolve:
		result.Interrupted = seq.runResolve(ctx, ids.Values)
	case Keyword:
		result.Interrupted = seq.runKeyword(ctx, ids.Values)
	case BulkSearch:
		result.Interrupted = seq.runBulkSearch(ctx, ids.Values)
	}
	seq.recorder.Stop()

	result.Lines = log.Lines()
	result.Summary = seq.recorder.Summary()

	if err := log.Close(); err != nil {
		logger.Error("log file not flushed", zap.Error(err))
		result.Err = fmt.Errorf("%s sequence: %w", ep.Sequence, err)
	}

	logger.Info("sequence finished",
		zap.Int64("calls", result.Summary.Calls),
		zap.Int64("failures", result.Summary.Failures),
		zap.Bool("interrupted", result.Interrupted),
	)

	return result, result.Err
}

// runResolve posts one ticker per call. It reports whether the run was
// interrupted before the list was exhausted.
func (s *sequenceRun) runResolve(ctx context.Context, ids []string) bool {
	for i, id := range ids {
		if ctx.Err() != nil {
			return true
		}

		call := s.resolve(ctx, id)
		call.Index = i + 1
		if !s.finish(ctx, call) {
			return true
		}
	}
	return false
}

func (s *sequenceRun) resolve(ctx context.Context, id string) CallResult {
	call := CallResult{Sequence: Resolve, URL: s.endpoint.URL, Identifier: id}

	payload := BuildResolveRequest(id)
	req, err := http.NewJSONRequest("POST", s.endpoint.URL, payload)
	if err != nil {
		call.Err = err
		return call
	}

	body, elapsed, err := s.send(ctx, req)
	call.Elapsed = elapsed
	if err != nil {
		call.Err = err
		return call
	}

	match, err := security.DecodeResolve(body, payload.Key())
	call.Count = match.Count()
	call.IDs = match.IDs
	call.Err = err
	return call
}

// runKeyword gets one search URL per identifier
func (s *sequenceRun) runKeyword(ctx context.Context, ids []string) bool {
	for i, id := range ids {
		if ctx.Err() != nil {
			return true
		}

		call := s.keyword(ctx, id)
		call.Index = i + 1
		if !s.finish(ctx, call) {
			return true
		}
	}
	return false
}

func (s *sequenceRun) keyword(ctx context.Context, id string) CallResult {
	target := BuildKeywordURL(s.endpoint.URL, id)
	call := CallResult{Sequence: Keyword, URL: target, Identifier: id}

	body, elapsed, err := s.send(ctx, http.NewRequest("GET", target))
	call.Elapsed = elapsed
	if err != nil {
		call.Err = err
		return call
	}

	call.Count, call.Err = security.CountArray(body)
	return call
}

// runBulkSearch posts the whole list in a single call. An empty list sends
// nothing.
func (s *sequenceRun) runBulkSearch(ctx context.Context, ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	if ctx.Err() != nil {
		return true
	}

	payload := BuildBulkSearchRequest(ids)
	if len(payload.Keywords) < len(ids) {
		s.logger.Info("bulk search list truncated",
			zap.Int("identifiers", len(ids)),
			zap.Int("sent", len(payload.Keywords)),
		)
	}

	call := s.bulkSearch(ctx, payload)
	call.Index = 1
	s.finish(ctx, call)
	return call.Canceled()
}

func (s *sequenceRun) bulkSearch(ctx context.Context, payload BulkSearchRequest) CallResult {
	call := CallResult{
		Sequence:   BulkSearch,
		URL:        s.endpoint.URL,
		Identifier: fmt.Sprintf("%d keywords", len(payload.Keywords)),
	}

	req, err := http.NewJSONRequest("POST", s.endpoint.URL, payload)
	if err != nil {
		call.Err = err
		return call
	}

	body, elapsed, err := s.send(ctx, req)
	call.Elapsed = elapsed
	if err != nil {
		call.Err = err
		return call
	}

	securities, err := security.DecodeList(body)
	call.Count = len(securities)
	call.Err = err
	return call
}

// send times one exchange and returns the body of a 2xx response
func (s *sequenceRun) send(ctx context.Context, req *http.Request) ([]byte, time.Duration, error) {
	start := time.Now()
	resp, err := s.runner.client.Send(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, err
	}
	return resp.Body, elapsed, nil
}

// finish logs and records a call, then waits out the pacing delay. It
// returns false when the run has been stopped.
func (s *sequenceRun) finish(ctx context.Context, call CallResult) bool {
	if call.Canceled() {
		return false
	}

	if call.Timeout() {
		s.recorder.RecordTimeout(call.Elapsed)
	} else {
		s.recorder.Record(call.Elapsed, call.Count, call.Err)
	}

	line := call.Line()
	var err error
	if call.Failed() {
		s.logger.Debug("call failed",
			zap.Int("index", call.Index),
			zap.String("identifier", call.Identifier),
			zap.Error(call.Err),
		)
		err = s.log.RecordFailure(line)
	} else {
		err = s.log.Record(line)
	}
	if err != nil {
		s.logger.Error("result line not written", zap.Error(err))
	}

	return pace(ctx, s.pacing)
}

// pace sleeps for d unless ctx ends first
func pace(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
