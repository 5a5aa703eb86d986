package probe

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/secprobe/packages/http"
	"github.com/abdul-hamid-achik/secprobe/packages/metrics"
	"github.com/abdul-hamid-achik/secprobe/packages/security"
)

// Sequence names one of the three call flows
type Sequence string

const (
	Resolve    Sequence = "resolve"
	Keyword    Sequence = "keyword"
	BulkSearch Sequence = "search"
)

// Pacing returns the delay applied after every call of the sequence
func (s Sequence) Pacing() time.Duration {
	switch s {
	case Keyword:
		return KeywordPacing
	case BulkSearch:
		return BulkSearchPacing
	default:
		return ResolvePacing
	}
}

// ParseSequence converts a configured sequence name
func ParseSequence(name string) (Sequence, error) {
	switch Sequence(name) {
	case Resolve, Keyword, BulkSearch:
		return Sequence(name), nil
	default:
		return "", fmt.Errorf("unknown sequence %q", name)
	}
}

// CallResult is the outcome of one call. Err is nil for a call that got a
// decodable 2xx response, even one with zero results.
type CallResult struct {
	Sequence   Sequence
	Index      int
	URL        string
	Identifier string
	Elapsed    time.Duration
	Count      int
	IDs        []string
	Err        error
}

// Failed reports whether the call failed, as opposed to finding nothing
func (c CallResult) Failed() bool {
	return c.Err != nil
}

// Canceled reports whether the call was abandoned because the run stopped
func (c CallResult) Canceled() bool {
	var callErr *http.CallError
	return errors.As(c.Err, &callErr) && callErr.Kind == http.KindCanceled
}

// Timeout reports whether the call hit its timeout
func (c CallResult) Timeout() bool {
	return http.IsTimeout(c.Err)
}

// ElapsedMs returns the elapsed time in whole milliseconds
func (c CallResult) ElapsedMs() int64 {
	return c.Elapsed.Milliseconds()
}

// Line formats the result line written to the console and the log file
func (c CallResult) Line() string {
	var line string
	switch c.Sequence {
	case Resolve:
		ids := strings.Join(c.IDs, security.IDSeparator)
		line = fmt.Sprintf("%d- %s:%s resolved in [%d ms], [Security count = %d, PPA Ids = %s]",
			c.Index, c.URL, c.Identifier, c.ElapsedMs(), c.Count, ids)
	default:
		line = fmt.Sprintf("%s found %d in %d", c.URL, c.Count, c.ElapsedMs())
	}

	if c.Err != nil {
		line += " Error: " + c.Err.Error()
	}
	return line
}

// SequenceResult summarizes one sequence of a run
type SequenceResult struct {
	Sequence    Sequence
	URL         string
	LogPath     string
	Identifiers int
	Lines       int
	Summary     metrics.Summary
	Interrupted bool
	Err         error
}
