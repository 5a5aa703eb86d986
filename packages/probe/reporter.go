package probe

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Reporter prints the run header and the final summary
type Reporter struct {
	writer  io.Writer
	noColor bool

	// Colors
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	bold   *color.Color
	dim    *color.Color
}

// ReporterOption configures the reporter
type ReporterOption func(*Reporter)

// WithReportWriter sets the output writer
func WithReportWriter(w io.Writer) ReporterOption {
	return func(r *Reporter) {
		r.writer = w
	}
}

// WithReportNoColor disables colored output
func WithReportNoColor(noColor bool) ReporterOption {
	return func(r *Reporter) {
		r.noColor = noColor
	}
}

// NewReporter creates a new reporter
func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{
		writer: os.Stdout,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.green = color.New(color.FgGreen)
	r.red = color.New(color.FgRed)
	r.yellow = color.New(color.FgYellow)
	r.cyan = color.New(color.FgCyan)
	r.bold = color.New(color.Bold)
	r.dim = color.New(color.Faint)

	if r.noColor {
		for _, c := range []*color.Color{r.green, r.red, r.yellow, r.cyan, r.bold, r.dim} {
			c.DisableColor()
		}
	}

	return r
}

// Header prints the run header
func (r *Reporter) Header(version, runID, identifierFile string, endpoints []Endpoint) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintf(r.writer, "secprobe %s\n", version)
	r.dim.Fprintf(r.writer, "run %s\n", runID)
	fmt.Fprintln(r.writer)

	r.cyan.Fprintf(r.writer, "Identifiers: %s\n", identifierFile)
	for _, ep := range endpoints {
		fmt.Fprintf(r.writer, "  %-8s %s -> %s (pacing %s)\n", ep.Sequence, ep.URL, ep.LogPath, ep.Sequence.Pacing())
	}
	fmt.Fprintln(r.writer)
}

// Summary prints the per-sequence summary
func (r *Reporter) Summary(result *RunResult) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "PROBE SUMMARY")
	fmt.Fprintln(r.writer, strings.Repeat("─", 40))

	fmt.Fprintf(r.writer, "Duration:   %s\n", formatDuration(result.Duration))

	for _, s := range result.Sequences {
		fmt.Fprintln(r.writer)
		r.bold.Fprintf(r.writer, "%s", strings.ToUpper(string(s.Sequence)))
		r.dim.Fprintf(r.writer, "  %s\n", s.LogPath)

		if s.Err != nil {
			fmt.Fprintf(r.writer, "  ")
			r.red.Fprintf(r.writer, "not completed: %v\n", s.Err)
			continue
		}

		sum := s.Summary
		fmt.Fprintf(r.writer, "  Calls:    ")
		r.bold.Fprintf(r.writer, "%d", sum.Calls)
		fmt.Fprintf(r.writer, " (%d identifiers, %d lines)\n", s.Identifiers, s.Lines)

		fmt.Fprintf(r.writer, "  Found:    ")
		r.green.Fprintf(r.writer, "%d\n", sum.Found)

		fmt.Fprintf(r.writer, "  Failed:   ")
		if sum.Failures > 0 {
			r.red.Fprintf(r.writer, "%d", sum.Failures)
		} else {
			fmt.Fprintf(r.writer, "%d", sum.Failures)
		}
		fmt.Fprintf(r.writer, " (%.1f%%)\n", sum.FailureRate()*100)

		if sum.Timeouts > 0 {
			fmt.Fprintf(r.writer, "  Timeouts: ")
			r.yellow.Fprintf(r.writer, "%d\n", sum.Timeouts)
		}

		if sum.Calls > 0 {
			fmt.Fprintf(r.writer, "  Latency (ms): p50: %-6s | p95: %-6s | p99: %-6s | max: %s\n",
				formatLatencyMs(sum.P50),
				formatLatencyMs(sum.P95),
				formatLatencyMs(sum.P99),
				formatLatencyMs(sum.Max))
		}

		if s.Interrupted {
			fmt.Fprintf(r.writer, "  ")
			r.yellow.Fprintln(r.writer, "interrupted before the end of the list")
		}
	}
	fmt.Fprintln(r.writer)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	}
	if d < time.Minute {
		return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
	}
	return d.Round(time.Second).String()
}

func formatLatencyMs(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 10 {
		return strconv.FormatFloat(ms, 'f', 1, 64)
	}
	return strconv.FormatFloat(ms, 'f', 0, 64)
}
