package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
)

// Log is the result log of one sequence. Every line goes to the console and
// to the sequence's log file. A Log must be closed to flush the file.
type Log struct {
	path    string
	console io.Writer
	noColor bool

	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	lines  int
	closed bool

	red *color.Color
}

type LogOption func(*Log)

// WithConsole sets the console writer, os.Stdout by default. A nil writer
// disables console output.
func WithConsole(w io.Writer) LogOption {
	return func(l *Log) {
		l.console = w
	}
}

func WithNoColor(nc bool) LogOption {
	return func(l *Log) {
		l.noColor = nc
	}
}

// OpenLog creates the log file at path, truncating an existing one.
func OpenLog(path string, opts ...LogOption) (*Log, error) {
	l := &Log{
		path:    path,
		console: os.Stdout,
	}
	for _, opt := range opts {
		opt(l)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	l.file = file
	l.writer = bufio.NewWriter(file)
	l.red = color.New(color.FgRed)
	if l.noColor {
		l.red.DisableColor()
	}

	return l, nil
}

// Path returns the log file path
func (l *Log) Path() string {
	return l.path
}

// Lines returns the number of lines recorded so far
func (l *Log) Lines() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lines
}

// Record writes one result line
func (l *Log) Record(line string) error {
	return l.record(line, false)
}

// RecordFailure writes one result line for a failed call. The console copy
// is highlighted, the file copy is identical to Record.
func (l *Log) RecordFailure(line string) error {
	return l.record(line, true)
}

func (l *Log) record(line string, failed bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return fmt.Errorf("log %s is closed", l.path)
	}

	if l.console != nil {
		text := line
		if failed {
			text = l.red.Sprint(line)
		}
		fmt.Fprintln(l.console, text)
	}

	if _, err := l.writer.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write log line: %w", err)
	}
	l.lines++
	return nil
}

// Close flushes and closes the log file. It is safe to call more than once.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	flushErr := l.writer.Flush()
	closeErr := l.file.Close()
	if flushErr != nil {
		return fmt.Errorf("flush log file: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close log file: %w", closeErr)
	}
	return nil
}
