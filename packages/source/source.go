package source

import (
	"bytes"
	"fmt"
	"os"
)

// utf8BOM is dropped from the start of the file
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Identifiers is the outcome of loading an identifier file. Err is set when
// the file could not be read, in which case Values is empty.
type Identifiers struct {
	Path   string
	Values []string
	Err    error
}

// Failed reports whether the file could not be read
func (ids Identifiers) Failed() bool {
	return ids.Err != nil
}

// Len returns the number of identifiers loaded
func (ids Identifiers) Len() int {
	return len(ids.Values)
}

// Load reads the identifier file at path, one identifier per line. A line
// ends at "\n", "\r\n" or a lone "\r"; a leading UTF-8 BOM is dropped and
// lines have no length limit.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read identifier file: %w", err)
	}
	return splitLines(data), nil
}

// splitLines keeps blank lines and everything else on a line as-is. A
// terminator at the very end does not start a further empty line.
func splitLines(data []byte) []string {
	data = bytes.TrimPrefix(data, utf8BOM)

	values := make([]string, 0)
	for len(data) > 0 {
		i := bytes.IndexAny(data, "\r\n")
		if i < 0 {
			values = append(values, string(data))
			break
		}
		values = append(values, string(data[:i]))

		next := i + 1
		if data[i] == '\r' && next < len(data) && data[next] == '\n' {
			next++
		}
		data = data[next:]
	}
	return values
}

// LoadOrEmpty reads the identifier file and never fails: a read error yields
// an empty list with the reason kept in Err.
func LoadOrEmpty(path string) Identifiers {
	values, err := Load(path)
	if err != nil {
		return Identifiers{Path: path, Values: []string{}, Err: err}
	}
	return Identifiers{Path: path, Values: values}
}
