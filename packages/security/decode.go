package security

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// IDSeparator joins security ids on a resolve log line
const IDSeparator = " | "

// DecodeError reports a response body that does not have the expected shape.
type DecodeError struct {
	Expected string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s response: %v", e.Expected, e.Err)
	}
	return fmt.Sprintf("invalid %s response", e.Expected)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ResolveMatch is the part of a resolve response found under one key
type ResolveMatch struct {
	Key        string
	Securities []Security
	IDs        []string
}

// Count returns the number of securities matched
func (m ResolveMatch) Count() int {
	return len(m.Securities)
}

// JoinedIDs returns the non-empty security ids joined for display
func (m ResolveMatch) JoinedIDs() string {
	return strings.Join(m.IDs, IDSeparator)
}

// DecodeResolve decodes a resolve response, a map of "{type}-{identifier}"
// to securities, and returns the securities stored under key. A missing key
// is an empty match, not an error. IDs keeps every non-null id, empty ones
// included.
func DecodeResolve(body []byte, key string) (ResolveMatch, error) {
	match := ResolveMatch{Key: key}

	var data map[string][]Security
	if err := json.Unmarshal(body, &data); err != nil {
		return match, &DecodeError{Expected: "resolve", Err: err}
	}

	securities, ok := data[key]
	if !ok {
		return match, nil
	}

	match.Securities = securities
	for _, s := range securities {
		if s.SecurityID != nil {
			match.IDs = append(match.IDs, *s.SecurityID)
		}
	}
	return match, nil
}

// DecodeList decodes a bare JSON array of securities
func DecodeList(body []byte) ([]Security, error) {
	var securities []Security
	if err := json.Unmarshal(body, &securities); err != nil {
		return nil, &DecodeError{Expected: "search", Err: err}
	}
	return securities, nil
}

// CountArray returns the number of elements of a bare JSON array without
// decoding them.
func CountArray(body []byte) (int, error) {
	if !gjson.ValidBytes(body) {
		return 0, &DecodeError{Expected: "keyword search", Err: fmt.Errorf("body is not valid JSON")}
	}

	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return 0, &DecodeError{Expected: "keyword search", Err: fmt.Errorf("expected a JSON array, got %s", result.Type)}
	}

	return int(result.Get("#").Int()), nil
}
