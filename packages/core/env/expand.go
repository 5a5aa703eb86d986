package env

import (
	"os"
	"regexp"
)

var referencePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LookupFunc returns the value of a variable and whether it is set
type LookupFunc func(name string) (string, bool)

// Expand replaces ${VAR} references in s. A bare $VAR is left alone so URLs
// with OData-style "$filter" parameters survive. Unset variables expand to
// the empty string and are reported in missing.
func Expand(s string, lookup LookupFunc) (expanded string, missing []string) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	seen := make(map[string]bool)
	expanded = referencePattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := referencePattern.FindStringSubmatch(ref)[1]
		if value, ok := lookup(name); ok {
			return value
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return ""
	})

	return expanded, missing
}
