package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that every enabled sequence has what it needs.
func (c *Config) Validate() error {
	var errs []error

	for _, name := range c.Sequences {
		if !isKnownSequence(name) {
			errs = append(errs, fmt.Errorf("unknown sequence %q (want one of %s)", name, strings.Join(AllSequences, ", ")))
		}
	}

	if c.Enabled(SequenceResolve) {
		errs = append(errs, required("ApiUrls.Resolve", c.APIURLs.Resolve))
		errs = append(errs, required("FilePaths.LogOutFileForResolve", c.FilePaths.LogOutFileForResolve))
	}
	if c.Enabled(SequenceKeyword) {
		errs = append(errs, required("ApiUrls.SearchKeyword", c.APIURLs.SearchKeyword))
		errs = append(errs, required("FilePaths.LogOutFileForSearch", c.FilePaths.LogOutFileForSearch))
	}
	if c.Enabled(SequenceSearch) {
		errs = append(errs, required("ApiUrls.Search", c.APIURLs.Search))
		if c.FilePaths.LogOutFileForBulkSearch == "" {
			errs = append(errs, required("FilePaths.LogOutFileForSearch", c.FilePaths.LogOutFileForSearch))
		}
	}

	errs = append(errs, required("FilePaths.DriverFile", c.FilePaths.DriverFile))
	errs = append(errs, required("BearerToken", c.BearerToken))

	if c.Timeout < 0 {
		errs = append(errs, errors.New("Timeout cannot be negative"))
	}

	return dedupJoin(errs)
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

func isKnownSequence(name string) bool {
	for _, s := range AllSequences {
		if s == name {
			return true
		}
	}
	return false
}

// dedupJoin joins non-nil errors, dropping repeated messages
func dedupJoin(errs []error) error {
	seen := make(map[string]bool)
	var kept []error
	for _, err := range errs {
		if err == nil || seen[err.Error()] {
			continue
		}
		seen[err.Error()] = true
		kept = append(kept, err)
	}
	return errors.Join(kept...)
}
