package config

import (
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is the UTC timestamp embedded in log file names
const TimestampLayout = "20060102_150405"

// timestamp placeholders accepted in log path templates
var placeholders = []string{"{0}", "{timestamp}"}

// LogPaths are the resolved log files of one run
type LogPaths struct {
	Resolve    string
	Keyword    string
	BulkSearch string
}

// LogPaths fills the log path templates with the run's start time. The
// keyword and bulk-search sequences each get their own file: when no bulk
// template is configured, "_bulk" is inserted before the extension of the
// search template.
func (c *Config) LogPaths(start time.Time) LogPaths {
	stamp := start.UTC().Format(TimestampLayout)

	bulk := c.FilePaths.LogOutFileForBulkSearch
	if bulk == "" {
		bulk = bulkTemplate(c.FilePaths.LogOutFileForSearch)
	}

	return LogPaths{
		Resolve:    FormatLogPath(c.FilePaths.LogOutFileForResolve, stamp),
		Keyword:    FormatLogPath(c.FilePaths.LogOutFileForSearch, stamp),
		BulkSearch: FormatLogPath(bulk, stamp),
	}
}

// FormatLogPath replaces every timestamp placeholder in template
func FormatLogPath(template, stamp string) string {
	for _, p := range placeholders {
		template = strings.ReplaceAll(template, p, stamp)
	}
	return template
}

func bulkTemplate(search string) string {
	if search == "" {
		return ""
	}
	ext := filepath.Ext(search)
	return strings.TrimSuffix(search, ext) + "_bulk" + ext
}
