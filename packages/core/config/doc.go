// Package config handles configuration loading for secprobe.
//
// It provides functionality for:
//   - Loading secprobe.yaml, or an existing appsettings.json (JSON is read
//     as YAML)
//   - ${VAR} expansion from the environment before parsing
//   - Default values and validation
//   - Deriving per-run log file paths from timestamped templates
package config
