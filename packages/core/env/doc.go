// Package env handles environment variables for secprobe configuration.
//
// It provides functionality for:
//   - Loading dotenv files (KEY=value, quoted values, export prefix, comments)
//   - Expanding ${VAR} references in configuration text
package env
