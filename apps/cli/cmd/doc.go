// Package cmd implements the secprobe CLI commands using Cobra.
//
// Available commands:
//   - run: Drive the identifier list through the enabled sequences
//   - validate: Check the configuration without calling the service
//   - init: Write a sample secprobe.yaml and identifier file
//   - version: Show secprobe version information
//   - completion: Generate shell completion scripts
//
// Configuration comes from secprobe.yaml (or an existing appsettings.json);
// flags override the file.
package cmd
