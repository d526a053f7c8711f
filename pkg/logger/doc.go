// Package logger builds the structured logger used for diagnostics.
// Records go to the writer passed in (stderr for the CLI) so standard output
// stays reserved for the health check result lines.
package logger
