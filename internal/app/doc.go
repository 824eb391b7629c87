// Package app ties a loaded project to a session: it owns the logger, the
// optional health and metrics server, tracing, and the task listing. It
// knows nothing about flags or process exit codes.
package app
