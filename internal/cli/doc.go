// Package cli turns the command line and STEVEDORE_* environment variables
// into an app.Config. Usage errors are reported as *ExitError with exit
// code 2.
package cli
