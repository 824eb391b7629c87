package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/stevedore/internal/app"
	"github.com/specialistvlad/stevedore/internal/cli"
	"github.com/specialistvlad/stevedore/internal/hcl_adapter"
)

// main is the entrypoint for the stevedore application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	exitCode, err := run(os.Stdout, os.Args[1:])
	if err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

// run encapsulates the main application logic for easier testing and error
// handling. It returns the exit code of the task that was run.
func run(outW io.Writer, args []string) (exitCode int, err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return -1, err
	}
	if shouldExit {
		return 0, nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			exitCode = -1
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	// Instantiate the concrete HCL loader to pass to the app.
	loader := hcl_adapter.NewLoader()
	stevedore := app.NewApp(outW, appConfig, loader)

	// Interrupts are handled by the task runner, which still needs a live
	// context to clean up, so this context is never cancelled.
	return stevedore.Run(context.Background())
}
