package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specialistvlad/stevedore/internal/app"
)

// EnvPrefix is prepended to every flag name, upper-cased with dashes as
// underscores, to form its environment variable: STEVEDORE_MAX_PARALLELISM.
const EnvPrefix = "STEVEDORE"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	v := viper.New()
	var parsed *app.Config

	cmd := &cobra.Command{
		Use:   "stevedore [options] TASK [-- ADDITIONAL_ARGS...]",
		Short: "Run development tasks in containers.",
		Long: `Stevedore runs a task's container together with the containers it depends on,
waits for dependencies to become healthy, and cleans everything up afterwards.

Arguments:
  TASK
    The task to run. Its prerequisites run first.
  ADDITIONAL_ARGS
    Appended to the command of the task's container.

Every option can also be set with an environment variable, for example
STEVEDORE_MAX_PARALLELISM=4.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			cfg, err := buildConfig(cmd, v, positional)
			if err != nil {
				return err
			}
			parsed = cfg
			return nil
		},
	}
	cmd.SetOut(output)
	cmd.SetErr(output)
	cmd.SetArgs(args)

	flags := cmd.Flags()
	flags.StringP("config", "f", "stevedore.hcl", "Path to the configuration file or directory.")
	flags.Bool("list-tasks", false, "List the available tasks and exit.")
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.Int("max-parallelism", 0, "Maximum number of steps to run at once. 0 uses the number of CPUs.")
	flags.Bool("skip-prerequisites", false, "Run only the given task, without its prerequisites.")
	flags.Bool("no-cleanup-after-failure", false, "Leave containers in place if the task fails.")
	flags.Bool("no-cleanup-after-success", false, "Leave containers in place if the task succeeds.")
	flags.Bool("no-cleanup", false, "Equivalent to --no-cleanup-after-failure and --no-cleanup-after-success.")
	flags.Int("metrics-port", 0, "Port for the /health and /metrics HTTP server. 0 is disabled.")
	flags.String("otel-endpoint", "", "OTLP gRPC endpoint for trace export. Empty disables tracing.")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if parsed == nil {
		// Help was requested, or no task was given and the usage was printed.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", parsed)
	return parsed, false, nil
}

func buildConfig(cmd *cobra.Command, v *viper.Viper, positional []string) (*app.Config, error) {
	taskArgs, additional := positional, []string(nil)
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		taskArgs, additional = positional[:dash], positional[dash:]
	}

	listTasks := v.GetBool("list-tasks")
	if len(taskArgs) == 0 && !listTasks {
		slog.Debug("No task provided, printing usage and exiting.")
		_ = cmd.Usage()
		return nil, nil
	}
	if len(taskArgs) > 1 {
		return nil, &ExitError{Code: 2, Message: fmt.Sprintf("only one task can be run at a time, got %s", strings.Join(taskArgs, ", "))}
	}
	taskName := ""
	if len(taskArgs) == 1 {
		taskName = taskArgs[0]
	}

	logFormat := strings.ToLower(v.GetString("log-format"))
	if logFormat != "text" && logFormat != "json" {
		return nil, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(v.GetString("log-level"))
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	noCleanup := v.GetBool("no-cleanup")
	config, err := app.NewConfig(app.Config{
		ConfigPath:            v.GetString("config"),
		TaskName:              taskName,
		ListTasks:             listTasks,
		LogFormat:             logFormat,
		LogLevel:              logLevel,
		MetricsPort:           v.GetInt("metrics-port"),
		OtelEndpoint:          v.GetString("otel-endpoint"),
		MaxParallelism:        v.GetInt("max-parallelism"),
		SkipPrerequisites:     v.GetBool("skip-prerequisites"),
		NoCleanupAfterFailure: noCleanup || v.GetBool("no-cleanup-after-failure"),
		NoCleanupAfterSuccess: noCleanup || v.GetBool("no-cleanup-after-success"),
		AdditionalArguments:   additional,
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, nil
}
