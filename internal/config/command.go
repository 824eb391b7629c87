package config

import (
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Command is a command line split into its arguments.
type Command struct {
	Original string
	Parsed   []string
}

// CommandParseError reports a command line that could not be split.
type CommandParseError struct {
	Command string
	Reason  string
}

func (e *CommandParseError) Error() string {
	return fmt.Sprintf("the command '%s' is invalid: %s", e.Command, e.Reason)
}

// ParseCommand splits a command line using shell quoting rules. An empty
// string yields a nil command.
func ParseCommand(line string) (*Command, error) {
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false

	args, err := parser.Parse(line)
	if err != nil {
		return nil, &CommandParseError{Command: line, Reason: err.Error()}
	}

	return &Command{Original: line, Parsed: args}, nil
}

// Append returns a new command with extra arguments added to the end. The
// receiver is not modified.
func (c *Command) Append(args []string) *Command {
	if len(args) == 0 {
		return c
	}

	parsed := make([]string, 0, len(c.Parsed)+len(args))
	parsed = append(parsed, c.Parsed...)
	parsed = append(parsed, args...)

	return &Command{
		Original: c.Original + " " + strings.Join(args, " "),
		Parsed:   parsed,
	}
}

func (c *Command) String() string {
	if c == nil {
		return ""
	}
	return c.Original
}
