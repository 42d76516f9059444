// Package runner launches external programs, waits for them to exit, and
// captures what they printed.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrExecutionFailed is returned when a program cannot be started or exits with a non-zero status.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrCancelled is returned when the context is cancelled while a program is running.
	ErrCancelled = errors.New("operation cancelled by user")
)

// Result holds the captured output of a finished program.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs a program to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Func adapts an ordinary function to the Runner interface.
type Func func(ctx context.Context, name string, args ...string) (Result, error)

func (f Func) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return f(ctx, name, args...)
}

// Exec runs programs on the local machine.
type Exec struct {
	// Env is appended to the environment of the child process.
	Env []string
}

// Run starts name with args and blocks until it exits. A non-zero exit status is
// reported as ErrExecutionFailed with the captured output still available in the Result.
func (e Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case ctx.Err() != nil:
		return res, fmt.Errorf("%s: %w", name, ErrCancelled)
	case err == nil:
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, fmt.Errorf("%w: %s exited with status %d%s", ErrExecutionFailed, name, res.ExitCode, lastLine(res.Stderr))
	}
	res.ExitCode = -1
	return res, fmt.Errorf("%w: %s: %v", ErrExecutionFailed, name, err)
}

// lastLine returns the final non-empty line of s formatted as an error suffix.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 || lines[len(lines)-1] == "" {
		return ""
	}
	return ": " + strings.TrimSpace(lines[len(lines)-1])
}

// Command is a configured tool invocation such as "java -Xmx8G -jar trimmomatic.jar".
// The first word is the program, the rest are leading arguments.
type Command []string

// ParseCommand splits a tool string on whitespace.
func ParseCommand(s string) Command {
	return Command(strings.Fields(s))
}

// Run executes the command through r with extra appended to the leading arguments.
func (c Command) Run(ctx context.Context, r Runner, extra ...string) (Result, error) {
	if len(c) == 0 {
		return Result{ExitCode: -1}, fmt.Errorf("%w: empty command", ErrExecutionFailed)
	}
	args := make([]string, 0, len(c)-1+len(extra))
	args = append(args, c[1:]...)
	args = append(args, extra...)
	return r.Run(ctx, c[0], args...)
}

func (c Command) String() string {
	return strings.Join(c, " ")
}
