package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/aretw0/eventable/internal/logging"
	"github.com/aretw0/eventable/pkg/registry"
)

// Environment variables set for every executed action.
const (
	EnvAction    = "EVENTABLE_ACTION"
	EnvArgPrefix = "EVENTABLE_ARG_"
	EnvArgCount  = "EVENTABLE_ARGC"
)

// Runner turns ActionConfigs into registry handlers that execute local processes.
type Runner struct {
	baseDir string
	logger  *slog.Logger
	stdout  io.Writer
}

// Option configures the runner.
type Option func(*Runner)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) Option {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithLogger sets the logger used for failed executions.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithStdout copies the standard output of every executed process to w
// as it is produced.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) {
		r.stdout = w
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds one handler per action to reg, under "action<Name>".
// It returns the number of registered actions.
func Register(reg *registry.Registry, actions []ActionConfig, opts ...Option) int {
	r := NewRunner(opts...)
	for _, a := range actions {
		reg.RegisterAction(a.Name, r.Handler(a))
	}
	return len(actions)
}

// Handler returns a HandlerFunc that runs the configured command.
//
// Parameters are never passed as command-line flags. They are exposed as
// environment variables EVENTABLE_ARG_0..N, so a parameter cannot inject flags.
// Stdout is the result, decoded as JSON when it looks like an object or array.
// A non-zero exit is returned as an error carrying stderr.
func (r *Runner) Handler(action ActionConfig) registry.HandlerFunc {
	return func(ctx context.Context, params ...any) (any, error) {
		cmd := exec.CommandContext(ctx, action.Command, action.Args...)
		cmd.Dir = r.baseDir
		cmd.Env = append(cmd.Environ(), environment(action, params)...)

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		if r.stdout != nil {
			cmd.Stdout = io.MultiWriter(&stdout, r.stdout)
		}
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			r.logger.ErrorContext(ctx, "action process failed",
				"action", action.Name,
				"command", action.Command,
				"error", err,
			)
			return nil, fmt.Errorf("action %s: execution failed: %w: %s", action.Name, err, strings.TrimSpace(stderr.String()))
		}

		return decodeOutput(stdout.String()), nil
	}
}

func environment(action ActionConfig, params []any) []string {
	env := make([]string, 0, len(action.Environment)+len(params)+2)
	for k, v := range action.Environment {
		env = append(env, k+"="+v)
	}
	env = append(env,
		EnvAction+"="+action.Name,
		fmt.Sprintf("%s=%d", EnvArgCount, len(params)),
	)
	for i, p := range params {
		env = append(env, fmt.Sprintf("%s%d=%s", EnvArgPrefix, i, formatValue(p)))
	}
	return env
}

// formatValue renders primitives as text and everything else as JSON.
func formatValue(v any) string {
	switch v.(type) {
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}

func decodeOutput(output string) any {
	trimmed := strings.TrimSpace(output)

	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var result any
		if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
			return result
		}
	}
	return trimmed
}
