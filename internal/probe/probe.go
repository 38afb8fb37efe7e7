// Package probe verifies that the Claude CLI is reachable and accepting
// interaction before a usage window is committed. The check is a single
// bounded-time invocation; on any failure the caller leaves stored state
// untouched.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"claudewatch/internal/errors"
)

const (
	// defaultCommand is the Claude CLI binary name.
	defaultCommand = "claude"

	// defaultMessage is the minimal acknowledgment prompt sent on activation.
	defaultMessage = "Hello, Claude!"

	// defaultMaxTurns caps the interaction so a probe never consumes more
	// than a single turn of usage.
	defaultMaxTurns = 1

	// defaultOutputFormat requests a structured reply the probe can verify.
	defaultOutputFormat = "json"

	// defaultTimeout bounds the probe invocation.
	defaultTimeout = 10 * time.Second
)

// Prober checks that the remote assistant can accept a new interaction.
type Prober interface {
	// Probe returns nil if the service acknowledged the check, and a
	// probe-taxonomy error otherwise. It completes within the configured
	// timeout.
	Probe(ctx context.Context) error
}

// CLIProber implements Prober by running the Claude CLI in one-shot print
// mode and verifying its JSON reply.
type CLIProber struct {
	command      string
	message      string
	maxTurns     int
	outputFormat string
	timeout      time.Duration
}

// Option configures a CLIProber.
type Option func(*CLIProber)

// WithCommand overrides the CLI binary name.
func WithCommand(command string) Option {
	return func(p *CLIProber) {
		if command != "" {
			p.command = command
		}
	}
}

// WithMessage sets the acknowledgment message sent to the CLI.
func WithMessage(message string) Option {
	return func(p *CLIProber) {
		if message != "" {
			p.message = message
		}
	}
}

// WithMaxTurns sets the turn limit passed through to the CLI.
func WithMaxTurns(turns int) Option {
	return func(p *CLIProber) {
		if turns > 0 {
			p.maxTurns = turns
		}
	}
}

// WithOutputFormat sets the output format passed through to the CLI.
func WithOutputFormat(format string) Option {
	return func(p *CLIProber) {
		if format != "" {
			p.outputFormat = format
		}
	}
}

// WithTimeout bounds the probe invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(p *CLIProber) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// NewCLIProber creates a prober with defaults matching the Claude CLI.
func NewCLIProber(opts ...Option) *CLIProber {
	p := &CLIProber{
		command:      defaultCommand,
		message:      defaultMessage,
		maxTurns:     defaultMaxTurns,
		outputFormat: defaultOutputFormat,
		timeout:      defaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// cliResponse is the subset of the CLI's JSON reply the probe verifies.
type cliResponse struct {
	IsError bool   `json:"is_error"`
	Result  string `json:"result"`
}

// Probe runs the CLI and verifies its reply. JSON replies are checked
// structurally, including the error flag; text replies only need a clean
// exit with output. A timeout maps to errors.ErrProbeTimeout; every other
// failure mode (missing binary, non-zero exit, unparseable or error reply)
// maps to errors.ErrProbeUnavailable.
func (p *CLIProber) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.command, p.args()...)

	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: no reply within %s", errors.ErrProbeTimeout, p.timeout)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrProbeUnavailable, err)
	}

	raw := strings.TrimSpace(string(out))
	if raw == "" {
		return fmt.Errorf("%w: empty reply", errors.ErrProbeUnavailable)
	}

	// A text reply carries no error flag; a clean exit with output is the
	// acknowledgment.
	if p.outputFormat != "json" {
		return nil
	}

	var resp cliResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return fmt.Errorf("%w: invalid JSON reply: %v", errors.ErrProbeUnavailable, err)
	}

	if resp.IsError {
		result := resp.Result
		if result == "" {
			result = "unknown error"
		}
		return fmt.Errorf("%w: %s", errors.ErrProbeUnavailable, result)
	}

	return nil
}

// args builds the CLI argument list for a one-shot probe.
func (p *CLIProber) args() []string {
	return []string{
		"-p", p.message,
		"--max-turns", strconv.Itoa(p.maxTurns),
		"--output-format", p.outputFormat,
	}
}
