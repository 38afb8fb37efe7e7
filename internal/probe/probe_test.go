package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"claudewatch/internal/errors"
)

// fakeCLI writes an executable script that stands in for the claude binary.
func fakeCLI(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "claude")
	content := "#!/bin/sh\n" + script + "\n"
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("write fake CLI: %v", err)
	}
	return path
}

func TestCLIProber_Success(t *testing.T) {
	cli := fakeCLI(t, `echo '{"is_error": false, "result": "Hello!"}'`)
	p := NewCLIProber(WithCommand(cli))

	if err := p.Probe(context.Background()); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
}

func TestCLIProber_ErrorReply(t *testing.T) {
	cli := fakeCLI(t, `echo '{"is_error": true, "result": "usage limit reached"}'`)
	p := NewCLIProber(WithCommand(cli))

	err := p.Probe(context.Background())
	if !errors.Is(err, errors.ErrProbeUnavailable) {
		t.Fatalf("err = %v, want ErrProbeUnavailable", err)
	}
}

func TestCLIProber_EmptyReply(t *testing.T) {
	cli := fakeCLI(t, `true`)
	p := NewCLIProber(WithCommand(cli))

	err := p.Probe(context.Background())
	if !errors.Is(err, errors.ErrProbeUnavailable) {
		t.Fatalf("err = %v, want ErrProbeUnavailable", err)
	}
}

func TestCLIProber_InvalidJSON(t *testing.T) {
	cli := fakeCLI(t, `echo 'not json at all'`)
	p := NewCLIProber(WithCommand(cli))

	err := p.Probe(context.Background())
	if !errors.Is(err, errors.ErrProbeUnavailable) {
		t.Fatalf("err = %v, want ErrProbeUnavailable", err)
	}
}

func TestCLIProber_NonZeroExit(t *testing.T) {
	cli := fakeCLI(t, `exit 1`)
	p := NewCLIProber(WithCommand(cli))

	err := p.Probe(context.Background())
	if !errors.Is(err, errors.ErrProbeUnavailable) {
		t.Fatalf("err = %v, want ErrProbeUnavailable", err)
	}
}

func TestCLIProber_MissingBinary(t *testing.T) {
	p := NewCLIProber(WithCommand(filepath.Join(t.TempDir(), "no-such-binary")))

	err := p.Probe(context.Background())
	if !errors.Is(err, errors.ErrProbeUnavailable) {
		t.Fatalf("err = %v, want ErrProbeUnavailable", err)
	}
}

func TestCLIProber_TextFormatReply(t *testing.T) {
	// In text mode the CLI prints a plain greeting; any non-empty reply
	// from a clean exit counts as the acknowledgment.
	cli := fakeCLI(t, `echo 'Hello! How can I help you today?'`)
	p := NewCLIProber(WithCommand(cli), WithOutputFormat("text"))

	if err := p.Probe(context.Background()); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
}

func TestCLIProber_TextFormatEmptyReply(t *testing.T) {
	cli := fakeCLI(t, `true`)
	p := NewCLIProber(WithCommand(cli), WithOutputFormat("text"))

	err := p.Probe(context.Background())
	if !errors.Is(err, errors.ErrProbeUnavailable) {
		t.Fatalf("err = %v, want ErrProbeUnavailable", err)
	}
}

func TestCLIProber_TextFormatNonZeroExit(t *testing.T) {
	cli := fakeCLI(t, `echo 'usage limit reached'; exit 1`)
	p := NewCLIProber(WithCommand(cli), WithOutputFormat("text"))

	err := p.Probe(context.Background())
	if !errors.Is(err, errors.ErrProbeUnavailable) {
		t.Fatalf("err = %v, want ErrProbeUnavailable", err)
	}
}

func TestCLIProber_Timeout(t *testing.T) {
	cli := fakeCLI(t, `exec sleep 5`)
	p := NewCLIProber(WithCommand(cli), WithTimeout(100*time.Millisecond))

	err := p.Probe(context.Background())
	if !errors.Is(err, errors.ErrProbeTimeout) {
		t.Fatalf("err = %v, want ErrProbeTimeout", err)
	}
}

func TestCLIProber_Args(t *testing.T) {
	p := NewCLIProber(
		WithMessage("ping"),
		WithMaxTurns(2),
		WithOutputFormat("json"),
	)

	got := p.args()
	want := []string{"-p", "ping", "--max-turns", "2", "--output-format", "json"}
	if len(got) != len(want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCLIProber_Defaults(t *testing.T) {
	p := NewCLIProber()

	if p.command != "claude" {
		t.Errorf("command = %q, want claude", p.command)
	}
	if p.maxTurns != 1 {
		t.Errorf("maxTurns = %d, want 1", p.maxTurns)
	}
	if p.outputFormat != "json" {
		t.Errorf("outputFormat = %q, want json", p.outputFormat)
	}
	if p.timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", p.timeout)
	}
}

func TestCLIProber_OptionsIgnoreZeroValues(t *testing.T) {
	p := NewCLIProber(
		WithCommand(""),
		WithMaxTurns(0),
		WithTimeout(0),
	)

	if p.command != "claude" || p.maxTurns != 1 || p.timeout != 10*time.Second {
		t.Error("zero-valued options must not override defaults")
	}
}
