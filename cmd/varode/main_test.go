package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/varode/internal/config"
)

// newRunCommand builds a command with the shared run flags, resetting the
// bound globals to their defaults.
func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{}
	addRunFlags(cmd)
	configFile = ""
	return cmd
}

func writeRunConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := `model: exponential
integrator: rk4
dt: 0.05
duration: 3.0
tolerance: 1e-6
t0: 0.5
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildProblemKeepsConfigFileValues(t *testing.T) {
	cmd := newRunCommand()
	configFile = writeRunConfig(t)

	p, err := buildProblem(cmd, "exponential")
	if err != nil {
		t.Fatal(err)
	}

	// no flags were given, so every config file value must survive
	if p.cfg.Dt != 0.05 {
		t.Errorf("dt: got %g, want 0.05", p.cfg.Dt)
	}
	if p.cfg.Duration != 3.0 {
		t.Errorf("duration: got %g, want 3.0", p.cfg.Duration)
	}
	if p.cfg.Tolerance != 1e-6 {
		t.Errorf("tolerance: got %g, want 1e-6", p.cfg.Tolerance)
	}
	if p.cfg.Integrator != "rk4" {
		t.Errorf("integrator: got %q, want rk4", p.cfg.Integrator)
	}
	if p.cfg.T0 != 0.5 {
		t.Errorf("t0: got %g, want 0.5", p.cfg.T0)
	}
}

func TestBuildProblemFlagsOverrideConfig(t *testing.T) {
	cmd := newRunCommand()
	configFile = writeRunConfig(t)

	if err := cmd.Flags().Set("dt", "0.2"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("integrator", "euler"); err != nil {
		t.Fatal(err)
	}

	p, err := buildProblem(cmd, "exponential")
	if err != nil {
		t.Fatal(err)
	}

	if p.cfg.Dt != 0.2 {
		t.Errorf("explicit --dt should win: got %g", p.cfg.Dt)
	}
	if p.cfg.Integrator != "euler" {
		t.Errorf("explicit --integrator should win: got %q", p.cfg.Integrator)
	}
	// flags not given keep the config file values
	if p.cfg.Duration != 3.0 {
		t.Errorf("duration: got %g, want 3.0", p.cfg.Duration)
	}
	if p.cfg.Tolerance != 1e-6 {
		t.Errorf("tolerance: got %g, want 1e-6", p.cfg.Tolerance)
	}
}

func TestBuildProblemDefaultsWithoutConfig(t *testing.T) {
	cmd := newRunCommand()

	p, err := buildProblem(cmd, "exponential")
	if err != nil {
		t.Fatal(err)
	}
	if p.cfg.Dt != config.DefaultDt || p.cfg.Tolerance != config.DefaultTolerance {
		t.Errorf("defaults: dt=%g tol=%g", p.cfg.Dt, p.cfg.Tolerance)
	}
	if p.cfg.Integrator != "dopri5" {
		t.Errorf("default integrator: got %q", p.cfg.Integrator)
	}
	if p.n != 1 || p.k != 1 {
		t.Errorf("problem dimensions: n=%d k=%d", p.n, p.k)
	}
}
