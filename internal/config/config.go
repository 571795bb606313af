package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 1.0
	DefaultTolerance = 1e-10
	DefaultFDStep    = 1e-7
)

// Config describes one sensitivity run.
type Config struct {
	Model      string  `yaml:"model"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Tolerance  float64 `yaml:"tolerance"`
	T0         float64 `yaml:"t0"`
	Duration   float64 `yaml:"duration"`

	// Y0 and Params override the model defaults when non-empty.
	Y0     []float64 `yaml:"y0"`
	Params []float64 `yaml:"params"`

	// DY0DP is the initial sensitivity of the state to the parameters
	// (n rows of k). Zero when empty.
	DY0DP [][]float64 `yaml:"dy0dp"`

	// HY and HP are the finite-difference perturbation sizes, used only
	// for models without analytic Jacobians. When empty, DefaultFDStep is
	// used for every component.
	HY []float64 `yaml:"hy"`
	HP []float64 `yaml:"hp"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "exponential",
		Integrator: "dopri5",
		Dt:         DefaultDt,
		Tolerance:  DefaultTolerance,
		Duration:   DefaultDuration,
	}
}

// Load reads a YAML config, layered over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration == 0 {
		return fmt.Errorf("duration must be non-zero")
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.Tolerance)
	}
	switch c.Integrator {
	case "euler", "rk4", "dopri5":
	default:
		return fmt.Errorf("unknown integrator %q", c.Integrator)
	}
	return nil
}

// FDSteps returns the finite-difference perturbation sizes for a problem of
// dimension n with k parameters, falling back to DefaultFDStep where the
// config does not specify them.
func (c *Config) FDSteps(n, k int) (hY, hP []float64) {
	hY = filled(c.HY, n)
	hP = filled(c.HP, k)
	return hY, hP
}

func filled(given []float64, size int) []float64 {
	if len(given) == size {
		return given
	}
	out := make([]float64, size)
	for i := range out {
		out[i] = DefaultFDStep
	}
	return out
}
