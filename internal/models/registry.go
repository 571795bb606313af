package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/varode/internal/ode"
)

// Model is a named parameterized ODE with sensible defaults for CLI runs.
type Model interface {
	ode.ParameterizedODE
	Name() string
	DefaultState() []float64
	DefaultParameters() []float64
}

var registry = map[string]func() Model{
	"exponential": func() Model { return NewExponential() },
	"vanderpol":   func() Model { return NewVanDerPol() },
	"pendulum":    func() Model { return NewPendulum() },
}

// Get returns a fresh instance of the named model.
func Get(name string) (Model, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("models: unknown model %q (available: %v)", name, Names())
	}
	return build(), nil
}

// Names lists the registered model names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
