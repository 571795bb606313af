package store

import (
	"encoding/json"
	"io"
	"os"
)

// ExportData is the JSON shape of a recorded sensitivity run.
type ExportData struct {
	Model      string        `json:"model"`
	Integrator string        `json:"integrator"`
	T0         float64       `json:"t0"`
	StopTime   float64       `json:"stop_time"`
	Steps      int           `json:"steps"`
	Times      []float64     `json:"times"`
	States     [][]float64   `json:"states"`
	DyDy0      [][][]float64 `json:"dydy0"`
	DyDp       [][][]float64 `json:"dydp"`
}

// ExportJSON writes a recorded run to path, or to stdout when path is "-".
func ExportJSON(path, model, integrator string, t0, stopTime float64, rec *Recorder) error {
	data := ExportData{
		Model:      model,
		Integrator: integrator,
		T0:         t0,
		StopTime:   stopTime,
		Steps:      len(rec.Times),
		Times:      rec.Times,
		States:     rec.States,
		DyDy0:      rec.DyDy0,
		DyDp:       rec.DyDp,
	}

	var w io.Writer = os.Stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
