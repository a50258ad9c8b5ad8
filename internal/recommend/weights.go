package recommend

import (
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-yaml"
)

// Weights is the fixed weight vector over the four scoring factors. A valid
// vector is non-negative and sums to 1.0.
type Weights struct {
	Level    float64 `yaml:"level" json:"level"`
	Subjects float64 `yaml:"subjects" json:"subjects"`
	CCAs     float64 `yaml:"ccas" json:"ccas"`
	Distance float64 `yaml:"distance" json:"distance"`
}

// DefaultWeights weighs the four factors evenly. Deployments tune the
// emphasis via the weights file.
func DefaultWeights() Weights {
	return Weights{Level: 0.25, Subjects: 0.25, CCAs: 0.25, Distance: 0.25}
}

func (w Weights) sum() float64 {
	return w.Level + w.Subjects + w.CCAs + w.Distance
}

// Validate rejects negative components and vectors that do not sum to 1.0.
func (w Weights) Validate() error {
	if w.Level < 0 || w.Subjects < 0 || w.CCAs < 0 || w.Distance < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if math.Abs(w.sum()-1.0) > 1e-6 {
		return fmt.Errorf("weights must sum to 1.0, got %.6f", w.sum())
	}
	return nil
}

// Normalized scales the vector so it sums to 1.0, keeping relative emphasis.
// Errors when every component is zero (or negative components are present).
func (w Weights) Normalized() (Weights, error) {
	if w.Level < 0 || w.Subjects < 0 || w.CCAs < 0 || w.Distance < 0 {
		return Weights{}, fmt.Errorf("weights must be non-negative: %+v", w)
	}
	s := w.sum()
	if s <= 0 {
		return Weights{}, fmt.Errorf("weights sum to zero")
	}
	return Weights{
		Level:    w.Level / s,
		Subjects: w.Subjects / s,
		CCAs:     w.CCAs / s,
		Distance: w.Distance / s,
	}, nil
}

// LoadWeights reads a YAML weights file, falling back to defaults when the
// file does not exist. A present-but-invalid file is an error.
func LoadWeights(path string) (Weights, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultWeights(), nil
		}
		return Weights{}, fmt.Errorf("read weights file: %w", err)
	}

	w := DefaultWeights()
	if err := yaml.Unmarshal(b, &w); err != nil {
		return Weights{}, fmt.Errorf("parse weights file: %w", err)
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}
