package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest describes a chart directory
type Manifest struct {
	GeneratedAt      time.Time       `yaml:"generated_at"`
	Countries        []string        `yaml:"countries"`
	MissingCountries []string        `yaml:"missing_countries,omitempty"`
	Charts           []ManifestChart `yaml:"charts"`
}

// ManifestChart is one chart entry
type ManifestChart struct {
	File   string           `yaml:"file"`
	Title  string           `yaml:"title"`
	Kind   ChartKind        `yaml:"kind"`
	Labels []string         `yaml:"labels"`
	Series []ManifestSeries `yaml:"series"`
}

// ManifestSeries holds the plotted values of one series. Missing values
// are null.
type ManifestSeries struct {
	Name   string     `yaml:"name"`
	Values []*float64 `yaml:"values"`
}

// NewManifest builds the manifest of the rendered datasets
func NewManifest(datasets []*Dataset, countries, missing []string) *Manifest {
	m := &Manifest{
		GeneratedAt:      time.Now().UTC().Truncate(time.Second),
		Countries:        countries,
		MissingCountries: missing,
		Charts:           make([]ManifestChart, 0, len(datasets)),
	}

	for _, d := range datasets {
		c := ManifestChart{
			File:   d.File(),
			Title:  d.Title,
			Kind:   d.Kind,
			Labels: d.Labels,
			Series: make([]ManifestSeries, 0, len(d.Series)),
		}
		for _, s := range d.Series {
			values := make([]*float64, len(s.Values))
			for i, v := range s.Values {
				if !math.IsNaN(v) {
					v := v
					values[i] = &v
				}
			}
			c.Series = append(c.Series, ManifestSeries{Name: s.Name, Values: values})
		}
		m.Charts = append(m.Charts, c)
	}
	return m
}

// WriteManifest writes m as YAML
func WriteManifest(path string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
