package assets

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Manifest lists the visuals a session needs, keyed by logical name.
type Manifest struct {
	Visuals map[string]string `yaml:"visuals"`
}

// LoadManifest decodes a yaml manifest.
func LoadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Paths returns the manifest's asset paths.
func (m *Manifest) Paths() []string {
	out := make([]string, 0, len(m.Visuals))
	for _, p := range m.Visuals {
		out = append(out, p)
	}
	return out
}
