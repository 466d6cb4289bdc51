package scrape

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var defaultProfileYAML []byte

// ResolutionRule maps a set of aliases to a normalized resolution label.
type ResolutionRule struct {
	Label   string   `yaml:"label"`
	Aliases []string `yaml:"aliases"`
}

// CodecRule maps a set of aliases to a canonical codec name.
type CodecRule struct {
	Label   string   `yaml:"label"`
	Aliases []string `yaml:"aliases"`
}

// Profile is the declarative extraction vocabulary for a source site.
// Tables are ordered; the first matching entry wins.
type Profile struct {
	DefaultLanguage string           `yaml:"default_language"`
	Languages       []string         `yaml:"languages"`
	SubtitleMarkers []string         `yaml:"subtitle_markers"`
	Resolutions     []ResolutionRule `yaml:"resolutions"`
	Codecs          []CodecRule      `yaml:"codecs"`
	Audio           []string         `yaml:"audio"`
	DirectLinkHosts []string         `yaml:"direct_link_hosts"`
}

// DefaultProfile returns the embedded extraction profile.
func DefaultProfile() (*Profile, error) {
	return parseProfile(defaultProfileYAML)
}

// LoadProfile reads an extraction profile from disk. An empty path returns
// the embedded default.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return DefaultProfile()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction profile: %w", err)
	}
	return parseProfile(data)
}

func parseProfile(data []byte) (*Profile, error) {
	p := &Profile{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse extraction profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) validate() error {
	if p.DefaultLanguage == "" {
		return fmt.Errorf("extraction profile: default_language is required")
	}
	if len(p.Languages) == 0 {
		return fmt.Errorf("extraction profile: languages vocabulary is empty")
	}
	if len(p.Resolutions) == 0 {
		return fmt.Errorf("extraction profile: resolutions vocabulary is empty")
	}
	for _, r := range p.Resolutions {
		if r.Label == "" || len(r.Aliases) == 0 {
			return fmt.Errorf("extraction profile: resolution rule needs a label and at least one alias")
		}
	}
	for _, c := range p.Codecs {
		if c.Label == "" || len(c.Aliases) == 0 {
			return fmt.Errorf("extraction profile: codec rule needs a label and at least one alias")
		}
	}
	return nil
}
