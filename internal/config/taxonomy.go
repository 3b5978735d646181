package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/plandex/internal/domain"
	"github.com/kailas-cloud/plandex/internal/domain/keyword"
	"github.com/kailas-cloud/plandex/internal/domain/taxonomy"
)

// taxonomyFile is the on-disk taxonomy layout:
//
//	phrases:
//	  - text: altura máxima
//	    weight: 7.5
//	patterns:
//	  legal_reference: ['lei\s+complementar\s+n?º?\s*\d+']
//	templates: [altura máxima em ...]
type taxonomyFile struct {
	Phrases []struct {
		Text   string  `yaml:"text"`
		Weight float64 `yaml:"weight"`
	} `yaml:"phrases"`
	Patterns  map[string][]string `yaml:"patterns"`
	Templates []string            `yaml:"templates"`
}

// LoadTaxonomy compiles the taxonomy configured by cfg. An empty file path
// selects the built-in Porto Alegre taxonomy.
func LoadTaxonomy(cfg TaxonomyConfig) (*taxonomy.Taxonomy, error) {
	if cfg.File == "" {
		return taxonomy.New(taxonomy.DefaultDefinition())
	}

	data, err := os.ReadFile(filepath.Clean(cfg.File))
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", cfg.File, err)
	}
	def, err := ParseTaxonomy(data)
	if err != nil {
		return nil, err
	}
	return taxonomy.New(def)
}

// ParseTaxonomy decodes a taxonomy file. Pattern categories keep the fixed
// detection order regardless of their order in the file.
func ParseTaxonomy(data []byte) (taxonomy.Definition, error) {
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return taxonomy.Definition{}, fmt.Errorf("%w: %w", domain.ErrInvalidTaxonomy, err)
	}

	var def taxonomy.Definition
	for _, p := range f.Phrases {
		def.Phrases = append(def.Phrases, taxonomy.Phrase{Text: p.Text, Weight: p.Weight})
	}

	for name := range f.Patterns {
		c, err := keyword.ParseCategory(name)
		if err != nil || c == keyword.Composite {
			return taxonomy.Definition{}, fmt.Errorf("%w: unknown pattern category %q", domain.ErrInvalidTaxonomy, name)
		}
	}
	for _, c := range keyword.PatternCategories {
		if exprs, ok := f.Patterns[c.String()]; ok {
			def.Patterns = append(def.Patterns, taxonomy.PatternSet{Category: c, Patterns: exprs})
		}
	}

	def.Templates = f.Templates
	return def, nil
}
