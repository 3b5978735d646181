package taxonomy

import "github.com/kailas-cloud/plandex/internal/domain/keyword"

// DefaultDefinition returns the built-in taxonomy for the Porto Alegre master plan.
// Height synonyms share comparable weights so equivalent regulatory phrasing ranks alike.
func DefaultDefinition() Definition {
	return Definition{
		Phrases: []Phrase{
			{"certificação em sustentabilidade ambiental", 10.0},
			{"estudo de impacto de vizinhança", 9.0},
			{"zoneamento especial de interesse social", 8.5},
			{"área de proteção ambiental", 8.0},
			{"plano diretor participativo", 7.5},
			{"desenvolvimento urbano sustentável", 7.0},
			{"política habitacional de interesse social", 6.5},
			{"sistema viário estrutural", 6.0},
			{"patrimônio histórico cultural", 5.5},
			{"área de preservação permanente", 8.5},
			{"coeficiente de aproveitamento", 5.0},
			{"taxa de ocupação", 4.5},
			{"índice de permeabilidade", 4.0},
			{"altura máxima", 7.5},
			{"gabarito máximo", 7.5},
			{"limite de altura", 7.0},
			{"elevação máxima", 6.5},
			{"altura da edificação", 6.0},
			{"altura do prédio", 6.0},
			{"metros de altura", 5.5},
			{"cota máxima", 5.5},
			{"nível máximo", 5.0},
			{"teto de altura", 5.0},
		},
		Patterns: []PatternSet{
			{keyword.LegalReference, []string{
				`lei\s+(?:complementar\s+)?n[º°]\s*\d+(?:[./]\d+)*(?:\s*de\s+\d{4})?`,
				`decreto\s+n[º°]\s*\d+(?:[./]\d+)*(?:\s*de\s+\d{4})?`,
				`resolução\s+n[º°]\s*\d+(?:[./]\d+)*(?:\s*de\s+\d{4})?`,
				`portaria\s+n[º°]\s*\d+(?:[./]\d+)*(?:\s*de\s+\d{4})?`,
			}},
			{keyword.ZOTReference, []string{
				`zot\s*\d+(?:\.\d+)?`,
				`zona\s+\d+(?:\.\d+)?`,
				`zoneamento\s+\d+(?:\.\d+)?`,
			}},
			{keyword.AnnexReference, []string{
				`anexo\s*\d+(?:\.\d+)?(?:\s*-\s*[\p{L}\p{N}_]+)?`,
				`apêndice\s*\d+(?:\.\d+)?`,
				`tabela\s*\d+(?:\.\d+)?`,
				`figura\s*\d+(?:\.\d+)?`,
				`mapa\s*\d+(?:\.\d+)?`,
			}},
			{keyword.DistrictReference, []string{
				`\d+[º°]\s*distrito`,
				`distrito\s+\d+`,
				`região\s+\d+`,
			}},
			{keyword.Environmental, []string{
				`área\s+de\s+proteção\s+ambiental`,
				`unidade\s+de\s+conservação`,
				`mata\s+atlântica`,
				`recursos\s+hídricos`,
				`saneamento\s+ambiental`,
				`impacto\s+ambiental`,
				`licenciamento\s+ambiental`,
				`estudo\s+de\s+impacto`,
				`relatório\s+de\s+impacto`,
			}},
		},
		Templates: []string{
			"lei complementar nº",
			"decreto nº",
			"zot 8.2",
			"4º distrito",
			"certificação em sustentabilidade ambiental",
			"estudo de impacto de vizinhança",
			"área de proteção ambiental",
			"coeficiente de aproveitamento",
			"taxa de ocupação",
		},
	}
}

// Default returns the compiled built-in taxonomy.
func Default() *Taxonomy {
	return MustNew(DefaultDefinition())
}
