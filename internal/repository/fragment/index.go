package fragment

import (
	"github.com/kailas-cloud/plandex/internal/db"
	"github.com/kailas-cloud/plandex/internal/domain"
)

// IndexConfig controls the vector field of the fragment index.
type IndexConfig struct {
	VectorDim   int
	Algorithm   db.VectorAlgorithm // HNSW (default) or FLAT
	M           int
	EFConstruct int
}

func keyPrefix() string { return domain.KeyPrefix + "frag:" }

func indexName() string { return domain.KeyPrefix + "frag:idx" }

// buildIndex describes the fragment index. Stopwords are disabled so
// Portuguese function words ("de", "da") stay searchable inside phrases.
func buildIndex(cfg IndexConfig) (*db.IndexDefinition, error) {
	b := db.NewIndex(indexName()).
		Prefix(keyPrefix()).
		NoStopWords().
		Text(fieldContent).
		Tag(fieldDocumentID).
		NumericSortable(fieldIndex).
		NumericSortable(fieldPriority).
		Numeric(fieldLegalCount).
		Tag(fieldHasComposite)

	if cfg.Algorithm == db.VectorFlat {
		b = b.VectorFlat(fieldVector, cfg.VectorDim, db.DistanceCosine, 0)
	} else {
		b = b.VectorHNSW(fieldVector, cfg.VectorDim, db.DistanceCosine, cfg.M, cfg.EFConstruct)
	}
	return b.Build()
}
