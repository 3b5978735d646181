package keyword

import (
	"slices"

	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	domkw "github.com/kailas-cloud/plandex/internal/domain/keyword"
)

// Score computes the annotation of an already resolved keyword list.
// The priority score is the mean weighted confidence; an empty list scores 0.
func (d *Detector) Score(kws []domkw.Keyword) fragment.Annotation {
	contributions := make([]float64, 0, len(kws))
	hasComposite := false
	legal := 0
	for _, k := range kws {
		contributions = append(contributions, k.Confidence()*k.Category().PriorityWeight())
		switch k.Category() {
		case domkw.Composite:
			hasComposite = true
		case domkw.LegalReference:
			legal++
		}
	}

	// Summed in sorted order so the result does not depend on keyword order.
	slices.Sort(contributions)
	var sum float64
	for _, c := range contributions {
		sum += c
	}
	priority := sum / float64(max(1, len(kws)))

	return fragment.NewAnnotation(kws, priority, hasComposite, legal, d.tax.Version())
}

// Annotate detects and scores text in one step.
func (d *Detector) Annotate(text string) fragment.Annotation {
	return d.Score(d.Detect(text))
}

// AnnotateFragment returns f carrying a fresh annotation of its content.
func (d *Detector) AnnotateFragment(f fragment.Fragment) fragment.Fragment {
	return f.WithAnnotation(d.Annotate(f.Content()))
}

// IsStale reports whether f was annotated with a different taxonomy.
func (d *Detector) IsStale(f fragment.Fragment) bool {
	return f.Annotation().TaxonomyVersion() != d.tax.Version()
}
