package analyze

import domkw "github.com/kailas-cloud/plandex/internal/domain/keyword"

// Detector extracts resolved keywords from text.
type Detector interface {
	Detect(text string) []domkw.Keyword
}
