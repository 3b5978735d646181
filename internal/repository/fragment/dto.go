package fragment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	domfrag "github.com/kailas-cloud/plandex/internal/domain/fragment"
	domkw "github.com/kailas-cloud/plandex/internal/domain/keyword"
)

// Hash field names.
const (
	fieldContent         = "content"
	fieldDocumentID      = "document_id"
	fieldIndex           = "fragment_index"
	fieldPriority        = "priority_score"
	fieldLegalCount      = "legal_reference_count"
	fieldHasComposite    = "has_composite"
	fieldKeywords        = "keywords"
	fieldTaxonomyVersion = "taxonomy_version"
	fieldVector          = "vector"
)

// returnFields is every stored field except the vector blob.
var returnFields = []string{
	fieldContent, fieldDocumentID, fieldIndex, fieldPriority,
	fieldLegalCount, fieldHasComposite, fieldKeywords, fieldTaxonomyVersion,
}

type keywordDTO struct {
	Text       string         `json:"text"`
	Category   domkw.Category `json:"category"`
	Position   int            `json:"position"`
	Length     int            `json:"length"`
	Confidence float64        `json:"confidence"`
	Context    string         `json:"context,omitempty"`
}

// buildHashFields flattens a fragment and its vector for HSET.
// A nil vector leaves the stored vector untouched.
func buildHashFields(f domfrag.Fragment, vector []float32) (map[string]string, error) {
	m, err := annotationFields(f.Annotation())
	if err != nil {
		return nil, err
	}
	m[fieldContent] = f.Content()
	m[fieldDocumentID] = f.DocumentID()
	m[fieldIndex] = strconv.Itoa(f.Index())
	if vector != nil {
		m[fieldVector] = vectorToBytes(vector)
	}
	return m, nil
}

// annotationFields holds only the derived fields, so re-annotation never rewrites content.
func annotationFields(a domfrag.Annotation) (map[string]string, error) {
	kws := make([]keywordDTO, len(a.Keywords()))
	for i, k := range a.Keywords() {
		kws[i] = keywordDTO{
			Text:       k.Text(),
			Category:   k.Category(),
			Position:   k.Position(),
			Length:     k.Length(),
			Confidence: k.Confidence(),
			Context:    k.Context(),
		}
	}
	data, err := json.Marshal(kws)
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}

	hasComposite := "0"
	if a.HasComposite() {
		hasComposite = "1"
	}
	return map[string]string{
		fieldPriority:        strconv.FormatFloat(a.PriorityScore(), 'f', -1, 64),
		fieldLegalCount:      strconv.Itoa(a.LegalReferenceCount()),
		fieldHasComposite:    hasComposite,
		fieldKeywords:        string(data),
		fieldTaxonomyVersion: a.TaxonomyVersion(),
	}, nil
}

// parseHashFields rebuilds a fragment from a stored hash.
func parseHashFields(m map[string]string) (domfrag.Fragment, error) {
	docID := m[fieldDocumentID]
	if docID == "" {
		return domfrag.Fragment{}, fmt.Errorf("missing %s", fieldDocumentID)
	}
	idx, err := strconv.Atoi(m[fieldIndex])
	if err != nil {
		return domfrag.Fragment{}, fmt.Errorf("parse %s: %w", fieldIndex, err)
	}

	var kws []keywordDTO
	if raw := m[fieldKeywords]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &kws); err != nil {
			return domfrag.Fragment{}, fmt.Errorf("unmarshal keywords: %w", err)
		}
	}
	keywords := make([]domkw.Keyword, len(kws))
	for i, k := range kws {
		keywords[i] = domkw.New(k.Text, k.Category, k.Position, k.Length, k.Confidence, k.Context)
	}

	priority, _ := strconv.ParseFloat(m[fieldPriority], 64)
	legal, _ := strconv.Atoi(m[fieldLegalCount])

	annotation := domfrag.NewAnnotation(
		keywords, priority, m[fieldHasComposite] == "1", legal, m[fieldTaxonomyVersion],
	)
	return domfrag.Reconstruct(domfrag.Key{DocumentID: docID, Index: idx}, m[fieldContent], annotation), nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
