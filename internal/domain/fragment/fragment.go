package fragment

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/kailas-cloud/plandex/internal/domain/keyword"
)

var documentIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// MaxContentSize is the maximum fragment content size in bytes.
const MaxContentSize = 16384

// Key is the stable identity of a fragment inside the document store.
type Key struct {
	DocumentID string
	Index      int
}

// String renders the key as "document:index".
func (k Key) String() string {
	return k.DocumentID + ":" + strconv.Itoa(k.Index)
}

// Annotation is the derived keyword metadata attached to a fragment.
// It is a pure function of the fragment text and the taxonomy version.
type Annotation struct {
	keywords            []keyword.Keyword
	priorityScore       float64
	hasComposite        bool
	legalReferenceCount int
	taxonomyVersion     string
}

// NewAnnotation creates an annotation from already scored keywords.
func NewAnnotation(
	kws []keyword.Keyword, priorityScore float64,
	hasComposite bool, legalReferenceCount int, taxonomyVersion string,
) Annotation {
	if priorityScore < 0 {
		priorityScore = 0
	}
	return Annotation{
		keywords:            kws,
		priorityScore:       priorityScore,
		hasComposite:        hasComposite,
		legalReferenceCount: legalReferenceCount,
		taxonomyVersion:     taxonomyVersion,
	}
}

// Keywords returns the resolved, position-ordered keyword list.
func (a Annotation) Keywords() []keyword.Keyword { return a.keywords }

// PriorityScore returns the mean weighted keyword confidence.
func (a Annotation) PriorityScore() float64 { return a.priorityScore }

// HasComposite reports whether any curated composite phrase was detected.
func (a Annotation) HasComposite() bool { return a.hasComposite }

// LegalReferenceCount returns the number of legal citations detected.
func (a Annotation) LegalReferenceCount() int { return a.legalReferenceCount }

// TaxonomyVersion identifies the taxonomy the annotation was computed with.
func (a Annotation) TaxonomyVersion() string { return a.taxonomyVersion }

// Fragment is a bounded-length slice of a source document.
type Fragment struct {
	key        Key
	content    string
	annotation Annotation
}

// ValidateDocumentID checks a document identifier. Valid IDs never contain
// key pattern metacharacters, so they are safe inside store key patterns.
func ValidateDocumentID(documentID string) error {
	if documentID == "" {
		return fmt.Errorf("document ID is required")
	}
	if len(documentID) > 256 {
		return fmt.Errorf("document ID too long (max 256)")
	}
	if !documentIDRegex.MatchString(documentID) {
		return fmt.Errorf("document ID must be alphanumeric with dots, underscores and hyphens")
	}
	return nil
}

// New validates and creates a fragment without annotation.
func New(documentID string, index int, content string) (Fragment, error) {
	if err := ValidateDocumentID(documentID); err != nil {
		return Fragment{}, err
	}
	if index < 0 {
		return Fragment{}, fmt.Errorf("fragment index must be non-negative, got %d", index)
	}
	if len(content) > MaxContentSize {
		return Fragment{}, fmt.Errorf("fragment too large (max %d bytes)", MaxContentSize)
	}
	return Fragment{key: Key{DocumentID: documentID, Index: index}, content: content}, nil
}

// Reconstruct creates a Fragment without validation (storage hydration).
func Reconstruct(key Key, content string, annotation Annotation) Fragment {
	return Fragment{key: key, content: content, annotation: annotation}
}

// Key returns the fragment identity.
func (f Fragment) Key() Key { return f.key }

// DocumentID returns the owning document identifier.
func (f Fragment) DocumentID() string { return f.key.DocumentID }

// Index returns the sequence index of the fragment inside its document.
func (f Fragment) Index() int { return f.key.Index }

// Content returns the fragment text.
func (f Fragment) Content() string { return f.content }

// Annotation returns the derived keyword metadata.
func (f Fragment) Annotation() Annotation { return f.annotation }

// WithAnnotation returns a copy of f carrying a.
func (f Fragment) WithAnnotation(a Annotation) Fragment {
	f.annotation = a
	return f
}

// Embedded pairs a fragment with its embedding vector for storage.
type Embedded struct {
	Fragment Fragment
	Vector   []float32
}
