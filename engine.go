// Package plandex detects urban-planning keywords in text, scores document
// fragments, classifies queries and fuses semantic and keyword rankings.
//
// The Engine is the in-process API. It needs no store or embedding provider:
// callers bring their own candidate fragments.
package plandex

import (
	"fmt"

	"github.com/kailas-cloud/plandex/internal/config"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	domkw "github.com/kailas-cloud/plandex/internal/domain/keyword"
	"github.com/kailas-cloud/plandex/internal/domain/search/result"
	analyzeuc "github.com/kailas-cloud/plandex/internal/usecase/analyze"
	kwuc "github.com/kailas-cloud/plandex/internal/usecase/keyword"
	searchuc "github.com/kailas-cloud/plandex/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/plandex/internal/usecase/suggest"
)

const defaultCacheSize = 256

// Engine is safe for concurrent use.
type Engine struct {
	detector  *kwuc.Detector
	analyzer  *analyzeuc.Service
	suggester *suggestuc.Service
}

// New creates an Engine. An invalid taxonomy file fails construction.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{cacheSize: defaultCacheSize}
	for _, o := range opts {
		o.apply(cfg)
	}

	tax, err := config.LoadTaxonomy(config.TaxonomyConfig{File: cfg.taxonomyFile})
	if err != nil {
		return nil, fmt.Errorf("plandex: %w", err)
	}

	detector := kwuc.NewDetector(tax)
	analyzer, err := analyzeuc.New(detector, cfg.cacheSize, nil)
	if err != nil {
		return nil, fmt.Errorf("plandex: analyzer: %w", err)
	}

	return &Engine{
		detector:  detector,
		analyzer:  analyzer,
		suggester: suggestuc.New(tax),
	}, nil
}

// TaxonomyVersion identifies the taxonomy the Engine annotates with.
func (e *Engine) TaxonomyVersion() string { return e.detector.Taxonomy().Version() }

// DetectKeywords returns the non-overlapping keywords of text in position order.
func (e *Engine) DetectKeywords(text string) []Keyword {
	return keywordsFromDomain(e.detector.Detect(text))
}

// ScoreFragment computes the priority annotation of a fragment from its keywords.
// Keywords with an unknown category contribute with the default weight.
func (e *Engine) ScoreFragment(kws []Keyword) Score {
	return scoreFromDomain(e.detector.Score(keywordsToDomain(kws)))
}

// AnalyzeQuery detects the keywords of query and picks a retrieval strategy.
func (e *Engine) AnalyzeQuery(query string) Analysis {
	a := e.analyzer.Analyze(query)
	cats := a.Categories()
	out := Analysis{
		Keywords:   keywordsFromDomain(a.Keywords()),
		Categories: make([]Category, len(cats)),
		Strategy:   Strategy(a.Strategy()),
	}
	for i, c := range cats {
		out.Categories[i] = Category(c.String())
	}
	return out
}

// RankFragments fuses semantic and keyword candidates for query into at most
// limit results, best first. Candidates are annotated on the fly.
func (e *Engine) RankFragments(query string, semantic []SemanticHit, keyword []Fragment, limit int) []RankedFragment {
	a := e.analyzer.Analyze(query)

	cands := make([]result.Candidate, len(semantic))
	for i, h := range semantic {
		cands[i] = result.Candidate{Fragment: e.annotate(h.Fragment), Similarity: h.Similarity}
	}
	hits := make([]fragment.Fragment, len(keyword))
	for i, f := range keyword {
		hits[i] = e.annotate(f)
	}

	fused := searchuc.Fuse(cands, hits, a.Keywords(), limit)
	out := make([]RankedFragment, len(fused))
	for i := range fused {
		r := &fused[i]
		f := r.Fragment()
		out[i] = RankedFragment{
			Fragment:        Fragment{DocumentID: f.DocumentID(), Index: f.Index(), Content: f.Content()},
			Score:           scoreFromDomain(f.Annotation()),
			SimilarityScore: r.SimilarityScore(),
			KeywordScore:    r.KeywordScore(),
			CombinedScore:   r.CombinedScore(),
		}
	}
	return out
}

// Suggest returns up to 10 completions for a partial query of at least 3 characters.
func (e *Engine) Suggest(partial string) []string {
	return e.suggester.Suggest(partial)
}

// Annotate detects and scores the keywords of each fragment.
func (e *Engine) Annotate(frs []Fragment) []AnnotatedFragment {
	out := make([]AnnotatedFragment, len(frs))
	for i, f := range frs {
		out[i] = AnnotatedFragment{Fragment: f, Score: scoreFromDomain(e.annotate(f).Annotation())}
	}
	return out
}

// Summarize aggregates the annotations of frs.
func (e *Engine) Summarize(frs []AnnotatedFragment) Summary {
	domFrs := make([]fragment.Fragment, len(frs))
	for i, f := range frs {
		domFrs[i] = e.reconstruct(fragment.Key{DocumentID: f.Fragment.DocumentID, Index: f.Fragment.Index}, f)
	}
	s := kwuc.Summarize(domFrs)
	out := Summary{
		TotalKeywords:         s.TotalKeywords,
		ByCategory:            make(map[Category]int, len(s.ByCategory)),
		TopComposite:          s.TopComposite,
		LegalReferences:       s.LegalReferences,
		HighPriorityFragments: s.HighPriorityFragments,
		AveragePriority:       s.AveragePriority,
	}
	for c, n := range s.ByCategory {
		out.ByCategory[Category(c.String())] = n
	}
	return out
}

// Filter keeps at most top fragments relevant to query, highest priority
// first. A non-positive top selects 10. Fragments are tracked by position, so
// inputs sharing a (DocumentID, Index) pair are kept apart.
func (e *Engine) Filter(frs []AnnotatedFragment, query string, top int) []AnnotatedFragment {
	positional := make([]fragment.Fragment, len(frs))
	for i, f := range frs {
		positional[i] = e.reconstruct(fragment.Key{Index: i}, f)
	}
	kept := e.detector.FilterByQuery(positional, query, top)
	out := make([]AnnotatedFragment, len(kept))
	for i, f := range kept {
		out[i] = frs[f.Index()]
	}
	return out
}

func (e *Engine) reconstruct(key fragment.Key, f AnnotatedFragment) fragment.Fragment {
	s := f.Score
	ann := fragment.NewAnnotation(keywordsToDomain(s.Keywords), s.PriorityScore, s.HasComposite,
		s.LegalReferenceCount, e.TaxonomyVersion())
	return fragment.Reconstruct(key, f.Fragment.Content, ann)
}

func (e *Engine) annotate(f Fragment) fragment.Fragment {
	key := fragment.Key{DocumentID: f.DocumentID, Index: f.Index}
	return fragment.Reconstruct(key, f.Content, e.detector.Annotate(f.Content))
}

func keywordsFromDomain(kws []domkw.Keyword) []Keyword {
	out := make([]Keyword, len(kws))
	for i, k := range kws {
		out[i] = Keyword{
			Text:       k.Text(),
			Category:   Category(k.Category().String()),
			Position:   k.Position(),
			Length:     k.Length(),
			Confidence: k.Confidence(),
			Context:    k.Context(),
		}
	}
	return out
}

func keywordsToDomain(kws []Keyword) []domkw.Keyword {
	out := make([]domkw.Keyword, len(kws))
	for i, k := range kws {
		// An unknown name leaves the zero category, scored with the default weight.
		c, _ := domkw.ParseCategory(string(k.Category))
		out[i] = domkw.New(k.Text, c, k.Position, k.Length, k.Confidence, k.Context)
	}
	return out
}

func scoreFromDomain(a fragment.Annotation) Score {
	return Score{
		Keywords:            keywordsFromDomain(a.Keywords()),
		PriorityScore:       a.PriorityScore(),
		HasComposite:        a.HasComposite(),
		LegalReferenceCount: a.LegalReferenceCount(),
	}
}
