package chi

import (
	dombatch "github.com/kailas-cloud/plandex/internal/domain/batch"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	domkw "github.com/kailas-cloud/plandex/internal/domain/keyword"
	"github.com/kailas-cloud/plandex/internal/domain/search/analysis"
	"github.com/kailas-cloud/plandex/internal/domain/search/result"
	kwuc "github.com/kailas-cloud/plandex/internal/usecase/keyword"
)

// SearchRequest is the body of POST /v1/search and POST /v1/context.
type SearchRequest struct {
	Query        string   `json:"query"`
	DocumentIDs  []string `json:"document_ids,omitempty"`
	Limit        *int     `json:"limit,omitempty"`
	MaxFragments *int     `json:"max_fragments,omitempty"`
}

// LegalSearchRequest is the body of POST /v1/search/legal.
type LegalSearchRequest struct {
	Reference   string   `json:"reference"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

// ZOTSearchRequest is the body of POST /v1/search/zot.
type ZOTSearchRequest struct {
	ZOT         string   `json:"zot"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

// TextRequest carries free text to analyze or annotate.
type TextRequest struct {
	Query string `json:"query,omitempty"`
	Text  string `json:"text,omitempty"`
}

// ReplaceFragmentsRequest is the body of PUT /v1/documents/{document}/fragments.
type ReplaceFragmentsRequest struct {
	Fragments []string `json:"fragments"`
}

// ReplaceTextRequest is the body of PUT /v1/documents/{document}/text.
type ReplaceTextRequest struct {
	Text string `json:"text"`
}

// FilterRequest is the body of POST /v1/documents/{document}/filter.
type FilterRequest struct {
	Query string `json:"query"`
	Top   int    `json:"top,omitempty"`
}

// ErrorResponse is the error envelope of every failing request.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type keywordResponse struct {
	Text       string         `json:"text"`
	Category   domkw.Category `json:"category"`
	Position   int            `json:"position"`
	Length     int            `json:"length"`
	Confidence float64        `json:"confidence"`
	Context    string         `json:"context"`
}

type analysisResponse struct {
	Query      string            `json:"query"`
	Keywords   []keywordResponse `json:"keywords"`
	Categories []domkw.Category  `json:"categories"`
	Strategy   analysis.Strategy `json:"strategy"`
}

type annotationResponse struct {
	Keywords            []keywordResponse `json:"keywords"`
	PriorityScore       float64           `json:"priority_score"`
	HasComposite        bool              `json:"has_composite"`
	LegalReferenceCount int               `json:"legal_reference_count"`
	TaxonomyVersion     string            `json:"taxonomy_version"`
}

type fragmentResponse struct {
	DocumentID string             `json:"document_id"`
	Index      int                `json:"index"`
	Content    string             `json:"content"`
	Annotation annotationResponse `json:"annotation"`
}

type resultResponse struct {
	fragmentResponse
	SimilarityScore float64 `json:"similarity_score"`
	KeywordScore    float64 `json:"keyword_score"`
	CombinedScore   float64 `json:"combined_score"`
}

type searchResponse struct {
	Analysis analysisResponse `json:"analysis"`
	Results  []resultResponse `json:"results"`
	Degraded []string         `json:"degraded,omitempty"`
}

type resultListResponse struct {
	Results []resultResponse `json:"results"`
}

type contextResponse struct {
	Fragments []string `json:"fragments"`
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

type fragmentListResponse struct {
	Fragments []fragmentResponse `json:"fragments"`
}

type summaryResponse struct {
	DocumentID            string         `json:"document_id"`
	Fragments             int            `json:"fragments"`
	TotalKeywords         int            `json:"total_keywords"`
	ByCategory            map[string]int `json:"by_category"`
	TopComposite          []string       `json:"top_composite"`
	LegalReferences       []string       `json:"legal_references"`
	HighPriorityFragments int            `json:"high_priority_fragments"`
	AveragePriority       float64        `json:"average_priority"`
}

type replaceItemResponse struct {
	Index         int            `json:"index"`
	Status        string         `json:"status"`
	PriorityScore float64        `json:"priority_score,omitempty"`
	KeywordCount  int            `json:"keyword_count,omitempty"`
	Error         *ErrorResponse `json:"error,omitempty"`
}

type replaceResponse struct {
	DocumentID string                `json:"document_id"`
	Succeeded  int                   `json:"succeeded"`
	Failed     int                   `json:"failed"`
	Items      []replaceItemResponse `json:"items"`
}

type reannotateResponse struct {
	DocumentID string `json:"document_id"`
	Updated    int    `json:"updated"`
}

type usageResponse struct {
	Period          string `json:"period"`
	PeriodStart     int64  `json:"period_start"` // unix millis
	PeriodEnd       int64  `json:"period_end"`
	TokensUsed      int64  `json:"tokens_used"`
	TokensLimit     int64  `json:"tokens_limit"`
	TokensRemaining int64  `json:"tokens_remaining"`
	Exhausted       bool   `json:"exhausted"`
}

type healthResponse struct {
	Status          string            `json:"status"`
	Checks          map[string]string `json:"checks"`
	TaxonomyVersion string            `json:"taxonomy_version"`
}

func keywordsToResponse(kws []domkw.Keyword) []keywordResponse {
	out := make([]keywordResponse, len(kws))
	for i, k := range kws {
		out[i] = keywordResponse{
			Text:       k.Text(),
			Category:   k.Category(),
			Position:   k.Position(),
			Length:     k.Length(),
			Confidence: k.Confidence(),
			Context:    k.Context(),
		}
	}
	return out
}

func analysisToResponse(a *analysis.Analysis) analysisResponse {
	cats := a.Categories()
	if cats == nil {
		cats = []domkw.Category{}
	}
	return analysisResponse{
		Query:      a.Query(),
		Keywords:   keywordsToResponse(a.Keywords()),
		Categories: cats,
		Strategy:   a.Strategy(),
	}
}

func annotationToResponse(a fragment.Annotation) annotationResponse {
	return annotationResponse{
		Keywords:            keywordsToResponse(a.Keywords()),
		PriorityScore:       a.PriorityScore(),
		HasComposite:        a.HasComposite(),
		LegalReferenceCount: a.LegalReferenceCount(),
		TaxonomyVersion:     a.TaxonomyVersion(),
	}
}

func fragmentToResponse(f fragment.Fragment) fragmentResponse {
	return fragmentResponse{
		DocumentID: f.DocumentID(),
		Index:      f.Index(),
		Content:    f.Content(),
		Annotation: annotationToResponse(f.Annotation()),
	}
}

func fragmentsToResponse(frs []fragment.Fragment) fragmentListResponse {
	out := make([]fragmentResponse, len(frs))
	for i, f := range frs {
		out[i] = fragmentToResponse(f)
	}
	return fragmentListResponse{Fragments: out}
}

func resultsToResponse(rs []result.Result) []resultResponse {
	out := make([]resultResponse, len(rs))
	for i := range rs {
		r := &rs[i]
		out[i] = resultResponse{
			fragmentResponse: fragmentToResponse(r.Fragment()),
			SimilarityScore:  r.SimilarityScore(),
			KeywordScore:     r.KeywordScore(),
			CombinedScore:    r.CombinedScore(),
		}
	}
	return out
}

func summaryToResponse(documentID string, fragments int, s *kwuc.Summary) summaryResponse {
	byCategory := make(map[string]int, len(s.ByCategory))
	for c, n := range s.ByCategory {
		byCategory[c.String()] = n
	}
	return summaryResponse{
		DocumentID:            documentID,
		Fragments:             fragments,
		TotalKeywords:         s.TotalKeywords,
		ByCategory:            byCategory,
		TopComposite:          nonNil(s.TopComposite),
		LegalReferences:       nonNil(s.LegalReferences),
		HighPriorityFragments: s.HighPriorityFragments,
		AveragePriority:       s.AveragePriority,
	}
}

func replaceResultsToResponse(documentID string, results []dombatch.Result) replaceResponse {
	items := make([]replaceItemResponse, len(results))
	for i, r := range results {
		item := replaceItemResponse{
			Index:         r.Key().Index,
			Status:        string(r.Status()),
			PriorityScore: r.PriorityScore(),
			KeywordCount:  r.KeywordCount(),
		}
		if r.Err() != nil {
			item.Error = &ErrorResponse{Code: errorCode(r.Err()), Message: safeDomainMessage(r.Err())}
		}
		items[i] = item
	}
	succeeded, failed := dombatch.Count(results)
	return replaceResponse{DocumentID: documentID, Succeeded: succeeded, Failed: failed, Items: items}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
