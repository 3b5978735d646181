package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plandex/internal/chunker"
	"github.com/kailas-cloud/plandex/internal/domain"
	dombatch "github.com/kailas-cloud/plandex/internal/domain/batch"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	"github.com/kailas-cloud/plandex/internal/domain/search/request"
	"github.com/kailas-cloud/plandex/internal/domain/search/result"
	"github.com/kailas-cloud/plandex/internal/domain/taxonomy"
	analyzeuc "github.com/kailas-cloud/plandex/internal/usecase/analyze"
	healthuc "github.com/kailas-cloud/plandex/internal/usecase/health"
	kwuc "github.com/kailas-cloud/plandex/internal/usecase/keyword"
	searchuc "github.com/kailas-cloud/plandex/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/plandex/internal/usecase/suggest"
	usageuc "github.com/kailas-cloud/plandex/internal/usecase/usage"
)

type mockSearcher struct {
	searchFn  func(ctx context.Context, req *request.Request) (searchuc.Response, error)
	legalFn   func(ctx context.Context, ref string, ids []string) ([]result.Result, error)
	zotFn     func(ctx context.Context, zot string, ids []string) ([]result.Result, error)
	contextFn func(ctx context.Context, req *request.Request) ([]string, error)
}

func (m *mockSearcher) Search(ctx context.Context, req *request.Request) (searchuc.Response, error) {
	return m.searchFn(ctx, req)
}

func (m *mockSearcher) SearchByLegalReference(ctx context.Context, ref string, ids []string) ([]result.Result, error) {
	return m.legalFn(ctx, ref, ids)
}

func (m *mockSearcher) SearchByZOT(ctx context.Context, zot string, ids []string) ([]result.Result, error) {
	return m.zotFn(ctx, zot, ids)
}

func (m *mockSearcher) RetrieveContext(ctx context.Context, req *request.Request) ([]string, error) {
	return m.contextFn(ctx, req)
}

type mockIngester struct {
	replaceFn    func(ctx context.Context, documentID string, texts []string) []dombatch.Result
	reannotateFn func(ctx context.Context, documentID string) (int, error)
	deleteFn     func(ctx context.Context, documentID string) error
}

func (m *mockIngester) Replace(ctx context.Context, documentID string, texts []string) []dombatch.Result {
	return m.replaceFn(ctx, documentID, texts)
}

func (m *mockIngester) Reannotate(ctx context.Context, documentID string) (int, error) {
	return m.reannotateFn(ctx, documentID)
}

func (m *mockIngester) Delete(ctx context.Context, documentID string) error {
	return m.deleteFn(ctx, documentID)
}

type mockDocuments struct {
	fragmentFn func(ctx context.Context, key fragment.Key) (fragment.Fragment, error)
	summaryFn  func(ctx context.Context, documentID string) (kwuc.Summary, int, error)
	priorityFn func(ctx context.Context, documentID string, top int) ([]fragment.Fragment, error)
	filterFn   func(ctx context.Context, documentID, query string, top int) ([]fragment.Fragment, error)
}

func (m *mockDocuments) Fragment(ctx context.Context, key fragment.Key) (fragment.Fragment, error) {
	return m.fragmentFn(ctx, key)
}

func (m *mockDocuments) Summary(ctx context.Context, documentID string) (kwuc.Summary, int, error) {
	return m.summaryFn(ctx, documentID)
}

func (m *mockDocuments) Priority(ctx context.Context, documentID string, top int) ([]fragment.Fragment, error) {
	return m.priorityFn(ctx, documentID, top)
}

func (m *mockDocuments) Filter(ctx context.Context, documentID, query string, top int) ([]fragment.Fragment, error) {
	return m.filterFn(ctx, documentID, query, top)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

var testDetector = kwuc.NewDetector(taxonomy.MustNew(taxonomy.DefaultDefinition()))

// newTestHandler wires deps over the real keyword stack; nil services are
// replaced by fakes that fail the test when called.
func newTestHandler(t *testing.T, deps Deps) http.Handler {
	t.Helper()

	analyzer, err := analyzeuc.New(testDetector, 16, nil)
	if err != nil {
		t.Fatalf("analyzer: %v", err)
	}
	if deps.Analyzer == nil {
		deps.Analyzer = analyzer
	}
	if deps.Detector == nil {
		deps.Detector = testDetector
	}
	if deps.Suggester == nil {
		deps.Suggester = suggestuc.New(testDetector.Taxonomy())
	}
	if deps.Splitter == nil {
		deps.Splitter = chunker.New(60, 0)
	}
	if deps.Health == nil {
		deps.Health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}

	s := NewServer(deps, Limits{DefaultLimit: 10, MaxLimit: 50, ContextFragments: 5}, zap.NewNop())
	return NewRouter(s, zap.NewNop())
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func annotated(t *testing.T, documentID string, index int, content string) fragment.Fragment {
	t.Helper()
	f, err := fragment.New(documentID, index, content)
	if err != nil {
		t.Fatalf("fragment.New: %v", err)
	}
	return testDetector.AnnotateFragment(f)
}

func withUsage(ctx context.Context, tokens int) {
	domain.UsageFromContext(ctx).AddTokens(tokens)
}

type mockUsage struct {
	reportFn func(ctx context.Context, period usageuc.Period) usageuc.Report
}

func (m *mockUsage) GetReport(ctx context.Context, period usageuc.Period) usageuc.Report {
	return m.reportFn(ctx, period)
}
