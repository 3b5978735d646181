package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/plandex/internal/domain"
	dombatch "github.com/kailas-cloud/plandex/internal/domain/batch"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	"github.com/kailas-cloud/plandex/internal/domain/taxonomy"
	"github.com/kailas-cloud/plandex/internal/usecase/keyword"
)

func TestReplace_AnnotatesEmbedsAndStores(t *testing.T) {
	svc, repo, emb := newTestService(t)
	ctx, usage := domain.NewContextWithUsage(context.Background())

	texts := []string{
		"A altura máxima na ZOT 8 segue a Lei Complementar nº 434/1999.",
		"Texto sem termos do domínio.",
	}
	results := svc.Replace(ctx, "pdus", texts)

	ok, failed := dombatch.Count(results)
	if ok != 2 || failed != 0 {
		t.Fatalf("ok=%d failed=%d: %+v", ok, failed, results)
	}
	if emb.batchCalls != 1 {
		t.Errorf("expected one batch embedding call, got %d", emb.batchCalls)
	}
	if usage.TotalTokens != 4 {
		t.Errorf("usage tokens = %d, want 4", usage.TotalTokens)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "pdus" {
		t.Errorf("expected previous fragments to be deleted, got %v", repo.deleted)
	}
	if len(repo.upserted) != 2 {
		t.Fatalf("expected 2 stored fragments, got %d", len(repo.upserted))
	}

	first := repo.upserted[0].Fragment
	if first.Index() != 0 || !first.Annotation().HasComposite() || first.Annotation().LegalReferenceCount() != 1 {
		t.Errorf("unexpected annotation: %+v", first.Annotation())
	}
	if results[0].PriorityScore() <= 1.0 || results[0].KeywordCount() < 3 {
		t.Errorf("result summary: priority=%v keywords=%d", results[0].PriorityScore(), results[0].KeywordCount())
	}
	if results[1].PriorityScore() != 0 || results[1].KeywordCount() != 0 {
		t.Errorf("plain text must score 0, got %v", results[1].PriorityScore())
	}
}

func TestReplace_PreservesOrderUnderConcurrency(t *testing.T) {
	svc, repo, _ := newTestService(t)

	texts := make([]string, 200)
	for i := range texts {
		texts[i] = fmt.Sprintf("Fragmento %d da ZOT %d", i, i%10)
	}
	results := svc.Replace(context.Background(), "pdus", texts)

	for i, r := range results {
		if r.Status() != dombatch.StatusOK || r.Key().Index != i {
			t.Fatalf("result %d: %+v", i, r)
		}
	}
	for i, it := range repo.upserted {
		if it.Fragment.Index() != i || it.Fragment.Content() != texts[i] {
			t.Fatalf("fragment %d out of order: %s", i, it.Fragment.Key())
		}
	}
}

func TestReplace_InvalidFragmentFailsAlone(t *testing.T) {
	svc, repo, _ := newTestService(t)

	huge := make([]byte, fragment.MaxContentSize+1)
	for i := range huge {
		huge[i] = 'a'
	}
	results := svc.Replace(context.Background(), "pdus", []string{"ok", string(huge), "ok"})

	if results[1].Status() != dombatch.StatusError || !errors.Is(results[1].Err(), domain.ErrInvalidFragment) {
		t.Errorf("expected invalid fragment error, got %+v", results[1])
	}
	if results[0].Status() != dombatch.StatusOK || results[2].Status() != dombatch.StatusOK {
		t.Errorf("valid fragments must succeed: %+v", results)
	}
	if len(repo.upserted) != 2 {
		t.Errorf("expected 2 stored fragments, got %d", len(repo.upserted))
	}
}

func TestReplace_EmbeddingFailureKeepsPreviousFragments(t *testing.T) {
	svc, repo, emb := newTestService(t)
	emb.err = domain.ErrUpstreamUnavailable

	results := svc.Replace(context.Background(), "pdus", []string{"a", "b"})

	for _, r := range results {
		if !errors.Is(r.Err(), domain.ErrUpstreamUnavailable) {
			t.Fatalf("expected upstream error, got %v", r.Err())
		}
	}
	if len(repo.deleted) != 0 {
		t.Error("previous fragments must survive a failed upload")
	}
}

func TestReplace_StoreFailure(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.upsertErr = errors.New("connection reset")

	results := svc.Replace(context.Background(), "pdus", []string{"a"})
	if results[0].Status() != dombatch.StatusError {
		t.Fatalf("expected error, got %+v", results[0])
	}
}

func TestReplace_TooManyFragments(t *testing.T) {
	svc, repo, _ := newTestService(t)
	svc.WithMaxFragments(2)

	results := svc.Replace(context.Background(), "pdus", []string{"a", "b", "c"})
	if _, failed := dombatch.Count(results); failed != 3 {
		t.Fatalf("expected every fragment to fail, got %+v", results)
	}
	if len(repo.upserted) != 0 {
		t.Error("nothing must be stored")
	}
}

func TestReplace_CanceledContext(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := svc.Replace(ctx, "pdus", []string{"a", "b"})
	if !errors.Is(results[0].Err(), context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", results[0].Err())
	}
	if len(repo.upserted) != 0 {
		t.Error("nothing must be stored")
	}
}

func TestReannotate_OnlyStale(t *testing.T) {
	svc, repo, _ := newTestService(t)
	det := keyword.NewDetector(taxonomy.Default())

	current := det.AnnotateFragment(mustFragment(t, 0, "altura máxima"))
	stale := mustFragment(t, 1, "ZOT 8").WithAnnotation(
		fragment.NewAnnotation(nil, 0, false, 0, "old-version"),
	)
	repo.stored = []fragment.Fragment{current, stale}

	n, err := svc.Reannotate(context.Background(), "pdus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || len(repo.updated) != 1 {
		t.Fatalf("updated %d (%d)", n, len(repo.updated))
	}
	if repo.updated[0].Index() != 1 || len(repo.updated[0].Annotation().Keywords()) != 1 {
		t.Errorf("unexpected re-annotation: %+v", repo.updated[0].Annotation())
	}
}

func TestReannotate_MissingDocument(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Reannotate(context.Background(), "nada"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newTestService(t)

	if err := svc.Delete(context.Background(), "pdus"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound for empty document, got %v", err)
	}
	repo.deleteN = 3
	if err := svc.Delete(context.Background(), "pdus"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnnotator_CountsFragments(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_annotated_total"}, []string{"status"})
	ann, err := NewAnnotator(keyword.NewDetector(taxonomy.Default()), 2, counter)
	if err != nil {
		t.Fatalf("new annotator: %v", err)
	}
	defer ann.Release()

	frs := []fragment.Fragment{mustFragment(t, 0, "a"), mustFragment(t, 1, "b"), mustFragment(t, 2, "c")}
	if _, err := ann.AnnotateAll(context.Background(), frs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("ok")); got != 3 {
		t.Errorf("ok counter = %v, want 3", got)
	}
}

func mustFragment(t *testing.T, idx int, text string) fragment.Fragment {
	t.Helper()
	f, err := fragment.New("pdus", idx, text)
	if err != nil {
		t.Fatalf("new fragment: %v", err)
	}
	return f
}
