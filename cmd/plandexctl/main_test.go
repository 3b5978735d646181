package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDocument = `Conforme a lei complementar nº 434 de 1999, a taxa de ocupação na ZOT 8.2 é limitada.

A altura máxima no 4º distrito segue o anexo 3. Disposições gerais se aplicam.`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pddua.txt")
	if err := os.WriteFile(path, []byte(sampleDocument), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetect_Args(t *testing.T) {
	out, err := run(t, "", "detect", "altura máxima na ZOT 8.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var kws []keywordOutput
	if err := json.Unmarshal([]byte(out), &kws); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(kws) != 2 || kws[0].Category != "composite" || kws[1].Category != "zot_reference" {
		t.Errorf("unexpected keywords: %+v", kws)
	}
}

func TestDetect_Stdin(t *testing.T) {
	out, err := run(t, "decreto nº 12.345 de 2010", "detect")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var kws []keywordOutput
	if err := json.Unmarshal([]byte(out), &kws); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(kws) != 1 || kws[0].Category != "legal_reference" || kws[0].Confidence != 1 {
		t.Errorf("unexpected keywords: %+v", kws)
	}
}

func TestAnnotate(t *testing.T) {
	out, err := run(t, "", "annotate", writeDocument(t), "--fragment-size", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got annotateOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Document != "pddua" {
		t.Errorf("document = %q, want pddua", got.Document)
	}
	if len(got.Fragments) < 2 {
		t.Fatalf("expected the document to be split, got %d fragments", len(got.Fragments))
	}
	if got.Fragments[0].Content != "" {
		t.Error("content printed without --content")
	}
	if got.Summary.TotalKeywords != 6 || len(got.Summary.LegalReferences) != 1 {
		t.Errorf("unexpected summary: %+v", got.Summary)
	}
	if got.Summary.ByCategory["environmental"] != 0 || got.Summary.ByCategory["composite"] != 2 {
		t.Errorf("unexpected by_category: %v", got.Summary.ByCategory)
	}
}

func TestAnnotate_MissingFile(t *testing.T) {
	if _, err := run(t, "", "annotate", filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSuggest(t *testing.T) {
	out, err := run(t, "", "suggest", "taxa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "taxa de ocupação" {
		t.Errorf("unexpected suggestions: %q", out)
	}

	out, err = run(t, "", "suggest", "ta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("short partial printed %q", out)
	}
}

func TestAnalyze(t *testing.T) {
	out, err := run(t, "", "analyze", "regras", "da", "zot", "8.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got analyzeOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Query != "regras da zot 8.2" || got.Strategy != "zoning_specific" {
		t.Errorf("unexpected analysis: %+v", got)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "zot_reference" {
		t.Errorf("unexpected categories: %v", got.Categories)
	}
}

func TestFilter(t *testing.T) {
	out, err := run(t, "", "filter", writeDocument(t), "altura máxima", "--fragment-size", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []fragmentOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(got) != 1 || !strings.Contains(got[0].Content, "altura máxima") {
		t.Errorf("unexpected fragments: %+v", got)
	}
}

func TestInvalidTaxonomy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	if err := os.WriteFile(path, []byte("patterns:\n  parking: ['x']\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "", "--taxonomy", path, "detect", "x"); err == nil {
		t.Fatal("expected error for invalid taxonomy")
	}
}
