package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_FragmentSchema(t *testing.T) {
	idx := NewIndex("plandex:frag:idx").
		Prefix("plandex:frag:").
		NoStopWords().
		Tag("document_id").
		NumericSortable("fragment_index").
		NumericSortable("priority_score").
		Numeric("legal_reference_count").
		Text("content").
		MustBuild()

	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if !idx.NoStopWords {
		t.Error("expected NoStopWords")
	}
	if len(idx.Fields) != 5 {
		t.Fatalf("fields count = %d, want 5", len(idx.Fields))
	}
	if f := idx.Fields[1]; f.Type != IndexFieldNumeric || !f.Sortable {
		t.Errorf("field[1] = %+v, want sortable NUMERIC", f)
	}
	if idx.Fields[3].Sortable {
		t.Error("plain Numeric must not be sortable")
	}
}

func TestIndexBuilder_VectorFlat(t *testing.T) {
	idx := NewIndex("vec-idx").
		Prefix("emb:").
		VectorFlat("vector", 1536, DistanceCosine, 0).
		MustBuild()

	f := idx.Fields[0]
	if f.VectorAlgo != VectorFlat || f.VectorDim != 1536 || f.VectorDistance != DistanceCosine {
		t.Errorf("field = %+v", f)
	}
}

func TestIndexBuilder_VectorHNSW(t *testing.T) {
	idx := NewIndex("hnsw-idx").
		Prefix("doc:").
		VectorHNSW("vector", 768, DistanceL2, 32, 400).
		MustBuild()

	f := idx.Fields[0]
	if f.VectorAlgo != VectorHNSW {
		t.Errorf("algo = %q, want HNSW", f.VectorAlgo)
	}
	if f.VectorM != 32 || f.VectorEFConstruct != 400 {
		t.Errorf("M/EF = %d/%d, want 32/400", f.VectorM, f.VectorEFConstruct)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Tag("x").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "vector without dim",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").VectorFlat("v", 0, DistanceCosine, 0).Build()
			},
			wantErr: "positive DIM",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Tag("x").Build()
			},
			wantErr: "invalid characters",
		},
		{
			name: "duplicate field",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Tag("x").Numeric("x").Build()
			},
			wantErr: "duplicate field name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("my-idx").
		Prefix("doc:").
		NoStopWords().
		NumericSortable("priority_score").
		VectorFlat("vec", 512, DistanceCosine, 0).
		MustBuild()

	want := "FT.CREATE my-idx ON HASH PREFIX doc: STOPWORDS 0 SCHEMA priority_score NUMERIC SORTABLE vec VECTOR FLAT"
	if s := idx.String(); s != want {
		t.Errorf("got %q, want %q", s, want)
	}
}
