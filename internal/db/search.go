package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filter       string // FT.SEARCH pre-filter, empty means all documents
	VectorField  string
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for a full-text or filter-only FT.SEARCH.
type TextQuery struct {
	IndexName    string
	Query        string
	Offset       int
	Limit        int
	SortBy       string
	SortDesc     bool
	Verbatim     bool // disable stemming so phrases match as written
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
