package domain

// KeyPrefix namespaces every key plandex writes to the store.
const KeyPrefix = "plandex:"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model               string
	Dimensions          int
	DocumentInstruction string
	QueryInstruction    string
}

// DefaultVectorConfig returns the default configuration for multilingual (pt-BR) embeddings.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:               "text-embedding-3-small",
		Dimensions:          1536,
		DocumentInstruction: "",
		QueryInstruction:    "",
	}
}
