// Package encoder defines the Provider interface for sentence-embedding
// backends.
//
// An encoder provider wraps a pretrained sentence encoder (e.g., a
// paraphrase-MiniLM model served by Ollama, or OpenAI text-embedding-3)
// that maps text strings to dense float32 vectors. The drift pipeline
// compares these vectors by cosine similarity; it never inspects vector
// contents beyond their dimensionality.
//
// Implementations must be safe for concurrent use.
package encoder

import "context"

// Provider is the abstraction over any sentence-embedding backend.
//
// All vectors returned by a single Provider instance share the same
// dimensionality (returned by Dimensions). Vectors from different Provider
// instances must not be mixed in one similarity computation unless both use
// the same model and embedding space.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Embed computes the embedding vector for a single text string. Returns
	// a float32 slice of length Dimensions() or an error if the request
	// fails or ctx is cancelled. Text is passed through verbatim; any
	// domain normalization (lemmatization, stop-word removal) happens
	// upstream in the preprocessor.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes embedding vectors for a slice of texts in a
	// single backend call. The returned slice has the same length as texts
	// and the i-th element corresponds to texts[i]. Partial results are
	// not returned — on error the entire slice is nil.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed length of every vector produced by this
	// provider. It is discovered at startup (or on first use) and constant
	// for the lifetime of the Provider instance. A zero value means the
	// dimension could not be determined, which callers treat as the model
	// not being loaded.
	Dimensions() int

	// ModelID returns the backend-specific model identifier (e.g.,
	// "paraphrase-minilm", "text-embedding-3-small"). Reported by the
	// health endpoint and used for logging.
	ModelID() string

	// Device returns the compute device the model runs on ("cpu", "cuda",
	// "mps"), as reported by the backend. Implementations that cannot
	// determine the device return "cpu".
	Device() string
}
