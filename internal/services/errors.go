package services

import "errors"

// Pipeline failure classes. Stages wrap these with fmt.Errorf("%w: ...") so
// callers can classify with errors.Is while keeping the upstream cause.
var (
	// ErrUnsupportedFormat: the file extension maps to no known extractor.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtractionFailed: a recognized document could not be parsed.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmbeddingFailed: the embedding model call failed.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrStructuredExtractionFailed: the generative model call failed, or its
	// output was not valid JSON for the requested role schema.
	ErrStructuredExtractionFailed = errors.New("structured extraction failed")

	// ErrIndexUnavailable: the vector index could not be reached or refused us.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch: vector length disagrees with the index dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrScoringUnavailable: a similarity score could not be computed. Distinct
	// from a low score; rankings must never fold this into a sentinel value.
	ErrScoringUnavailable = errors.New("similarity scoring unavailable")

	// ErrNotIndexed: no vector is stored under the requested id. Data absence,
	// not a failure; the ranker excludes such candidates.
	ErrNotIndexed = errors.New("no vector stored for id")
)
