package recommend

import "errors"

// Error kinds of the recommendation pipeline. Retriever-level failures are
// absorbed by the engine, which proceeds with the surviving retriever and
// marks the outcome degraded. Reranker failures and invalid input surface
// to the caller.
var (
	// ErrIndexUnavailable means a retrieval index could not be read.
	ErrIndexUnavailable = errors.New("retrieval index unavailable")
	// ErrEmbedding means the query could not be embedded.
	ErrEmbedding = errors.New("query embedding failed")
	// ErrRerankerUnavailable means rerank scores could not be computed.
	// There is no safe degraded substitute, so the request fails.
	ErrRerankerUnavailable = errors.New("reranker unavailable")
	// ErrInvalidConstraints means the request was malformed and was
	// rejected before pipeline entry.
	ErrInvalidConstraints = errors.New("invalid constraints")
)
