package conversation

import "errors"

// ErrMalformedHistory means the caller passed something that is not a message
// sequence. This is the only error that propagates out of the engine; the
// caller must fix the request shape.
var ErrMalformedHistory = errors.New("malformed conversation history")

// ErrEmbeddingUnavailable means the embedding collaborator could not be
// reached or returned an invalid vector. Recovered locally: the scorer falls
// back to lexical and structural signals.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")
