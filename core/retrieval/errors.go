package retrieval

import "errors"

// ErrUpstreamUnavailable marks a failure of an external dependency
// (embedding model, vector store, lexical index). The engine degrades
// around it where possible instead of failing the whole request.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")
