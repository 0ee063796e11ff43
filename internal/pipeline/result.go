package pipeline

import (
	"context"
	"errors"

	"github.com/matsen/pubsite/internal/bibtex"
	"github.com/matsen/pubsite/internal/source"
)

// Result is the outcome of loading a bibliography: entries or a failure reason.
type Result struct {
	entries []bibtex.Entry
	err     error
}

// Loaded returns a successful result.
func Loaded(entries []bibtex.Entry) Result {
	return Result{entries: entries}
}

// Failed returns a failed result. A nil err is replaced by a generic error.
func Failed(err error) Result {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Result{err: err}
}

// OK reports whether the load succeeded.
func (r Result) OK() bool { return r.err == nil }

// Err returns the failure reason, or nil.
func (r Result) Err() error { return r.err }

// Entries returns the parsed entries of a successful load.
func (r Result) Entries() []bibtex.Entry { return r.entries }

// Load retrieves and parses a bibliography.
// Parse anomalies never fail the load; only retrieval does.
func Load(ctx context.Context, src source.Source) Result {
	text, err := src.Fetch(ctx)
	if err != nil {
		return Failed(err)
	}
	return Loaded(bibtex.Parse(text))
}
