package ingest

import "time"

// Observer receives load outcomes, e.g. for metrics.
// Implementations must be safe for concurrent use.
type Observer interface {
	// Attempt is called once per encoding tried on a delimited file
	// loaded through Loader.
	Attempt(encoding string, err error)
	// Loaded is called once per Load call with its result.
	Loaded(kind Kind, res Result, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) Attempt(string, error)              {}
func (nopObserver) Loaded(Kind, Result, time.Duration) {}
