package models

// SearchSession is the state of the incremental search box.
type SearchSession struct {
	// RawQuery is the latest text as typed.
	RawQuery string

	// EffectiveQuery is the debounced value sent to the remote store.
	EffectiveQuery string

	// Results are ordered as returned by the store.
	Results []FileRecord

	// IsOpen is true iff EffectiveQuery is non-empty and a request has been
	// issued or has returned.
	IsOpen bool

	IsLoading bool

	// Err holds the last query failure, cleared by the next dispatch.
	Err error
}
