package usecase

import "time"

// farFuture is the cutoff used when a historical balance must cover every
// line item ever posted, e.g. the non-zero-balance check before deactivating
// an account.
var farFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

const (
	// DefaultEarningsAccountCode is the current-year earnings account the
	// closing engine posts net income to unless configured otherwise.
	DefaultEarningsAccountCode = "34"

	// DefaultRetainedAccountCode is the retained-earnings account prior
	// results are folded into when the opening entry is generated.
	DefaultRetainedAccountCode = "33"
)
