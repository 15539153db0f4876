package exchange

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle of the live-rate cache.
type Status string

const (
	// StatusIdle means no fetch has happened yet.
	StatusIdle Status = "idle"
	// StatusFetching means a fetch is in flight.
	StatusFetching Status = "fetching"
	// StatusReady means the snapshot holds usable rates.
	StatusReady Status = "ready"
	// StatusStale means the snapshot is older than the freshness window but
	// still served, flagged so clients can warn about offline rates.
	StatusStale Status = "stale"
	// StatusError means fetching failed and no usable snapshot exists.
	StatusError Status = "error"
)

// Snapshot is one fetched set of rates, all relative to Base. Readers get a
// copy; the service swaps the whole value under its lock on refresh.
type Snapshot struct {
	Base      string
	Rates     map[string]decimal.Decimal
	FetchedAt time.Time
}
