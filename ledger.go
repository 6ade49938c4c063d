package spotted

import (
	"github.com/hashicorp/golang-lru"
)

// Ledger is the bounded record of recently claimed spot dedup keys. It
// collapses duplicate deliveries of the same logical spot (message event,
// file_shared event and history refetches all resolve to the same originating
// message timestamp) into a single reconciliation.
//
// The window is best-effort: once at capacity, the oldest claims are evicted
// and a very late redelivery of an evicted key would be claimable again
type Ledger struct {
	claimed *lru.Cache
}

// NewLedger creates a ledger retaining up to capacity claimed keys
func NewLedger(capacity int) (l *Ledger, err error) {
	claimed, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}

	return &Ledger{claimed: claimed}, nil
}

// Claim atomically tests membership of the dedup key and records it if
// absent. It returns true only for the first claimant of a key within the
// retention window; every caller must invoke it exactly once per candidate
// event, before any score mutation
func (l *Ledger) Claim(dedupKey string) (claimed bool) {
	alreadyClaimed, _ := l.claimed.ContainsOrAdd(dedupKey, struct{}{})

	return !alreadyClaimed
}

// Len returns the number of keys currently retained
func (l *Ledger) Len() int {
	return l.claimed.Len()
}
