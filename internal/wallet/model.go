package wallet

import "time"

// Wallet is the gateway's projection of a user's wallet row. The credential
// store owns the balance; the gateway only caches it.
type Wallet struct {
	UserID    int64
	Balance   float64
	Currency  string
	UpdatedAt time.Time
}

// BalanceResult is a balance read annotated with its provenance.
type BalanceResult struct {
	Balance  float64
	Currency string
	Cached   bool
}
