package transactions

import "time"

// Transaction is the gateway's read model over the shared transactions table.
// Rows are written by the ledger service; the gateway only reads them.
type Transaction struct {
	ID            string
	SenderID      int64
	ReceiverID    int64
	Amount        float64
	Currency      string
	Status        string
	Description   string
	CreatedAt     time.Time
	CompletedAt   *time.Time
	SenderEmail   string
	SenderName    string
	ReceiverEmail string
	ReceiverName  string
}

// Filter narrows a history listing.
type Filter struct {
	Limit  int
	Offset int
	// Type is "sent", "received" or empty for both.
	Type string
}

// Stats summarizes a user's completed transfers.
type Stats struct {
	SentCount      int64
	ReceivedCount  int64
	SentAmount     float64
	ReceivedAmount float64
}
