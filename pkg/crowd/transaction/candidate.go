package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candidate is a normalized, not-yet-persisted transaction derived from a
// gateway notification
type Candidate struct {
	InvestorID      int64
	ProjectID       int64
	RewardID        int64
	TxnID           string
	Amount          decimal.Decimal
	Currency        string
	Status          Status
	Date            time.Time
	ServiceProvider string
	ServiceAlias    string
	ReceiverID      int64
	ExtraData       ExtraData
}

// Valid returns true when the required correlation fields are present
func (c Candidate) Valid() bool {
	return c.ProjectID != 0 && c.TxnID != ""
}

// Transaction returns the durable transaction record for the candidate
func (c Candidate) Transaction() *Transaction {
	return &Transaction{
		InvestorID:      c.InvestorID,
		ProjectID:       c.ProjectID,
		RewardID:        c.RewardID,
		TxnID:           c.TxnID,
		Amount:          c.Amount,
		Currency:        c.Currency,
		Status:          c.Status,
		Date:            c.Date,
		ServiceProvider: c.ServiceProvider,
		ServiceAlias:    c.ServiceAlias,
		ReceiverID:      c.ReceiverID,
		ExtraData:       c.ExtraData,
	}
}
