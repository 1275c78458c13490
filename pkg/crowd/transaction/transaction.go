package transaction

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

// Scan implements the Scanner interface for sql
func (s *Status) Scan(v interface{}) error {
	switch src := v.(type) {
	case []byte:
		*s = Status(string(src))
		return nil
	case nil:
		*s = StatusNone
		return nil
	}
	str, ok := v.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into %T", v, s)
	}
	*s = Status(str)
	return nil
}

// Value implements the Valuer interface for sql
func (s Status) Value() (driver.Value, error) {
	return driver.Value(s.String()), nil
}

func (s Status) String() string {
	return string(s)
}

const (
	// StatusNone is the status of a transaction which does not exist yet
	StatusNone      Status = ""
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal returns true for statuses after which no further mutation of
// the transaction record is permitted
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo returns true when the status may advance to next
//
// A completed or failed transaction accepts no further writes. A pending
// transaction may be re-written as pending; such a write carries no
// side effects.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusNone, StatusPending:
		switch next {
		case StatusPending, StatusCompleted, StatusFailed:
			return true
		}
		return false
	default:
		return false
	}
}

// Transaction represents a persisted payment transaction
//
// A transaction is unique on the external transaction id (TxnID) reported
// by the gateway. Amount is in major currency units.
type Transaction struct {
	ID              int64
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

// Empty returns true if the transaction is considered empty/uninitialized
func (t Transaction) Empty() bool {
	return t.ID == 0
}

// Completed returns true when the transaction reached the completed status
func (t Transaction) Completed() bool {
	return t.Status == StatusCompleted
}
