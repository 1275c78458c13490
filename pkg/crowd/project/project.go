package project

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project states as persisted in the project state column
const (
	StateUnpublished int8 = 0
	StatePublished   int8 = 1
	StateDeleted     int8 = -2
)

// Project represents a crowdfunding project
//
// The project owner (UserID) is the receiver of funds collected through
// completed transactions. Funds holds the accumulated funding total in
// major currency units.
type Project struct {
	ID           int64
	UserID       int64
	Title        string
	State        int8
	Goal         decimal.Decimal
	Funds        decimal.Decimal
	CurrencyCode string
	Created      time.Time
}

// Empty returns true if the project is considered empty/uninitialized
func (p Project) Empty() bool {
	return p.ID == 0
}

// Eligible returns true when the project may receive pledges
func (p Project) Eligible() bool {
	return !p.Empty() && p.State == StatePublished
}
