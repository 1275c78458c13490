package reward

// Reward states as persisted in the reward published column
const (
	StateUnpublished int8 = 0
	StatePublished   int8 = 1
)

// Reward represents a project reward tier
//
// Number is the total amount of claimable rewards of this tier, zero
// meaning unlimited. Distributed counts the rewards already allocated to
// completed pledges.
type Reward struct {
	ID          int64
	ProjectID   int64
	Title       string
	State       int8
	Number      int64
	Distributed int64
}

// Empty returns true if the reward is considered empty/uninitialized
func (r Reward) Empty() bool {
	return r.ID == 0
}

// Eligible returns true when the reward may be assigned to a pledge
func (r Reward) Eligible() bool {
	return !r.Empty() && r.State == StatePublished
}

// Available returns true when the reward tier still has claimable units
func (r Reward) Available() bool {
	if r.Number == 0 {
		return true
	}
	return r.Distributed < r.Number
}
