package notify

import (
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/transaction"
)

type EffectKind int

const (
	// EffectAddFunds increases the project funding total by the
	// transaction amount
	EffectAddFunds EffectKind = iota
	// EffectDistributeReward increments the distributed count of the
	// assigned reward tier
	EffectDistributeReward
)

// Effect is a single financial side effect of a status transition
type Effect struct {
	Kind     EffectKind
	RewardID int64
}

// Decide returns the side effects for a status transition
//
// Effects fire only on the transition into completed. A transaction which
// is already completed, or a write which does not reach completed, carries
// no effects.
func Decide(prior, next transaction.Status, rewardID int64) []Effect {
	if next != transaction.StatusCompleted {
		return nil
	}
	if prior == transaction.StatusCompleted {
		return nil
	}
	effects := []Effect{{Kind: EffectAddFunds}}
	if rewardID != 0 {
		effects = append(effects, Effect{Kind: EffectDistributeReward, RewardID: rewardID})
	}
	return effects
}
