package notify

import (
	"database/sql"
	"errors"

	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/project"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/reward"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/transaction"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service"
	"github.com/go-sql-driver/mysql"
	"gopkg.in/inconshreveable/log15.v2"
)

const mysqlErrDuplicateEntry = 1062

var (
	// ErrDuplicateNotification signals a redelivery for an already
	// completed transaction. It is a no-op outcome, not a failure.
	ErrDuplicateNotification = errors.New("duplicate notification")
	// ErrPersistence signals a storage failure. The atomic unit was rolled
	// back; the caller should let the gateway redeliver.
	ErrPersistence = errors.New("persistence error")
)

// Reconciler idempotently merges transaction candidates into durable
// transaction state and applies the gated side effects
type Reconciler struct {
	ctx *service.Context
	log log15.Logger
}

// NewReconciler creates a new transaction reconciler
func NewReconciler(ctx *service.Context) *Reconciler {
	return &Reconciler{
		ctx: ctx,
		log: ctx.Log().New(log15.Ctx{
			"pkg": "github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service/notify",
		}),
	}
}

// Reconcile persists the candidate and applies the status transition
// inside a single atomic unit of work
//
// The external transaction id is the idempotency key. A redelivery for a
// completed transaction returns ErrDuplicateNotification and has no
// effect. A write which does not reach completed is persisted and returns
// a nil transaction. Only the transition into completed returns the
// transaction and fires the funding and reward side effects, exactly once.
func (r *Reconciler) Reconcile(c *transaction.Candidate) (*transaction.Transaction, error) {
	log := r.log.New(log15.Ctx{
		"method": "Reconcile",
		"txnID":  c.TxnID,
	})

	var tx *sql.Tx
	var commit bool
	defer func() {
		if tx != nil && !commit {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Crit("error on rollback", log15.Ctx{"err": rollbackErr})
			}
		}
	}()
	tx, err := r.ctx.CrowdDB().Begin()
	if err != nil {
		log.Error("error starting transaction", log15.Ctx{"err": err})
		return nil, ErrPersistence
	}

	prior := transaction.StatusNone
	t := c.Transaction()
	existing, err := transaction.TransactionByTxnIDForUpdateTx(tx, c.TxnID)
	switch err {
	case nil:
		if existing.Completed() {
			log.Info("transaction already completed, skipping redelivery")
			return nil, ErrDuplicateNotification
		}
		if !existing.Status.CanTransitionTo(c.Status) {
			log.Warn("disallowed status transition, skipping", log15.Ctx{
				"priorStatus": existing.Status,
				"nextStatus":  c.Status,
			})
			return nil, ErrDuplicateNotification
		}
		prior = existing.Status
		t.ID = existing.ID
		err = transaction.UpdateTransactionTx(tx, t)
		if err != nil {
			log.Error("error updating transaction", log15.Ctx{"err": err})
			return nil, ErrPersistence
		}
	case transaction.ErrTransactionNotFound:
		err = transaction.InsertTransactionTx(tx, t)
		if err != nil {
			if mysqlErr, ok := err.(*mysql.MySQLError); ok {
				if mysqlErr.Number == mysqlErrDuplicateEntry {
					// lost the race against a concurrent delivery; the
					// unique key on txn_id is the correctness backstop
					log.Info("concurrent delivery won the insert, skipping")
					return nil, ErrDuplicateNotification
				}
			}
			log.Error("error inserting transaction", log15.Ctx{"err": err})
			return nil, ErrPersistence
		}
	default:
		log.Error("error retrieving transaction", log15.Ctx{"err": err})
		return nil, ErrPersistence
	}

	for _, effect := range Decide(prior, t.Status, t.RewardID) {
		switch effect.Kind {
		case EffectAddFunds:
			err = project.AddFundsTx(tx, t.ProjectID, t.Amount)
			if err != nil {
				log.Error("error adding project funds", log15.Ctx{"err": err})
				return nil, ErrPersistence
			}
		case EffectDistributeReward:
			err = reward.IncrementDistributedTx(tx, effect.RewardID)
			if err == reward.ErrRewardExhausted {
				// the reward became unavailable between pledge and
				// completion; drop the assignment, keep the transaction
				log.Warn("reward exhausted, clearing assignment", log15.Ctx{
					"rewardID": effect.RewardID,
				})
				t.RewardID = 0
				err = transaction.ClearRewardTx(tx, t.ID)
			}
			if err != nil {
				log.Error("error distributing reward", log15.Ctx{"err": err})
				return nil, ErrPersistence
			}
		}
	}

	commit = true
	err = tx.Commit()
	if err != nil {
		log.Crit("error on commit", log15.Ctx{"err": err})
		return nil, ErrPersistence
	}

	if t.Status != transaction.StatusCompleted {
		log.Debug("transaction persisted without completion", log15.Ctx{
			"status": t.Status,
		})
		return nil, nil
	}
	return t, nil
}
