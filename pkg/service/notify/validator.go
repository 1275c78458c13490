package notify

import (
	"time"

	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/project"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/reward"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/session"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/transaction"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service"
	"github.com/shopspring/decimal"
	"gopkg.in/inconshreveable/log15.v2"
)

// Validator turns a raw gateway notification into a normalized, verified
// transaction candidate
type Validator struct {
	ctx *service.Context
	log log15.Logger
}

// NewValidator creates a new notification validator
func NewValidator(ctx *service.Context) *Validator {
	return &Validator{
		ctx: ctx,
		log: ctx.Log().New(log15.Ctx{
			"pkg": "github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service/notify",
		}),
	}
}

// MajorAmount normalizes a gateway minor-unit amount to major units
//
// Non-positive raw amounts normalize to exactly 0. This mirrors the
// behaviour the funding-total arithmetic depends on; it is deliberately
// not a rejection.
func MajorAmount(minor int64) decimal.Decimal {
	if minor <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}

// MapStatus maps the gateway paid flag to a transaction status
//
// The notification path never yields a failed status; failures are only
// observed on the synchronous charge-creation path.
func MapStatus(paid bool) transaction.Status {
	if paid {
		return transaction.StatusCompleted
	}
	return transaction.StatusPending
}

// Validate turns the parsed notification into a transaction candidate
//
// It returns nil when the notification must not be processed: missing
// event data, a session bound to a different gateway, missing correlation
// fields or failed referential checks. Rejections are logged, never raised.
func (v *Validator) Validate(n *Notification, currencyCode string, sess *session.Session) *transaction.Candidate {
	log := v.log.New(log15.Ctx{
		"method":    "Validate",
		"sessionID": sess.ID,
	})

	if !n.HasObject() {
		log.Error("notification without event data object")
		return nil
	}
	if !sess.Gateway.Valid || sess.Gateway.String != expectedGateway {
		log.Error("invalid payment gateway on session", log15.Ctx{
			"gateway": sess.Gateway.String,
		})
		return nil
	}

	obj := n.Object()
	c := &transaction.Candidate{
		InvestorID:      sess.UserID,
		ProjectID:       sess.ProjectID,
		RewardID:        sess.EffectiveRewardID(),
		TxnID:           obj.ID,
		Amount:          MajorAmount(obj.Amount),
		Currency:        currencyCode,
		Status:          MapStatus(obj.Paid),
		Date:            time.Unix(obj.Created, 0),
		ServiceProvider: ServiceProvider,
		ServiceAlias:    ServiceAlias,
		ExtraData:       n.ExtraData(),
	}

	if !c.Valid() {
		log.Error("invalid transaction data", log15.Ctx{
			"projectID": c.ProjectID,
			"txnID":     c.TxnID,
		})
		return nil
	}

	db := v.ctx.CrowdDB(service.ReadOnly)
	prj, err := project.ProjectByIDDB(db, c.ProjectID)
	if err != nil {
		if err == project.ErrProjectNotFound {
			log.Error("project not found", log15.Ctx{"projectID": c.ProjectID})
		} else {
			log.Error("error retrieving project", log15.Ctx{"err": err})
		}
		return nil
	}
	if !prj.Eligible() {
		log.Error("project not eligible", log15.Ctx{
			"projectID": prj.ID,
			"state":     prj.State,
		})
		return nil
	}

	if c.RewardID != 0 {
		rw, err := reward.RewardByIDDB(db, c.RewardID)
		if err != nil {
			if err == reward.ErrRewardNotFound {
				log.Error("reward not found", log15.Ctx{"rewardID": c.RewardID})
			} else {
				log.Error("error retrieving reward", log15.Ctx{"err": err})
			}
			return nil
		}
		if !rw.Eligible() {
			log.Error("reward not eligible", log15.Ctx{
				"rewardID": rw.ID,
				"state":    rw.State,
			})
			return nil
		}
	}

	return c
}
