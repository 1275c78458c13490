package notify

import (
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/currency"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/project"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/reward"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/session"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/transaction"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service"
	"gopkg.in/inconshreveable/log15.v2"
)

// Result is the structured outcome of processing a notification
//
// It is handed to the excluded orchestration layer (HTTP response, mail
// dispatch). Fields other than ServiceProvider are only populated when a
// completion transition was applied.
type Result struct {
	Transaction     *transaction.Transaction
	Project         *project.Project
	Reward          *reward.Reward
	Session         *session.Session
	ServiceProvider string
}

// Service processes asynchronous gateway notifications
type Service struct {
	ctx *service.Context
	log log15.Logger

	validator  *Validator
	reconciler *Reconciler
}

// NewService creates a new notification service
func NewService(ctx *service.Context) (*Service, error) {
	s := &Service{
		ctx: ctx,
		log: ctx.Log().New(log15.Ctx{
			"pkg": "github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service/notify",
		}),
		validator:  NewValidator(ctx),
		reconciler: NewReconciler(ctx),
	}
	return s, nil
}

// ProcessNotification runs the full reconciliation pipeline for a raw
// webhook payload
//
// Rejections (malformed payloads, unknown sessions, failed validation and
// duplicate deliveries) are logged and produce an empty result with a nil
// error; the gateway must not be asked to retry those. Only a storage
// failure returns ErrPersistence, signalling the caller to allow
// redelivery.
func (s *Service) ProcessNotification(payload []byte) (*Result, error) {
	log := s.log.New(log15.Ctx{"method": "ProcessNotification"})
	result := &Result{ServiceProvider: ServiceProvider}

	n, err := ParseNotification(payload)
	if err != nil {
		log.Warn("error parsing notification payload", log15.Ctx{"err": err})
		return result, nil
	}
	if !n.HasObject() {
		log.Error("notification without event data object")
		return result, nil
	}

	db := s.ctx.CrowdDB(service.ReadOnly)
	sess, err := session.SessionByIDDB(db, n.SessionID())
	if err != nil {
		if err == session.ErrSessionNotFound {
			log.Error("payment session not found", log15.Ctx{
				"sessionID": n.SessionID(),
			})
			return result, nil
		}
		log.Error("error retrieving payment session", log15.Ctx{"err": err})
		return nil, ErrPersistence
	}

	prj, err := project.ProjectByIDDB(db, sess.ProjectID)
	if err != nil {
		if err == project.ErrProjectNotFound {
			log.Error("project not found", log15.Ctx{
				"projectID": sess.ProjectID,
			})
			return result, nil
		}
		log.Error("error retrieving project", log15.Ctx{"err": err})
		return nil, ErrPersistence
	}
	cur, err := currency.CurrencyByCodeISO4217DB(db, prj.CurrencyCode)
	if err != nil {
		log.Error("error resolving project currency", log15.Ctx{
			"err":          err,
			"currencyCode": prj.CurrencyCode,
		})
		return result, nil
	}

	candidate := s.validator.Validate(n, cur.CodeISO4217, sess)
	if candidate == nil {
		return result, nil
	}
	// the project owner receives the funds
	candidate.ReceiverID = prj.UserID

	t, err := s.reconciler.Reconcile(candidate)
	if err != nil {
		if err == ErrDuplicateNotification {
			return result, nil
		}
		return nil, err
	}
	if t == nil {
		// persisted without a completion transition, nothing further to do
		return result, nil
	}

	result.Transaction = t
	result.Project = prj
	result.Session = sess
	if t.RewardID != 0 {
		rw, err := reward.RewardByIDDB(db, t.RewardID)
		if err != nil {
			log.Warn("error retrieving reward for result", log15.Ctx{
				"err":      err,
				"rewardID": t.RewardID,
			})
		} else {
			result.Reward = rw
		}
	}

	// the transaction reached a terminal state; the session has served
	// its purpose
	err = session.CloseSessionDB(s.ctx.CrowdDB(), sess.ID)
	if err != nil {
		log.Warn("error closing payment session", log15.Ctx{
			"err":       err,
			"sessionID": sess.ID,
		})
	}

	return result, nil
}
