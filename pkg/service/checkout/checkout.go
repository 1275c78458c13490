package checkout

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/session"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"gopkg.in/inconshreveable/log15.v2"
)

// GatewayName is the gateway identity bound onto the payment session on a
// successful charge. Notifications for sessions bound to a different
// gateway are rejected.
const GatewayName = "Stripe"

const defaultGatewayTimeout = 30 * time.Second

type errorID int

func (e errorID) Error() string {
	switch e {
	case ErrDB:
		return "database error"
	case ErrInvalidInput:
		return "invalid checkout input"
	case ErrConfiguration:
		return "gateway configuration error"
	case ErrGatewayUnavailable:
		return "gateway unavailable"
	case ErrInternal:
		return "internal error"
	default:
		return "unknown error"
	}
}

const (
	// general database error
	ErrDB errorID = iota
	// missing or malformed checkout input
	ErrInvalidInput
	// missing gateway credentials
	ErrConfiguration
	// the gateway could not be reached or timed out
	ErrGatewayUnavailable
	// internal error
	ErrInternal
)

// Item is the pledge the checkout is made for
type Item struct {
	ProjectID    int64
	Title        string
	Amount       decimal.Decimal
	CurrencyCode string
}

// ChargeResult is the outcome of a checkout attempt
//
// A declined card is a regular, recoverable outcome: Message carries the
// gateway-reported reason and RedirectURL points back to the pledge page.
type ChargeResult struct {
	ChargeID    string
	Message     string
	RedirectURL string
}

// Declined returns true when the gateway rejected the card
func (r ChargeResult) Declined() bool {
	return r.ChargeID == ""
}

// Service is the checkout initiator
//
// It creates the outbound gateway charge for a pledge and binds the
// resulting charge identifier back onto the payment session.
type Service struct {
	ctx *service.Context
	log log15.Logger

	gateway *client.API
}

// NewService creates a new checkout service
func NewService(ctx *service.Context) (*Service, error) {
	s := &Service{
		ctx: ctx,
		log: ctx.Log().New(log15.Ctx{
			"pkg": "github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service/checkout",
		}),
	}
	cfg := ctx.Config()
	timeout, err := cfg.Stripe.Timeout.Duration()
	if err != nil {
		s.log.Warn("invalid gateway timeout, using default", log15.Ctx{
			"err":     err,
			"default": defaultGatewayTimeout,
		})
		timeout = defaultGatewayTimeout
	}
	s.gateway = &client.API{}
	s.gateway.Init(cfg.Stripe.Keys().Secret, stripe.NewBackends(&http.Client{
		Timeout: timeout,
	}))
	return s, nil
}

// MinorUnits converts a major-unit amount to gateway minor units
//
// The amount is multiplied by 100, truncated to an integer and made
// absolute.
func MinorUnits(amount decimal.Decimal) int64 {
	minor := amount.Mul(decimal.NewFromInt(100)).Truncate(0).IntPart()
	if minor < 0 {
		minor = -minor
	}
	return minor
}

// InitiateCharge submits a charge for the pledge identified by the local
// session token
//
// The payment session id is attached as metadata on the outbound charge so
// the asynchronous notification can be correlated later. On a gateway-
// reported card error a ChargeResult carrying the user-facing message and
// a redirect back to the pledge page is returned with a nil error.
func (s *Service) InitiateCharge(sessionToken string, item *Item, cardToken string) (*ChargeResult, error) {
	log := s.log.New(log15.Ctx{
		"method":    "InitiateCharge",
		"projectID": item.ProjectID,
	})

	if cardToken == "" {
		log.Warn("missing card token")
		return nil, ErrInvalidInput
	}
	if item.Amount.Sign() <= 0 {
		log.Warn("non-positive pledge amount", log15.Ctx{"amount": item.Amount})
		return nil, ErrInvalidInput
	}
	keys := s.ctx.Config().Stripe.Keys()
	if keys.Secret == "" {
		log.Error("gateway secret key not configured")
		return nil, ErrConfiguration
	}

	sess, err := session.SessionByLocalTokenDB(s.ctx.CrowdDB(service.ReadOnly), sessionToken)
	if err != nil {
		if err == session.ErrSessionNotFound {
			log.Warn("payment session not found")
			return nil, ErrInvalidInput
		}
		log.Error("error retrieving payment session", log15.Ctx{"err": err})
		return nil, ErrDB
	}

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(MinorUnits(item.Amount)),
		Currency:    stripe.String(item.CurrencyCode),
		Description: stripe.String(fmt.Sprintf("Investing in %s", item.Title)),
	}
	if err = params.SetSource(cardToken); err != nil {
		log.Error("error setting charge source", log15.Ctx{"err": err})
		return nil, ErrInternal
	}
	params.AddMetadata("payment_session_id", strconv.FormatInt(sess.ID, 10))

	ch, err := s.gateway.Charges.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok {
			if stripeErr.Type == stripe.ErrorTypeCard {
				log.Info("card declined", log15.Ctx{
					"code": stripeErr.Code,
				})
				return &ChargeResult{
					Message:     stripeErr.Msg,
					RedirectURL: s.backingURL(item.ProjectID),
				}, nil
			}
		}
		log.Error("error creating gateway charge", log15.Ctx{"err": err})
		return nil, ErrGatewayUnavailable
	}
	log.Debug("charge created", log15.Ctx{"chargeID": ch.ID})

	err = session.BindChargeDB(s.ctx.CrowdDB(), sess.ID, GatewayName, ch.ID)
	if err != nil {
		if err == session.ErrSessionAlreadyBound {
			log.Error("payment session already bound", log15.Ctx{
				"sessionID": sess.ID,
				"chargeID":  ch.ID,
			})
			return nil, ErrInternal
		}
		log.Error("error binding charge onto payment session", log15.Ctx{"err": err})
		return nil, ErrDB
	}

	return &ChargeResult{
		ChargeID:    ch.ID,
		RedirectURL: s.shareURL(item.ProjectID),
	}, nil
}

func (s *Service) backingURL(projectID int64) string {
	return fmt.Sprintf(s.ctx.Config().Web.BackingURLFormat, projectID)
}

func (s *Service) shareURL(projectID int64) string {
	return fmt.Sprintf(s.ctx.Config().Web.ShareURLFormat, projectID)
}
