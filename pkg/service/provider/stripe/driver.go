package stripe

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service/checkout"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service/notify"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gopkg.in/inconshreveable/log15.v2"
)

const (
	// StripeDriverPath is the (sub-)path under which Stripe driver
	// endpoints will be attached
	StripeDriverPath = "/stripe"
)

const (
	handlerTimeout = 30 * time.Second
	// webhook payloads are small; anything larger is not ours
	maxNotificationBytes = 1 << 20
)

// Driver is the Stripe gateway driver
type Driver struct {
	ctx *service.Context
	log log15.Logger
	mux *mux.Router

	checkoutService *checkout.Service
	notifyService   *notify.Service
}

func (d *Driver) Attach(ctx *service.Context, m *mux.Router) error {
	d.ctx = ctx
	d.log = ctx.Log().New(log15.Ctx{
		"pkg": "github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service/provider/stripe",
	})

	var err error
	d.checkoutService, err = checkout.NewService(ctx)
	if err != nil {
		d.log.Error("error initializing checkout service", log15.Ctx{"err": err})
		return err
	}
	d.notifyService, err = notify.NewService(ctx)
	if err != nil {
		d.log.Error("error initializing notification service", log15.Ctx{"err": err})
		return err
	}

	d.mux = m.PathPrefix(StripeDriverPath).Subrouter()
	d.mux.Handle("/checkout", service.TimeoutHandler(d.log.Warn, handlerTimeout, d.CheckoutHandler())).
		Methods("POST").
		Name("stripeCheckoutHandler")
	d.mux.Handle("/notify", service.TimeoutHandler(d.log.Warn, handlerTimeout, d.NotifyHandler())).
		Methods("POST").
		Name("stripeNotifyHandler")
	return nil
}

type checkoutResponse struct {
	ChargeID    string `json:"charge_id,omitempty"`
	Message     string `json:"message,omitempty"`
	RedirectURL string `json:"redirect_url"`
}

// CheckoutHandler serves the synchronous checkout endpoint
//
// It expects an urlencoded form as posted by the pledge page and responds
// with the redirect target. A declined card is a 200 response carrying the
// gateway message; the pledge page surfaces it and lets the backer retry.
func (d *Driver) CheckoutHandler() http.Handler {
	log := d.log.New(log15.Ctx{"handler": "CheckoutHandler"})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			log.Warn("error parsing request form", log15.Ctx{"err": err})
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		amount, err := decimal.NewFromString(r.PostFormValue("amount"))
		if err != nil {
			log.Warn("malformed pledge amount", log15.Ctx{"err": err})
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		projectID, err := projectIDParam(r.PostFormValue("project_id"))
		if err != nil {
			log.Warn("malformed project id", log15.Ctx{"err": err})
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		item := &checkout.Item{
			ProjectID:    projectID,
			Title:        r.PostFormValue("title"),
			Amount:       amount,
			CurrencyCode: r.PostFormValue("currency_code"),
		}

		result, err := d.checkoutService.InitiateCharge(
			r.PostFormValue("session_token"),
			item,
			r.PostFormValue("card_token"),
		)
		if err != nil {
			switch err {
			case checkout.ErrInvalidInput:
				w.WriteHeader(http.StatusBadRequest)
			case checkout.ErrGatewayUnavailable:
				w.WriteHeader(http.StatusBadGateway)
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(checkoutResponse{
			ChargeID:    result.ChargeID,
			Message:     result.Message,
			RedirectURL: result.RedirectURL,
		})
		if err != nil {
			log.Error("error writing response", log15.Ctx{"err": err})
		}
	})
}

// NotifyHandler serves the asynchronous webhook endpoint
//
// Anything the notification pipeline rejects is answered with a 200 so the
// gateway stops redelivering; only a storage failure is answered with a
// 500 to request redelivery.
func (d *Driver) NotifyHandler() http.Handler {
	log := d.log.New(log15.Ctx{"handler": "NotifyHandler"})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
		if err != nil {
			log.Warn("error reading notification body", log15.Ctx{"err": err})
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		_, err = d.notifyService.ProcessNotification(payload)
		if err != nil {
			log.Error("error processing notification", log15.Ctx{"err": err})
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
