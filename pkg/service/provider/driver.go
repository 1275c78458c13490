package provider

import (
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service"
	"github.com/gorilla/mux"
)

// Driver is a payment gateway driver
//
// A driver registers its HTTP endpoints on the given router when attached.
type Driver interface {
	Attach(ctx *service.Context, mux *mux.Router) error
}
