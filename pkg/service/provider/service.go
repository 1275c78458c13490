package provider

import (
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service"
	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service/provider/stripe"
	"github.com/gorilla/mux"
	"gopkg.in/inconshreveable/log15.v2"
)

const (
	// ProviderPath is the path prefix under which gateway drivers are
	// attached
	ProviderPath = "/payment"
)

// Service attaches the configured gateway drivers
type Service struct {
	ctx *service.Context
	log log15.Logger

	drivers []Driver
}

// NewService creates a new provider service
func NewService(ctx *service.Context) (*Service, error) {
	s := &Service{
		ctx: ctx,
		log: ctx.Log().New(log15.Ctx{
			"pkg": "github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/service/provider",
		}),
		drivers: []Driver{
			&stripe.Driver{},
		},
	}
	return s, nil
}

// AttachDrivers attaches all gateway drivers under the provider path
func (s *Service) AttachDrivers(m *mux.Router) error {
	m = m.PathPrefix(ProviderPath).Subrouter()
	for _, dr := range s.drivers {
		s.log.Info("attaching provider driver...")
		err := dr.Attach(s.ctx, m)
		if err != nil {
			return err
		}
	}
	return nil
}
