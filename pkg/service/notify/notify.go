package notify

const (
	// ServiceProvider is the display name of the payment service provider
	ServiceProvider = "Stripe"
	// ServiceAlias is the internal alias of the payment service provider
	ServiceAlias = "stripe"
)

// expectedGateway is the gateway identity a payment session must be bound
// to for its notifications to be processed here
const expectedGateway = ServiceProvider
