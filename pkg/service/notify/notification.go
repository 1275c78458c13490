package notify

import (
	"encoding/json"

	"github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/crowd/transaction"
	pkgjson "github.com/ITPrism/CrowdFundingPayment-Stripe/pkg/json"
)

// extraDataKeys is the whitelist of top-level payload fields which are
// preserved as an opaque blob alongside the transaction
var extraDataKeys = []string{
	"object", "id", "created", "livemode", "type", "pending_webhooks",
	"request", "paid", "amount", "currency", "captured",
	"balance_transaction", "failure_message", "failure_code", "data",
}

// ChargeObject is the event data object of a gateway notification
type ChargeObject struct {
	ID       string         `json:"id"`
	Created  int64          `json:"created"`
	Paid     bool           `json:"paid"`
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Metadata ChargeMetadata `json:"metadata"`
}

// ChargeMetadata is the correlation metadata attached to the charge by the
// checkout initiator
type ChargeMetadata struct {
	PaymentSessionID pkgjson.RequiredInt64 `json:"payment_session_id"`
}

type notificationData struct {
	Object *ChargeObject `json:"object"`
}

// Notification is a parsed gateway webhook payload
//
// Unknown fields are tolerated and retained in raw form.
type Notification struct {
	object *ChargeObject
	raw    map[string]json.RawMessage
}

// ParseNotification parses a raw webhook payload
//
// A payload without a data.object is not an error; HasObject will report
// false on the result.
func ParseNotification(payload []byte) (*Notification, error) {
	n := &Notification{}
	err := json.Unmarshal(payload, &n.raw)
	if err != nil {
		return nil, err
	}
	if dataRaw, ok := n.raw["data"]; ok {
		data := notificationData{}
		err = json.Unmarshal(dataRaw, &data)
		if err != nil {
			return nil, err
		}
		n.object = data.Object
	}
	return n, nil
}

// HasObject returns true when the payload carried a data.object
func (n *Notification) HasObject() bool {
	return n.object != nil
}

// Object returns the event data object
func (n *Notification) Object() *ChargeObject {
	return n.object
}

// SessionID returns the payment session id the notification correlates to,
// zero when absent
func (n *Notification) SessionID() int64 {
	if n.object == nil {
		return 0
	}
	if !n.object.Metadata.PaymentSessionID.Set {
		return 0
	}
	return n.object.Metadata.PaymentSessionID.Int64
}

// ExtraData returns the whitelisted subset of the payload fields, in
// whitelist order
func (n *Notification) ExtraData() transaction.ExtraData {
	e := transaction.ExtraData{}
	for _, k := range extraDataKeys {
		if v, ok := n.raw[k]; ok {
			e.Set(k, v)
		}
	}
	return e
}
