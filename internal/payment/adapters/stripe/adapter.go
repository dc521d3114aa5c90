// Package stripe translates Stripe webhook events into normalized
// payment records. Stripe amounts are already minor currency units, the
// engine's native unit, so no conversion applies here.
package stripe

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paymentdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/domain"
)

const Provider = "stripe"

const eventPaymentSucceeded = "payment_intent.succeeded"

type webhookEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object paymentIntent `json:"object"`
	} `json:"data"`
}

type paymentIntent struct {
	ID                 string            `json:"id"`
	Amount             int64             `json:"amount"`
	AmountReceived     int64             `json:"amount_received"`
	Currency           string            `json:"currency"`
	ReceiptEmail       string            `json:"receipt_email"`
	PaymentMethodTypes []string          `json:"payment_method_types"`
	Created            int64             `json:"created"`
	Metadata           map[string]string `json:"metadata"`
}

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Provider() string { return Provider }

// Translate accepts payment_intent.succeeded events only; every other
// event kind is rejected without side effects.
func (a *Adapter) Translate(ctx context.Context, payload []byte) (*paymentdomain.NormalizedPayment, error) {
	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.Type) != eventPaymentSucceeded {
		return nil, paymentdomain.ErrEventNotSupported
	}

	intent := event.Data.Object
	if strings.TrimSpace(intent.ID) == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}

	amount := intent.AmountReceived
	if amount == 0 {
		amount = intent.Amount
	}
	if amount <= 0 {
		return nil, paymentdomain.ErrInvalidAmount
	}

	email := strings.TrimSpace(intent.ReceiptEmail)
	if email == "" {
		email = strings.TrimSpace(intent.Metadata["customer_email"])
	}
	phone := strings.TrimSpace(intent.Metadata["customer_phone"])
	if email == "" && phone == "" {
		return nil, paymentdomain.ErrMissingContact
	}

	method := "card"
	if len(intent.PaymentMethodTypes) > 0 && strings.TrimSpace(intent.PaymentMethodTypes[0]) != "" {
		method = strings.TrimSpace(intent.PaymentMethodTypes[0])
	}

	created := intent.Created
	if created == 0 {
		created = event.Created
	}
	var paymentDate time.Time
	if created > 0 {
		paymentDate = time.Unix(created, 0).UTC()
	}

	return &paymentdomain.NormalizedPayment{
		TransactionID: intent.ID,
		Email:         email,
		Phone:         phone,
		Amount:        amount,
		Method:        method,
		PaymentDate:   paymentDate,
	}, nil
}
