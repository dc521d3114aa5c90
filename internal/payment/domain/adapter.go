package domain

import "context"

// GatewayAdapter translates one gateway's event payload into the
// engine's normalized payment record. Adapters never persist anything.
type GatewayAdapter interface {
	Provider() string

	// Translate returns ErrEventNotSupported for event kinds the
	// adapter does not handle and ErrInvalidPayload for undecodable or
	// incomplete events.
	Translate(ctx context.Context, payload []byte) (*NormalizedPayment, error)
}
