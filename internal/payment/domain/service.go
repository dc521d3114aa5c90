package domain

import (
	"context"
	"errors"
)

// Service drives payment notifications through reconciliation.
type Service interface {
	Reconcile(ctx context.Context, payment NormalizedPayment) (*ReconciliationResult, error)
	ReconcileBatch(ctx context.Context, payments []NormalizedPayment) (*BatchResult, error)
}

var (
	ErrMissingContact    = errors.New("missing_contact")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrCustomerNotFound  = errors.New("customer_not_found")
	ErrProviderNotFound  = errors.New("provider_not_found")
	ErrInvalidPayload    = errors.New("invalid_payload")
	ErrEventNotSupported = errors.New("event_not_supported")
)
