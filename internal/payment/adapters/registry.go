// Package adapters keys gateway translators by provider name.
package adapters

import (
	"strings"

	paymentdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/domain"
)

type Registry struct {
	adapters map[string]paymentdomain.GatewayAdapter
}

func NewRegistry(adapters ...paymentdomain.GatewayAdapter) *Registry {
	registry := &Registry{adapters: make(map[string]paymentdomain.GatewayAdapter, len(adapters))}
	for _, adapter := range adapters {
		registry.adapters[strings.ToLower(adapter.Provider())] = adapter
	}
	return registry
}

func (r *Registry) ProviderExists(provider string) bool {
	_, ok := r.adapters[strings.ToLower(strings.TrimSpace(provider))]
	return ok
}

func (r *Registry) Lookup(provider string) (paymentdomain.GatewayAdapter, bool) {
	adapter, ok := r.adapters[strings.ToLower(strings.TrimSpace(provider))]
	return adapter, ok
}
