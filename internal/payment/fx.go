package payment

import (
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/adapters"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/adapters/stripe"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/repository"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(stripe.New())
	}),
	fx.Provide(service.NewService),
)
