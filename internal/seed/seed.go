// Package seed loads a small demo dataset for local development so the
// webhook and batch endpoints have customers and bills to reconcile
// against.
package seed

import (
	"context"
	"errors"
	"time"

	billingdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/billing/domain"
	customerdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/customer/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const demoISPID = snowflake.ID(1)

type demoCustomer struct {
	name  string
	email string
	phone string
	bills []demoBill
}

type demoBill struct {
	number string
	total  int64
	dueIn  time.Duration
	status billingdomain.BillStatus
}

var demoData = []demoCustomer{
	{
		name:  "Arif Traders",
		email: "arif@example.com",
		phone: "+15550100",
		bills: []demoBill{
			{number: "BILL-2024-001", total: 4500, dueIn: -72 * time.Hour, status: billingdomain.BillStatusOverdue},
			{number: "BILL-2024-002", total: 4500, dueIn: 168 * time.Hour, status: billingdomain.BillStatusPending},
		},
	},
	{
		name:  "Nadia Home Fiber",
		email: "nadia@example.com",
		phone: "+15550101",
		bills: []demoBill{
			{number: "BILL-2024-003", total: 2500, dueIn: 96 * time.Hour, status: billingdomain.BillStatusPending},
		},
	},
	{
		name:  "Corner Cafe Wifi",
		email: "cafe@example.com",
		phone: "+15550102",
	},
}

// EnsureDemoData inserts the demo customers and bills once. Reruns are
// no-ops keyed on the customer email.
func EnsureDemoData(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}

	ctx := context.Background()
	now := time.Now().UTC()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, demo := range demoData {
			var customer customerdomain.Customer
			err := tx.WithContext(ctx).Where("email = ?", demo.email).First(&customer).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			customer = customerdomain.Customer{
				ID:        node.Generate(),
				ISPID:     demoISPID,
				Name:      demo.name,
				Email:     demo.email,
				Phone:     demo.phone,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.WithContext(ctx).Create(&customer).Error; err != nil {
				return err
			}

			for _, bill := range demo.bills {
				row := billingdomain.Bill{
					ID:          node.Generate(),
					ISPID:       demoISPID,
					CustomerID:  customer.ID,
					BillNumber:  bill.number,
					TotalAmount: bill.total,
					Status:      bill.status,
					DueDate:     now.Add(bill.dueIn),
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
