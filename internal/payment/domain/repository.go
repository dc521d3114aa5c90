package domain

import (
	"context"
	"time"

	billingdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/billing/domain"
	customerdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/customer/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the ledger store surface the orchestrator drives. Every
// method takes the *gorm.DB it should run against so callers can scope
// a whole reconciliation to one transaction.
type Repository interface {
	// FindCustomerByContact resolves by email first, phone second.
	// Returns nil when no customer matches.
	FindCustomerByContact(ctx context.Context, db *gorm.DB, email, phone string) (*customerdomain.Customer, error)

	// TransactionExists reports whether any payment row already carries
	// the gateway transaction ID.
	TransactionExists(ctx context.Context, db *gorm.DB, transactionID string) (bool, error)

	// FindOutstandingBills loads the customer's pending/partial/overdue
	// bills ordered oldest due date first, overdue before other statuses
	// on ties. Rows are locked for update on dialects that support it.
	FindOutstandingBills(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]billingdomain.Bill, error)

	// InsertPayment creates one payment row. Returns false without error
	// when the (transaction_id, bill_id) pair was already recorded.
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) (bool, error)

	// UpdateBillSettlement writes a bill's new paid amount and status.
	UpdateBillSettlement(ctx context.Context, db *gorm.DB, billID snowflake.ID, paidAmount int64, status billingdomain.BillStatus, now time.Time) error
}
