package domain

import (
	"time"

	billingdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/billing/domain"
	"github.com/bwmarrin/snowflake"
)

// PaymentStatusCompleted is the only status the engine writes; payments
// are immutable once created.
const PaymentStatusCompleted = "completed"

// ReconciledNote tags payment rows created by the reconciliation engine.
const ReconciledNote = "auto-reconciled from gateway notification"

// Payment records money applied to exactly one bill. A gateway
// transaction that spans several bills produces several rows sharing a
// TransactionID; the (transaction_id, bill_id) pair is unique.
type Payment struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	ISPID         snowflake.ID `gorm:"column:isp_id;not null;index"`
	CustomerID    snowflake.ID `gorm:"not null;index"`
	BillID        snowflake.ID `gorm:"not null;index;uniqueIndex:ux_payments_txn_bill,priority:2"`
	Amount        int64        `gorm:"not null"`
	Method        string       `gorm:"type:text;not null"`
	PaymentDate   time.Time    `gorm:"not null"`
	TransactionID string       `gorm:"type:text;not null;index;uniqueIndex:ux_payments_txn_bill,priority:1"`
	Status        string       `gorm:"type:text;not null"`
	Notes         string       `gorm:"type:text"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// NormalizedPayment is a gateway-agnostic payment notification. Amount
// is in minor currency units. Gateway adapters are the only place that
// builds these from external shapes.
type NormalizedPayment struct {
	TransactionID string    `json:"transaction_id"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	PaymentDate   time.Time `json:"payment_date"`
}

// BillAllocation describes how much of a payment landed on one bill and
// the bill state after the update.
type BillAllocation struct {
	BillID        snowflake.ID             `json:"bill_id"`
	BillNumber    string                   `json:"bill_number"`
	AppliedAmount int64                    `json:"applied_amount"`
	PaidAmount    int64                    `json:"paid_amount"`
	Status        billingdomain.BillStatus `json:"status"`
}

// ReconciliationResult is the terminal outcome of one Reconcile call.
type ReconciliationResult struct {
	TransactionID     string           `json:"transaction_id"`
	CustomerID        snowflake.ID     `json:"customer_id"`
	Matched           bool             `json:"matched"`
	AlreadyReconciled bool             `json:"already_reconciled"`
	Allocations       []BillAllocation `json:"allocations,omitempty"`
	PaymentIDs        []snowflake.ID   `json:"payment_ids,omitempty"`
	Remainder         int64            `json:"remainder"`
}

// BatchItem holds one input's outcome. Error is set when the item hard
// failed; otherwise Result carries the typed outcome, including the
// unmatched case. Items come back in input order.
type BatchItem struct {
	TransactionID string                `json:"transaction_id"`
	Result        *ReconciliationResult `json:"result,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// BatchResult aggregates a batch run. Successful + Failed +
// AlreadyMatched always equals Total.
type BatchResult struct {
	Total          int         `json:"total"`
	Successful     int         `json:"successful"`
	Failed         int         `json:"failed"`
	AlreadyMatched int         `json:"already_matched"`
	Items          []BatchItem `json:"items"`
}
