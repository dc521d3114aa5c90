// Package domain contains the bill model and its settlement state machine.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BillStatus tracks how much of a bill has been settled.
type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPartial BillStatus = "partial"
	BillStatusOverdue BillStatus = "overdue"
	BillStatusPaid    BillStatus = "paid"
)

// OutstandingStatuses are the statuses a bill can hold while money is
// still owed on it.
var OutstandingStatuses = []BillStatus{
	BillStatusPending,
	BillStatusPartial,
	BillStatusOverdue,
}

// Bill is a single obligation issued to a customer. Amounts are minor
// currency units (cents). 0 <= PaidAmount <= TotalAmount always holds.
type Bill struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	ISPID       snowflake.ID `gorm:"column:isp_id;not null;index"`
	CustomerID  snowflake.ID `gorm:"not null;index"`
	BillNumber  string       `gorm:"type:text;not null"`
	TotalAmount int64        `gorm:"not null"`
	PaidAmount  int64        `gorm:"not null;default:0"`
	Status      BillStatus   `gorm:"type:text;not null;index"`
	DueDate     time.Time    `gorm:"not null"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Bill) TableName() string { return "bills" }

// Owed returns the unpaid portion of the bill.
func (b Bill) Owed() int64 {
	owed := b.TotalAmount - b.PaidAmount
	if owed < 0 {
		return 0
	}
	return owed
}

// StatusFor returns the settlement status implied by a paid amount.
// Fully paid wins over everything; a partially paid bill is partial even
// when its due date has passed; an untouched bill keeps its due-date
// driven status (pending or overdue), which is owned upstream.
func (b Bill) StatusFor(paidAmount int64) BillStatus {
	switch {
	case paidAmount >= b.TotalAmount:
		return BillStatusPaid
	case paidAmount > 0:
		return BillStatusPartial
	default:
		return b.Status
	}
}
