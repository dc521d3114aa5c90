// Package repository implements the ledger store over gorm.
package repository

import (
	"context"
	"strings"
	"time"

	billingdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/billing/domain"
	customerdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/customer/domain"
	paymentdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repositoryImpl struct{}

// Provide constructs the gorm-backed payment repository.
func Provide() paymentdomain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) FindCustomerByContact(ctx context.Context, db *gorm.DB, email, phone string) (*customerdomain.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		var customer customerdomain.Customer
		if err := db.WithContext(ctx).Raw(
			`SELECT id, isp_id, name, email, phone, created_at, updated_at
			 FROM customers
			 WHERE LOWER(email) = ?
			 LIMIT 1`,
			email,
		).Scan(&customer).Error; err != nil {
			return nil, err
		}
		if customer.ID != 0 {
			return &customer, nil
		}
	}

	phone = strings.TrimSpace(phone)
	if phone != "" {
		var customer customerdomain.Customer
		if err := db.WithContext(ctx).Raw(
			`SELECT id, isp_id, name, email, phone, created_at, updated_at
			 FROM customers
			 WHERE phone = ?
			 LIMIT 1`,
			phone,
		).Scan(&customer).Error; err != nil {
			return nil, err
		}
		if customer.ID != 0 {
			return &customer, nil
		}
	}

	return nil, nil
}

func (r *repositoryImpl) TransactionExists(ctx context.Context, db *gorm.DB, transactionID string) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM payments
		 WHERE transaction_id = ?`,
		transactionID,
	).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) FindOutstandingBills(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]billingdomain.Bill, error) {
	query := `SELECT id, isp_id, customer_id, bill_number, total_amount, paid_amount, status, due_date, created_at, updated_at
		 FROM bills
		 WHERE customer_id = ? AND status IN ?
		 ORDER BY due_date ASC,
		          CASE WHEN status = 'overdue' THEN 0 ELSE 1 END ASC,
		          id ASC`
	// sqlite (tests) rejects row locks; postgres needs them so the owed
	// amount is never computed against a stale paid_amount.
	if db.Dialector.Name() == "postgres" {
		query += "\n\t\t FOR UPDATE"
	}

	var bills []billingdomain.Bill
	if err := db.WithContext(ctx).Raw(
		query,
		customerID,
		billingdomain.OutstandingStatuses,
	).Scan(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *repositoryImpl) InsertPayment(ctx context.Context, db *gorm.DB, payment *paymentdomain.Payment) (bool, error) {
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}, {Name: "bill_id"}},
		DoNothing: true,
	}).Create(payment)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) UpdateBillSettlement(ctx context.Context, db *gorm.DB, billID snowflake.ID, paidAmount int64, status billingdomain.BillStatus, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bills
		 SET paid_amount = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		paidAmount,
		status,
		now,
		billID,
	).Error
}
