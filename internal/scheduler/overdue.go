package scheduler

import (
	"context"
	"time"

	billingdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/billing/domain"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/events"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/observability/metrics"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type overdueBill struct {
	ID         snowflake.ID
	ISPID      snowflake.ID `gorm:"column:isp_id"`
	CustomerID snowflake.ID
	BillNumber string
	DueDate    time.Time
}

// SweepOverdueBills marks untouched pending bills past their due date
// as overdue, in batches so replicas can share the work. Partially paid
// bills keep their partial status and paid bills are never touched.
func (s *Scheduler) SweepOverdueBills(ctx context.Context) (int, error) {
	now := s.clock.Now()
	total := 0

	for {
		flipped, err := s.sweepBatch(ctx, now)
		if err != nil {
			return total, err
		}
		total += flipped
		if flipped < s.batchSize {
			metrics.Reconciliation().AddOverdue(total)
			return total, nil
		}
	}
}

func (s *Scheduler) sweepBatch(ctx context.Context, now time.Time) (int, error) {
	var bills []overdueBill

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := `SELECT id, isp_id, customer_id, bill_number, due_date
		 FROM bills
		 WHERE status IN ? AND due_date < ?
		 ORDER BY due_date ASC, id ASC`
		if tx.Dialector.Name() == "postgres" {
			query += " FOR UPDATE SKIP LOCKED"
		}
		query += " LIMIT ?"

		sweepable := []billingdomain.BillStatus{billingdomain.BillStatusPending}
		if err := tx.WithContext(ctx).Raw(query, sweepable, now, s.batchSize).Scan(&bills).Error; err != nil {
			return err
		}
		if len(bills) == 0 {
			return nil
		}

		ids := make([]snowflake.ID, 0, len(bills))
		for _, bill := range bills {
			ids = append(ids, bill.ID)
		}
		if err := tx.WithContext(ctx).Exec(
			`UPDATE bills SET status = ?, updated_at = ? WHERE id IN ? AND status IN ?`,
			billingdomain.BillStatusOverdue,
			now,
			ids,
			sweepable,
		).Error; err != nil {
			return err
		}

		for _, bill := range bills {
			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				ISPID: bill.ISPID,
				Type:  events.EventBillOverdue,
				Payload: map[string]any{
					"bill_id":     bill.ID.String(),
					"bill_number": bill.BillNumber,
					"customer_id": bill.CustomerID.String(),
					"due_date":    bill.DueDate.UTC().Format(time.RFC3339),
				},
				DedupeKey: events.EventBillOverdue + ":" + bill.ID.String(),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(bills), nil
}
