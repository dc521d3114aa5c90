package scheduler

import (
	"context"
	"testing"
	"time"

	billingdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/billing/domain"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/clock"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/events"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var sweepNow = time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC)

func setupSweepDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS bills (
			id BIGINT PRIMARY KEY,
			isp_id BIGINT NOT NULL,
			customer_id BIGINT NOT NULL,
			bill_number TEXT NOT NULL,
			total_amount BIGINT NOT NULL,
			paid_amount BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			due_date TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS billing_events (
			id BIGINT PRIMARY KEY,
			isp_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}',
			dedupe_key TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_billing_events_dedupe ON billing_events (dedupe_key)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func newSweeper(t *testing.T, db *gorm.DB, batchSize int) *Scheduler {
	t.Helper()
	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return &Scheduler{
		db:        db,
		log:       zap.NewNop(),
		clock:     clock.Fixed(sweepNow),
		genID:     node,
		outbox:    events.NewOutbox(db, node),
		interval:  time.Hour,
		batchSize: batchSize,
	}
}

func insertSweepBill(t *testing.T, db *gorm.DB, id int64, status billingdomain.BillStatus, due time.Time) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO bills (id, isp_id, customer_id, bill_number, total_amount, paid_amount, status, due_date, created_at, updated_at)
		 VALUES (?, 1, 9, ?, 1000, 0, ?, ?, ?, ?)`,
		id, snowflake.ID(id).String(), status, due, sweepNow, sweepNow,
	).Error; err != nil {
		t.Fatalf("insert bill: %v", err)
	}
}

func sweepBillStatus(t *testing.T, db *gorm.DB, id int64) string {
	t.Helper()
	var status string
	if err := db.Raw(`SELECT status FROM bills WHERE id = ?`, id).Scan(&status).Error; err != nil {
		t.Fatalf("load status: %v", err)
	}
	return status
}

func TestSweepMarksPastDueBillsOverdue(t *testing.T) {
	db := setupSweepDB(t)
	sweeper := newSweeper(t, db, 200)

	insertSweepBill(t, db, 900, billingdomain.BillStatusPending, sweepNow.AddDate(0, 0, -3))
	insertSweepBill(t, db, 901, billingdomain.BillStatusPartial, sweepNow.AddDate(0, 0, -1))
	insertSweepBill(t, db, 902, billingdomain.BillStatusPending, sweepNow.AddDate(0, 0, 5))
	insertSweepBill(t, db, 903, billingdomain.BillStatusPaid, sweepNow.AddDate(0, 0, -10))

	flipped, err := sweeper.SweepOverdueBills(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if flipped != 1 {
		t.Fatalf("expected 1 bill flipped, got %d", flipped)
	}

	if got := sweepBillStatus(t, db, 900); got != string(billingdomain.BillStatusOverdue) {
		t.Fatalf("bill 900: expected overdue, got %s", got)
	}
	if got := sweepBillStatus(t, db, 901); got != string(billingdomain.BillStatusPartial) {
		t.Fatalf("bill 901: partially paid bill must stay partial, got %s", got)
	}
	if got := sweepBillStatus(t, db, 902); got != string(billingdomain.BillStatusPending) {
		t.Fatalf("bill 902: future bill should stay pending, got %s", got)
	}
	if got := sweepBillStatus(t, db, 903); got != string(billingdomain.BillStatusPaid) {
		t.Fatalf("bill 903: paid bill must not change, got %s", got)
	}

	var eventCount int64
	if err := db.Raw(
		`SELECT COUNT(1) FROM billing_events WHERE event_type = ?`, events.EventBillOverdue,
	).Scan(&eventCount).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if eventCount != 1 {
		t.Fatalf("expected 1 overdue event, got %d", eventCount)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	db := setupSweepDB(t)
	sweeper := newSweeper(t, db, 200)

	insertSweepBill(t, db, 910, billingdomain.BillStatusPending, sweepNow.AddDate(0, 0, -2))

	if _, err := sweeper.SweepOverdueBills(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	flipped, err := sweeper.SweepOverdueBills(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if flipped != 0 {
		t.Fatalf("expected no work on second sweep, got %d", flipped)
	}
}

func TestSweepDrainsInBatches(t *testing.T) {
	db := setupSweepDB(t)
	sweeper := newSweeper(t, db, 2)

	for i := int64(0); i < 5; i++ {
		insertSweepBill(t, db, 920+i, billingdomain.BillStatusPending, sweepNow.AddDate(0, 0, -1))
	}

	flipped, err := sweeper.SweepOverdueBills(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if flipped != 5 {
		t.Fatalf("expected 5 bills flipped across batches, got %d", flipped)
	}
}
