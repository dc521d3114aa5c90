package allocation

import (
	"testing"
	"time"

	billingdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/billing/domain"
	"github.com/bwmarrin/snowflake"
)

func bill(id int64, total, paid int64, status billingdomain.BillStatus, due time.Time) billingdomain.Bill {
	return billingdomain.Bill{
		ID:          snowflake.ID(id),
		BillNumber:  "BILL-" + due.Format("20060102"),
		TotalAmount: total,
		PaidAmount:  paid,
		Status:      status,
		DueDate:     due,
	}
}

func TestBuildPaysOldestObligationFirst(t *testing.T) {
	overdue := bill(1, 3000, 0, billingdomain.BillStatusOverdue, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	pending := bill(2, 3000, 0, billingdomain.BillStatusPending, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))

	plan := Build([]billingdomain.Bill{overdue, pending}, 3000)

	if len(plan.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(plan.Lines))
	}
	if plan.Lines[0].BillID != overdue.ID {
		t.Fatalf("expected overdue bill first, got %v", plan.Lines[0].BillID)
	}
	if plan.Lines[0].Status != billingdomain.BillStatusPaid {
		t.Fatalf("expected paid, got %v", plan.Lines[0].Status)
	}
	if plan.Remainder != 0 {
		t.Fatalf("expected zero remainder, got %d", plan.Remainder)
	}
}

func TestBuildPartialApplication(t *testing.T) {
	only := bill(1, 8000, 0, billingdomain.BillStatusPending, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	plan := Build([]billingdomain.Bill{only}, 5000)

	if len(plan.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(plan.Lines))
	}
	line := plan.Lines[0]
	if line.Amount != 5000 || line.PaidAmount != 5000 {
		t.Fatalf("expected 5000 applied, got amount=%d paid=%d", line.Amount, line.PaidAmount)
	}
	if line.Status != billingdomain.BillStatusPartial {
		t.Fatalf("expected partial, got %v", line.Status)
	}
	if plan.Remainder != 0 {
		t.Fatalf("expected zero remainder, got %d", plan.Remainder)
	}
}

func TestBuildReportsOverpayment(t *testing.T) {
	only := bill(1, 4000, 0, billingdomain.BillStatusPending, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	plan := Build([]billingdomain.Bill{only}, 10000)

	if len(plan.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(plan.Lines))
	}
	line := plan.Lines[0]
	if line.Amount != 4000 || line.PaidAmount != 4000 {
		t.Fatalf("expected full settlement, got amount=%d paid=%d", line.Amount, line.PaidAmount)
	}
	if line.Status != billingdomain.BillStatusPaid {
		t.Fatalf("expected paid, got %v", line.Status)
	}
	if plan.Remainder != 6000 {
		t.Fatalf("expected remainder 6000, got %d", plan.Remainder)
	}
}

func TestBuildSpansMultipleBills(t *testing.T) {
	bills := []billingdomain.Bill{
		bill(1, 2000, 500, billingdomain.BillStatusPartial, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		bill(2, 3000, 0, billingdomain.BillStatusPending, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		bill(3, 1000, 0, billingdomain.BillStatusPending, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	plan := Build(bills, 2500)

	if len(plan.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(plan.Lines))
	}
	if plan.Lines[0].Amount != 1500 || plan.Lines[0].Status != billingdomain.BillStatusPaid {
		t.Fatalf("unexpected first line: %+v", plan.Lines[0])
	}
	if plan.Lines[1].Amount != 1000 || plan.Lines[1].Status != billingdomain.BillStatusPartial {
		t.Fatalf("unexpected second line: %+v", plan.Lines[1])
	}
	if plan.Remainder != 0 {
		t.Fatalf("expected zero remainder, got %d", plan.Remainder)
	}
	if bills[0].PaidAmount != 500 {
		t.Fatalf("input bill mutated: %+v", bills[0])
	}
}

func TestBuildConservation(t *testing.T) {
	cases := []struct {
		name   string
		bills  []billingdomain.Bill
		amount int64
	}{
		{"no bills", nil, 7500},
		{"exact", []billingdomain.Bill{bill(1, 7500, 0, billingdomain.BillStatusPending, time.Now())}, 7500},
		{"spread", []billingdomain.Bill{
			bill(1, 100, 0, billingdomain.BillStatusOverdue, time.Now()),
			bill(2, 200, 50, billingdomain.BillStatusPartial, time.Now()),
			bill(3, 300, 0, billingdomain.BillStatusPending, time.Now()),
		}, 475},
		{"fully paid inputs skipped", []billingdomain.Bill{
			bill(1, 100, 100, billingdomain.BillStatusPaid, time.Now()),
			bill(2, 200, 0, billingdomain.BillStatusPending, time.Now()),
		}, 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := Build(tc.bills, tc.amount)
			if plan.Applied()+plan.Remainder != tc.amount {
				t.Fatalf("conservation violated: applied=%d remainder=%d amount=%d",
					plan.Applied(), plan.Remainder, tc.amount)
			}
			for _, line := range plan.Lines {
				if line.Amount <= 0 {
					t.Fatalf("non-positive line amount: %+v", line)
				}
				for _, b := range tc.bills {
					if b.ID == line.BillID && line.PaidAmount > b.TotalAmount {
						t.Fatalf("paid beyond total: %+v", line)
					}
				}
			}
		})
	}
}

func TestBuildEmptyForNoOutstanding(t *testing.T) {
	plan := Build(nil, 5000)
	if len(plan.Lines) != 0 {
		t.Fatalf("expected empty plan, got %d lines", len(plan.Lines))
	}
	if plan.Remainder != 5000 {
		t.Fatalf("expected full amount back, got %d", plan.Remainder)
	}
}

func TestSortOutstandingOrdering(t *testing.T) {
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan5 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	bills := []billingdomain.Bill{
		bill(1, 100, 0, billingdomain.BillStatusPending, jan5),
		bill(2, 100, 0, billingdomain.BillStatusPending, jan1),
		bill(3, 100, 0, billingdomain.BillStatusOverdue, jan1),
	}

	SortOutstanding(bills)

	want := []snowflake.ID{3, 2, 1}
	for i, id := range want {
		if bills[i].ID != id {
			t.Fatalf("position %d: expected bill %d, got %d", i, id, bills[i].ID)
		}
	}
}
