// Package allocation holds the pure decision logic that splits a payment
// amount across a customer's outstanding bills. No I/O happens here; the
// orchestrator realizes the returned plan inside its transaction.
package allocation

import (
	"sort"

	billingdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/billing/domain"
	"github.com/bwmarrin/snowflake"
)

// Line is one planned application of money to one bill, together with
// the bill state the update should produce.
type Line struct {
	BillID     snowflake.ID
	BillNumber string
	Amount     int64
	PaidAmount int64
	Status     billingdomain.BillStatus
}

// Plan is the ordered outcome of allocating one payment. Remainder is
// the unapplied portion; a positive remainder signals an overpayment.
type Plan struct {
	Lines     []Line
	Remainder int64
}

// Applied returns the total amount the plan puts on bills.
func (p Plan) Applied() int64 {
	var total int64
	for _, line := range p.Lines {
		total += line.Amount
	}
	return total
}

// Build walks bills in the order given, applying min(remaining, owed) to
// each until the amount is exhausted. Bills with nothing owed are
// skipped; no line ever carries a zero or negative amount; input bills
// are not mutated. Callers pass bills already filtered to outstanding
// statuses and ordered per SortOutstanding. A non-positive amount yields
// an empty plan.
func Build(bills []billingdomain.Bill, amount int64) Plan {
	if amount <= 0 {
		return Plan{}
	}

	plan := Plan{Remainder: amount}
	for _, bill := range bills {
		if plan.Remainder == 0 {
			break
		}
		owed := bill.Owed()
		if owed <= 0 {
			continue
		}

		applied := owed
		if plan.Remainder < applied {
			applied = plan.Remainder
		}

		paid := bill.PaidAmount + applied
		plan.Lines = append(plan.Lines, Line{
			BillID:     bill.ID,
			BillNumber: bill.BillNumber,
			Amount:     applied,
			PaidAmount: paid,
			Status:     bill.StatusFor(paid),
		})
		plan.Remainder -= applied
	}
	return plan
}

// SortOutstanding orders bills oldest due date first, with overdue bills
// ahead of pending/partial ones on equal due dates. This is the
// canonical allocation order; the repository query mirrors it.
func SortOutstanding(bills []billingdomain.Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		if !bills[i].DueDate.Equal(bills[j].DueDate) {
			return bills[i].DueDate.Before(bills[j].DueDate)
		}
		return statusRank(bills[i].Status) < statusRank(bills[j].Status)
	})
}

func statusRank(status billingdomain.BillStatus) int {
	if status == billingdomain.BillStatusOverdue {
		return 0
	}
	return 1
}
