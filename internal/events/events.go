package events

// Billing event types emitted by the reconciliation engine for
// downstream rollups.
const (
	EventPaymentSettled  = "payment.settled"
	EventPaymentOverpaid = "payment.overpayment"
	EventBillSettled     = "bill.settled"
	EventBillOverdue     = "bill.overdue"
)

// SettlementPayload captures the minimal data needed to roll up a
// reconciled payment.
type SettlementPayload struct {
	TransactionID string `json:"transaction_id"`
	CustomerID    string `json:"customer_id"`
	Applied       int64  `json:"applied"`
	Remainder     int64  `json:"remainder,omitempty"`
	BillCount     int    `json:"bill_count"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p SettlementPayload) ToMap() map[string]any {
	payload := map[string]any{
		"transaction_id": p.TransactionID,
		"customer_id":    p.CustomerID,
		"applied":        p.Applied,
		"bill_count":     p.BillCount,
	}
	if p.Remainder > 0 {
		payload["remainder"] = p.Remainder
	}
	return payload
}
