package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	auditdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/audit/domain"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/auditcontext"
	billingdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/billing/domain"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/clock"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/events"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/observability/metrics"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/allocation"
	paymentdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errDuplicateRace aborts the transaction when a concurrent reconcile
// for the same transaction beat us to the insert. The caller maps it to
// an already-reconciled result.
var errDuplicateRace = errors.New("duplicate_transaction_race")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	AuditSvc auditdomain.Service
	Outbox   *events.Outbox
	Repo     paymentdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	auditSvc auditdomain.Service
	outbox   *events.Outbox
	repo     paymentdomain.Repository
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		auditSvc: p.AuditSvc,
		outbox:   p.Outbox,
		repo:     p.Repo,
	}
}

// Reconcile applies one normalized payment notification to the owning
// customer's outstanding bills inside a single transaction. Replaying
// the same transaction ID is a no-op after the first successful call.
func (s *Service) Reconcile(ctx context.Context, payment paymentdomain.NormalizedPayment) (*paymentdomain.ReconciliationResult, error) {
	payment.TransactionID = strings.TrimSpace(payment.TransactionID)
	payment.Email = strings.TrimSpace(payment.Email)
	payment.Phone = strings.TrimSpace(payment.Phone)
	payment.Method = strings.TrimSpace(payment.Method)

	if payment.TransactionID == "" {
		metrics.Reconciliation().ObserveOutcome(metrics.OutcomeFailed)
		return nil, paymentdomain.ErrInvalidPayload
	}
	if payment.Email == "" && payment.Phone == "" {
		metrics.Reconciliation().ObserveOutcome(metrics.OutcomeFailed)
		return nil, paymentdomain.ErrMissingContact
	}
	if payment.Amount <= 0 {
		metrics.Reconciliation().ObserveOutcome(metrics.OutcomeFailed)
		return nil, paymentdomain.ErrInvalidAmount
	}

	result := &paymentdomain.ReconciliationResult{TransactionID: payment.TransactionID}
	var ispID snowflake.ID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.repo.FindCustomerByContact(ctx, tx, payment.Email, payment.Phone)
		if err != nil {
			return err
		}
		if customer == nil {
			return paymentdomain.ErrCustomerNotFound
		}
		result.CustomerID = customer.ID
		ispID = customer.ISPID

		exists, err := s.repo.TransactionExists(ctx, tx, payment.TransactionID)
		if err != nil {
			return err
		}
		if exists {
			result.Matched = true
			result.AlreadyReconciled = true
			return nil
		}

		bills, err := s.repo.FindOutstandingBills(ctx, tx, customer.ID)
		if err != nil {
			return err
		}

		// Re-check after the bill row locks are held. A concurrent
		// reconcile for the same transaction may have committed while we
		// waited on the locks; its rows can sit on different bills, so
		// the (transaction_id, bill_id) index alone would not stop a
		// second application.
		exists, err = s.repo.TransactionExists(ctx, tx, payment.TransactionID)
		if err != nil {
			return err
		}
		if exists {
			result.Matched = true
			result.AlreadyReconciled = true
			return nil
		}

		allocation.SortOutstanding(bills)
		plan := allocation.Build(bills, payment.Amount)
		if len(plan.Lines) == 0 {
			// Nothing persisted: a later redelivery can still match
			// once a bill exists.
			result.Remainder = plan.Remainder
			return nil
		}

		now := s.clock.Now()
		paymentDate := payment.PaymentDate
		if paymentDate.IsZero() {
			paymentDate = now
		}
		method := payment.Method
		if method == "" {
			method = "gateway"
		}

		for _, line := range plan.Lines {
			row := &paymentdomain.Payment{
				ID:            s.genID.Generate(),
				ISPID:         customer.ISPID,
				CustomerID:    customer.ID,
				BillID:        line.BillID,
				Amount:        line.Amount,
				Method:        method,
				PaymentDate:   paymentDate,
				TransactionID: payment.TransactionID,
				Status:        paymentdomain.PaymentStatusCompleted,
				Notes:         paymentdomain.ReconciledNote,
				CreatedAt:     now,
			}
			inserted, err := s.repo.InsertPayment(ctx, tx, row)
			if err != nil {
				return err
			}
			if !inserted {
				return errDuplicateRace
			}
			if err := s.repo.UpdateBillSettlement(ctx, tx, line.BillID, line.PaidAmount, line.Status, now); err != nil {
				return err
			}
			result.PaymentIDs = append(result.PaymentIDs, row.ID)
			result.Allocations = append(result.Allocations, paymentdomain.BillAllocation{
				BillID:        line.BillID,
				BillNumber:    line.BillNumber,
				AppliedAmount: line.Amount,
				PaidAmount:    line.PaidAmount,
				Status:        line.Status,
			})
		}
		result.Matched = true
		result.Remainder = plan.Remainder

		if err := s.publishSettled(ctx, tx, customer.ISPID, payment.TransactionID, result); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errDuplicateRace) {
			// The constraint backstop fired: treat as already handled.
			metrics.Reconciliation().ObserveOutcome(metrics.OutcomeDuplicate)
			return &paymentdomain.ReconciliationResult{
				TransactionID:     payment.TransactionID,
				CustomerID:        result.CustomerID,
				Matched:           true,
				AlreadyReconciled: true,
			}, nil
		}
		metrics.Reconciliation().ObserveOutcome(metrics.OutcomeFailed)
		return nil, err
	}

	observeOutcome(result)
	s.recordActivity(ctx, ispID, payment, result)
	return result, nil
}

func observeOutcome(result *paymentdomain.ReconciliationResult) {
	m := metrics.Reconciliation()
	switch {
	case result.AlreadyReconciled:
		m.ObserveOutcome(metrics.OutcomeDuplicate)
	case result.Matched:
		m.ObserveOutcome(metrics.OutcomeMatched)
		m.AddApplied(appliedTotal(result))
	default:
		m.ObserveOutcome(metrics.OutcomeUnmatched)
	}
}

// ReconcileBatch runs every payment independently. A bad record becomes
// a per-item failure; remaining items keep going, and every input
// produces exactly one item in input order.
func (s *Service) ReconcileBatch(ctx context.Context, payments []paymentdomain.NormalizedPayment) (*paymentdomain.BatchResult, error) {
	batch := &paymentdomain.BatchResult{
		Total: len(payments),
		Items: make([]paymentdomain.BatchItem, 0, len(payments)),
	}

	for _, payment := range payments {
		item := paymentdomain.BatchItem{TransactionID: strings.TrimSpace(payment.TransactionID)}
		result, err := s.reconcileItem(ctx, payment)
		switch {
		case err != nil:
			batch.Failed++
			item.Error = err.Error()
		case result.AlreadyReconciled:
			batch.AlreadyMatched++
			item.Result = result
		case result.Matched:
			batch.Successful++
			item.Result = result
		default:
			batch.Failed++
			item.Result = result
		}
		batch.Items = append(batch.Items, item)
	}
	return batch, nil
}

func (s *Service) reconcileItem(ctx context.Context, payment paymentdomain.NormalizedPayment) (result *paymentdomain.ReconciliationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reconcile panic: %v", r)
			s.log.Error("reconcile panicked",
				zap.String("transaction_id", payment.TransactionID),
				zap.Any("panic", r),
			)
		}
	}()
	return s.Reconcile(ctx, payment)
}

func (s *Service) publishSettled(ctx context.Context, tx *gorm.DB, ispID snowflake.ID, transactionID string, result *paymentdomain.ReconciliationResult) error {
	payload := events.SettlementPayload{
		TransactionID: transactionID,
		CustomerID:    result.CustomerID.String(),
		Applied:       appliedTotal(result),
		Remainder:     result.Remainder,
		BillCount:     len(result.Allocations),
	}
	if err := s.outbox.PublishTx(ctx, tx, events.Event{
		ISPID:     ispID,
		Type:      events.EventPaymentSettled,
		Payload:   payload.ToMap(),
		DedupeKey: events.EventPaymentSettled + ":" + transactionID,
	}); err != nil {
		return err
	}
	if result.Remainder > 0 {
		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			ISPID:     ispID,
			Type:      events.EventPaymentOverpaid,
			Payload:   payload.ToMap(),
			DedupeKey: events.EventPaymentOverpaid + ":" + transactionID,
		}); err != nil {
			return err
		}
	}
	for _, alloc := range result.Allocations {
		if alloc.Status != billingdomain.BillStatusPaid {
			continue
		}
		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			ISPID: ispID,
			Type:  events.EventBillSettled,
			Payload: map[string]any{
				"bill_id":        alloc.BillID.String(),
				"bill_number":    alloc.BillNumber,
				"customer_id":    result.CustomerID.String(),
				"transaction_id": transactionID,
			},
			DedupeKey: events.EventBillSettled + ":" + alloc.BillID.String(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// recordActivity writes the audit trail after commit. Audit failures are
// logged inside the audit service and never affect the reconciliation
// outcome.
func (s *Service) recordActivity(ctx context.Context, ispID snowflake.ID, payment paymentdomain.NormalizedPayment, result *paymentdomain.ReconciliationResult) {
	if s.auditSvc == nil || result.AlreadyReconciled {
		return
	}

	actorType, actorID := auditcontext.ActorFromContext(ctx)
	if actorType == "" {
		actorType = string(auditdomain.ActorTypeSystem)
	}
	var actorRef *string
	if actorID != "" {
		actorRef = &actorID
	}
	requestID := auditcontext.RequestIDFromContext(ctx)

	targetID := payment.TransactionID
	if !result.Matched {
		metadata := map[string]any{
			"transaction_id": payment.TransactionID,
			"customer_id":    result.CustomerID.String(),
			"amount":         payment.Amount,
		}
		if requestID != "" {
			metadata["request_id"] = requestID
		}
		_ = s.auditSvc.AuditLog(ctx, ispIDRef(ispID), auditdomain.ActorType(actorType), actorRef,
			"payment.unmatched", "payment", &targetID, metadata)
		return
	}

	for _, alloc := range result.Allocations {
		metadata := map[string]any{
			"transaction_id": payment.TransactionID,
			"customer_id":    result.CustomerID.String(),
			"bill_id":        alloc.BillID.String(),
			"bill_number":    alloc.BillNumber,
			"applied_amount": alloc.AppliedAmount,
			"bill_status":    string(alloc.Status),
			"payment_date":   payment.PaymentDate.UTC().Format(time.RFC3339),
		}
		if result.Remainder > 0 {
			metadata["remainder"] = result.Remainder
		}
		if requestID != "" {
			metadata["request_id"] = requestID
		}
		_ = s.auditSvc.AuditLog(ctx, ispIDRef(ispID), auditdomain.ActorType(actorType), actorRef,
			"payment.received", "bill", billIDRef(alloc.BillID), metadata)
	}
}

func appliedTotal(result *paymentdomain.ReconciliationResult) int64 {
	var total int64
	for _, alloc := range result.Allocations {
		total += alloc.AppliedAmount
	}
	return total
}

func ispIDRef(id snowflake.ID) *snowflake.ID {
	if id == 0 {
		return nil
	}
	return &id
}

func billIDRef(id snowflake.ID) *string {
	value := id.String()
	return &value
}
