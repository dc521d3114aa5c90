package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	auditdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/audit/domain"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/auditcontext"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/observability/logger"
	paymentdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IngestWebhook receives one gateway event, translates it through the
// provider's adapter, and reconciles the resulting payment. Unsupported
// event kinds are acknowledged with 200 so gateways stop redelivering
// them.
func (s *Server) IngestWebhook(c *gin.Context) {
	provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))
	if !s.webhookLimiter.Allow(provider) {
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	adapter, ok := s.adapters.Lookup(provider)
	if !ok {
		AbortWithError(c, paymentdomain.ErrProviderNotFound)
		return
	}

	payload, err := c.GetRawData()
	if err != nil || len(payload) == 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	normalized, err := adapter.Translate(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventNotSupported) {
			s.log.Debug("webhook event ignored",
				zap.String("provider", provider),
				zap.Any("headers", logger.MaskHeaders(c.Request.Header)),
			)
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		AbortWithError(c, err)
		return
	}

	result, err := s.paymentSvc.Reconcile(ctx, *normalized)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ReconcileBatch accepts an ordered list of normalized payment records
// from import jobs and reconciles each independently.
func (s *Server) ReconcileBatch(c *gin.Context) {
	var req []paymentdomain.NormalizedPayment
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req) == 0 {
		AbortWithError(c, newValidationError("payments", "empty_batch", "at least one payment is required"))
		return
	}

	ctx := c.Request.Context()
	if actorID := strings.TrimSpace(c.GetHeader("X-Actor-Id")); actorID != "" {
		ctx = auditcontext.WithActor(ctx, string(auditdomain.ActorTypeUser), actorID)
	}

	result, err := s.paymentSvc.ReconcileBatch(ctx, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ListAuditLogs returns recent activity entries, newest first.
func (s *Server) ListAuditLogs(c *gin.Context) {
	if s.auditSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	filter := auditdomain.ListFilter{
		Action:     strings.TrimSpace(c.Query("action")),
		TargetType: strings.TrimSpace(c.Query("target_type")),
		TargetID:   strings.TrimSpace(c.Query("target_id")),
	}
	if raw := strings.TrimSpace(c.Query("isp_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			AbortWithError(c, newValidationError("isp_id", "invalid_isp_id", "invalid isp_id"))
			return
		}
		filter.ISPID = snowflake.ID(id)
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
			return
		}
		filter.Limit = limit
	}

	entries, err := s.auditSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
