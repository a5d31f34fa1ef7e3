package payment

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	errors "github.com/frahmantamala/payment-gateway/internal"
	paymentgatewaytypes "github.com/frahmantamala/payment-gateway/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/payment-gateway/internal/core/events"
	"github.com/frahmantamala/payment-gateway/internal/fee"
	"github.com/frahmantamala/payment-gateway/internal/partner"
	"github.com/frahmantamala/payment-gateway/internal/paymentgateway"
	"github.com/frahmantamala/payment-gateway/internal/pghistory"
	"github.com/frahmantamala/payment-gateway/pkg/logger"
	"github.com/frahmantamala/payment-gateway/pkg/metrics"
)

// PartnerLookup is satisfied by *partner.Service. Both methods return nil,
// nil when nothing is found.
type PartnerLookup interface {
	FindPartner(ctx context.Context, id int64) (*partner.Partner, error)
	FindEffectivePolicy(ctx context.Context, partnerID int64, at time.Time) (*partner.FeePolicy, error)
}

// GatewayRouter is satisfied by *paymentgateway.Registry.
type GatewayRouter interface {
	Select(partnerID int64) (paymentgateway.Gateway, bool)
}

type Dependencies struct {
	Partners PartnerLookup
	Gateways GatewayRouter
	Attempts pghistory.RepositoryAPI
	Payments RepositoryAPI
	Events   events.Publisher
	Metrics  *metrics.PaymentMetrics
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Orchestrator runs the pay workflow: validate the partner, pick a gateway,
// record a PENDING attempt, call the gateway, reconcile the attempt and
// persist the payment with its fee.
type Orchestrator struct {
	partners PartnerLookup
	gateways GatewayRouter
	attempts pghistory.RepositoryAPI
	payments RepositoryAPI
	events   events.Publisher
	metrics  *metrics.PaymentMetrics
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewOrchestrator(deps Dependencies) *Orchestrator {
	lg := deps.Logger
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &Orchestrator{
		partners: deps.Partners,
		gateways: deps.Gateways,
		attempts: deps.Attempts,
		payments: deps.Payments,
		events:   deps.Events,
		metrics:  deps.Metrics,
		timeout:  deps.Timeout,
		logger:   lg,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for fee resolution and timestamps.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

func (o *Orchestrator) Pay(ctx context.Context, cmd Command) (*Payment, error) {
	log := o.log(ctx).With("partner_id", cmd.PartnerID, "amount", cmd.Amount.String())
	log.Debug("payment started")

	p, err := o.partners.FindPartner(ctx, cmd.PartnerID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load partner", err)
	}
	if p == nil {
		log.Warn("payment rejected", "reason", errors.ErrCodePartnerNotFound)
		return nil, errors.ErrPartnerNotFound
	}
	if !p.IsActive() {
		log.Warn("payment rejected", "reason", errors.ErrCodePartnerInactive)
		return nil, errors.ErrPartnerInactive
	}
	log.Debug("partner validated", "partner_code", p.Code)

	gw, ok := o.gateways.Select(cmd.PartnerID)
	if !ok {
		log.Warn("payment rejected", "reason", errors.ErrCodeNoPgRoute)
		return nil, errors.ErrNoPgRoute
	}
	provider := gw.Name()
	log = log.With("provider", provider)
	log.Debug("gateway selected")

	attempt := pghistory.ToDataModel(pghistory.NewPendingAttempt(cmd.Amount, cmd.CardBin, cmd.CardLast4, provider))
	if err := o.attempts.Save(ctx, attempt); err != nil {
		log.Error("failed to record payment attempt", "error", err)
		return nil, errors.NewInternalError("failed to record payment attempt", err)
	}
	log = log.With("attempt_id", attempt.ID)
	log.Info("payment attempt recorded")

	// Once the attempt exists the workflow no longer follows caller cancellation.
	bg := context.WithoutCancel(ctx)

	callCtx, cancel := errors.Detached(ctx, o.timeout)
	result, err := gw.Approve(callCtx, &paymentgatewaytypes.ApproveRequest{
		PartnerID:   cmd.PartnerID,
		Amount:      cmd.Amount,
		CardBin:     cmd.CardBin,
		CardLast4:   cmd.CardLast4,
		ProductName: cmd.ProductName,
		Enc:         cmd.Enc,
	})
	cancel()
	if err == nil && result == nil {
		err = &paymentgateway.UnexpectedError{Provider: provider, Message: "empty approval result"}
	}
	if err != nil {
		return nil, o.handleGatewayError(bg, log, attempt.ID, cmd, provider, err)
	}
	log.Info("gateway approved", "approval_code", result.ApprovalCode)

	affected, err := o.attempts.UpdateStatus(bg, attempt.ID, pghistory.StatusApproved)
	if err != nil {
		log.Error("failed to mark attempt approved", "error", err)
		return nil, errors.ErrAttemptNotReconciled.WithCause(err)
	}
	if affected != 1 {
		log.Error("attempt not reconciled", "rows_affected", affected)
		return nil, errors.ErrAttemptNotReconciled.WithCause(fmt.Errorf("attempt %d: %d rows affected", attempt.ID, affected))
	}

	now := o.now().UTC()
	policy, err := o.partners.FindEffectivePolicy(bg, cmd.PartnerID, now)
	if err != nil {
		return nil, errors.NewInternalError("failed to load fee policy", err)
	}
	if policy == nil {
		// The charge is approved upstream but no payment will be written.
		log.Error("approved attempt has no fee policy, payment not recorded", "approval_code", result.ApprovalCode)
		return nil, errors.ErrFeePolicyNotFound
	}

	feeAmount, netAmount := fee.CalculateFee(cmd.Amount, policy.Percentage, policy.FixedFee)
	log.Debug("fee resolved", "fee_policy_id", policy.ID, "fee", feeAmount.String(), "net", netAmount.String())

	created := now.Truncate(time.Millisecond)
	record := ToDataModel(Payment{
		PartnerID:      cmd.PartnerID,
		Amount:         cmd.Amount,
		AppliedFeeRate: policy.Percentage,
		FeeAmount:      feeAmount,
		NetAmount:      netAmount,
		CardBin:        cmd.CardBin,
		CardLast4:      cmd.CardLast4,
		ApprovalCode:   result.ApprovalCode,
		ApprovedAt:     result.ApprovedAt,
		Status:         StatusApproved,
		CreatedAt:      created,
		UpdatedAt:      created,
	})
	if err := o.payments.Save(bg, record); err != nil {
		log.Error("failed to save payment", "error", err, "approval_code", result.ApprovalCode)
		return nil, errors.NewInternalError("failed to save payment", err)
	}

	saved := FromDataModel(record)
	log.Info("payment approved", "payment_id", saved.ID, "fee", feeAmount.String())

	o.metrics.IncPaymentCreated(provider)
	o.publish(bg, log, events.NewPaymentApprovedEvent(saved.ID, saved.PartnerID, attempt.ID,
		saved.Amount.String(), saved.NetAmount.String(), saved.ApprovalCode, provider))

	return &saved, nil
}

func (o *Orchestrator) handleGatewayError(ctx context.Context, log *slog.Logger, attemptID int64, cmd Command, provider string, err error) error {
	var (
		authErr       *paymentgateway.AuthenticationError
		validationErr *paymentgateway.ValidationError
	)

	switch {
	case stderrors.As(err, &authErr):
		log.Warn("gateway rejected credentials", "error", err)
		o.markFailed(ctx, log, attemptID)
		o.publish(ctx, log, events.NewAttemptFailedEvent(attemptID, cmd.PartnerID, cmd.Amount.String(), provider, string(paymentgateway.ReasonUnauthorized)))
		return errors.ErrPgUnauthorized.WithCause(err)

	case stderrors.As(err, &validationErr):
		log.Warn("gateway declined payment", "reason", validationErr.Reason, "reference_id", validationErr.ReferenceID)
		o.markFailed(ctx, log, attemptID)
		o.publish(ctx, log, events.NewAttemptFailedEvent(attemptID, cmd.PartnerID, cmd.Amount.String(), provider, string(validationErr.Reason)))
		return rejectionError(validationErr.Reason).WithCause(err)

	default:
		log.Error("gateway outcome unknown, attempt left pending", "error", err)
		o.publish(ctx, log, events.NewAttemptUnresolvedEvent(attemptID, cmd.PartnerID, cmd.Amount.String(), provider, err.Error()))
		return errors.ErrPgUnexpected.WithCause(err)
	}
}

// markFailed never overrides the gateway error the caller must see.
func (o *Orchestrator) markFailed(ctx context.Context, log *slog.Logger, attemptID int64) {
	affected, err := o.attempts.UpdateStatus(ctx, attemptID, pghistory.StatusFailed)
	if err != nil {
		log.Error("failed to mark attempt failed", "error", err)
		return
	}
	if affected != 1 {
		log.Error("attempt not marked failed", "rows_affected", affected)
	}
}

func (o *Orchestrator) publish(ctx context.Context, log *slog.Logger, event events.Event) {
	if o.events == nil {
		return
	}
	if err := o.events.Publish(ctx, event); err != nil {
		log.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

func (o *Orchestrator) log(ctx context.Context) *slog.Logger {
	if traceID := logger.TraceID(ctx); traceID != "" {
		return o.logger.With("traceID", traceID)
	}
	return o.logger
}

var rejectionErrors = map[paymentgateway.ReasonCode]*errors.AppError{
	paymentgateway.ReasonInvalidCard:       errors.NewUpstreamRejectedError("card is invalid", errors.ErrCodePgInvalidCard, http.StatusBadRequest),
	paymentgateway.ReasonStolenOrLost:      errors.NewUpstreamRejectedError("card reported stolen or lost", errors.ErrCodePgStolenOrLost, http.StatusBadRequest),
	paymentgateway.ReasonInsufficientLimit: errors.NewUpstreamRejectedError("card limit exceeded", errors.ErrCodePgInsufficientLimit, http.StatusBadRequest),
	paymentgateway.ReasonExpiredOrBlocked:  errors.NewUpstreamRejectedError("card expired or blocked", errors.ErrCodePgExpiredOrBlocked, http.StatusBadRequest),
	paymentgateway.ReasonTamperedCard:      errors.NewUpstreamRejectedError("card data tampered", errors.ErrCodePgTamperedCard, http.StatusBadRequest),
}

func rejectionError(reason paymentgateway.ReasonCode) *errors.AppError {
	if appErr, ok := rejectionErrors[reason]; ok {
		return appErr
	}
	return rejectionErrors[paymentgateway.ReasonInvalidCard]
}
