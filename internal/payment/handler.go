package payment

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	errors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/transport"
	"github.com/frahmantamala/payment-gateway/pkg/logger"
)

// QueryTimeLayout is the zone-less layout accepted for from/to, read as UTC.
const QueryTimeLayout = "2006-01-02 15:04:05"

type PayAPI interface {
	Pay(ctx context.Context, cmd Command) (*Payment, error)
}

type QueryAPI interface {
	Query(ctx context.Context, filter QueryFilter) (*QueryResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Payments PayAPI
	Queries  QueryAPI
}

func NewHandler(payments PayAPI, queries QueryAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Payments:    payments,
		Queries:     queries,
	}
}

// CreatePayment handles POST /api/v1/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context())

	var req CreatePaymentRequest
	if appErr := h.DecodeJSON(w, r, &req); appErr != nil {
		log.Warn("CreatePayment: invalid request body", "error", appErr.Error())
		h.HandleError(w, r, appErr)
		return
	}

	if err := req.Validate(); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	p, err := h.Payments.Pay(r.Context(), req.ToCommand())
	if err != nil {
		log.Warn("CreatePayment: payment failed",
			"error", err,
			"partner_id", req.PartnerID,
			"category", errors.CategoryOf(err))
		h.HandleServiceError(w, r, err)
		return
	}

	log.Info("CreatePayment: payment created",
		"payment_id", p.ID,
		"partner_id", p.PartnerID,
		"amount", p.Amount.String())

	h.WriteJSON(w, http.StatusOK, NewPaymentResponse(*p))
}

// QueryPayments handles GET /api/v1/payments
func (h *Handler) QueryPayments(w http.ResponseWriter, r *http.Request) {
	filter, appErr := parseQueryFilter(r)
	if appErr != nil {
		h.HandleError(w, r, appErr)
		return
	}

	result, err := h.Queries.Query(r.Context(), filter)
	if err != nil {
		logger.From(r.Context()).Warn("QueryPayments: query failed", "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewQueryResponse(result))
}

func parseQueryFilter(r *http.Request) (QueryFilter, *errors.AppError) {
	q := r.URL.Query()
	filter := QueryFilter{
		Cursor: q.Get("cursor"),
	}

	if v := q.Get("partnerId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, errors.ErrInvalidQuery.WithMessage("partnerId must be a number")
		}
		filter.PartnerID = &id
	}

	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := ParseQueryTime(v)
		if err != nil {
			return filter, errors.ErrInvalidQuery.WithMessage(p.name + " must be formatted as " + QueryTimeLayout)
		}
		*p.dst = &t
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.ErrInvalidQuery.WithMessage("limit must be a number")
		}
		filter.Limit = limit
	}

	return filter, nil
}

// ParseQueryTime accepts QueryTimeLayout or RFC 3339 and returns UTC.
func ParseQueryTime(v string) (time.Time, error) {
	if t, err := time.ParseInLocation(QueryTimeLayout, v, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
