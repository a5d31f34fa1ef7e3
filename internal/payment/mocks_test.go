package payment_test

import (
	"context"
	"sync"
	"time"

	paymentDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
	paymentgatewaytypes "github.com/frahmantamala/payment-gateway/internal/core/datamodel/paymentgateway"
	pghistoryDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/pghistory"
	"github.com/frahmantamala/payment-gateway/internal/core/events"
	"github.com/frahmantamala/payment-gateway/internal/partner"
	"github.com/frahmantamala/payment-gateway/internal/payment"
	"github.com/frahmantamala/payment-gateway/internal/paymentgateway"
	"github.com/frahmantamala/payment-gateway/internal/pghistory"
)

type mockPartners struct {
	partner   *partner.Partner
	policy    *partner.FeePolicy
	err       error
	policyErr error
	policyAt  time.Time
}

func (m *mockPartners) FindPartner(_ context.Context, _ int64) (*partner.Partner, error) {
	return m.partner, m.err
}

func (m *mockPartners) FindEffectivePolicy(_ context.Context, _ int64, at time.Time) (*partner.FeePolicy, error) {
	m.policyAt = at
	return m.policy, m.policyErr
}

type mockGateway struct {
	name     string
	result   *paymentgatewaytypes.ApproveResult
	err      error
	calls    int
	lastReq  *paymentgatewaytypes.ApproveRequest
	ctxAlive bool
}

func (g *mockGateway) Name() string          { return g.name }
func (g *mockGateway) Supports(_ int64) bool { return true }
func (g *mockGateway) Approve(ctx context.Context, req *paymentgatewaytypes.ApproveRequest) (*paymentgatewaytypes.ApproveResult, error) {
	g.calls++
	g.lastReq = req
	g.ctxAlive = ctx.Err() == nil
	return g.result, g.err
}

type mockRouter struct {
	gateway paymentgateway.Gateway
	calls   int
}

func (r *mockRouter) Select(_ int64) (paymentgateway.Gateway, bool) {
	r.calls++
	if r.gateway == nil {
		return nil, false
	}
	return r.gateway, true
}

type statusUpdate struct {
	id     int64
	status pghistory.Status
}

type mockAttempts struct {
	saved     []*pghistoryDatamodel.PgHistory
	updates   []statusUpdate
	saveErr   error
	updateErr error
	affected  int64
	nextID    int64
}

func (m *mockAttempts) Save(_ context.Context, h *pghistoryDatamodel.PgHistory) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.nextID++
	h.ID = m.nextID
	m.saved = append(m.saved, h)
	return nil
}

func (m *mockAttempts) UpdateStatus(_ context.Context, id int64, status pghistory.Status) (int64, error) {
	m.updates = append(m.updates, statusUpdate{id: id, status: status})
	if m.updateErr != nil {
		return 0, m.updateErr
	}
	return m.affected, nil
}

func (m *mockAttempts) ListPending(_ context.Context, _ time.Time, _ int) ([]*pghistoryDatamodel.PgHistory, error) {
	return nil, nil
}

type mockPaymentRepo struct {
	saved   []*paymentDatamodel.Payment
	saveErr error

	page       *payment.Page
	summary    *payment.Summary
	pageErr    error
	summaryErr error
	lastPage   payment.PageQuery
	lastFilter payment.SummaryFilter
}

func (m *mockPaymentRepo) Save(_ context.Context, p *paymentDatamodel.Payment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	p.ID = int64(len(m.saved) + 100)
	m.saved = append(m.saved, p)
	return nil
}

func (m *mockPaymentRepo) FindPage(_ context.Context, q payment.PageQuery) (*payment.Page, error) {
	m.lastPage = q
	if m.pageErr != nil {
		return nil, m.pageErr
	}
	return m.page, nil
}

func (m *mockPaymentRepo) Summary(_ context.Context, f payment.SummaryFilter) (*payment.Summary, error) {
	m.lastFilter = f
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	return m.summary, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}
