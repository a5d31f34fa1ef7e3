package paymentgateway_test

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"time"

	paymentgatewaytypes "github.com/frahmantamala/payment-gateway/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/payment-gateway/internal/paymentgateway"
	"github.com/frahmantamala/payment-gateway/pkg/metrics"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

type stubGateway struct {
	name     string
	supports func(int64) bool
	calls    int
	err      error
}

func (s *stubGateway) Name() string           { return s.name }
func (s *stubGateway) Supports(id int64) bool { return s.supports(id) }
func (s *stubGateway) Approve(_ context.Context, _ *paymentgatewaytypes.ApproveRequest) (*paymentgatewaytypes.ApproveResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &paymentgatewaytypes.ApproveResult{ApprovalCode: "A1", ApprovedAt: time.Now(), Status: paymentgatewaytypes.ApprovalStatusApproved}, nil
}

var _ = Describe("Registry", func() {
	It("should pick the first supporting gateway in order", func() {
		all := &stubGateway{name: "ALL", supports: func(int64) bool { return true }}
		even := &stubGateway{name: "EVEN", supports: func(id int64) bool { return id%2 == 0 }}

		registry := paymentgateway.NewRegistry(even, all)

		g, ok := registry.Select(2)
		Expect(ok).To(BeTrue())
		Expect(g.Name()).To(Equal("EVEN"))

		g, ok = registry.Select(3)
		Expect(ok).To(BeTrue())
		Expect(g.Name()).To(Equal("ALL"))

		Expect(registry.Names()).To(Equal([]string{"EVEN", "ALL"}))
	})

	It("should report no route when nothing supports the partner", func() {
		registry := paymentgateway.NewRegistry(&stubGateway{name: "NONE", supports: func(int64) bool { return false }})

		_, ok := registry.Select(1)

		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("MockPgClient", func() {
	It("should approve odd partners with a dated approval code", func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		client := paymentgateway.NewMockPgClient(logger)

		Expect(client.Supports(1)).To(BeTrue())
		Expect(client.Supports(2)).To(BeFalse())

		res, err := client.Approve(context.Background(), &paymentgatewaytypes.ApproveRequest{PartnerID: 1, Amount: decimal.NewFromInt(100), Enc: "x"})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.ApprovalCode).To(MatchRegexp(`^\d{8}$`))
		Expect(regexp.MustCompile(`^` + time.Now().UTC().Format("0102")).MatchString(res.ApprovalCode)).To(BeTrue())
		Expect(res.Status).To(Equal(paymentgatewaytypes.ApprovalStatusApproved))
	})
})

var _ = Describe("WithMetrics", func() {
	It("should count outcomes per provider", func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewPaymentMetrics(reg)

		ok := paymentgateway.WithMetrics(&stubGateway{name: "OK", supports: func(int64) bool { return true }}, m)
		rejected := paymentgateway.WithMetrics(&stubGateway{
			name:     "NO",
			supports: func(int64) bool { return true },
			err:      &paymentgateway.AuthenticationError{Provider: "NO"},
		}, m)

		_, _ = ok.Approve(context.Background(), &paymentgatewaytypes.ApproveRequest{})
		_, _ = rejected.Approve(context.Background(), &paymentgatewaytypes.ApproveRequest{})

		count, err := testutil.GatherAndCount(reg, "pg_approve_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(2))
		Expect(ok.Name()).To(Equal("OK"))
	})
})
