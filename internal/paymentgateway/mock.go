package paymentgateway

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	paymentgatewaytypes "github.com/frahmantamala/payment-gateway/internal/core/datamodel/paymentgateway"
)

const MockPgName = "MOCK_PG"

// MockPgClient approves locally without any network call. It serves odd
// partner ids.
type MockPgClient struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewMockPgClient(logger *slog.Logger) *MockPgClient {
	return &MockPgClient{
		logger: logger,
		now:    time.Now,
	}
}

func (c *MockPgClient) Name() string {
	return MockPgName
}

func (c *MockPgClient) Supports(partnerID int64) bool {
	return partnerID%2 != 0
}

func (c *MockPgClient) Approve(ctx context.Context, req *paymentgatewaytypes.ApproveRequest) (*paymentgatewaytypes.ApproveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &UnexpectedError{Provider: MockPgName, Message: "request cancelled", Cause: err}
	}

	now := c.now().UTC()
	code := fmt.Sprintf("%s%04d", now.Format("0102"), rand.Intn(10000))

	c.logger.Info("mockpg: payment approved",
		"partner_id", req.PartnerID,
		"amount", req.Amount.String(),
		"approval_code", code)

	return &paymentgatewaytypes.ApproveResult{
		ApprovalCode: code,
		ApprovedAt:   now,
		Status:       paymentgatewaytypes.ApprovalStatusApproved,
	}, nil
}
