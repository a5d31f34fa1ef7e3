package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	paymentgatewaytypes "github.com/frahmantamala/payment-gateway/internal/core/datamodel/paymentgateway"
)

const (
	TestPgName    = "TEST_PG"
	testPgPayPath = "/api/v1/pay/credit-card"
	apiKeyHeader  = "API-KEY"
	maxBodyToRead = 1 << 20
)

type TestPgConfig struct {
	BaseURL        string
	APIKey         string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// TestPgClient talks to the TestPG HTTP API. It serves even partner ids.
type TestPgClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewTestPgClient(cfg TestPgConfig, logger *slog.Logger) *TestPgClient {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 3 * time.Second
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout}).DialContext
	transport.ResponseHeaderTimeout = readTimeout

	return &TestPgClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   connectTimeout + readTimeout,
		},
		logger: logger,
	}
}

func (c *TestPgClient) Name() string {
	return TestPgName
}

func (c *TestPgClient) Supports(partnerID int64) bool {
	return partnerID%2 == 0
}

func (c *TestPgClient) Approve(ctx context.Context, req *paymentgatewaytypes.ApproveRequest) (*paymentgatewaytypes.ApproveResult, error) {
	jsonData, err := json.Marshal(paymentgatewaytypes.TestPgRequest{Enc: req.Enc})
	if err != nil {
		return nil, c.unexpected(0, "failed to marshal approve request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+testPgPayPath, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, c.unexpected(0, "failed to create HTTP request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	c.logger.Debug("testpg: sending approve request", "partner_id", req.PartnerID, "amount", req.Amount.String())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.unexpected(0, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyToRead))
	if err != nil {
		return nil, c.unexpected(resp.StatusCode, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &AuthenticationError{Provider: TestPgName}
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, c.decodeValidationError(body)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, c.unexpected(resp.StatusCode, "unexpected error from TestPG API", nil)
	}

	return c.decodeApproval(resp.StatusCode, body)
}

func (c *TestPgClient) decodeValidationError(body []byte) error {
	var errBody paymentgatewaytypes.TestPgErrorResponse
	if err := json.Unmarshal(body, &errBody); err != nil {
		return c.unexpected(http.StatusUnprocessableEntity, "failed to parse error response", err)
	}
	return &ValidationError{
		Provider:    TestPgName,
		Reason:      ParseReasonCode(errBody.ErrorCode),
		Code:        errBody.Code,
		ErrorCode:   errBody.ErrorCode,
		Message:     errBody.Message,
		ReferenceID: errBody.ReferenceID,
	}
}

func (c *TestPgClient) decodeApproval(status int, body []byte) (*paymentgatewaytypes.ApproveResult, error) {
	if len(bytes.TrimSpace(body)) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, c.unexpected(status, "response body is empty", nil)
	}

	var apiResponse paymentgatewaytypes.TestPgApproveResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, c.unexpected(status, "failed to decode response", err)
	}
	if apiResponse.ApprovalCode == "" {
		return nil, c.unexpected(status, "response has no approval code", nil)
	}

	approvedAt, err := parseApprovedAt(apiResponse.ApprovedAt)
	if err != nil {
		return nil, c.unexpected(status, "invalid approvedAt", err)
	}

	approvalStatus := paymentgatewaytypes.ApprovalStatus(strings.ToUpper(apiResponse.Status))
	if approvalStatus == "" {
		approvalStatus = paymentgatewaytypes.ApprovalStatusApproved
	}

	c.logger.Info("testpg: payment approved", "approval_code", apiResponse.ApprovalCode, "status", approvalStatus)

	return &paymentgatewaytypes.ApproveResult{
		ApprovalCode: apiResponse.ApprovalCode,
		ApprovedAt:   approvedAt,
		Status:       approvalStatus,
	}, nil
}

func (c *TestPgClient) unexpected(status int, message string, cause error) error {
	var netErr net.Error
	if cause != nil && (errors.Is(cause, context.DeadlineExceeded) || (errors.As(cause, &netErr) && netErr.Timeout())) {
		message = "request timed out"
	}
	c.logger.Warn("testpg: unexpected outcome", "status", status, "message", message, "error", cause)
	return &UnexpectedError{Provider: TestPgName, StatusCode: status, Message: message, Cause: cause}
}

var approvedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// parseApprovedAt accepts offset-qualified and local timestamps; local ones are read as UTC.
func parseApprovedAt(value string) (time.Time, error) {
	for _, layout := range approvedAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
