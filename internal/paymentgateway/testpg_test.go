package paymentgateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	paymentgatewaytypes "github.com/frahmantamala/payment-gateway/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/payment-gateway/internal/paymentgateway"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("TestPgClient", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		client  *paymentgateway.TestPgClient
		logger  *slog.Logger
		req     *paymentgatewaytypes.ApproveRequest
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		client = paymentgateway.NewTestPgClient(paymentgateway.TestPgConfig{
			BaseURL:     server.URL,
			APIKey:      "secret-key",
			ReadTimeout: 500 * time.Millisecond,
		}, logger)
		req = &paymentgatewaytypes.ApproveRequest{
			PartnerID: 2,
			Amount:    decimal.NewFromInt(10000),
			Enc:       "encrypted-payload",
		}
	})

	AfterEach(func() {
		server.Close()
	})

	It("should support even partners only", func() {
		Expect(client.Supports(2)).To(BeTrue())
		Expect(client.Supports(4)).To(BeTrue())
		Expect(client.Supports(1)).To(BeFalse())
		Expect(client.Name()).To(Equal(paymentgateway.TestPgName))
	})

	It("should post enc with the API key and parse the approval", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/api/v1/pay/credit-card"))
			Expect(r.Header.Get("API-KEY")).To(Equal("secret-key"))

			body, _ := io.ReadAll(r.Body)
			var payload map[string]string
			Expect(json.Unmarshal(body, &payload)).To(Succeed())
			Expect(payload).To(Equal(map[string]string{"enc": "encrypted-payload"}))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"approvalCode":"10080728","approvedAt":"2024-01-15T10:30:00","status":"APPROVED"}`))
		}

		res, err := client.Approve(context.Background(), req)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.ApprovalCode).To(Equal("10080728"))
		Expect(res.ApprovedAt).To(Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)))
		Expect(res.Status).To(Equal(paymentgatewaytypes.ApprovalStatusApproved))
	})

	It("should map 401 to an authentication error", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}

		_, err := client.Approve(context.Background(), req)

		var authErr *paymentgateway.AuthenticationError
		Expect(errors.As(err, &authErr)).To(BeTrue())
	})

	It("should map 422 to a validation error with reason", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"code":1002,"errorCode":"INSUFFICIENT_LIMIT","message":"limit exceeded","referenceId":"ref-1"}`))
		}

		_, err := client.Approve(context.Background(), req)

		var validationErr *paymentgateway.ValidationError
		Expect(errors.As(err, &validationErr)).To(BeTrue())
		Expect(validationErr.Reason).To(Equal(paymentgateway.ReasonInsufficientLimit))
		Expect(validationErr.Code).To(Equal(1002))
		Expect(validationErr.ReferenceID).To(Equal("ref-1"))
		Expect(validationErr.Error()).To(ContainSubstring("referenceId=ref-1"))
	})

	It("should treat an unreadable 422 body as unexpected", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`not json`))
		}

		_, err := client.Approve(context.Background(), req)

		var unexpectedErr *paymentgateway.UnexpectedError
		Expect(errors.As(err, &unexpectedErr)).To(BeTrue())
		Expect(unexpectedErr.StatusCode).To(Equal(http.StatusUnprocessableEntity))
	})

	It("should treat other error statuses as unexpected", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}

		_, err := client.Approve(context.Background(), req)

		var unexpectedErr *paymentgateway.UnexpectedError
		Expect(errors.As(err, &unexpectedErr)).To(BeTrue())
		Expect(unexpectedErr.StatusCode).To(Equal(http.StatusInternalServerError))
	})

	It("should treat an empty success body as unexpected", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}

		_, err := client.Approve(context.Background(), req)

		var unexpectedErr *paymentgateway.UnexpectedError
		Expect(errors.As(err, &unexpectedErr)).To(BeTrue())
	})

	It("should treat a timeout as unexpected", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err := client.Approve(ctx, req)

		var unexpectedErr *paymentgateway.UnexpectedError
		Expect(errors.As(err, &unexpectedErr)).To(BeTrue())
		Expect(unexpectedErr.Message).To(Equal("request timed out"))
		Expect(paymentgateway.Outcome(err)).To(Equal("indeterminate"))
	})
})

var _ = Describe("ParseReasonCode", func() {
	It("should keep known reasons and default to invalid card", func() {
		Expect(paymentgateway.ParseReasonCode("STOLEN_OR_LOST")).To(Equal(paymentgateway.ReasonStolenOrLost))
		Expect(paymentgateway.ParseReasonCode("TAMPERED_CARD")).To(Equal(paymentgateway.ReasonTamperedCard))
		Expect(paymentgateway.ParseReasonCode("INVALID_CARD_NUMBER")).To(Equal(paymentgateway.ReasonInvalidCard))
		Expect(paymentgateway.ParseReasonCode("")).To(Equal(paymentgateway.ReasonInvalidCard))
	})
})
