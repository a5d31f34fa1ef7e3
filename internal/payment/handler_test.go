package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	errors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/payment"
	"github.com/frahmantamala/payment-gateway/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

type fakePayAPI struct {
	payment *payment.Payment
	err     error
	lastCmd payment.Command
	calls   int
}

func (f *fakePayAPI) Pay(_ context.Context, cmd payment.Command) (*payment.Payment, error) {
	f.calls++
	f.lastCmd = cmd
	return f.payment, f.err
}

type fakeQueryAPI struct {
	result     *payment.QueryResult
	err        error
	lastFilter payment.QueryFilter
}

func (f *fakeQueryAPI) Query(_ context.Context, filter payment.QueryFilter) (*payment.QueryResult, error) {
	f.lastFilter = filter
	return f.result, f.err
}

type errorBody struct {
	Error struct {
		Type     string `json:"type"`
		Category string `json:"category"`
		Code     string `json:"code"`
		Message  string `json:"message"`
	} `json:"error"`
}

var _ = Describe("Handler", func() {
	var (
		pay      *fakePayAPI
		query    *fakeQueryAPI
		handler  *payment.Handler
		recorder *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		pay = &fakePayAPI{}
		query = &fakeQueryAPI{}
		handler = payment.NewHandler(pay, query, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
		recorder = httptest.NewRecorder()
	})

	post := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	decodeError := func() errorBody {
		var body errorBody
		Expect(json.Unmarshal(recorder.Body.Bytes(), &body)).To(Succeed())
		return body
	}

	Describe("CreatePayment", func() {
		It("should return the created payment", func() {
			last4 := "4242"
			pay.payment = &payment.Payment{
				ID:             100,
				PartnerID:      1,
				Amount:         decimal.NewFromInt(10000),
				AppliedFeeRate: decimal.RequireFromString("0.03"),
				FeeAmount:      decimal.NewFromInt(400),
				NetAmount:      decimal.NewFromInt(9600),
				CardLast4:      &last4,
				ApprovalCode:   "APPROVAL-123",
				ApprovedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				Status:         payment.StatusApproved,
			}

			handler.CreatePayment(recorder, post(`{"partnerId":1,"amount":10000,"cardBin":"123456","cardLast4":"4242","productName":"coffee","enc":"encrypted"}`))

			Expect(recorder.Code).To(Equal(http.StatusOK))
			var body payment.PaymentResponse
			Expect(json.Unmarshal(recorder.Body.Bytes(), &body)).To(Succeed())
			Expect(body.ID).To(Equal(int64(100)))
			Expect(body.FeeAmount.Equal(decimal.NewFromInt(400))).To(BeTrue())
			Expect(body.Status).To(Equal(payment.StatusApproved))
			Expect(*body.CardLast4).To(Equal("4242"))

			Expect(pay.lastCmd.PartnerID).To(Equal(int64(1)))
			Expect(*pay.lastCmd.CardBin).To(Equal("123456"))
			Expect(*pay.lastCmd.ProductName).To(Equal("coffee"))
			Expect(pay.lastCmd.Enc).To(Equal("encrypted"))
		})

		It("should pass absent optional fields as nil", func() {
			pay.payment = &payment.Payment{ID: 1, Status: payment.StatusApproved}

			handler.CreatePayment(recorder, post(`{"partnerId":2,"amount":"5000","enc":"x"}`))

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(pay.lastCmd.CardBin).To(BeNil())
			Expect(pay.lastCmd.CardLast4).To(BeNil())
			Expect(pay.lastCmd.ProductName).To(BeNil())
		})

		It("should reject malformed JSON", func() {
			handler.CreatePayment(recorder, post(`{"partnerId":`))

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError().Error.Code).To(Equal(string(errors.ErrCodeValidationFailed)))
			Expect(pay.calls).To(Equal(0))
		})

		It("should reject trailing data after the JSON object", func() {
			handler.CreatePayment(recorder, post(`{"partnerId":1,"amount":100,"enc":"x"} {"partnerId":2}`))

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(pay.calls).To(Equal(0))
		})

		It("should reject oversized bodies", func() {
			handler.CreatePayment(recorder, post(`{"partnerId":1,"amount":100,"enc":"`+strings.Repeat("a", transport.MaxBodyBytes)+`"}`))

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError().Error.Message).To(Equal("request body too large"))
			Expect(pay.calls).To(Equal(0))
		})

		It("should reject amounts below one", func() {
			handler.CreatePayment(recorder, post(`{"partnerId":1,"amount":0,"enc":"x"}`))

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError().Error.Category).To(Equal(string(errors.CategoryClient)))
			Expect(pay.calls).To(Equal(0))
		})

		It("should reject fractional amounts", func() {
			handler.CreatePayment(recorder, post(`{"partnerId":1,"amount":100.5,"enc":"x"}`))

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError().Error.Category).To(Equal(string(errors.CategoryClient)))
			Expect(pay.calls).To(Equal(0))
		})

		It("should reject a missing enc", func() {
			handler.CreatePayment(recorder, post(`{"partnerId":1,"amount":100}`))

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(pay.calls).To(Equal(0))
		})

		DescribeTable("should render workflow errors with their status and category",
			func(err error, status int, category errors.ErrorCategory, code errors.ErrorCode) {
				pay.err = err

				handler.CreatePayment(recorder, post(`{"partnerId":1,"amount":100,"enc":"x"}`))

				Expect(recorder.Code).To(Equal(status))
				body := decodeError()
				Expect(body.Error.Category).To(Equal(string(category)))
				Expect(body.Error.Code).To(Equal(string(code)))
			},
			Entry("partner not found", errors.ErrPartnerNotFound, http.StatusNotFound, errors.CategoryClient, errors.ErrCodePartnerNotFound),
			Entry("partner inactive", errors.ErrPartnerInactive, http.StatusUnprocessableEntity, errors.CategoryClient, errors.ErrCodePartnerInactive),
			Entry("unauthorized", errors.ErrPgUnauthorized, http.StatusBadRequest, errors.CategoryUpstreamRejected, errors.ErrCodePgUnauthorized),
			Entry("unknown outcome", errors.ErrPgUnexpected, http.StatusBadGateway, errors.CategoryUpstreamIndeterminate, errors.ErrCodePgUnexpected),
			Entry("not reconciled", errors.ErrAttemptNotReconciled, http.StatusInternalServerError, errors.CategoryConsistency, errors.ErrCodeAttemptReconcileFailed),
			Entry("plain error", context.DeadlineExceeded, http.StatusInternalServerError, errors.CategoryInternal, errors.ErrCodeInternal),
		)
	})

	Describe("QueryPayments", func() {
		BeforeEach(func() {
			cursor := "next-token"
			query.result = &payment.QueryResult{
				Items: []payment.Payment{{ID: 3, PartnerID: 1, Amount: decimal.NewFromInt(1000), Status: payment.StatusApproved}},
				Summary: payment.Summary{
					Count:          5,
					TotalAmount:    decimal.NewFromInt(5010),
					TotalNetAmount: decimal.NewFromInt(4900),
				},
				NextCursor: &cursor,
				HasNext:    true,
			}
		})

		It("should parse every filter parameter", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/payments?partnerId=1&status=APPROVED&from=2025-01-01%2000:00:00&to=2025-01-02T00:00:00Z&cursor=abc&limit=5", nil)

			handler.QueryPayments(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			f := query.lastFilter
			Expect(*f.PartnerID).To(Equal(int64(1)))
			Expect(*f.Status).To(Equal("APPROVED"))
			Expect(*f.From).To(Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
			Expect(*f.To).To(Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
			Expect(f.Cursor).To(Equal("abc"))
			Expect(f.Limit).To(Equal(5))
		})

		It("should render items, summary and paging fields", func() {
			handler.QueryPayments(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))

			var body payment.QueryResponse
			Expect(json.Unmarshal(recorder.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Items).To(HaveLen(1))
			Expect(body.Summary.Count).To(Equal(int64(5)))
			Expect(body.Summary.TotalAmount.Equal(decimal.NewFromInt(5010))).To(BeTrue())
			Expect(*body.NextCursor).To(Equal("next-token"))
			Expect(body.HasNext).To(BeTrue())
		})

		It("should render a null next cursor on the last page", func() {
			query.result.NextCursor = nil
			query.result.HasNext = false

			handler.QueryPayments(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))

			var raw map[string]json.RawMessage
			Expect(json.Unmarshal(recorder.Body.Bytes(), &raw)).To(Succeed())
			Expect(string(raw["nextCursor"])).To(Equal("null"))
			Expect(string(raw["hasNext"])).To(Equal("false"))
		})

		DescribeTable("should reject unparseable parameters",
			func(rawQuery string) {
				handler.QueryPayments(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/payments?"+rawQuery, nil))

				Expect(recorder.Code).To(Equal(http.StatusBadRequest))
				Expect(decodeError().Error.Code).To(Equal(string(errors.ErrCodeInvalidQuery)))
			},
			Entry("partner id", "partnerId=abc"),
			Entry("from", "from=yesterday"),
			Entry("to", "to=2025/01/01"),
			Entry("limit", "limit=ten"),
		)

		It("should render service errors", func() {
			query.err = errors.ErrInvalidQuery.WithMessage("Not Supported Payment Status")

			handler.QueryPayments(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/payments?status=PAID", nil))

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeError().Error.Message).To(Equal("Not Supported Payment Status"))
		})
	})
})
