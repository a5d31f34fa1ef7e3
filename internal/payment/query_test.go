package payment_test

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"log/slog"
	"os"
	"time"

	errors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/payment"
	"github.com/frahmantamala/payment-gateway/pkg/pagination"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("QueryService", func() {
	var (
		repo    *mockPaymentRepo
		service *payment.QueryService
		ctx     context.Context
	)

	item := func(id int64, createdAt time.Time) payment.Payment {
		return payment.Payment{
			ID:        id,
			PartnerID: 1,
			Amount:    decimal.NewFromInt(1000),
			NetAmount: decimal.NewFromInt(970),
			Status:    payment.StatusApproved,
			CreatedAt: createdAt,
		}
	}

	BeforeEach(func() {
		repo = &mockPaymentRepo{
			page: &payment.Page{},
			summary: &payment.Summary{
				Count:          0,
				TotalAmount:    decimal.Zero,
				TotalNetAmount: decimal.Zero,
			},
		}
		service = payment.NewQueryService(repo, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
		ctx = context.Background()
	})

	It("should reject unknown statuses", func() {
		status := "approved"

		_, err := service.Query(ctx, payment.QueryFilter{Status: &status})

		Expect(stderrors.Is(err, errors.ErrInvalidQuery)).To(BeTrue())
		appErr, _ := errors.IsAppError(err)
		Expect(appErr.Message).To(Equal("Not Supported Payment Status"))
		Expect(appErr.StatusCode).To(Equal(400))
	})

	It("should pass the filter to both the page and the summary", func() {
		partnerID := int64(7)
		status := "CANCELED"
		from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

		_, err := service.Query(ctx, payment.QueryFilter{PartnerID: &partnerID, Status: &status, From: &from, To: &to})

		Expect(err).NotTo(HaveOccurred())
		Expect(*repo.lastPage.PartnerID).To(Equal(partnerID))
		Expect(*repo.lastPage.Status).To(Equal(payment.StatusCanceled))
		Expect(*repo.lastPage.From).To(Equal(from))
		Expect(*repo.lastPage.To).To(Equal(to))
		Expect(*repo.lastFilter.PartnerID).To(Equal(partnerID))
		Expect(*repo.lastFilter.Status).To(Equal(payment.StatusCanceled))
		Expect(*repo.lastFilter.From).To(Equal(from))
		Expect(*repo.lastFilter.To).To(Equal(to))
	})

	DescribeTable("should normalize the limit and ask for one extra row",
		func(limit, expected int) {
			_, err := service.Query(ctx, payment.QueryFilter{Limit: limit})

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastPage.Limit).To(Equal(expected))
		},
		Entry("default", 0, 21),
		Entry("negative", -5, 21),
		Entry("explicit", 10, 11),
		Entry("capped", 1000, 101),
	)

	It("should decode a valid cursor into the keyset position", func() {
		createdAt := time.Date(2025, 1, 1, 12, 0, 0, 500_000_000, time.UTC)
		id := int64(42)
		token, ok := pagination.EncodeCursor(&createdAt, &id)
		Expect(ok).To(BeTrue())

		_, err := service.Query(ctx, payment.QueryFilter{Cursor: token})

		Expect(err).NotTo(HaveOccurred())
		Expect(*repo.lastPage.CursorCreatedAt).To(Equal(createdAt))
		Expect(*repo.lastPage.CursorID).To(Equal(id))
	})

	It("should start from the first page on a malformed cursor", func() {
		_, err := service.Query(ctx, payment.QueryFilter{Cursor: "%%%not-base64"})

		Expect(err).NotTo(HaveOccurred())
		Expect(repo.lastPage.CursorCreatedAt).To(BeNil())
		Expect(repo.lastPage.CursorID).To(BeNil())
	})

	DescribeTable("should start from the first page on a cursor no stored row could carry",
		func(payload string) {
			token := base64.RawURLEncoding.EncodeToString([]byte(payload))

			_, err := service.Query(ctx, payment.QueryFilter{Cursor: token})

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastPage.CursorCreatedAt).To(BeNil())
			Expect(repo.lastPage.CursorID).To(BeNil())
		},
		Entry("far future", "9223372036854775807:5"),
		Entry("far past", "-9223372036854775808:5"),
		Entry("before year one", "-62135596800001:5"),
	)

	It("should build the next cursor from the last item when more rows exist", func() {
		last := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
		repo.page = &payment.Page{
			Items:   []payment.Payment{item(9, last.Add(time.Minute)), item(8, last)},
			HasNext: true,
		}

		res, err := service.Query(ctx, payment.QueryFilter{Limit: 2})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.HasNext).To(BeTrue())
		Expect(res.NextCursor).NotTo(BeNil())
		c, ok := pagination.DecodeCursor(*res.NextCursor)
		Expect(ok).To(BeTrue())
		Expect(c.ID).To(Equal(int64(8)))
		Expect(c.CreatedAt()).To(Equal(last))
	})

	It("should omit the next cursor on the last page", func() {
		repo.page = &payment.Page{Items: []payment.Payment{item(1, time.Now().UTC())}}

		res, err := service.Query(ctx, payment.QueryFilter{})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.HasNext).To(BeFalse())
		Expect(res.NextCursor).To(BeNil())
	})

	It("should return the summary untouched by the page", func() {
		repo.page = &payment.Page{Items: []payment.Payment{item(1, time.Now().UTC())}, HasNext: true}
		repo.summary = &payment.Summary{Count: 35, TotalAmount: decimal.NewFromInt(35000), TotalNetAmount: decimal.NewFromInt(33950)}

		res, err := service.Query(ctx, payment.QueryFilter{Limit: 1})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Items).To(HaveLen(1))
		Expect(res.Summary.Count).To(Equal(int64(35)))
		Expect(res.Summary.TotalAmount.Equal(decimal.NewFromInt(35000))).To(BeTrue())
	})

	It("should report store failures as internal errors", func() {
		repo.pageErr = stderrors.New("timeout")

		_, err := service.Query(ctx, payment.QueryFilter{})

		Expect(errors.CategoryOf(err)).To(Equal(errors.CategoryInternal))
	})
})
