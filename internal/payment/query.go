package payment

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/pkg/logger"
	"github.com/frahmantamala/payment-gateway/pkg/pagination"
)

// QueryFilter is the caller's view of a listing request. From is inclusive
// and To exclusive.
type QueryFilter struct {
	PartnerID *int64
	Status    *string
	From      *time.Time
	To        *time.Time
	Cursor    string
	Limit     int
}

type QueryResult struct {
	Items      []Payment
	Summary    Summary
	NextCursor *string
	HasNext    bool
}

type QueryService struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewQueryService(repo RepositoryAPI, lg *slog.Logger) *QueryService {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &QueryService{
		repo:   repo,
		logger: lg,
	}
}

// Query returns one page ordered newest first plus a summary over every row
// matching the filter, regardless of the cursor.
func (s *QueryService) Query(ctx context.Context, filter QueryFilter) (*QueryResult, error) {
	var status *Status
	if filter.Status != nil {
		parsed, ok := ParseStatus(*filter.Status)
		if !ok {
			return nil, errors.ErrInvalidQuery.WithMessage("Not Supported Payment Status")
		}
		status = &parsed
	}

	q := PageQuery{
		PartnerID: filter.PartnerID,
		Status:    status,
		From:      utcPtr(filter.From),
		To:        utcPtr(filter.To),
		Limit:     pagination.LimitWithBuffer(filter.Limit),
	}
	if c, ok := pagination.DecodeCursor(filter.Cursor); ok {
		createdAt, id := c.CreatedAt(), c.ID
		if storable(createdAt) {
			q.CursorCreatedAt = &createdAt
			q.CursorID = &id
		} else {
			s.logger.Debug("ignoring cursor outside the storable time range", "cursor_millis", c.CreatedAtMillis)
		}
	}

	page, err := s.repo.FindPage(ctx, q)
	if err != nil {
		s.logger.Error("failed to load payment page", "error", err)
		return nil, errors.NewInternalError("failed to query payments", err)
	}

	summary, err := s.repo.Summary(ctx, SummaryFilter{
		PartnerID: q.PartnerID,
		Status:    q.Status,
		From:      q.From,
		To:        q.To,
	})
	if err != nil {
		s.logger.Error("failed to load payment summary", "error", err)
		return nil, errors.NewInternalError("failed to summarize payments", err)
	}

	result := &QueryResult{
		Items:   page.Items,
		Summary: *summary,
		HasNext: page.HasNext,
	}
	if page.HasNext && len(page.Items) > 0 {
		tail := page.Items[len(page.Items)-1]
		if token, ok := pagination.EncodeCursor(&tail.CreatedAt, &tail.ID); ok {
			result.NextCursor = &token
		}
	}

	s.logger.Debug("payments queried",
		"items", len(result.Items),
		"has_next", result.HasNext,
		"count", result.Summary.Count)

	return result, nil
}

// storable reports whether t fits a database timestamp column. Cursors
// outside this range cannot come from a stored row.
func storable(t time.Time) bool {
	y := t.Year()
	return y >= minCursorYear && y <= maxCursorYear
}

const (
	minCursorYear = 1
	maxCursorYear = 9999
)

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
