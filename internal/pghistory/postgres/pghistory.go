package postgres

import (
	"context"
	"fmt"
	"time"

	pghistoryDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/pghistory"
	"github.com/frahmantamala/payment-gateway/internal/pghistory"
	"gorm.io/gorm"
)

type PgHistoryRepository struct {
	db *gorm.DB
}

func NewPgHistoryRepository(db *gorm.DB) pghistory.RepositoryAPI {
	return &PgHistoryRepository{db: db}
}

func (r *PgHistoryRepository) Save(ctx context.Context, h *pghistoryDatamodel.PgHistory) error {
	now := time.Now().UTC()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
	return r.db.WithContext(ctx).Create(h).Error
}

// UpdateStatus only touches rows still PENDING, so a second transition or a
// concurrent writer shows up as zero rows affected.
func (r *PgHistoryRepository) UpdateStatus(ctx context.Context, id int64, status pghistory.Status) (int64, error) {
	if !status.IsTerminal() {
		return 0, fmt.Errorf("pg_history %d: %s is not a terminal status", id, status)
	}
	result := r.db.WithContext(ctx).
		Model(&pghistoryDatamodel.PgHistory{}).
		Where("id = ? AND status = ?", id, string(pghistory.StatusPending)).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *PgHistoryRepository) ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*pghistoryDatamodel.PgHistory, error) {
	var rows []*pghistoryDatamodel.PgHistory
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(pghistory.StatusPending), olderThan.UTC()).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
