package postgres

import (
	"context"
	"errors"
	"time"

	partnerDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/partner"
	"github.com/frahmantamala/payment-gateway/internal/partner"
	"gorm.io/gorm"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) partner.RepositoryAPI {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) FindPartnerByID(ctx context.Context, id int64) (*partnerDatamodel.Partner, error) {
	var p partnerDatamodel.Partner
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindEffectivePolicy picks the latest policy not after at; id breaks ties.
func (r *PartnerRepository) FindEffectivePolicy(ctx context.Context, partnerID int64, at time.Time) (*partnerDatamodel.FeePolicy, error) {
	var fp partnerDatamodel.FeePolicy
	err := r.db.WithContext(ctx).
		Where("partner_id = ? AND effective_from <= ?", partnerID, at).
		Order("effective_from DESC").
		Order("id DESC").
		Limit(1).
		Take(&fp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fp, nil
}

func (r *PartnerRepository) CreatePartner(ctx context.Context, p *partnerDatamodel.Partner) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PartnerRepository) CreateFeePolicy(ctx context.Context, fp *partnerDatamodel.FeePolicy) error {
	return r.db.WithContext(ctx).Create(fp).Error
}
