package partner

import (
	"context"
	"time"

	partnerDatamodel "github.com/frahmantamala/payment-gateway/internal/core/datamodel/partner"
	"github.com/shopspring/decimal"
)

type Partner struct {
	ID     int64
	Code   string
	Name   string
	Active bool
}

func (p Partner) IsActive() bool {
	return p.Active
}

// FeePolicy is one version of a partner's fee schedule. The version with the
// latest EffectiveFrom not after a given instant is the one in force.
type FeePolicy struct {
	ID            int64
	PartnerID     int64
	EffectiveFrom time.Time
	Percentage    decimal.Decimal
	FixedFee      decimal.Decimal
}

type RepositoryAPI interface {
	FindPartnerByID(ctx context.Context, id int64) (*partnerDatamodel.Partner, error)
	FindEffectivePolicy(ctx context.Context, partnerID int64, at time.Time) (*partnerDatamodel.FeePolicy, error)
	CreatePartner(ctx context.Context, p *partnerDatamodel.Partner) error
	CreateFeePolicy(ctx context.Context, fp *partnerDatamodel.FeePolicy) error
}

func ToDataModel(p Partner) *partnerDatamodel.Partner {
	return &partnerDatamodel.Partner{
		ID:     p.ID,
		Code:   p.Code,
		Name:   p.Name,
		Active: p.Active,
	}
}

func FromDataModel(p *partnerDatamodel.Partner) Partner {
	return Partner{
		ID:     p.ID,
		Code:   p.Code,
		Name:   p.Name,
		Active: p.Active,
	}
}

func FeePolicyToDataModel(fp FeePolicy) *partnerDatamodel.FeePolicy {
	return &partnerDatamodel.FeePolicy{
		ID:            fp.ID,
		PartnerID:     fp.PartnerID,
		EffectiveFrom: fp.EffectiveFrom.UTC(),
		Percentage:    fp.Percentage,
		FixedFee:      fp.FixedFee,
	}
}

func FeePolicyFromDataModel(fp *partnerDatamodel.FeePolicy) FeePolicy {
	return FeePolicy{
		ID:            fp.ID,
		PartnerID:     fp.PartnerID,
		EffectiveFrom: fp.EffectiveFrom.UTC(),
		Percentage:    fp.Percentage,
		FixedFee:      fp.FixedFee,
	}
}
