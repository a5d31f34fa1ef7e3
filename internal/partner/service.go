package partner

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service exposes partner and fee policy lookups as domain values.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// FindPartner returns nil, nil when the partner does not exist.
func (s *Service) FindPartner(ctx context.Context, id int64) (*Partner, error) {
	dataPartner, err := s.repo.FindPartnerByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load partner", "error", err, "partner_id", id)
		return nil, fmt.Errorf("find partner %d: %w", id, err)
	}
	if dataPartner == nil {
		return nil, nil
	}
	p := FromDataModel(dataPartner)
	return &p, nil
}

// FindEffectivePolicy returns nil, nil when no policy is in force at the instant.
func (s *Service) FindEffectivePolicy(ctx context.Context, partnerID int64, at time.Time) (*FeePolicy, error) {
	dataPolicy, err := s.repo.FindEffectivePolicy(ctx, partnerID, at.UTC())
	if err != nil {
		s.logger.Error("failed to load fee policy", "error", err, "partner_id", partnerID)
		return nil, fmt.Errorf("find fee policy for partner %d: %w", partnerID, err)
	}
	if dataPolicy == nil {
		return nil, nil
	}
	fp := FeePolicyFromDataModel(dataPolicy)
	return &fp, nil
}
