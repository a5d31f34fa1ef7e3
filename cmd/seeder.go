package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/payment-gateway/internal/partner"
	partnerPostgres "github.com/frahmantamala/payment-gateway/internal/partner/postgres"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample partners and fee policies",
	Long:  `Seed the database with sample partners and fee policies for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if err := seed(cmd.Context(), gormDB, clearData); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		fmt.Println("Seeding completed")
	},
}

type seedPartner struct {
	partner partner.Partner
	policy  *partner.FeePolicy
}

func seedData() []seedPartner {
	effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []seedPartner{
		{
			partner: partner.Partner{ID: 1, Code: "MOCK1", Name: "Mock Partner", Active: true},
			policy: &partner.FeePolicy{
				PartnerID:     1,
				EffectiveFrom: effective,
				Percentage:    decimal.RequireFromString("0.0235"),
				FixedFee:      decimal.Zero,
			},
		},
		{
			partner: partner.Partner{ID: 2, Code: "TESTPAY1", Name: "TestPay Partner", Active: true},
			policy: &partner.FeePolicy{
				PartnerID:     2,
				EffectiveFrom: effective,
				Percentage:    decimal.RequireFromString("0.03"),
				FixedFee:      decimal.NewFromInt(100),
			},
		},
		{
			partner: partner.Partner{ID: 3, Code: "INACTIVE", Name: "Inactive Partner", Active: false},
		},
	}
}

func seed(ctx context.Context, db *gorm.DB, clear bool) error {
	if clear {
		for _, table := range []string{"payment", "pg_history", "partner_fee_policy", "partner"} {
			if err := db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		fmt.Println("Cleared existing data")
	}

	repo := partnerPostgres.NewPartnerRepository(db)
	for _, s := range seedData() {
		existing, err := repo.FindPartnerByID(ctx, s.partner.ID)
		if err != nil {
			return fmt.Errorf("find partner %d: %w", s.partner.ID, err)
		}
		if existing != nil {
			fmt.Println("partner already exists, skipping:", s.partner.Code)
			continue
		}

		if err := repo.CreatePartner(ctx, partner.ToDataModel(s.partner)); err != nil {
			return fmt.Errorf("insert partner %s: %w", s.partner.Code, err)
		}
		if s.policy != nil {
			if err := repo.CreateFeePolicy(ctx, partner.FeePolicyToDataModel(*s.policy)); err != nil {
				return fmt.Errorf("insert fee policy for %s: %w", s.partner.Code, err)
			}
		}
		fmt.Println("Seeded partner:", s.partner.Code)
	}

	// explicit ids leave the serial behind
	if err := db.WithContext(ctx).Exec("SELECT setval(pg_get_serial_sequence('partner', 'id'), (SELECT MAX(id) FROM partner))").Error; err != nil {
		return fmt.Errorf("reset partner sequence: %w", err)
	}
	return nil
}
