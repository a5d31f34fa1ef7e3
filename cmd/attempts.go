package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/frahmantamala/payment-gateway/internal/pghistory"
	pghistoryPostgres "github.com/frahmantamala/payment-gateway/internal/pghistory/postgres"
	"github.com/spf13/cobra"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "Inspect payment gateway attempts",
}

var pendingAttemptsCmd = &cobra.Command{
	Use:   "pending",
	Short: "List attempts still PENDING past a threshold",
	Long:  `List gateway attempts that never reached a terminal status so they can be reconciled with the provider by hand.`,
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

		repo := pghistoryPostgres.NewPgHistoryRepository(gormDB)
		if err := listPendingAttempts(cmd.Context(), repo, os.Stdout, time.Now(), pendingOlderThan, pendingLimit); err != nil {
			log.Fatalf("list pending attempts: %v", err)
		}
	},
}

var (
	pendingOlderThan time.Duration
	pendingLimit     int
)

func init() {
	pendingAttemptsCmd.Flags().DurationVar(&pendingOlderThan, "older-than", 10*time.Minute, "only list attempts created before now minus this duration")
	pendingAttemptsCmd.Flags().IntVar(&pendingLimit, "limit", 100, "maximum number of attempts to list")

	attemptsCmd.AddCommand(pendingAttemptsCmd)
}

func listPendingAttempts(ctx context.Context, repo pghistory.RepositoryAPI, out io.Writer, now time.Time, olderThan time.Duration, limit int) error {
	if limit <= 0 {
		limit = 100
	}
	rows, err := repo.ListPending(ctx, now.Add(-olderThan), limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROVIDER\tAMOUNT\tCARD\tCREATED_AT")
	for _, row := range rows {
		a := pghistory.FromDataModel(row)
		card := "-"
		if a.CardLast4 != nil {
			card = "****" + *a.CardLast4
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", a.ID, a.PgProvider, a.Amount.String(), card, a.CreatedAt.Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d pending attempt(s) older than %s\n", len(rows), olderThan)
	return nil
}
