package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/config"
	"github.com/sakif/alive-sleep/internal/identity"
	"github.com/sakif/alive-sleep/internal/repository/sqlstore"
	"github.com/sakif/alive-sleep/internal/scheduler"
	"github.com/sakif/alive-sleep/internal/service"
)

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash EXTERNAL_ID",
		Short: "Print the stored hash for an identity-provider subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runHash(cfg.EncryptionKey, args[0], cmd.OutOrStdout())
		},
	}
}

func runHash(key, externalID string, out io.Writer) error {
	h, err := identity.NewHasher(key)
	if err != nil {
		return err
	}
	sum, err := h.Hash(externalID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, sum)
	return err
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			defer log.Sync()

			conn := sqlstore.NewConnector(cfg.DBDriver, cfg.DatabaseURL, cfg.ConnectTimeout, sqlstore.WithLogger(log))
			defer conn.Close()

			// Opening the store applies the schema.
			if _, err := conn.DB(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.DBDriver)
			return nil
		},
	}
}

func newSummarizeCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Compute weekly summaries for every user",
		Long: "Compute the summary of the week before --date (default: today, UTC) " +
			"for every user, as the Monday job does.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref := time.Now().UTC()
			if date != "" {
				d, ok := service.ParseDate(date)
				if !ok {
					return fmt.Errorf("--date %q is not a valid date", date)
				}
				ref = d
			}

			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			defer log.Sync()

			n, err := runSummarize(cmd.Context(), cfg, log, ref)
			if err != nil {
				return err
			}
			start, end := service.PriorWeek(ref)
			fmt.Fprintf(cmd.OutOrStdout(), "%d summaries written for %s..%s\n",
				n, start.Format(time.DateOnly), end.Format(time.DateOnly))
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "reference date, YYYY-MM-DD")
	return cmd
}

func runSummarize(ctx context.Context, cfg *config.Config, log *zap.Logger, ref time.Time) (int, error) {
	hasher, err := identity.NewHasher(cfg.EncryptionKey)
	if err != nil {
		return 0, err
	}

	conn := sqlstore.NewConnector(cfg.DBDriver, cfg.DatabaseURL, cfg.ConnectTimeout, sqlstore.WithLogger(log))
	defer conn.Close()
	store := sqlstore.New(conn)

	users := service.NewUserService(store.Users(), hasher, nil, log)
	summaries := service.NewSummaryService(store.Entries(), store.Summaries(), nil, log)
	return scheduler.NewWeekly(users, summaries, log).RunOnce(ctx, ref)
}
