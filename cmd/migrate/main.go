package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/alemt19/ats-sub001/internal/app/migrate"
	"github.com/alemt19/ats-sub001/internal/repository/postgres"
	"github.com/alemt19/ats-sub001/internal/service/auth"
	"github.com/alemt19/ats-sub001/pkg/config"
	"github.com/alemt19/ats-sub001/pkg/logger"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("migrate", logger.ParseLevel(cfg.LogLevel))
	var timeout time.Duration

	newRunner := func() (migrate.Runner, error) {
		return migrate.New(cfg.DatabaseURL, cfg.MigrationsDir, log)
	}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the ATS database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "command timeout")
	root.PersistentFlags().StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection string")
	root.PersistentFlags().StringVar(&cfg.MigrationsDir, "dir", cfg.MigrationsDir, "migrations directory; the embedded set is used when it does not exist")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			runner, err := newRunner()
			if err != nil {
				return err
			}
			return runner.Ensure(ctx)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			runner, err := newRunner()
			if err != nil {
				return err
			}
			statuses, err := runner.Status(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
			for _, st := range statuses {
				applied := "-"
				if !st.AppliedAt.IsZero() {
					applied = st.AppliedAt.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
			}
			return tw.Flush()
		},
	})

	var target int64
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration, or down to --target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			runner, err := newRunner()
			if err != nil {
				return err
			}
			return runner.Down(ctx, target)
		},
	}
	down.Flags().Int64Var(&target, "target", 0, "version to roll back to (exclusive of later versions)")
	root.AddCommand(down)

	var name, email, password string
	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a verified admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateAdmin(name, email, password); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			svc := auth.New(postgres.New(pool), nil, nil, log, cfg)
			user, err := svc.CreateAdmin(ctx, name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	createAdmin.Flags().StringVar(&name, "name", "Administrator", "display name")
	createAdmin.Flags().StringVar(&email, "email", "", "login email")
	createAdmin.Flags().StringVar(&password, "password", "", "initial password")
	_ = createAdmin.MarkFlagRequired("email")
	_ = createAdmin.MarkFlagRequired("password")
	root.AddCommand(createAdmin)

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error("migration command failed", "error", err)
		os.Exit(1)
	}
}
