// Command coachctl runs one-off maintenance against the coachdesk database.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/config"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/database"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/all"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/logging"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "coachctl",
		Short:         "Maintenance commands for the coachdesk backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			logging.Setup(cfg.LogLevel, "text")
			if err := database.Connect(cfg); err != nil {
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := database.Close(); err != nil {
				slog.Warn("database close failed", "error", err)
			}
		},
	}

	root.AddCommand(newMigrateCmd(), newCreateAdminCmd(), newPruneLogsCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.MigrateShared(); err != nil {
				return fmt.Errorf("shared migration: %w", err)
			}
			m := all.Models()
			if err := database.MigrateModels(m); err != nil {
				return fmt.Errorf("feature migration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d feature models\n", len(m))
			return nil
		},
	}
}

func newCreateAdminCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a coach account with default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := services.NewSettingsService(database.DB)
			var user *models.User
			err := database.DB.Transaction(func(tx *gorm.DB) error {
				u, err := services.CreateUser(tx, email, password, name, models.RoleAdmin)
				if err != nil {
					return err
				}
				user = u
				return settings.SeedDefaults(tx, u.ID)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created coach %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPruneLogsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune-logs",
		Short: "Delete system logs older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			deleted, err := logging.Prune(database.DB, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d log rows\n", deleted)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", logging.RetentionDays, "keep this many days of logs")
	return cmd
}
