// Command createadmin inserts an active administrator so the first login is possible.
package main

import (
	"os"

	"backoffice/internal/auth"
	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/internal/logger"
	"backoffice/internal/repository"
	"backoffice/internal/service"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "createadmin <email> <password> [name] [title]",
		Short: "Create an administrator user",
		Args:  cobra.RangeArgs(2, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}

			db, err := database.NewConnection(cfg.DB.DSN(), log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			users := service.NewUserService(
				repository.NewUserRepository(db),
				auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL),
				service.NewAuditService(repository.NewAuditRepository(db), log),
				log,
			)
			return createAdmin(cmd, users, args)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file read before the environment")
	return cmd
}

func createAdmin(cmd *cobra.Command, users service.UserService, args []string) error {
	var name string
	var title *string
	if len(args) > 2 {
		name = args[2]
	}
	if len(args) > 3 {
		title = &args[3]
	}

	user, err := users.CreateAdmin(cmd.Context(), args[0], args[1], name, title)
	if err != nil {
		return err
	}
	cmd.Printf("Admin created: %s <%s> (id %s)\n", user.Name, user.Email, user.ID)
	return nil
}
