package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pageza/comedor/backend/internal/service"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the operator account and the allergen categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			username = firstNonEmpty(username, root.cfg.AdminUsername)
			password = firstNonEmpty(password, root.cfg.AdminPassword)
			if password == "" {
				return fmt.Errorf("--password is required")
			}

			db, closeDB, err := root.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := cmd.Context()
			auth := service.NewAuthService(db, root.cfg.JWTSecret, root.cfg.JWTExpiration)
			if _, created, err := auth.EnsureUser(ctx, username, password); err != nil {
				return err
			} else if created {
				log.Infof("Created user %q", username)
			} else {
				log.Infof("User %q already exists", username)
			}

			n, err := service.NewAllergenService(db).EnsureCategories(ctx)
			if err != nil {
				return err
			}
			log.Infof("Seeded %d allergen categories", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Operator username (default ADMIN_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Operator password (default ADMIN_PASSWORD)")
	return cmd
}
