package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hongminglow/eros-desk/internal/config"
	"github.com/hongminglow/eros-desk/internal/http/handlers"
	"github.com/hongminglow/eros-desk/internal/models/dto"
	"github.com/hongminglow/eros-desk/internal/storage"
	"github.com/hongminglow/eros-desk/internal/storage/postgres"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage identities",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(cmd.Help())
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an identity, e.g. the first SUPER_ADMIN",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.CreateUserRequest
		req.Email, _ = cmd.Flags().GetString("email")
		req.DisplayName, _ = cmd.Flags().GetString("name")
		req.Password, _ = cmd.Flags().GetString("password")
		req.Role, _ = cmd.Flags().GetString("role")

		identity, err := handlers.NewIdentity(req)
		if err != nil {
			return err
		}
		url, err := config.LoadDatabaseURL()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		store, err := postgres.NewStore(ctx, url)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		defer store.Close()

		created, err := store.CreateIdentity(ctx, identity)
		if errors.Is(err, storage.ErrAlreadyExists) {
			return fmt.Errorf("an identity with email %s already exists", identity.Email)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", created.Email, created.Role, created.ID)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().String("email", "", "login email")
	userCreateCmd.Flags().String("name", "", "display name")
	userCreateCmd.Flags().String("password", "", "initial password")
	userCreateCmd.Flags().String("role", "SUPER_ADMIN", "one of SUPER_ADMIN, MANAGER, SCHEDULER, CHATTER, CREATOR")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	_ = userCreateCmd.MarkFlagRequired("name")
	userCmd.AddCommand(userCreateCmd)
}
