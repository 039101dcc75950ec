package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/cubeshop/database/migrations"
	"github.com/shashiranjanraj/cubeshop/database/seeders"
	"github.com/shashiranjanraj/cubeshop/internal/server"
	"github.com/shashiranjanraj/cubeshop/pkg/rbac"
)

// withBackend opens the configured store for the duration of fn.
func withBackend(cmd *cobra.Command, fn func(ctx context.Context, b *server.Backend) error) error {
	ctx := cmd.Context()
	b, err := server.Open(ctx)
	if err != nil {
		return err
	}
	defer b.Close(context.Background())
	return fn(ctx, b)
}

// cubeshop migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the indexes the collections rely on",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b *server.Backend) error {
			out := cmd.OutOrStdout()
			for _, name := range migrations.Names() {
				fmt.Fprintf(out, "  • %s\n", name)
			}
			if err := b.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "✅ Migrations applied")
			return nil
		})
	},
}

// cubeshop seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b *server.Backend) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
			return seeders.RunAll(ctx, b.Store, cmd.OutOrStdout())
		})
	},
}

// cubeshop promote <email>
//
// The API only lets an admin promote, so the first admin is made here.
var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Give an existing user the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b *server.Backend) error {
			res, err := b.Store.Users.SetRole(ctx, args[0], rbac.RoleAdmin.String())
			if err != nil {
				return err
			}
			if res.MatchedCount == 0 {
				return fmt.Errorf("no user with email %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is an admin\n", args[0])
			return nil
		})
	},
}
