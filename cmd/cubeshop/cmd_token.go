package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/cubeshop/config"
	"github.com/shashiranjanraj/cubeshop/pkg/auth"
)

// cubeshop token <email>
var tokenCmd = &cobra.Command{
	Use:   "token <email>",
	Short: "Issue an HS256 bearer token for local testing (AUTH_MODE=hmac)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if config.AuthMode() != "hmac" {
			return errors.New("token: the server only accepts these tokens with AUTH_MODE=hmac")
		}

		token, err := auth.NewHMACVerifier(config.JWTSecret()).GenerateToken(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
