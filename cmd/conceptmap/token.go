package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"brain2-conceptmap/pkg/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token USER_ID",
	Short: "Issue an HS256 API token from the configured secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return errors.New("no jwt secret configured (set JWT_SECRET or auth.jwt_secret)")
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := auth.GenerateToken(cfg.Auth.JWTSecret, cfg.Auth.Issuer, args[0], cfg.Auth.Audience, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
