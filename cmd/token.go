package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/DedS3t/monopoly-engine/platform/auth"
	"github.com/DedS3t/monopoly-engine/platform/config"
	"github.com/spf13/cobra"
)

var (
	flagUser string
	flagName string
	flagTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token with JWT_SECRET for local testing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flagUser == "" {
			return errors.New("--user is required")
		}
		cfg := config.Load()
		token, err := auth.Issue([]byte(cfg.JWTSecret), auth.Claims{UserId: flagUser, Username: flagName}, flagTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&flagUser, "user", "", "User id to put in the token")
	tokenCmd.Flags().StringVar(&flagName, "name", "", "Display name (default: the user id)")
	tokenCmd.Flags().DurationVar(&flagTTL, "ttl", 24*time.Hour, "Token lifetime (0 = no expiry)")
}
