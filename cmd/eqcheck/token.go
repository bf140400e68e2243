package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gitlab.com/equivcheck-2025.net/internal/adapter/crypto"
	"gitlab.com/equivcheck-2025.net/internal/config"
	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the run API",
	Long: `Issue a bearer token signed with JWT_SECRET and JWT_METHOD, the same
settings the server verifies requests with.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if *envFile != "" {
			if err := godotenv.Load(*envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", *envFile, err)
			}
		}
		jwtCfg := config.NewJwtConfig()
		if !jwtCfg.AuthEnabled() {
			return errors.New("JWT_SECRET is not set")
		}

		token, err := issueToken(cmd.Context(), crypto.NewJWTService(jwtCfg), jwtCfg.Method, *tokenSubject, *tokenTTL, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var (
	tokenSubject *string
	tokenTTL     *time.Duration
)

func init() {
	f := tokenCmd.Flags()
	tokenSubject = f.String("sub", "eqcheck", "Subject claim of the token")
	tokenTTL = f.Duration("ttl", 24*time.Hour, "How long the token stays valid")
	rootCmd.AddCommand(tokenCmd)
}

func issueToken(ctx context.Context, svc primary.JWTService, method, subject string, ttl time.Duration, now time.Time) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}
	return svc.GenerateTokenHMAC(ctx, method, map[string]interface{}{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
}
