package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	jwttoken "lifedash/internal/jwt_token"
)

var (
	tokenUser     string
	tokenTTL      time.Duration
	tokenIssuer   string
	tokenAudience string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long: `Signs an access token with JWT_SIGNING_KEY for calling the API locally.
Issuer and audience must match the server's JWT_ISSUER and JWT_AUDIENCE.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "user id to embed (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	tokenCmd.Flags().StringVar(&tokenIssuer, "issuer", "lifedash", "token issuer")
	tokenCmd.Flags().StringVar(&tokenAudience, "audience", "lifedash-api", "token audience")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	key := os.Getenv("JWT_SIGNING_KEY")
	if key == "" {
		return errors.New("JWT_SIGNING_KEY is not set")
	}
	svc := jwttoken.NewJWTService(key, tokenIssuer, tokenAudience)
	token, err := svc.GenerateAccessToken(tokenUser, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
