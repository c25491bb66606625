package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/attrkit/internal/api"
)

// newTokenCommand creates the token command
func newTokenCommand(a *app) *cobra.Command {
	var (
		subject string
		scopes  []string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Long: `Sign a token with server.jwt_secret. Tokens expire after server.token_ttl.

Example:
  attrkit token --subject ci --scope write`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Server.JWTSecret == "" {
				return errors.New("server.jwt_secret is not set")
			}
			if subject == "" {
				return errors.New("--subject is required")
			}
			auth := api.NewAuthenticator(a.cfg.Server.JWTSecret, a.cfg.Server.TokenTTL)
			token, err := auth.IssueToken(subject, scopes...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "Granted scopes (write)")
	return cmd
}
