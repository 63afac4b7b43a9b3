package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/ceramica/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// TokenOptions holds flags for token issue
type TokenOptions struct {
	*RootOptions
	UserID   string
	Username string
	Email    string
	Role     string
}

// NewTokenCommand creates the token command
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with access tokens",
	}
	cmd.AddCommand(newTokenIssueCommand(rootOpts))
	return cmd
}

func newTokenIssueCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign an access token with the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTokenIssue(opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.UserID, "user-id", "", "user UUID (random when empty)")
	cmd.Flags().StringVar(&opts.Username, "username", "", "username claim")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email claim")
	cmd.Flags().StringVar(&opts.Role, "role", string(auth.RoleMember), "role claim (admin|member)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

type issuedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	ExpiresIn   int64     `json:"expires_in"`
	UserID      string    `json:"user_id"`
}

func runTokenIssue(opts *TokenOptions, w io.Writer) error {
	role := auth.Role(opts.Role)
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q", opts.Role)
	}
	userID := uuid.New()
	if opts.UserID != "" {
		parsed, err := uuid.Parse(opts.UserID)
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		userID = parsed
	}

	cfg, err := opts.deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	svc := auth.NewJWTService(cfg.JWT)
	token, claims, err := svc.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:   userID,
		Username: opts.Username,
		Email:    opts.Email,
		Role:     role,
	})
	if err != nil {
		return err
	}

	res := issuedToken{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.GetExpiresAtTime(),
		ExpiresIn:   int64(svc.GetAccessTokenExpiration().Seconds()),
		UserID:      userID.String(),
	}
	return printResult(w, opts.Format, res, func(w io.Writer) {
		printf(w, "%s\n", token)
	})
}
