package commands

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/base44-client/internal/constants"
)

// NewAuthCommand creates the auth command group.
func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication and the stored token",
	}

	cmd.AddCommand(newAuthMeCommand())
	cmd.AddCommand(newAuthStatusCommand())
	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthTokenCommand())

	return cmd
}

func newAuthMeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			user, err := client.Auth().Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch user: %w", err)
			}

			return renderValue(user)
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	var within time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether the stored token still authenticates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			auth := client.Auth()

			if auth.GetAccessToken() == "" {
				fmt.Println("Not authenticated: no token")

				return nil
			}

			if !auth.IsAuthenticated(cmd.Context()) {
				fmt.Println("Not authenticated: token rejected")

				return nil
			}

			if auth.IsTokenExpiringSoon(within) {
				fmt.Printf("Authenticated, but the token expires within %s\n", within)

				return nil
			}

			fmt.Println("Authenticated")

			return nil
		},
	}

	cmd.Flags().DurationVar(&within, "within", 5*time.Minute, "window for the expiry warning")

	return cmd
}

// newAuthLoginCommand prints the hosted login URL. A terminal has no page to
// redirect, so the user completes the flow in a browser and stores the
// resulting token with "auth token set".
func newAuthLoginCommand() *cobra.Command {
	var fromURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Print the hosted login URL for this app",
		RunE: func(cmd *cobra.Command, args []string) error {
			appID := viper.GetString("app_id")
			if appID == "" {
				return ErrAppIDRequired
			}

			serverURL := viper.GetString("server_url")
			if serverURL == "" {
				serverURL = constants.DefaultServerURL
			}

			params := url.Values{}
			params.Set("from_url", fromURL)
			params.Set("app_id", appID)

			fmt.Println("Open this URL in a browser to log in:")
			fmt.Println("  " + strings.TrimSuffix(serverURL, "/") + constants.LoginPath + "?" + params.Encode())
			fmt.Println()
			fmt.Println("Then store the token with: base44 auth token set")

			return nil
		},
	}

	cmd.Flags().StringVar(&fromURL, "from-url", "", "URL the login page should return to")

	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored token and end the server session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			if err := client.Auth().Logout(cmd.Context(), ""); err != nil {
				return fmt.Errorf("failed to log out: %w", err)
			}

			fmt.Println("Logged out")

			return nil
		},
	}
}

func newAuthTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored access token",
	}

	cmd.AddCommand(newAuthTokenSetCommand())
	cmd.AddCommand(newAuthTokenClearCommand())
	cmd.AddCommand(newAuthTokenRefreshCommand())
	cmd.AddCommand(newAuthTokenShowCommand())

	return cmd
}

func newAuthTokenSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [token]",
		Short: "Store an access token",
		Long: `Store an access token for later commands.

Pass the token as an argument, or omit it to be prompted without echo.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				fmt.Fprint(os.Stderr, "Token: ")

				raw, err := term.ReadPassword(syscall.Stdin)

				fmt.Fprintln(os.Stderr)

				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				token = strings.TrimSpace(string(raw))
			}

			if token == "" {
				return ErrTokenRequired
			}

			client.SetToken(token)
			fmt.Println("Token stored")

			return nil
		},
	}
}

func newAuthTokenClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			client.ClearToken()
			fmt.Println("Token cleared")

			return nil
		},
	}
}

func newAuthTokenRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the current token for a fresh one",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			if _, err := client.Auth().RefreshToken(cmd.Context()); err != nil {
				return fmt.Errorf("failed to refresh token: %w", err)
			}

			fmt.Println("Token refreshed")

			return nil
		},
	}
}

func newAuthTokenShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			token := client.Auth().GetAccessToken()
			if token == "" {
				return ErrTokenRequired
			}

			fmt.Println(token)

			return nil
		},
	}
}
