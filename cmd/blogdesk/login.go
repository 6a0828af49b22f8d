package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"blogdesk/internal/api"
	internalauth "blogdesk/internal/auth"
	"blogdesk/internal/config"
	"blogdesk/internal/models"
)

func newLoginCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		passwordStdin bool
		noSave        bool
	)

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and store the session token in the global config",
		Args:  requireExactlyArgs(1, "email is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !passwordStdin {
				return fmt.Errorf("--password-stdin is required")
			}
			email, err := internalauth.NormalizeEmail(args[0])
			if err != nil {
				return err
			}
			password, err := readPassword(os.Stdin)
			if err != nil {
				return err
			}

			var session api.LoginResponse
			err = withClient(cfg, func(client *api.Client) error {
				var loginErr error
				session, loginErr = client.Login(cmd.Context(), email, password)
				return loginErr
			})
			if err != nil {
				if !api.IsTransportError(err) && !errors.Is(err, errServerNotStarted) {
					return err
				}
				profile, fallbackErr := fallbackLogin(cfg, email, password)
				if fallbackErr != nil {
					return errors.Join(err, fallbackErr)
				}
				return writeLoginResult(profile, "signed in offline as", *jsonOutput)
			}

			if !noSave {
				path, err := config.GlobalPath()
				if err != nil {
					return err
				}
				if err := config.SetKey(path, "api_token", session.Token); err != nil {
					return fmt.Errorf("save session: %w", err)
				}
			}
			if *jsonOutput {
				return writeJSON(session)
			}
			return writeLoginResult(session.User, "signed in as", false)
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "print the session without storing the token")
	return cmd
}

// fallbackLogin checks the local users file. It is only consulted when the
// login service cannot be reached.
func fallbackLogin(cfg *config.Config, email, password string) (models.Profile, error) {
	if strings.TrimSpace(cfg.UsersFile) == "" {
		return models.Profile{}, fmt.Errorf("login service unreachable and no users_file configured")
	}
	dir, err := internalauth.LoadFallbackDirectory(cfg.UsersFile)
	if err != nil {
		return models.Profile{}, err
	}
	return dir.Authenticate(email, password)
}

func writeLoginResult(profile models.Profile, prefix string, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(profile)
	}
	return writePlain("%s %s <%s> (%s)\n", prefix, profile.Name, profile.Email, profile.Access)
}

func readPassword(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(cfg.APIToken) == "" {
				return writePlain("not signed in\n")
			}
			err := withClient(cfg, func(client *api.Client) error {
				return client.Logout(cmd.Context())
			})
			if err != nil {
				return err
			}

			path, err := config.GlobalPath()
			if err != nil {
				return err
			}
			if err := config.SetKey(path, "api_token", ""); err != nil {
				return err
			}
			return writePlain("signed out\n")
		},
	}
}

func newWhoamiCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the profile behind the current credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				profile, err := client.Me(cmd.Context())
				if err != nil {
					return err
				}
				return writeLoginResult(profile, "signed in as", *jsonOutput)
			})
		},
	}
}
