package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blogdesk/internal/api"
	internalauth "blogdesk/internal/auth"
	"blogdesk/internal/config"
	"blogdesk/internal/models"
)

func newAdminUserCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage member accounts",
	}
	cmd.AddCommand(newAdminUserAddCmd(cfg, jsonOutput))
	cmd.AddCommand(newAdminUserListCmd(cfg, jsonOutput))
	cmd.AddCommand(newAdminUserSetDisabledCmd(cfg, jsonOutput, "disable", "Disable one account", true))
	cmd.AddCommand(newAdminUserSetDisabledCmd(cfg, jsonOutput, "enable", "Enable one account", false))
	cmd.AddCommand(newAdminUserDeleteCmd(cfg, jsonOutput))
	return cmd
}

func newAdminUserAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		passwordStdin bool
		admin         bool
		profile       models.Profile
	)

	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Create one account",
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
			if err := internalauth.ValidatePassword(password); err != nil {
				return err
			}

			profile.Email = email
			profile.Access = models.AccessMember
			if admin {
				profile.Access = models.AccessAdmin
			}

			return withClient(cfg, func(client *api.Client) error {
				created, err := client.AdminUserAdd(cmd.Context(), api.AdminUserCreateRequest{Profile: profile, Password: password})
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(created)
				}
				return writePlain("created %s account %s (%s)\n", created.Profile.Access, created.Email, created.ID)
			})
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	flags.BoolVar(&admin, "admin", false, "grant blog management access")
	flags.StringVar(&profile.Name, "name", "", "display name")
	flags.StringVar(&profile.RollNo, "roll-no", "", "roll number")
	flags.StringVar(&profile.School, "school", "", "school")
	flags.StringVar(&profile.College, "college", "", "college")
	flags.StringVar(&profile.Year, "year", "", "year of study")
	return cmd
}

func newAdminUserListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List provisioned accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				users, err := client.AdminUserList(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"count": len(users), "users": users})
				}
				if len(users) == 0 {
					return writePlain("no accounts configured\n")
				}
				if err := writePlain("EMAIL\tNAME\tACCESS\tSTATUS\tID\n"); err != nil {
					return err
				}
				for _, user := range users {
					status := "enabled"
					if user.Disabled {
						status = "disabled"
					}
					if err := writePlain("%s\t%s\t%s\t%s\t%s\n", user.Email, user.Profile.Name, user.Profile.Access, status, user.ID); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newAdminUserSetDisabledCmd(cfg *config.Config, jsonOutput *bool, name, short string, disabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <email>",
		Short: short,
		Args:  requireExactlyArgs(1, "email is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := internalauth.NormalizeEmail(args[0])
			if err != nil {
				return err
			}

			return withClient(cfg, func(client *api.Client) error {
				updated, err := client.AdminUserSetDisabled(cmd.Context(), email, disabled)
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(updated)
				}

				action := "enabled"
				if disabled {
					action = "disabled"
				}
				return writePlain("%s account %s\n", action, updated.Email)
			})
		},
	}
}

func newAdminUserDeleteCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <email>",
		Aliases: []string{"rm"},
		Short:   "Delete one account and its sessions",
		Args:    requireExactlyArgs(1, "email is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := internalauth.NormalizeEmail(args[0])
			if err != nil {
				return err
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.AdminUserDelete(cmd.Context(), email)
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("deleted account %s\n", resp.Email)
			})
		},
	}
}
