package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tuannvm/jira-cloud/internal/config"
	"github.com/tuannvm/jira-cloud/internal/credential"
)

func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store the Jira site, account and API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, username := a.cfg.Jira.Host, a.cfg.Jira.Username
			var apiKey string

			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("Jira site").
					Placeholder("https://my-company.atlassian.net").
					Value(&host).
					Validate(func(s string) error {
						return config.ValidateHost(strings.TrimSpace(s))
					}),
				huh.NewInput().
					Title("Username").
					Description("The email address of your Atlassian account").
					Value(&username).
					Validate(required("username")),
				huh.NewInput().
					Title("API token").
					Description("Create one at https://id.atlassian.com/manage-profile/security/api-tokens").
					EchoMode(huh.EchoModePassword).
					Value(&apiKey).
					Validate(required("API token")),
			)).
				WithInput(cmd.InOrStdin()).
				WithOutput(cmd.ErrOrStderr()).
				WithAccessible(a.accessible)

			if err := form.RunWithContext(cmd.Context()); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}

			host = strings.TrimRight(strings.TrimSpace(host), "/")
			username = strings.TrimSpace(username)

			if err := credential.Set(credential.Key(username, host), strings.TrimSpace(apiKey)); err != nil {
				return err
			}
			if err := config.SaveAccount(a.configPath, host, username); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved credentials for %s on %s\n", username, host)
			return nil
		},
	}
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.cfg.Jira
			if s.Host == "" || s.Username == "" {
				return errors.New("no account configured")
			}
			if err := credential.Delete(credential.Key(s.Username, s.Host)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed credentials for %s on %s\n", s.Username, s.Host)
			return nil
		},
	}
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
