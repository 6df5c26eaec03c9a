package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tuannvm/jira-cloud/internal/api"
	"github.com/tuannvm/jira-cloud/internal/frontmatter"
	"github.com/tuannvm/jira-cloud/internal/models"
	"github.com/tuannvm/jira-cloud/internal/notify"
	"github.com/tuannvm/jira-cloud/internal/picker"
)

// newAPI wires the public API to the terminal: huh choosers and a console notifier.
func (a *app) newAPI(cmd *cobra.Command) *api.API {
	form := a.formConfig(cmd)
	return api.New(a.session, notify.NewConsole(cmd.ErrOrStderr()), api.Choosers{
		Issue:     picker.NewFormChooser[*models.IssueSuggestion](form),
		Project:   picker.NewFormChooser[*models.Project](form),
		IssueType: picker.NewFormChooser[*models.IssueType](form),
	})
}

func (a *app) formConfig(cmd *cobra.Command) picker.FormConfig {
	return picker.FormConfig{
		Input:      cmd.InOrStdin(),
		Output:     cmd.ErrOrStderr(),
		AltScreen:  a.altScreen,
		Accessible: a.accessible,
	}
}

func newVerifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the configured credentials can reach Jira",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.newAPI(cmd).VerifyConnection(cmd.Context())
		},
	}
}

func newIssueCommand(a *app) *cobra.Command {
	var asFrontmatter bool
	var notePath string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Search for an issue and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			issue, err := a.newAPI(cmd).GetIssue(cmd.Context())
			if err != nil || issue == nil {
				return err
			}

			switch {
			case notePath != "":
				return mergeIntoNote(notePath, a, issue)
			case asFrontmatter:
				doc, err := frontmatter.Marshal(a.cfg.Jira, issue)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(frontmatter.Wrap(doc))
				return err
			default:
				return printJSON(cmd.OutOrStdout(), issue)
			}
		},
	}
	cmd.Flags().BoolVar(&asFrontmatter, "frontmatter", false, "print the issue as YAML frontmatter")
	cmd.Flags().StringVar(&notePath, "note", "", "add the issue to the frontmatter of this markdown file")
	return cmd
}

func mergeIntoNote(path string, a *app, issue *models.Issue) error {
	note, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading note: %w", err)
	}
	out, err := frontmatter.Merge(note, a.cfg.Jira, issue)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing note: %w", err)
	}
	return nil
}

func newProjectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "project",
		Short: "Choose a project and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := a.newAPI(cmd).GetProject(cmd.Context())
			if err != nil || project == nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), project)
		},
	}
}

func newIssueTypeCommand(a *app) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "issuetype",
		Short: "Choose an issue type and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *int64
			if cmd.Flags().Changed("project-id") {
				filter = &projectID
			}
			issueType, err := a.newAPI(cmd).GetIssueType(cmd.Context(), filter)
			if err != nil || issueType == nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), issueType)
		},
	}
	cmd.Flags().Int64Var(&projectID, "project-id", 0, "only list issue types of this project")
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
