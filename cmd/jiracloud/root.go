package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tuannvm/jira-cloud/internal/config"
	"github.com/tuannvm/jira-cloud/internal/jira"
	"github.com/tuannvm/jira-cloud/internal/logging"
)

// app is the state shared by every subcommand once configuration is loaded.
type app struct {
	configPath string
	debug      bool

	// Terminal form options.
	altScreen  bool
	accessible bool

	cfg     *config.Config
	session *jira.Session
}

func newRootCommand() *cobra.Command {
	a := &app{session: jira.NewSession()}

	root := &cobra.Command{
		Use:          "jiracloud",
		Short:        "Pick and fetch Jira Cloud issues, projects and issue types",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultConfigPath(), "config file")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&a.altScreen, "alt-screen", false, "draw pickers on the alternate screen")
	flags.BoolVar(&a.accessible, "accessible", false, "use plain prompts suited to screen readers")
	flags.String("host", "", "Jira site, e.g. https://my-company.atlassian.net")
	flags.String("username", "", "Atlassian account email")

	config.BindFlag("jira.host", flags.Lookup("host"))
	config.BindFlag("jira.username", flags.Lookup("username"))

	root.AddCommand(
		newVerifyCommand(a),
		newIssueCommand(a),
		newProjectCommand(a),
		newIssueTypeCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newServeCommand(a),
		newRemoteCommand(a),
	)
	return root
}

// load reads configuration and configures the Jira session. Incomplete settings leave
// the session uninitialized so commands can report it.
func (a *app) load() error {
	if a.debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logging.SetLogger(logger.Sugar())
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// An invalid account must not block login from fixing it.
	if err := a.session.Configure(cfg.Jira); err != nil {
		logging.Warnf("Jira client not configured: %v", err)
	}
	return nil
}
