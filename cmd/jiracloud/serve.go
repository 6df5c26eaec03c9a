package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	liblog "trpc.group/trpc-go/trpc-a2a-go/log"

	"github.com/tuannvm/jira-cloud/internal/agents"
	"github.com/tuannvm/jira-cloud/internal/common"
	"github.com/tuannvm/jira-cloud/internal/config"
	log "github.com/tuannvm/jira-cloud/internal/logging"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the A2A bridge agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLibLogger(a.debug)

			agentCfg := a.cfg.Agent
			bridge := agents.NewBridgeAgent(a.session, a.cfg.Jira)
			srv, err := common.SetupServer(common.SetupServerOptions{
				Agent:       agentCfg,
				Description: "Answers Jira Cloud lookups.\n" + agents.Usage,
				Processor:   bridge,
			})
			if err != nil {
				return fmt.Errorf("failed to setup A2A server: %w", err)
			}

			log.Infof("%s listening on %s:%d", agentCfg.Name, agentCfg.Host, agentCfg.Port)
			if err := common.StartServer(cmd.Context(), srv, agentCfg.Host, agentCfg.Port); err != nil {
				return err
			}
			log.Infof("Server shutdown complete")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("listen-host", "", "address to listen on")
	flags.Int("port", 0, "port to listen on")
	config.BindFlag("agent.host", flags.Lookup("listen-host"))
	config.BindFlag("agent.port", flags.Lookup("port"))
	return cmd
}

func newRemoteCommand(a *app) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "remote <command> [args...]",
		Short: "Send a command to a running bridge agent",
		Long:  agents.Usage,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := url
			if target == "" {
				target = a.cfg.Agent.URL
			}
			client, err := common.SetupA2AClient(a.cfg.Agent, target)
			if err != nil {
				return err
			}

			command, err := common.ParseCommand(strings.Join(args, " "))
			if err != nil {
				return err
			}
			reply, err := common.SendCommand(cmd.Context(), client, command)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), common.MessageText(reply))
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "agent URL (defaults to agent.url)")
	return cmd
}

// setupLibLogger routes the A2A library's logs through zap.
func setupLibLogger(debug bool) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	liblog.Default = zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
				TimeKey:      "ts",
				LevelKey:     "lvl",
				MessageKey:   "message",
				CallerKey:    "caller",
				EncodeLevel:  zapcore.CapitalColorLevelEncoder,
				EncodeTime:   zapcore.RFC3339TimeEncoder,
				EncodeCaller: zapcore.ShortCallerEncoder,
			}),
			zapcore.AddSync(os.Stderr),
			zap.NewAtomicLevelAt(level),
		),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	).Sugar()
}
