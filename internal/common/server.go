package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"trpc.group/trpc-go/trpc-a2a-go/auth"
	"trpc.group/trpc-go/trpc-a2a-go/log"
	"trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/tuannvm/jira-cloud/internal/config"
)

// SetupServerOptions contains options for setting up an A2A server
type SetupServerOptions struct {
	Agent       config.AgentConfig
	Description string
	Processor   taskmanager.TaskProcessor
}

// SetupServer creates and configures an A2A server with common settings
func SetupServer(opts SetupServerOptions) (*server.A2AServer, error) {
	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("%s agent", opts.Agent.Name)
	}

	agentCard := server.AgentCard{
		Name:        opts.Agent.Name,
		Description: StringPtr(description),
		URL:         opts.Agent.URL,
		Version:     opts.Agent.Version,
		Provider: &server.AgentProvider{
			Organization: "jiracloud",
		},
		DefaultInputModes:  []string{"text", "data"},
		DefaultOutputModes: []string{"text", "data"},
	}

	taskManager, err := taskmanager.NewMemoryTaskManager(opts.Processor)
	if err != nil {
		return nil, fmt.Errorf("failed to create task manager: %w", err)
	}

	// JSON-RPC at root so A2AClient.SendTasks can POST to "/"
	serverOpts := []server.Option{
		server.WithJSONRPCEndpoint("/"),
		server.WithReadTimeout(2 * time.Minute),
		server.WithWriteTimeout(2 * time.Minute),
	}

	provider, err := newAuthProvider(opts.Agent)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		serverOpts = append(serverOpts, server.WithAuthProvider(provider))
	} else {
		log.Default.Warnf("No authentication configured for %s, running unauthenticated", opts.Agent.Name)
	}

	srv, err := server.NewA2AServer(agentCard, taskManager, serverOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return srv, nil
}

// newAuthProvider returns nil when the server should run unauthenticated.
func newAuthProvider(cfg config.AgentConfig) (auth.Provider, error) {
	switch cfg.AuthType {
	case "", "none":
		return nil, nil
	case "jwt":
		if cfg.JWTSecret == "" {
			return nil, errors.New("jwt auth requires agent.jwt_secret")
		}
		log.Default.Infof("Configuring JWT authentication for %s", cfg.Name)
		return auth.NewJWTAuthProvider(
			[]byte(cfg.JWTSecret),
			"", // audience (empty for any)
			"", // issuer (empty for any)
			24*time.Hour,
		), nil
	case "apikey":
		if cfg.APIKey == "" {
			return nil, errors.New("apikey auth requires agent.api_key")
		}
		log.Default.Infof("Configuring API key authentication for %s (API key length: %d)", cfg.Name, len(cfg.APIKey))
		return auth.NewAPIKeyAuthProvider(map[string]string{cfg.APIKey: "user"}, APIKeyHeader), nil
	default:
		return nil, fmt.Errorf("unsupported auth type: %s", cfg.AuthType)
	}
}

// StartServer runs the A2A server until ctx is cancelled, then shuts it down.
func StartServer(ctx context.Context, srv *server.A2AServer, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)

	errCh := make(chan error, 1)
	go func() {
		log.Default.Infof("Starting A2A server on %s", addr)
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Default.Infof("Shutting down server...")
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
