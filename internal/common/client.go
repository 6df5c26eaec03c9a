package common

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-a2a-go/client"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/tuannvm/jira-cloud/internal/config"
	log "github.com/tuannvm/jira-cloud/internal/logging"
)

// APIKeyHeader carries the agent API key on A2A requests.
const APIKeyHeader = "X-API-Key"

// SetupA2AClient creates and configures an A2A client with appropriate authentication
func SetupA2AClient(cfg config.AgentConfig, targetURL string) (*client.A2AClient, error) {
	var a2aClient *client.A2AClient
	var err error

	switch cfg.AuthType {
	case "apikey":
		log.Debugf("Using API key authentication for A2A client (API key length: %d)", len(cfg.APIKey))
		a2aClient, err = client.NewA2AClient(targetURL, client.WithAPIKeyAuth(cfg.APIKey, APIKeyHeader))
	case "jwt":
		log.Debugf("Using JWT authentication for A2A client")
		a2aClient, err = client.NewA2AClient(targetURL)
	default:
		log.Warnf("No authentication configured for A2A client")
		a2aClient, err = client.NewA2AClient(targetURL)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create A2A client: %w", err)
	}

	return a2aClient, nil
}

// SendTask synchronously sends a task via JSON-RPC and returns the status message parts
// followed by every artifact part. A failed task is returned as an error carrying the
// status text.
func SendTask(ctx context.Context, a2aClient *client.A2AClient, params protocol.SendTaskParams) (protocol.Message, error) {
	task, err := a2aClient.SendTasks(ctx, params)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("SendTasks RPC failed: %w", err)
	}

	var parts []protocol.Part
	if task.Status.Message != nil {
		parts = append(parts, task.Status.Message.Parts...)
	}
	if task.Status.State == protocol.TaskState("failed") {
		return protocol.Message{}, fmt.Errorf("task %s failed: %s", task.ID, MessageText(protocol.Message{Parts: parts}))
	}
	for _, art := range task.Artifacts {
		parts = append(parts, art.Parts...)
	}
	return protocol.Message{Parts: parts}, nil
}

// SendCommand sends cmd as a text message in a task of its own.
func SendCommand(ctx context.Context, a2aClient *client.A2AClient, cmd Command) (protocol.Message, error) {
	return SendTask(ctx, a2aClient, newCommandParams(cmd))
}

// newCommandParams wraps cmd in a new task. The server keys tasks by ID, so a reused ID
// would return the artifacts of earlier commands too.
func newCommandParams(cmd Command) protocol.SendTaskParams {
	return protocol.SendTaskParams{
		ID: uuid.NewString(),
		Message: protocol.Message{
			Role:  protocol.MessageRoleUser,
			Parts: []protocol.Part{protocol.NewTextPart(cmd.String())},
		},
	}
}
