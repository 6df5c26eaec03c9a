package agents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/tuannvm/jira-cloud/internal/api"
	"github.com/tuannvm/jira-cloud/internal/common"
	"github.com/tuannvm/jira-cloud/internal/config"
	"github.com/tuannvm/jira-cloud/internal/frontmatter"
	"github.com/tuannvm/jira-cloud/internal/jira"
	log "github.com/tuannvm/jira-cloud/internal/logging"
	"github.com/tuannvm/jira-cloud/internal/notify"
)

const (
	stateWorking   = protocol.TaskState("working")
	stateCompleted = protocol.TaskState("completed")
	stateFailed    = protocol.TaskState("failed")
)

// Usage lists the commands the bridge understands.
const Usage = `Commands:
  verify                   check the Jira connection
  issue <KEY>              fetch an issue as YAML frontmatter
  projects                 list accessible projects
  issuetypes [projectID]   list issue types, optionally for one project`

// ErrUnknownCommand is returned for commands the bridge does not implement.
var ErrUnknownCommand = errors.New("unknown command")

// statusReporter is the part of taskmanager.TaskHandle the bridge reports through.
type statusReporter interface {
	UpdateStatus(state protocol.TaskState, message *protocol.Message) error
	AddArtifact(artifact protocol.Artifact) error
}

// reply is the outcome of one command.
type reply struct {
	text     string
	name     string
	data     interface{}
	dataDesc string
}

// BridgeAgent serves Jira lookups to other agents over A2A. Every task runs against the
// shared session, so reconfiguring the session affects the next task.
type BridgeAgent struct {
	session  *jira.Session
	settings config.Settings
}

// NewBridgeAgent creates a BridgeAgent. settings controls frontmatter rendering.
func NewBridgeAgent(session *jira.Session, settings config.Settings) *BridgeAgent {
	return &BridgeAgent{session: session, settings: settings}
}

// Process implements the TaskProcessor interface
func (b *BridgeAgent) Process(ctx context.Context, taskID string, msg protocol.Message, handle taskmanager.TaskHandle) error {
	return b.process(ctx, taskID, msg, handle)
}

func (b *BridgeAgent) process(ctx context.Context, taskID string, msg protocol.Message, handle statusReporter) error {
	cmd, err := common.ExtractCommand(msg)
	if err != nil {
		return b.fail(taskID, handle, err)
	}

	log.Infof("Task %s: running %q", taskID, cmd.String())
	if err := handle.UpdateStatus(stateWorking, nil); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	res, err := b.run(ctx, cmd)
	if err != nil {
		return b.fail(taskID, handle, err)
	}

	if res.data != nil {
		artifact := protocol.Artifact{
			Name:        common.StringPtr(res.name),
			Description: common.StringPtr(res.dataDesc),
			Parts: []protocol.Part{&protocol.DataPart{
				Type: "data",
				Data: res.data,
				Metadata: map[string]interface{}{
					"content-type": "application/json",
				},
			}},
		}
		if err := handle.AddArtifact(artifact); err != nil {
			log.Warnf("Task %s: failed to add artifact: %v", taskID, err)
		}
	}

	out := &protocol.Message{Parts: []protocol.Part{protocol.NewTextPart(res.text)}}
	if err := handle.UpdateStatus(stateCompleted, out); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	log.Infof("Task %s completed", taskID)
	return nil
}

// fail records err as the task's failure message. The task itself ends cleanly.
func (b *BridgeAgent) fail(taskID string, handle statusReporter, err error) error {
	log.Errorw("Bridge task failed", "task", taskID, "error", err)
	out := &protocol.Message{Parts: []protocol.Part{protocol.NewTextPart(err.Error())}}
	if uerr := handle.UpdateStatus(stateFailed, out); uerr != nil {
		return fmt.Errorf("failed to update status: %w", uerr)
	}
	return nil
}

func (b *BridgeAgent) run(ctx context.Context, cmd common.Command) (*reply, error) {
	switch cmd.Name {
	case "verify":
		return b.verify(ctx)
	case "issue":
		if len(cmd.Args) != 1 {
			return nil, fmt.Errorf("usage: issue <KEY>")
		}
		return b.issue(ctx, cmd.Args[0])
	case "projects":
		return b.projects(ctx)
	case "issuetypes":
		var projectID *int64
		if len(cmd.Args) > 0 {
			id, err := strconv.ParseInt(cmd.Args[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid project id %q: %w", cmd.Args[0], err)
			}
			projectID = &id
		}
		return b.issueTypes(ctx, projectID)
	case "help":
		return &reply{text: Usage}, nil
	default:
		return nil, fmt.Errorf("%w %q\n%s", ErrUnknownCommand, cmd.Name, Usage)
	}
}

func (b *BridgeAgent) verify(ctx context.Context) (*reply, error) {
	var notices notify.Collector
	if err := api.NewVerifier(b.session, &notices).VerifyConnection(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", notices.Last(), err)
	}
	return &reply{text: notices.Last()}, nil
}

func (b *BridgeAgent) issue(ctx context.Context, key string) (*reply, error) {
	client, err := b.session.Client()
	if err != nil {
		return nil, err
	}
	issue, err := client.GetIssue(ctx, key)
	if err != nil {
		return nil, err
	}

	doc, err := frontmatter.Marshal(b.settings, issue)
	if err != nil {
		return nil, err
	}
	return &reply{
		text:     string(frontmatter.Wrap(doc)),
		name:     "issue",
		data:     issue,
		dataDesc: "Jira issue " + issue.Key,
	}, nil
}

func (b *BridgeAgent) projects(ctx context.Context) (*reply, error) {
	client, err := b.session.Client()
	if err != nil {
		return nil, err
	}
	projects, err := client.Projects(ctx)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, p := range projects {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", p.Key, p.ID, p.Name)
	}
	return &reply{
		text:     fmt.Sprintf("%d projects\n%s", len(projects), sb.String()),
		name:     "projects",
		data:     projects,
		dataDesc: "Jira projects",
	}, nil
}

func (b *BridgeAgent) issueTypes(ctx context.Context, projectID *int64) (*reply, error) {
	client, err := b.session.Client()
	if err != nil {
		return nil, err
	}
	types, err := client.IssueTypes(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, t := range types {
		fmt.Fprintf(&sb, "%s\t%s\n", t.ID, t.Name)
	}
	desc := "Jira issue types"
	if projectID != nil {
		desc = fmt.Sprintf("Jira issue types of project %d", *projectID)
	}
	return &reply{
		text:     fmt.Sprintf("%d issue types\n%s", len(types), sb.String()),
		name:     "issuetypes",
		data:     types,
		dataDesc: desc,
	}, nil
}
