package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	log "github.com/tuannvm/jira-cloud/internal/logging"
)

// ErrNoCommand is returned when a message carries no bridge command.
var ErrNoCommand = errors.New("could not extract command from message")

// Command is a bridge request such as "issue ABC-1".
type Command struct {
	Name string   `json:"command"`
	Args []string `json:"args,omitempty"`
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// ParseCommand splits a text command on whitespace. The name is case-insensitive.
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}, ErrNoCommand
	}
	return Command{Name: strings.ToLower(fields[0]), Args: fields[1:]}, nil
}

// ExtractCommand extracts the command from the first DataPart or TextPart that holds one.
// A DataPart is read as {"command": "...", "args": [...]}; a TextPart may hold the same
// JSON object or a plain text command.
func ExtractCommand(message protocol.Message) (Command, error) {
	if len(message.Parts) == 0 {
		return Command{}, fmt.Errorf("message has no parts")
	}

	for _, part := range message.Parts {
		var dp *protocol.DataPart
		switch v := part.(type) {
		case protocol.DataPart:
			dp = &v
		case *protocol.DataPart:
			dp = v
		}
		if dp != nil {
			raw, err := json.Marshal(dp.Data)
			if err != nil {
				log.Debugf("Failed to marshal DataPart.Data: %v", err)
				continue
			}
			if cmd, ok := commandFromJSON(raw); ok {
				return cmd, nil
			}
			continue
		}

		var tp *protocol.TextPart
		switch v := part.(type) {
		case protocol.TextPart:
			tp = &v
		case *protocol.TextPart:
			tp = v
		}
		if tp == nil {
			continue
		}
		if cmd, ok := commandFromJSON([]byte(tp.Text)); ok {
			return cmd, nil
		}
		if cmd, err := ParseCommand(tp.Text); err == nil {
			return cmd, nil
		}
	}

	return Command{}, ErrNoCommand
}

func commandFromJSON(raw []byte) (Command, bool) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return Command{}, false
	}

	name, ok := GetStringValue(data, "command", "name")
	if !ok {
		return Command{}, false
	}
	cmd := Command{Name: strings.ToLower(strings.TrimSpace(name))}

	list, _ := data["args"].([]interface{})
	for _, a := range list {
		switch v := a.(type) {
		case string:
			cmd.Args = append(cmd.Args, v)
		case float64:
			cmd.Args = append(cmd.Args, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return cmd, true
}

// MessageText joins the text parts of message with newlines.
func MessageText(message protocol.Message) string {
	var texts []string
	for _, part := range message.Parts {
		switch v := part.(type) {
		case protocol.TextPart:
			texts = append(texts, v.Text)
		case *protocol.TextPart:
			texts = append(texts, v.Text)
		}
	}
	return strings.Join(texts, "\n")
}
