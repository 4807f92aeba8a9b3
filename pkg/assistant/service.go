package assistant

import (
	"context"
	"strings"
)

// RunStatus is the remote status string of an assistant run.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusIncomplete     RunStatus = "incomplete"
	RunStatusExpired        RunStatus = "expired"
)

// RunState is one observation of a run.
type RunState struct {
	ID           string
	Status       RunStatus
	ErrorCode    string
	ErrorMessage string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	ContentTypeText = "text"
)

type ContentPart struct {
	Type string
	Text string
}

type Message struct {
	Role    string
	Content []ContentPart
}

// Text concatenates the text parts of the message in order.
func (m Message) Text() string {
	var b strings.Builder
	for _, part := range m.Content {
		if part.Type == ContentTypeText {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// Service is the remote conversational assistant the converter talks to.
// ListMessages returns the thread's messages newest first.
type Service interface {
	CreateThread(ctx context.Context) (string, error)
	PostMessage(ctx context.Context, threadID, role, text string) error
	StartRun(ctx context.Context, threadID, assistantID string) (string, error)
	GetRunStatus(ctx context.Context, threadID, runID string) (RunState, error)
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
}
