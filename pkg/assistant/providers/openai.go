package providers

import (
	"context"
	"fmt"

	"github.com/arnavsurve/virtuoso-converter/pkg/assistant"
	"github.com/arnavsurve/virtuoso-converter/pkg/core"
	openai "github.com/sashabaranov/go-openai"
)

// messagePageSize is the number of messages fetched after a run completes.
// The reply of interest is the newest one.
const messagePageSize = 20

// OpenAIService talks to the OpenAI Assistants API (threads, messages, runs).
type OpenAIService struct {
	client *openai.Client
}

func init() {
	assistant.RegisterProviderFactory(core.ProviderOpenAI, func(cfg core.ProviderConfig) (assistant.Service, error) {
		return NewOpenAIService(cfg)
	})
}

func NewOpenAIService(cfg core.ProviderConfig) (*OpenAIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIService{client: openai.NewClientWithConfig(clientCfg)}, nil
}

func (s *OpenAIService) CreateThread(ctx context.Context) (string, error) {
	thread, err := s.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}
	return thread.ID, nil
}

func (s *OpenAIService) PostMessage(ctx context.Context, threadID, role, text string) error {
	_, err := s.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    role,
		Content: text,
	})
	if err != nil {
		return fmt.Errorf("posting message to thread %q: %w", threadID, err)
	}
	return nil
}

func (s *OpenAIService) StartRun(ctx context.Context, threadID, assistantID string) (string, error) {
	run, err := s.client.CreateRun(ctx, threadID, openai.RunRequest{AssistantID: assistantID})
	if err != nil {
		return "", fmt.Errorf("starting run on thread %q: %w", threadID, err)
	}
	return run.ID, nil
}

func (s *OpenAIService) GetRunStatus(ctx context.Context, threadID, runID string) (assistant.RunState, error) {
	run, err := s.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return assistant.RunState{}, fmt.Errorf("retrieving run %q: %w", runID, err)
	}

	state := assistant.RunState{
		ID:     run.ID,
		Status: assistant.RunStatus(run.Status),
	}
	if run.LastError != nil {
		state.ErrorCode = string(run.LastError.Code)
		state.ErrorMessage = run.LastError.Message
	}
	return state, nil
}

func (s *OpenAIService) ListMessages(ctx context.Context, threadID string) ([]assistant.Message, error) {
	limit := messagePageSize
	order := "desc"
	list, err := s.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing messages of thread %q: %w", threadID, err)
	}

	messages := make([]assistant.Message, 0, len(list.Messages))
	for _, m := range list.Messages {
		msg := assistant.Message{Role: m.Role}
		for _, c := range m.Content {
			part := assistant.ContentPart{Type: c.Type}
			if c.Text != nil {
				part.Text = c.Text.Value
			}
			msg.Content = append(msg.Content, part)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
