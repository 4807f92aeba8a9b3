package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/arnavsurve/virtuoso-converter/pkg/assistant"
	"github.com/arnavsurve/virtuoso-converter/pkg/core"
	"github.com/arnavsurve/virtuoso-converter/pkg/log"
	"github.com/arnavsurve/virtuoso-converter/pkg/storage"
	"github.com/arnavsurve/virtuoso-converter/pkg/types"
)

// Options configures a Converter. Prompt is a text/template source; empty
// selects core.DefaultPrompt.
type Options struct {
	AssistantID string
	Prompt      string
	Poll        PollOptions
}

// Converter turns Selenium scripts into Virtuoso steps through a remote
// assistant, one thread per conversion.
type Converter struct {
	opts   Options
	prompt *template.Template
	svc    assistant.Service
	src    SourceReader
	out    storage.Writer
	logger types.Logger
}

func New(opts Options, svc assistant.Service, src SourceReader, out storage.Writer, logger types.Logger) (*Converter, error) {
	if opts.AssistantID == "" {
		return nil, errors.New("converter requires an assistant id")
	}
	if svc == nil {
		return nil, errors.New("converter requires an assistant service")
	}
	if out == nil {
		return nil, errors.New("converter requires an output writer")
	}
	if src == nil {
		src = FileSource{}
	}
	if logger == nil {
		logger = log.Nop()
	}

	prompt, err := core.ParsePrompt(opts.Prompt)
	if err != nil {
		return nil, err
	}

	return &Converter{
		opts:   opts,
		prompt: prompt,
		svc:    svc,
		src:    src,
		out:    out,
		logger: logger,
	}, nil
}

// ConvertFile reads the script at path and converts it, writing the steps to
// outputPath on success.
func (c *Converter) ConvertFile(ctx context.Context, path, outputPath string) (core.StepList, error) {
	text, err := c.src.ReadSource(ctx, path)
	if err != nil {
		c.logger.Error().Err(err).Msgf("Error reading file at %s", path)
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	return c.Convert(ctx, Source{Path: path, Text: text}, outputPath)
}

// Convert runs one conversion job. Any failure returns a nil step list and an
// error classified by the sentinels in this package; nothing is written
// unless the steps validated.
func (c *Converter) Convert(ctx context.Context, src Source, outputPath string) (core.StepList, error) {
	logger := c.logger.With().Str("input", src.Path).Logger()
	logger.Info().Msgf("Converting file: %s", src.Path)

	prompt, err := core.RenderPrompt(c.prompt, core.PromptData{
		Source:   src.Text,
		Language: core.LanguageForPath(src.Path),
		FileName: filepath.Base(src.Path),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build prompt")
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}

	// CREATED -> SUBMITTED
	threadID, err := c.svc.CreateThread(ctx)
	if err != nil {
		return nil, transportFailure(logger, StateCreated, "Failed to create thread", err)
	}
	logger = logger.With().Str("thread_id", threadID).Logger()
	logger.Info().Msgf("Created thread: %s", threadID)

	if err := c.svc.PostMessage(ctx, threadID, assistant.RoleUser, prompt); err != nil {
		return nil, transportFailure(logger, StateCreated, "Failed to add message to thread", err)
	}
	logger.Info().Msg("Added message to thread")

	// SUBMITTED -> RUNNING
	runID, err := c.svc.StartRun(ctx, threadID, c.opts.AssistantID)
	if err != nil {
		return nil, transportFailure(logger, StateSubmitted, "Failed to start run", err)
	}
	logger = logger.With().Str("run_id", runID).Logger()
	logger.Info().Msgf("Started run: %s", runID)

	run, state, err := pollRun(ctx, c.svc, threadID, runID, c.opts.Poll, logger)
	switch state {
	case StateCompleted:
	case StateFailed:
		jobErr := &RemoteJobError{RunID: runID, Code: run.ErrorCode, Message: run.ErrorMessage}
		logger.Error().
			Str("state", string(state)).
			Str("error_code", run.ErrorCode).
			Msgf("Run failed with error: %s", jobErr.Detail())
		return nil, jobErr
	case StateTimedOut, StateCancelled:
		logger.Error().Err(err).Str("state", string(state)).Msg("Stopped waiting for run")
		return nil, err
	default:
		return nil, transportFailure(logger, state, "Failed to poll run status", err)
	}

	messages, err := c.svc.ListMessages(ctx, threadID)
	if err != nil {
		return nil, transportFailure(logger, StateCompleted, "Failed to list messages", err)
	}

	reply, ok := latestAssistantMessage(messages)
	if !ok {
		logger.Error().Msg("No response from assistant yet.")
		return nil, ErrNoResponse
	}
	logger.Info().Msg("Received response from assistant")

	responseText := reply.Text()

	raw, err := core.ExtractJSONArray(responseText)
	if err != nil {
		logger.Error().Str("response", responseText).Msg("Could not extract JSON content from response")
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	candidate, err := core.ParseCandidate(raw)
	if err != nil {
		logger.Error().Err(err).Str("response", responseText).Msg("Error parsing JSON response")
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if !core.ValidateSteps(candidate, logger) {
		logger.Error().Msg("Validation failed. The steps were not saved.")
		return nil, ErrSchema
	}

	formatted, err := core.FormatSteps(raw)
	if err != nil {
		logger.Error().Err(err).Msg("Error formatting steps")
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if err := c.out.Write(ctx, outputPath, formatted); err != nil {
		logger.Error().Err(err).Msgf("Failed to save steps to %s", c.out.Location(outputPath))
		return nil, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	steps := core.ToStepList(candidate)
	logger.Info().Msgf("Conversion successful! Virtuoso steps saved to %s", c.out.Location(outputPath))
	logger.Info().Int("step_count", len(steps)).Msgf("Total steps converted: %d", len(steps))

	return steps, nil
}

func transportFailure(logger types.Logger, state State, msg string, err error) error {
	logger.Error().Err(err).Str("state", string(state)).Msg(msg)
	if errors.Is(err, ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// latestAssistantMessage picks the first assistant message of a newest-first
// list.
func latestAssistantMessage(messages []assistant.Message) (assistant.Message, bool) {
	for _, m := range messages {
		if m.Role == assistant.RoleAssistant {
			return m, true
		}
	}
	return assistant.Message{}, false
}
