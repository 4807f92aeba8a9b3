package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/arnavsurve/virtuoso-converter/pkg/assistant"
	"github.com/arnavsurve/virtuoso-converter/pkg/converter"
	"github.com/arnavsurve/virtuoso-converter/pkg/core"
	"github.com/arnavsurve/virtuoso-converter/pkg/fileutil"
	"github.com/arnavsurve/virtuoso-converter/pkg/security"
	"github.com/arnavsurve/virtuoso-converter/pkg/storage"
	"github.com/arnavsurve/virtuoso-converter/pkg/types"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	// Ensure all assistant providers are registered
	_ "github.com/arnavsurve/virtuoso-converter/pkg/assistant/providers"
)

const DefaultSamplePath = "my-assets/_sample_tests/Test_Rocketshop.py"

type ConvertCmd struct {
	Paths        []string `arg:"" optional:"" help:"Selenium scripts or glob patterns (** supported) to convert." default:"my-assets/_sample_tests/Test_Rocketshop.py"`
	Config       string   `help:"The YAML config file. Built-in defaults are used when the default file is absent." default:"virtuoso.yml"`
	Output       string   `short:"o" help:"Steps file for a single input. Local path or s3://bucket/key. Defaults to the config's output."`
	OutputDir    string   `help:"Directory or s3://bucket/prefix receiving <name>_virtuoso_steps.json per input."`
	PollInterval string   `help:"Delay between run status checks, e.g. 2s. Overrides polling.interval."`
	Timeout      string   `help:"Give up on a run after this long, 0 to wait forever. Overrides polling.timeout."`
	MaxAttempts  int      `help:"Give up on a run after this many status checks. 0 keeps polling.max_attempts."`
	Strict       bool     `help:"Exit non-zero when any conversion produces no steps."`
}

func (c *ConvertCmd) Run(ctx context.Context) error {
	runID := uuid.New().String()

	cmdLogger, logRouter, logFilePath, err := newCommandLogger(runID)
	if err != nil {
		return err
	}

	cmdLogger.Info().Msgf("Starting conversion run with ID: %s", runID)
	cmdLogger.Info().Msgf("Logs will be saved to %q", logFilePath)

	defer func() {
		if err := logRouter.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during log shutdown: %v\n", err)
		}
	}()

	if err := godotenv.Load(); err != nil {
		cmdLogger.Warn().Err(err).Msg("No .env file found or error thrown while loading it. Relying on existing ENV")
	}

	cfg, err := loadConfig(c.Config, cmdLogger)
	if err != nil {
		return err
	}
	if err := c.applyOverrides(cfg); err != nil {
		cmdLogger.Error().Err(err).Msg("Invalid command line polling options")
		return err
	}

	for _, name := range cfg.ResolveCredentials(os.LookupEnv) {
		cmdLogger.Warn().Msgf("Environment variable %s referenced in the config is not set", name)
	}
	if err := core.ValidateCredentials(cfg); err != nil {
		cmdLogger.Error().Err(err).Msg("Missing assistant credentials")
		return err
	}

	logRouter.SetRedactor(security.NewRedactor(cfg.Provider.APIKey))

	inputs, err := fileutil.ExpandInputs(c.Paths)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Failed to expand input paths")
		return err
	}
	if len(inputs) > 1 && c.Output != "" {
		return fmt.Errorf("--output names a single file but %d inputs were given, use --output-dir", len(inputs))
	}

	svc, err := assistant.NewService(cfg.Provider)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Failed to initialize assistant provider %q", cfg.Provider.Type)
		return fmt.Errorf("initializing assistant provider %q: %w", cfg.Provider.Type, err)
	}

	interval, timeout, err := cfg.PollBounds()
	if err != nil {
		return err
	}
	opts := converter.Options{
		AssistantID: cfg.Provider.AssistantID,
		Prompt:      cfg.Prompt,
		Poll: converter.PollOptions{
			Interval:    interval,
			Timeout:     timeout,
			MaxAttempts: cfg.Polling.MaxAttempts,
		},
	}

	failed := 0
	for _, input := range inputs {
		target := c.outputTarget(input, len(inputs), cfg)

		out, key, err := storage.Open(ctx, target, cfg.Storage.Region)
		if err != nil {
			cmdLogger.Error().Err(err).Msgf("Failed to open output %q", target)
			return fmt.Errorf("opening output %q: %w", target, err)
		}

		conv, err := converter.New(opts, svc, converter.FileSource{}, out, cmdLogger)
		if err != nil {
			return fmt.Errorf("creating converter: %w", err)
		}

		_, err = conv.ConvertFile(ctx, input, key)
		switch {
		case err == nil:
		case errors.Is(err, converter.ErrInput),
			errors.Is(err, converter.ErrTransport),
			errors.Is(err, context.Canceled):
			return fmt.Errorf("converting %q: %w", input, err)
		default:
			failed++
		}
	}

	cmdLogger.Info().Int("failed", failed).Int("total", len(inputs)).Msg("Conversion process complete")

	if c.Strict && failed > 0 {
		return fmt.Errorf("%d of %d conversions produced no steps", failed, len(inputs))
	}
	return nil
}

func (c *ConvertCmd) applyOverrides(cfg *core.Config) error {
	if c.PollInterval != "" {
		cfg.Polling.Interval = c.PollInterval
	}
	if c.Timeout != "" {
		cfg.Polling.Timeout = c.Timeout
	}
	if c.MaxAttempts != 0 {
		cfg.Polling.MaxAttempts = c.MaxAttempts
	}
	return core.ValidateConfig(cfg)
}

// outputTarget picks where the steps for input are written.
func (c *ConvertCmd) outputTarget(input string, inputCount int, cfg *core.Config) string {
	switch {
	case c.OutputDir != "":
		return fileutil.OutputPathFor(input, c.OutputDir)
	case c.Output != "":
		return c.Output
	case inputCount > 1:
		return fileutil.OutputPathFor(input, ".")
	default:
		return cfg.Output
	}
}

// loadConfig reads path, falling back to the built-in defaults when the
// default config file does not exist.
func loadConfig(path string, logger types.Logger) (*core.Config, error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) && path == core.DefaultConfigFile {
		logger.Info().Msgf("Config file %s not found. Using built-in defaults", path)
		return core.DefaultConfig(), nil
	}

	cfg, err := core.LoadConfigFromFile(path)
	if err != nil {
		logger.Error().Err(err).Msgf("Failed to load config file %s", path)
		return nil, err
	}
	logger.Info().Msgf("Successfully loaded config: %s", path)
	return cfg, nil
}
