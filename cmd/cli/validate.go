package cli

import (
	"fmt"
	"os"

	"github.com/arnavsurve/virtuoso-converter/pkg/core"
)

type ValidateCmd struct {
	File string `arg:"" optional:"" help:"The steps JSON file to check." default:"virtuoso_steps.json"`
}

func (v *ValidateCmd) Run() error {
	cmdLogger, logRouter, _, err := newCommandLogger("")
	if err != nil {
		return err
	}
	defer logRouter.Close()

	cmdLogger.Info().Msgf("Validating %s", v.File)

	data, err := os.ReadFile(v.File)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Failed to read steps file %s", v.File)
		return fmt.Errorf("reading steps file %q: %w", v.File, err)
	}

	candidate, err := core.ParseCandidate(string(data))
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Steps file %s is not valid JSON", v.File)
		return fmt.Errorf("parsing steps file %q: %w", v.File, err)
	}

	if !core.ValidateSteps(candidate, cmdLogger) {
		return fmt.Errorf("steps file %q failed validation", v.File)
	}

	cmdLogger.Info().Msgf("%s holds %d valid steps", v.File, len(core.ToStepList(candidate)))
	return nil
}
