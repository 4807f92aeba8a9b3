package cli

import (
	"fmt"
	"path/filepath"

	"github.com/arnavsurve/virtuoso-converter/pkg/log"
	"github.com/arnavsurve/virtuoso-converter/pkg/log/sinks"
)

const logsDir = ".virtuoso/logs"

// newCommandLogger routes zerolog output to the console and, when runID is
// set, to .virtuoso/logs/<runID>.json. The returned router must be closed.
func newCommandLogger(runID string) (*log.ZerologAdapter, *log.Router, string, error) {
	logRouter := log.NewRouter(sinks.NewConsoleSink())
	if runID == "" {
		return log.New(logRouter), logRouter, "", nil
	}

	fileSink, err := sinks.NewFileSink(filepath.Join(logsDir, fmt.Sprintf("%s.json", runID)))
	if err != nil {
		return nil, nil, "", fmt.Errorf("creating file log sink: %w", err)
	}
	logRouter.AddSink(fileSink)

	return log.New(logRouter), logRouter, fileSink.Path(), nil
}
