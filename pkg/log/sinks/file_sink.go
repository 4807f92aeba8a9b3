package sinks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arnavsurve/virtuoso-converter/pkg/log"
)

// FileSink appends one JSON object per event to a run log file.
type FileSink struct {
	path string
	file *os.File
}

func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory for %q: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return &FileSink{path: path, file: f}, nil
}

// Path is the file the sink writes to.
func (fs *FileSink) Path() string {
	return fs.path
}

func (fs *FileSink) Write(event *log.LogEvent) error {
	logEntry := map[string]any{
		"level":   log.LevelString(event.Level),
		"time":    event.Timestamp,
		"message": event.Message,
	}
	for k, v := range event.Fields {
		logEntry[k] = v
	}

	data, err := json.Marshal(logEntry)
	if err != nil {
		return fmt.Errorf("failed to marshal log event for file sink: %w", err)
	}

	if _, err := fs.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to file sink: %w", err)
	}

	return nil
}

func (fs *FileSink) Close() error {
	if fs.file != nil {
		return fs.file.Close()
	}
	return nil
}
