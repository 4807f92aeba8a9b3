package sinks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/arnavsurve/virtuoso-converter/pkg/log"
	"github.com/arnavsurve/virtuoso-converter/pkg/types"
	"github.com/fatih/color"
)

// ConsoleSink prints human readable lines. Warnings and errors go to
// stderr so diagnostics survive when stdout is piped.
type ConsoleSink struct {
	out    io.Writer
	errOut io.Writer
}

func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{out: os.Stdout, errOut: os.Stderr}
}

// NewConsoleSinkTo is NewConsoleSink with explicit writers.
func NewConsoleSinkTo(out, errOut io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out, errOut: errOut}
}

var levelColorMap = map[types.Level]*color.Color{
	types.DebugLevel: color.New(color.FgCyan),
	types.InfoLevel:  color.New(color.FgGreen),
	types.WarnLevel:  color.New(color.FgYellow),
	types.ErrorLevel: color.New(color.FgRed),
	types.FatalLevel: color.New(color.FgRed, color.Bold),
}

func (c *ConsoleSink) Write(event *log.LogEvent) error {
	source := getStringField(event.Fields, "source")
	status := getStringField(event.Fields, "run_status")
	responseText := getStringField(event.Fields, "response")
	errorMsg := getStringField(event.Fields, "error")
	levelStr := strings.ToUpper(log.LevelString(event.Level))
	timestampStr := event.Timestamp.Format(time.RFC3339)

	levelFmt := color.New(color.FgWhite).SprintFunc()
	if lc, ok := levelColorMap[event.Level]; ok {
		levelFmt = lc.SprintFunc()
	}
	timestampFmt := color.New(color.FgWhite).SprintFunc()

	label := source
	if label == "" {
		label = "converter"
	}

	commonPrefix := fmt.Sprintf("[%s %s] %s: ",
		levelFmt(levelStr),
		timestampFmt(timestampStr),
		color.CyanString(label),
	)

	var output string
	switch {
	case status != "":
		output = fmt.Sprintf("%s%s [run/%s]", commonPrefix, event.Message, color.BlueString(status))
	case errorMsg != "" && event.Message != "":
		output = fmt.Sprintf("%s%s: %s", commonPrefix, event.Message, color.RedString(errorMsg))
	case errorMsg != "":
		output = fmt.Sprintf("%s%s", commonPrefix, color.RedString(errorMsg))
	case event.Message != "":
		output = fmt.Sprintf("%s%s", commonPrefix, event.Message)
	default:
		fieldsStr, _ := json.MarshalIndent(event.Fields, "", "  ")
		output = fmt.Sprintf("%s%s", commonPrefix, string(fieldsStr))
	}
	if responseText != "" {
		output = fmt.Sprintf("%s\nResponse content:\n%s", output, responseText)
	}

	w := c.out
	if event.Level >= types.WarnLevel {
		w = c.errOut
	}
	_, err := fmt.Fprintln(w, output)
	return err
}

// Helper to safely get string field from LogEvent.Fields
func getStringField(fields map[string]any, key string) string {
	if val, ok := fields[key]; ok {
		if strVal, isStr := val.(string); isStr {
			return strVal
		}
	}
	return ""
}

func (c *ConsoleSink) Close() error {
	return nil // Console doesn't need closing
}
