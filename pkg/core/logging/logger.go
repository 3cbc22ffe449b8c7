package logging

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// New returns a console logger at the given level ("debug", "info", "warn", "error").
// An empty level means "info".
func New(level string) arbor.ILogger {
	if level == "" {
		level = "info"
	}
	logger := arbor.NewLogger().WithConsoleWriter(models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		TextOutput:       true,
		DisableTimestamp: false,
	})
	return logger.WithLevelFromString(level)
}
