package stripe

import (
	"fmt"
	"log/slog"
)

// leveledLogger adapts slog to stripego.LeveledLoggerInterface.
type leveledLogger struct {
	logger *slog.Logger
}

// Debugf logs at debug level.
func (l *leveledLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

// Infof logs at debug level; the SDK reports every request at info.
func (l *leveledLogger) Infof(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

// Warnf logs at warn level.
func (l *leveledLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs at error level.
func (l *leveledLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
