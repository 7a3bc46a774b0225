// Package telemetry provides leveled logging and metrics for the xrootd
// data server. Logging follows the same minimal wrapper-around-log.Logger
// shape used across the codebase: a package-level level filter plus
// Debug/Info/Warn/Error helpers.
package telemetry

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

var (
	currentLevel = LevelInfo
	logger       = stdlog.New(os.Stdout, "", 0)
)

// SetLevel sets the minimum level that will be emitted. Unrecognized
// values are ignored (the current level is left unchanged).
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel = LevelDebug
	case "INFO":
		currentLevel = LevelInfo
	case "WARN":
		currentLevel = LevelWarn
	case "ERROR":
		currentLevel = LevelError
	}
}

// SetOutput redirects log output, e.g. to a file configured via
// config.LoggingConfig.Output.
func SetOutput(w interface {
	Write([]byte) (int, error)
}) {
	logger = stdlog.New(w, "", 0)
}

func log(level Level, format string, v ...any) {
	if level < currentLevel {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	prefix := fmt.Sprintf("[%s] [%s] ", timestamp, level.String())
	message := fmt.Sprintf(format, v...)
	logger.Println(prefix + message)
}

func Debug(format string, v ...any) { log(LevelDebug, format, v...) }
func Info(format string, v ...any)  { log(LevelInfo, format, v...) }
func Warn(format string, v ...any)  { log(LevelWarn, format, v...) }
func Error(format string, v ...any) { log(LevelError, format, v...) }
