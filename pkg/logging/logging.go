package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type SetupParams struct {
	// LogFileName enables a rotated log file next to stdout when not empty.
	LogFileName string
	LogLevel    string
}

// Setup installs the default slog logger and returns it.
func Setup(params SetupParams) *slog.Logger {
	var out io.Writer = os.Stdout
	if params.LogFileName != "" {
		fileName := params.LogFileName
		if !strings.HasSuffix(fileName, ".log") {
			fileName += ".log"
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   fileName,
			MaxSize:    50, // megabytes
			MaxBackups: 10,
			Compress:   true,
		})
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(params.LogLevel),
	}))
	slog.SetDefault(logger)
	return logger
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
