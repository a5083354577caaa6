package common

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/moj-analytical-services/dbt-adapters/internal/profile"
	"github.com/moj-analytical-services/dbt-adapters/pkg/logger"
)

type Flags struct {
	LogLevel    string
	LogFormat   string
	ProfileFile string

	Verify          bool
	TracingEnabled  bool
	TracingEndpoint string
}

func CreateLogger(flags *Flags) (logger.Logger, error) {
	var level logger.Level
	switch flags.LogLevel {
	case "debug":
		level = logger.DebugLevel
	case "info":
		level = logger.InfoLevel
	case "warn":
		level = logger.WarnLevel
	case "error":
		level = logger.ErrorLevel
	default:
		level = logger.InfoLevel
	}

	var format logger.Format
	switch flags.LogFormat {
	case "json":
		format = logger.JSONFormat
	case "console":
		format = logger.ConsoleFormat
	default:
		format = logger.JSONFormat
	}

	// Create logger with stderr output (stdout is reserved for the
	// credential document)
	return logger.New(logger.Config{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	})
}

func LoadProfile(flags *Flags) (*profile.Profile, error) {
	opts := []profile.LoadOption{profile.WithEnv()}
	if flags.ProfileFile != "" {
		opts = append(opts, profile.WithFile(flags.ProfileFile))
	}
	return profile.Load(opts...)
}

func SetupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx, cancel
}
