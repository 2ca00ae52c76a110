package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the rotating log file written under the log directory.
const FileName = "sprint-pulse.log"

// Options configure the logger sinks.
type Options struct {
	Verbose bool
	// Dir holds the rotating log file. Empty means LOGS_FOLDER, then <exe dir>/logs.
	Dir string
	// Console receives human readable output. Nil means os.Stderr; stdout is reserved for MCP.
	Console io.Writer
}

// Init initializes the global logger with dual sinks: os.Stderr and a rotating file.
func Init(verbose bool) {
	// Init runs before config.Load, so LOGS_FOLDER may only live in the binary's .env.
	if exePath, err := os.Executable(); err == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(exePath), ".env"))
	}

	logger, err := New(Options{Verbose: verbose})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Logger = logger
}

// New builds a logger writing to the console and a rotating file in the log directory.
func New(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	console := opts.Console
	noColor := true
	if console == nil {
		console = os.Stderr
		noColor = !(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	}
	consoleWriter := zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}

	logDir, err := resolveDir(opts.Dir)
	if err != nil {
		return zerolog.Nop(), err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, FileName),
		MaxSize:    16, // megabytes
		MaxBackups: 32,
		MaxAge:     365, // days
		Compress:   true,
	}

	multi := zerolog.MultiLevelWriter(consoleWriter, fileWriter)
	return zerolog.New(multi).
		With().
		Timestamp().
		Logger(), nil
}

// resolveDir picks the log directory and checks that it is writable.
func resolveDir(dir string) (string, error) {
	if dir == "" {
		dir = os.Getenv("LOGS_FOLDER")
	}
	if dir == "" {
		if exePath, err := os.Executable(); err == nil {
			dir = filepath.Join(filepath.Dir(exePath), "logs")
		} else {
			dir = "logs"
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return "", fmt.Errorf("log directory %q is not writable: %w", dir, err)
	}
	_ = os.Remove(testFile)
	return dir, nil
}
