// Package logging provides unified logging infrastructure for hello-eks
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// logFileName is the active log file inside the log directory
const logFileName = "hello-eks.log"

// Logger wraps the standard logger with file output
type Logger struct {
	*log.Logger
	file *os.File
	path string
	mu   sync.Mutex
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Initialize sets up the logging system with file output
func Initialize(logDir string) error {
	var initErr error
	once.Do(func() {
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}

		logPath := filepath.Join(logDir, logFileName)
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			initErr = fmt.Errorf("failed to open log file: %w", err)
			return
		}

		multiWriter := io.MultiWriter(os.Stdout, file)

		defaultLogger = &Logger{
			Logger: log.New(multiWriter, "", log.LstdFlags|log.Lshortfile),
			file:   file,
			path:   logPath,
		}

		// Replace default logger
		log.SetOutput(multiWriter)
		log.SetFlags(log.LstdFlags | log.Lshortfile)

		log.Printf("Logging initialized: %s", logPath)
	})
	return initErr
}

// Close closes the log file
func Close() error {
	if defaultLogger == nil {
		return nil
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	if defaultLogger.file == nil {
		return nil
	}
	return defaultLogger.file.Close()
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	output("[ERROR] " + fmt.Sprintf(format, v...))
}

// Warning logs a warning message
func Warning(format string, v ...interface{}) {
	output("[WARN] " + fmt.Sprintf(format, v...))
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	output("[INFO] " + fmt.Sprintf(format, v...))
}

// Debug logs a debug message (only when DEBUG=true)
func Debug(format string, v ...interface{}) {
	if os.Getenv("DEBUG") == "true" {
		output("[DEBUG] " + fmt.Sprintf(format, v...))
	}
}

func output(msg string) {
	if defaultLogger != nil {
		defaultLogger.Output(3, msg) //nolint:errcheck // nothing to do if the log write fails
	} else {
		log.Output(3, msg) //nolint:errcheck // nothing to do if the log write fails
	}
}

// RotateLogs moves the current log file aside with a timestamp and reopens a fresh one
func RotateLogs(logDir string) error {
	if defaultLogger == nil {
		return fmt.Errorf("logger not initialized")
	}

	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()

	if defaultLogger.file != nil {
		if err := defaultLogger.file.Close(); err != nil {
			return fmt.Errorf("failed to close current log file: %w", err)
		}
		defaultLogger.file = nil
	}

	oldPath := filepath.Join(logDir, logFileName)
	newPath := filepath.Join(logDir, fmt.Sprintf("hello-eks-%s.log", time.Now().Format("20060102-150405")))
	if err := os.Rename(oldPath, newPath); err != nil {
		// Keep logging to the file that was active before
		if reopenErr := reopen(defaultLogger.path); reopenErr != nil {
			return fmt.Errorf("failed to rotate log file: %w (reopen: %v)", err, reopenErr)
		}
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	if err := reopen(oldPath); err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}

	log.Printf("Log rotation completed: %s", newPath)
	return nil
}

// reopen points the logger at path. On failure the logger falls back to
// stdout alone and holds no file. Caller holds defaultLogger.mu.
func reopen(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // path built from config
	if err != nil {
		defaultLogger.file = nil
		defaultLogger.Logger.SetOutput(os.Stdout)
		log.SetOutput(os.Stdout)
		return err
	}

	defaultLogger.file = file
	defaultLogger.path = path
	multiWriter := io.MultiWriter(os.Stdout, file)
	defaultLogger.Logger.SetOutput(multiWriter)
	log.SetOutput(multiWriter)
	return nil
}

// SetOutput redirects log output. Used by tests and by callers that do not want file logging.
func SetOutput(w io.Writer) {
	if defaultLogger != nil {
		defaultLogger.SetOutput(w)
	}
	log.SetOutput(w)
}
