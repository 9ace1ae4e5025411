package utils

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes to the rotating workspace log and, for user-facing
// messages, to stdout.
type Logger struct {
	logger                 *log.Logger
	userInteractionEnabled bool
	stdin                  *bufio.Reader
}

var (
	globalLogger *Logger
	once         sync.Once
)

// GetLogger returns the singleton instance of Logger.
// It initializes the logger with a file handler that rotates logs.
// The skipPrompts parameter determines if user interaction is enabled and
// can be overridden on subsequent calls.
func GetLogger(skipPrompts bool) *Logger {
	once.Do(func() {
		logFile := &lumberjack.Logger{
			Filename:   ".selfai/selfai.log",
			MaxSize:    15, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		globalLogger = &Logger{
			logger: log.New(logFile, "", log.LstdFlags),
			stdin:  bufio.NewReader(os.Stdin),
		}
	})
	globalLogger.userInteractionEnabled = !skipPrompts
	return globalLogger
}

// Close closes the logger resources.
func (w *Logger) Close() error {
	if logFile, ok := w.logger.Writer().(*lumberjack.Logger); ok {
		return logFile.Close()
	}
	return nil
}

// Log logs a general message only to the log file.
func (w *Logger) Log(message string) {
	w.logger.Print(message)
}

// Logf logs a formatted general message only to the log file.
func (w *Logger) Logf(format string, v ...interface{}) {
	w.logger.Printf(format, v...)
}

func (w *Logger) LogError(err error) {
	w.logger.Printf("Error: %s", err)
}

// LogProcessStep logs the current step in a process and echoes it to stdout
// so a user is never left wondering whether something silently degraded.
func (w *Logger) LogProcessStep(step string) {
	w.logger.Printf("Process Step: %s", step)
	fmt.Println(step)
}

// LogUserInteraction logs user interactions that require a response, and prints to stdout.
func (w *Logger) LogUserInteraction(message string) {
	w.logger.Printf("User Interaction: %s", message)
	fmt.Print(message)
}

// AskForConfirmation prompts the user with a message and waits for a 'yes' or 'no' response.
// It returns true for 'yes' and false for 'no'. When user interaction is
// disabled (or stdin is not a terminal) the default response is returned,
// unless the confirmation is required, in which case the answer is 'no'.
func (w *Logger) AskForConfirmation(prompt string, defaultResponse bool, required bool) bool {
	if !w.userInteractionEnabled || !term.IsTerminal(int(os.Stdin.Fd())) {
		if required {
			w.Logf("Confirmation required but interaction unavailable, refusing: %s", prompt)
			return false
		}
		w.Logf("Skipping user confirmation in non-interactive mode: %s", prompt)
		return defaultResponse
	}
	for {
		w.LogUserInteraction(fmt.Sprintf("%s (yes/no): ", prompt))
		response, err := w.stdin.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(response)) {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		default:
			w.LogUserInteraction("Invalid input. Please type 'yes' or 'no'.\n")
		}
	}
}
