package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	outMu  sync.Mutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects operator output. A nil writer leaves the current one in place.
func SetOutput(out, errOut io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// ResetOutput restores os.Stdout and os.Stderr
func ResetOutput() {
	outMu.Lock()
	defer outMu.Unlock()
	stdout = os.Stdout
	stderr = os.Stderr
}

func writeLine(toStderr bool, s string) {
	outMu.Lock()
	defer outMu.Unlock()
	w := stdout
	if toStderr {
		w = stderr
	}
	fmt.Fprintln(w, s)
}

// FormatWarning formats a warning message with a consistent structure
func FormatWarning(message string) string {
	return fmt.Sprintf("[WARN] %s", message)
}

// FormatSuccess formats a success message with a consistent structure
func FormatSuccess(message string) string {
	return fmt.Sprintf("[SUCCESS] %s", message)
}

// FormatInfo formats an info message with a consistent structure
func FormatInfo(message string) string {
	return fmt.Sprintf("[INFO] %s", message)
}

// FormatOperation formats an operation message with a consistent structure
func FormatOperation(message string) string {
	return fmt.Sprintf("[OPERATION] %s...", message)
}

// PrintError prints an error message with the appropriate error code
func PrintError(code string, description string, err error) {
	writeLine(true, FormatError(code, description, err))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	writeLine(false, FormatWarning(message))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	writeLine(false, FormatSuccess(message))
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	writeLine(false, FormatInfo(message))
}

// PrintOperation prints a message about an operation being performed
func PrintOperation(operation string) {
	writeLine(false, FormatOperation(operation))
}

// PrintOperationResult prints the result of an operation
func PrintOperationResult(operation string, success bool) {
	if success {
		PrintSuccess(fmt.Sprintf("%s completed successfully", operation))
	} else {
		PrintWarning(fmt.Sprintf("%s completed with errors", operation))
	}
}
