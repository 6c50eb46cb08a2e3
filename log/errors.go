package log

import (
	"fmt"
	"strings"
)

// Error codes for all application errors
const (
	// Configuration errors (1xx)
	ErrConfigReadFailed  = "E101" // Error reading configuration file
	ErrConfigParseFailed = "E102" // Error parsing configuration file
	ErrConfigInvalid     = "E103" // Configuration value out of range

	// Git operation errors (2xx)
	ErrGitListFailed   = "E201" // Failed to list untracked files
	ErrGitStageFailed  = "E202" // Failed to stage a batch
	ErrGitCommitFailed = "E203" // Failed to commit a batch
	ErrGitPushFailed   = "E204" // Failed to push a batch
	ErrGitRemoteFailed = "E205" // Remote is missing or could not be queried

	// Repository errors (3xx)
	ErrRepoInvalidPath = "E302" // Invalid repository path
	ErrRepoNotGit      = "E303" // Not a git repository

	// History operation errors (4xx)
	ErrHistoryReadFailed  = "E401" // Failed to read history file
	ErrHistoryWriteFailed = "E402" // Failed to write history file

	// General errors (9xx)
	ErrInvalidArgument = "E901" // Invalid argument passed
	ErrInterrupted     = "E902" // Run interrupted before all batches were processed
	ErrOperationFailed = "E999" // Generic operation failed
)

// FormatError formats an error with a consistent structure including the error code
func FormatError(code string, description string, err error) string {
	if err != nil {
		return fmt.Sprintf("[%s] %s: %v", code, description, err)
	}
	return fmt.Sprintf("[%s] %s", code, description)
}

// GetErrorCode extracts the error code from a formatted error message
func GetErrorCode(errorMsg string) string {
	if strings.HasPrefix(errorMsg, "[E") && len(errorMsg) >= 6 {
		return errorMsg[1:5]
	}
	return ""
}

// CodedError carries an error code through cobra so the caller can print it once
type CodedError struct {
	Code        string
	Description string
	Err         error
}

// Error implements the error interface
func (e *CodedError) Error() string {
	return FormatError(e.Code, e.Description, e.Err)
}

// Unwrap returns the underlying error
func (e *CodedError) Unwrap() error {
	return e.Err
}

// NewError creates a CodedError
func NewError(code string, description string, err error) *CodedError {
	return &CodedError{Code: code, Description: description, Err: err}
}
