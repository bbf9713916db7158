// Package errors provides error types, handling utilities, and retry logic for lazycommit.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrorCode represents the category of an error.
type ErrorCode int

const (
	// Precondition errors, raised before any model call or git mutation.
	ErrNotAGitRepository ErrorCode = iota + 100
	ErrNoChanges
	ErrInvalidConfig
	ErrMissingAPIKey
	ErrInvalidArguments

	// Git errors.
	ErrGitCommandFailed ErrorCode = iota + 200
	ErrStageFailed
	ErrCommitFailed
	ErrPushFailed

	// Model errors.
	ErrModelUnavailable ErrorCode = iota + 300
	ErrInvalidOutput
	ErrRateLimited
	ErrTimeout
	ErrAuthenticationFailed

	// ErrInterrupted is a run stopped by a signal or its deadline.
	ErrInterrupted ErrorCode = iota + 400
)

// ExitCode returns the process exit code for an error code.
// Every terminal failure of a run exits with 1.
func (c ErrorCode) ExitCode() int {
	return 1
}

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrNotAGitRepository:
		return "NotAGitRepository"
	case ErrNoChanges:
		return "NoChanges"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrMissingAPIKey:
		return "MissingAPIKey"
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrGitCommandFailed:
		return "GitCommandFailed"
	case ErrStageFailed:
		return "StageFailed"
	case ErrCommitFailed:
		return "CommitFailed"
	case ErrPushFailed:
		return "PushFailed"
	case ErrModelUnavailable:
		return "ModelUnavailable"
	case ErrInvalidOutput:
		return "InvalidOutput"
	case ErrRateLimited:
		return "RateLimited"
	case ErrTimeout:
		return "Timeout"
	case ErrAuthenticationFailed:
		return "AuthenticationFailed"
	case ErrInterrupted:
		return "Interrupted"
	default:
		return "Unknown"
	}
}

// IsModelFailure reports whether the code belongs to the ModelUnavailable family.
func (c ErrorCode) IsModelFailure() bool {
	switch c {
	case ErrModelUnavailable, ErrRateLimited, ErrTimeout, ErrAuthenticationFailed:
		return true
	default:
		return false
	}
}

// AppError represents an application error with context.
type AppError struct {
	Code       ErrorCode
	Message    string
	Cause      error
	Context    map[string]interface{}
	Suggestion string
	RetryAfter time.Duration // For rate limit errors
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the error is a transient transport failure.
func (e *AppError) IsRetryable() bool {
	switch e.Code {
	case ErrRateLimited:
		return true
	case ErrModelUnavailable:
		status, ok := e.Context["status"].(int)
		return ok && status >= http.StatusInternalServerError
	default:
		return false
	}
}

// GetRetryAfter returns the duration to wait before retrying.
func (e *AppError) GetRetryAfter() time.Duration {
	if e.RetryAfter > 0 {
		return e.RetryAfter
	}
	return 0
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// RetryableError is an interface for errors that can be retried.
type RetryableError interface {
	error
	IsRetryable() bool
	GetRetryAfter() time.Duration
}

var _ RetryableError = (*AppError)(nil)

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with context.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// Is reports whether the outermost AppError in err's chain carries code.
func Is(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// IsModelUnavailable reports whether err belongs to the ModelUnavailable
// family: the model could not produce a reply at all.
func IsModelUnavailable(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code.IsModelFailure()
}

// GetExitCode returns the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code.ExitCode()
	}
	return 1
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var retryable RetryableError
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetRetryAfter returns the retry-after duration for an error.
func GetRetryAfter(err error) time.Duration {
	var retryable RetryableError
	if errors.As(err, &retryable) {
		return retryable.GetRetryAfter()
	}
	return 0
}

// Common error constructors with suggestions

// NewNotAGitRepositoryError creates an error for runs outside a repository.
func NewNotAGitRepositoryError(dir string, cause error) *AppError {
	return &AppError{
		Code:       ErrNotAGitRepository,
		Message:    fmt.Sprintf("not a git repository (or any parent up to the filesystem root): %s", dir),
		Cause:      cause,
		Suggestion: "Run lazycommit from inside a git working tree",
	}
}

// NewNoChangesError creates an error for a repository without pending changes.
func NewNoChangesError() *AppError {
	return &AppError{
		Code:       ErrNoChanges,
		Message:    "no changes found, nothing to commit",
		Suggestion: "Modify some files first; untracked files are only considered when committing (not with --dry-run)",
	}
}

// NewMissingAPIKeyError creates an error for missing API key.
func NewMissingAPIKeyError(provider string) *AppError {
	return &AppError{
		Code:       ErrMissingAPIKey,
		Message:    fmt.Sprintf("API key is required for %s provider", provider),
		Suggestion: "Set it with 'lazycommit config set provider.api_key <key>' or the LAZY_COMMIT_PROVIDER_API_KEY / OPENAI_API_KEY environment variable",
	}
}

// NewInvalidConfigError creates an error for invalid configuration.
func NewInvalidConfigError(message string) *AppError {
	return &AppError{
		Code:       ErrInvalidConfig,
		Message:    message,
		Suggestion: "Run 'lazycommit config init' to create a valid configuration file",
	}
}

// NewGitError creates an error for git command failures.
func NewGitError(err error, output string) *AppError {
	appErr := &AppError{
		Code:    ErrGitCommandFailed,
		Message: "git command failed",
		Cause:   err,
	}
	if output != "" {
		appErr.Context = map[string]interface{}{
			"output": output,
		}
	}
	return appErr
}

// NewStageFailedError creates an error for a failed 'git add'.
func NewStageFailedError(err error) *AppError {
	return &AppError{
		Code:       ErrStageFailed,
		Message:    "staging failed; nothing was committed",
		Cause:      err,
		Suggestion: "Check 'git status' and resolve the problem, then run lazycommit again",
	}
}

// NewCommitFailedError creates an error for a rejected 'git commit'.
func NewCommitFailedError(err error) *AppError {
	return &AppError{
		Code:       ErrCommitFailed,
		Message:    "commit failed; changes remain staged",
		Cause:      err,
		Suggestion: "Fix the reported problem (for example a pre-commit hook) and commit again",
	}
}

// NewPushFailedError creates an error for a failed push after a successful commit.
func NewPushFailedError(err error, suggestion string) *AppError {
	if suggestion == "" {
		suggestion = "Your commit is safe on the local branch; resolve the push problem and run 'git push'"
	}
	return &AppError{
		Code:       ErrPushFailed,
		Message:    "committed locally, but push failed",
		Cause:      err,
		Suggestion: suggestion,
	}
}

// NewModelUnavailableError creates an error for an unreachable or failing model endpoint.
func NewModelUnavailableError(provider string, err error) *AppError {
	return &AppError{
		Code:       ErrModelUnavailable,
		Message:    fmt.Sprintf("%s model endpoint unavailable", provider),
		Cause:      err,
		Suggestion: "Check the base URL, API key and network; for LAN endpoints behind a proxy try LAZY_COMMIT_BYPASS_PROXY=true",
	}
}

// NewServerError creates a transient error for a 5xx reply from the model endpoint.
func NewServerError(provider string, status int, body string) *AppError {
	appErr := NewModelUnavailableError(provider, fmt.Errorf("HTTP %d: %s", status, strings.TrimSpace(body)))
	return appErr.WithContext("status", status)
}

// NewInvalidOutputError creates an error for model replies that never validated.
func NewInvalidOutputError(attempts int, err error) *AppError {
	return &AppError{
		Code:       ErrInvalidOutput,
		Message:    fmt.Sprintf("model returned an invalid commit message after %d attempts", attempts),
		Cause:      err,
		Suggestion: "Try again, or configure a model that supports JSON output",
	}
}

// NewRateLimitError creates an error for rate limiting.
func NewRateLimitError(retryAfter time.Duration) *AppError {
	suggestion := "Please wait and try again later"
	if retryAfter > 0 {
		suggestion = fmt.Sprintf("Please wait %v and try again", retryAfter)
	}
	return &AppError{
		Code:       ErrRateLimited,
		Message:    "rate limit exceeded",
		RetryAfter: retryAfter,
		Suggestion: suggestion,
	}
}

// NewTimeoutError creates an error for timeouts.
func NewTimeoutError(err error) *AppError {
	return &AppError{
		Code:       ErrTimeout,
		Message:    "request timed out",
		Cause:      err,
		Suggestion: "Raise provider.timeout_seconds or check that the endpoint is reachable",
	}
}

// NewInterruptedError creates an error for a run whose context ended.
// step names the first step that did not run.
func NewInterruptedError(step string, err error) *AppError {
	return &AppError{
		Code:    ErrInterrupted,
		Message: fmt.Sprintf("interrupted before %s", step),
		Cause:   err,
	}
}

// NewAuthenticationError creates an error for authentication failures.
func NewAuthenticationError(provider string) *AppError {
	return &AppError{
		Code:       ErrAuthenticationFailed,
		Message:    fmt.Sprintf("authentication failed with %s", provider),
		Suggestion: "Please check your API key is valid and has not expired",
	}
}

// ParseRetryAfterHeader parses the Retry-After header value.
// It handles both seconds (integer) and HTTP-date formats.
func ParseRetryAfterHeader(header string) time.Duration {
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		duration := time.Until(t)
		if duration > 0 {
			return duration
		}
	}

	return 0
}

// FormatError formats an error for user display.
// API keys and other sensitive data are automatically masked.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(appErr.Message))

		if appErr.Cause != nil {
			sb.WriteString("\n  Cause: ")
			sb.WriteString(SanitizeErrorMessage(appErr.Cause.Error()))
		}

		if output, ok := appErr.Context["output"]; ok {
			sb.WriteString("\n  Output: ")
			sb.WriteString(SanitizeErrorMessage(fmt.Sprintf("%v", output)))
		}

		if appErr.Suggestion != "" {
			sb.WriteString("\n  Suggestion: ")
			sb.WriteString(appErr.Suggestion)
		}
	} else {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(err.Error()))
	}

	return sb.String()
}

// FormatErrorVerbose formats an error with full details for verbose mode.
// API keys and other sensitive data are automatically masked.
func FormatErrorVerbose(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString(fmt.Sprintf("Error [%s]: %s\n", appErr.Code.String(), SanitizeErrorMessage(appErr.Message)))

		if appErr.Cause != nil {
			sb.WriteString(fmt.Sprintf("  Cause: %v\n", SanitizeErrorMessage(appErr.Cause.Error())))
			sb.WriteString("  Error chain:\n")
			printErrorChain(&sb, appErr.Cause, 2)
		}

		if len(appErr.Context) > 0 {
			sb.WriteString("  Context:\n")
			for k, v := range appErr.Context {
				sb.WriteString(fmt.Sprintf("    %s: %v\n", k, SanitizeErrorMessage(fmt.Sprintf("%v", v))))
			}
		}

		if appErr.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", appErr.Suggestion))
		}

		if appErr.RetryAfter > 0 {
			sb.WriteString(fmt.Sprintf("  Retry after: %v\n", appErr.RetryAfter))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %v\n", SanitizeErrorMessage(err.Error())))
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, err, 2)
	}

	return sb.String()
}

// printErrorChain prints the error chain with indentation.
func printErrorChain(sb *strings.Builder, err error, indent int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	errMsg := SanitizeErrorMessage(err.Error())
	sb.WriteString(fmt.Sprintf("%s- %T: %v\n", prefix, err, errMsg))

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		printErrorChain(sb, unwrapped, indent+1)
	}
}

// SanitizeErrorMessage masks any API keys or sensitive data in error messages.
func SanitizeErrorMessage(msg string) string {
	return apiKeyPattern.ReplaceAllStringFunc(msg, func(match string) string {
		if len(match) <= 4 {
			return "****"
		}
		return strings.Repeat("*", len(match)-4) + match[len(match)-4:]
	})
}

// apiKeyPattern matches common API key patterns.
var apiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`)
