package errors

import "errors"

// Exit codes reported by the stagehand binary.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitParseError indicates the release tag could not be parsed.
	ExitParseError = 2

	// ExitValidationError indicates a version or rc input failed validation.
	ExitValidationError = 3

	// ExitConsistencyError indicates the tag and project versions disagree.
	ExitConsistencyError = 4

	// ExitBuildError indicates a build or smoke-test command failed.
	ExitBuildError = 5

	// ExitBundleError indicates a bundle store or merge operation failed.
	ExitBundleError = 6

	// ExitNotFound indicates a bundle, file, or tool was not found.
	ExitNotFound = 7
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitParseError:
		return "Parse Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitConsistencyError:
		return "Consistency Error"
	case ExitBuildError:
		return "Build Error"
	case ExitBundleError:
		return "Bundle Error"
	case ExitNotFound:
		return "Not Found"
	default:
		return "Unknown"
	}
}

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int

	// Printed records whether the command layer already wrote the error to
	// stderr, so main does not print it twice.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for ExitError first
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrParse):
		return ExitParseError
	case errors.Is(err, ErrValidation):
		return ExitValidationError
	case errors.Is(err, ErrConsistency):
		return ExitConsistencyError
	case errors.Is(err, ErrBuild):
		return ExitBuildError
	case errors.Is(err, ErrBundle):
		return ExitBundleError
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}
