package app

import (
	"errors"
	"fmt"

	"github.com/optipresta/optipresta/internal/contract"
)

// AppError carries the process exit code alongside the underlying error.
// Printed marks errors already rendered through the printer so the top
// level does not render them twice.
type AppError struct {
	Code    int
	Err     error
	Printed bool
}

func (e AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return AppError{Code: code, Err: err}
}

func WrapPrinted(code int, err error) error {
	if err == nil {
		return nil
	}
	return AppError{Code: code, Err: err, Printed: true}
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e AppError
	if errors.As(err, &e) {
		return e.Code
	}
	return 1
}

func errorCodeForExit(code int) contract.ErrorCode {
	switch code {
	case 2:
		return contract.ErrInvalidUsage
	case 3:
		return contract.ErrUnauthenticated
	case 4:
		return contract.ErrNotFound
	case 5:
		return contract.ErrExtractionFailed
	case 6:
		return contract.ErrStoreUnavailable
	default:
		return contract.ErrGeneric
	}
}
