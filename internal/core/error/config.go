package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidConfig is matched by every error produced by WrapConfig.
var ErrInvalidConfig = errors.New("invalid configuration")

// WrapConfig joins the load-time problems found in a named table into a
// single AppError. It returns nil when problems is empty.
func WrapConfig(table string, problems ...error) error {
	if len(problems) == 0 {
		return nil
	}
	joined := errors.Join(problems...)
	return New(
		fmt.Errorf("%w: %s: %w", ErrInvalidConfig, table, joined),
		http.StatusInternalServerError,
		ConfigErrorMessage,
	)
}
