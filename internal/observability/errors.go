package observability

import (
	"errors"
	"fmt"
	"strings"
)

// AggregateErrors joins the non-nil errors in errs into one error that still
// matches each of them with errors.Is. When there is at least one, it is
// logged once at error level with the caller's fields.
func AggregateErrors(operation string, errs []error, fields ...Field) error {
	var problems []error
	for _, err := range errs {
		if err != nil {
			problems = append(problems, err)
		}
	}
	if len(problems) == 0 {
		return nil
	}

	messages := make([]string, len(problems))
	for i, err := range problems {
		messages[i] = err.Error()
	}
	logFields := make([]Field, 0, len(fields)+2)
	logFields = append(logFields, fields...)
	logFields = append(logFields,
		F("error_count", len(problems)),
		F("errors", strings.Join(messages, "; ")))
	Log().Error(operation+" failed", logFields...)

	return fmt.Errorf("%s failed: %w", operation, errors.Join(problems...))
}
