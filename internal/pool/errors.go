package pool

import (
	"errors"

	"github.com/coachpo/spawnpool/errs"
)

var (
	// ErrPoolNotFound indicates the requested pool has not been registered.
	ErrPoolNotFound = errors.New("pool manager: pool not registered")
	// ErrInvalidTemplate indicates a pool was requested without a template or key.
	ErrInvalidTemplate = errors.New("pool manager: template and key required")
)

func notFound(key string) error {
	return errs.New("pool/manager", errs.CodeNotFound,
		errs.WithMessage("no pool registered for key"),
		errs.WithField("key", key),
		errs.WithCause(ErrPoolNotFound))
}

func invalidTemplate(component, key, message string) error {
	return errs.New(component, errs.CodeInvalidTemplate,
		errs.WithMessage(message),
		errs.WithField("key", key),
		errs.WithCause(ErrInvalidTemplate))
}
