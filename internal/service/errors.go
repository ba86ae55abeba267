package service

import (
	apperrors "github.com/marginapp/margin-server/internal/errors"
)

// storageFailure converts a raw storage error into an INTERNAL domain
// error so callers only ever see the domain taxonomy. Errors already
// carrying a domain code pass through unchanged. The cause stays wrapped,
// keeping transport failures classifiable further up the stack.
func storageFailure(err error, msg string) error {
	var domainErr *apperrors.Error
	if apperrors.As(err, &domainErr) {
		return err
	}
	return apperrors.Wrap(err, apperrors.CodeInternal, msg)
}
