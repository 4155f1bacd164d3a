package collection

import (
	"errors"
	"fmt"
)

// WrapError prefixes err with wrap. The sentinel errors of this
// package are returned as is.
func WrapError(wrap string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrClosed):
		return ErrClosed
	case errors.Is(err, ErrMalformedKey):
		return ErrMalformedKey
	case errors.Is(err, ErrStorageUnavailable):
		return err
	}

	return fmt.Errorf("%s: %w", wrap, err)
}

// Unavailable marks err as a failure to open or access a store
func Unavailable(wrap string, err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %s: %s", ErrStorageUnavailable, wrap, err.Error())
}
