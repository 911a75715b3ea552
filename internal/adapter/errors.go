package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("remote record not found")
	ErrConflict            = errors.New("remote conflict")
	ErrUnprocessable       = errors.New("payload rejected")
	ErrBadGateway          = errors.New("bad gateway")
	ErrInternalServerError = errors.New("internal server error")
)

// IsPermanent reports whether err is a server-side rejection that retrying
// the same payload cannot fix. The queue uses this to fail an item
// immediately instead of burning its retry budget.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnprocessable)
}
