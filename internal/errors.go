package internal

import "errors"

var (
	ErrNoAuthHeader  = errors.New("authorization header is missing")
	ErrBadAuthScheme = errors.New("authorization scheme is not bearer")
	ErrInvalidToken  = errors.New("token is invalid or expired")

	ErrValidation         = errors.New("payload failed validation")
	ErrEmptyUpdate        = errors.New("update payload has no fields")
	ErrMethodNotSupported = errors.New("method has no validation rules")

	ErrOrderNotFound = errors.New("order not found")
)
