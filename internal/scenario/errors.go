package scenario

import "errors"

var (
	ErrEmptyPath         = errors.New("scenario: empty path")
	ErrUnsupportedFormat = errors.New("scenario: unsupported file extension")
	ErrDecode            = errors.New("scenario: failed to decode file")
	ErrUnknownAction     = errors.New("scenario: unknown action")
	ErrUnknownRef        = errors.New("scenario: unknown entry ref")
	ErrDuplicateRef      = errors.New("scenario: duplicate entry ref")
	ErrInvalidStep       = errors.New("scenario: invalid step")
)
