package feed

import "errors"

// Domain errors for feed.
var (
	ErrPostNotFound  = errors.New("post not found")
	ErrEmptyBody     = errors.New("body is empty")
	ErrBodyTooLong   = errors.New("body is too long")
	ErrTooManyTags   = errors.New("too many tags")
	ErrInvalidAuthor = errors.New("invalid author")
)
