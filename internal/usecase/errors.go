package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrStorage               = errors.New("score storage unavailable")
	ErrCanceled              = errors.New("request canceled")
	ErrRateLimited           = errors.New("rate limit exceeded")
)
