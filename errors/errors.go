package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrStoreUnavailable   = fmt.Errorf("store unavailable")
	ErrAlreadySubscribed  = fmt.Errorf("feed already subscribed")
	ErrNotStarted         = fmt.Errorf("feed synchronizer not started")
	ErrSubmissionRejected = fmt.Errorf("username and message are required")
	ErrInvalidNamespace   = fmt.Errorf("namespace must be non-empty and must not contain ':'")
	ErrEmptyRecord        = fmt.Errorf("record has no fields")
	ErrStoreClosed        = fmt.Errorf("store closed")
	ErrUnknownFrame       = fmt.Errorf("unknown frame type")
	ErrAppendRejected     = fmt.Errorf("append rejected by store")
	ErrInvalidShortcode   = fmt.Errorf("short-code must not be empty")
	ErrDuplicateShortcode = fmt.Errorf("short-code declared twice")
	ErrInvalidInterval    = fmt.Errorf("interval must be positive")
)
