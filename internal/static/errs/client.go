package errs

import "errors"

var (
	ErrRequestFailed = errors.New("request failed")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
)

var (
	ErrEmptyCode           = errors.New("please write some code before submitting")
	ErrNoProblemSelected   = errors.New("no problem selected")
	ErrUnsupportedLang     = errors.New("unsupported language")
	ErrNotConnected        = errors.New("real-time channel not connected")
	ErrDisposed            = errors.New("real-time channel disposed")
	ErrMissingSubmissionID = errors.New("submission has no identifier")
)
