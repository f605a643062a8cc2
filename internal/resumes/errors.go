package resumes

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Client-facing reasons for files that failed; the wrapped cause is only logged.
var (
	errStageFailed = errors.New("could not store file for processing")
	errUnreadable  = errors.New("could not read document text")
)

func failureReason(err error) string {
	if errors.Is(err, errStageFailed) {
		return errStageFailed.Error()
	}
	return errUnreadable.Error()
}
