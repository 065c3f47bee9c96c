package errors

import "errors"

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrVideoNotFound = errors.New("video file not found")
	ErrNoSegments    = errors.New("no segments downloaded")
	ErrEndOfStream   = errors.New("end of stream")
)
