package util

type FaharasaError struct {
	Message string
	Err     error
}

func (e *FaharasaError) Error() string {
	return e.Message
}

func (e *FaharasaError) Unwrap() error {
	return e.Err
}

// BufferpoolExhaustedError is returned when every frame in the pool is
// pinned and no victim can be evicted. The caller gets an error instead
// of blocking because execution is single-threaded, nobody else would
// ever release a pin.
type BufferpoolExhaustedError struct {
	*FaharasaError
}

func NewBufferpoolExhaustedError() *BufferpoolExhaustedError {
	return &BufferpoolExhaustedError{
		&FaharasaError{Message: "bufferpool exhausted: all frames are pinned"},
	}
}
