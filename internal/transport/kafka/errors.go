package kafka

// PermanentError marks a message that must not be redelivered.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return "permanent: " + e.Err.Error()
}

func (e PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the consumer skips the message.
func Permanent(err error) error {
	return PermanentError{Err: err}
}
