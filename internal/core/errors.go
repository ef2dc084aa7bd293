package core

// Error codes for domain errors.
const (
	ErrCodeValidation       = "validation_error"
	ErrCodeRoomNotFound     = "room_not_found"
	ErrCodeStoreUnavailable = "store_unavailable"
)

// Error wraps a code and human-readable message. It is the only error shape
// surfaced to a connection; every failure stays local to the connection that
// caused it.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func coreError(code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}
