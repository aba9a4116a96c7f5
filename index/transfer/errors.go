package transfer

import (
	"fmt"
	"strings"
)

type Status string

const (
	// The seqno used for signing was already consumed by another message
	SeqnoMismatch Status = "SeqnoMismatch"
	// The wallet cannot pay for the transfer
	NoBalance Status = "NoBalance"
	// The wallet contract did not accept the external message
	Rejected Status = "Rejected"
	// The same message was already broadcast
	TransactionExists Status = "TransactionExists"
	// The message expired or was not confirmed in time
	TransactionTimedOut Status = "TransactionTimedOut"
	// The backend could not be reached; the message may still be fine
	NetworkError Status = "NetworkError"
	UnknownError Status = "UnknownError"
)

// Fatal reports whether resending the same message cannot succeed.
func (s Status) Fatal() bool {
	switch s {
	case SeqnoMismatch, NoBalance, Rejected, TransactionTimedOut:
		return true
	}
	return false
}

type Error struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
} // @name TransferError

var _ error = &Error{}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

func Errorf(status Status, format string, args ...interface{}) error {
	return &Error{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

var errorPatterns = []struct {
	pattern string
	status  Status
}{
	{"duplicate message", TransactionExists},
	{"already known", TransactionExists},
	{"exitcode=33,", SeqnoMismatch},
	{"exit code 33", SeqnoMismatch},
	{"seqno", SeqnoMismatch},
	{"exitcode=35,", TransactionTimedOut},
	{"exit code 35", TransactionTimedOut},
	{"expired", TransactionTimedOut},
	{"exitcode=37,", NoBalance},
	{"not enough balance", NoBalance},
	{"insufficient", NoBalance},
	{"low balance", NoBalance},
	{"not accepted", Rejected},
	{"rejected", Rejected},
	{"connection refused", NetworkError},
	{"timeout", NetworkError},
	{"deadline exceeded", NetworkError},
}

// CheckError maps a broadcast error returned by the backend to a status.
// Errors that match no known pattern get UnknownError.
func CheckError(err error) Status {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Status
	}
	msg := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(msg, p.pattern) {
			return p.status
		}
	}
	return UnknownError
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Status: CheckError(err), Message: err.Error()}
}
