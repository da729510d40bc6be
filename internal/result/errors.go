package result

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Error is the typed form of a failing Result.
type Error struct {
	Subsystem Subsystem
	Code      uint16
	Detail    string
	Cause     error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Subsystem.String())
	b.WriteByte('/')
	b.WriteString(codeName(e.Subsystem, e.Code))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on subsystem and code only, so sentinels compare equal to any
// detailed instance of the same failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Subsystem == t.Subsystem && e.Code == t.Code
}

// Result packs the error into its wire form.
func (e *Error) Result() Result {
	return Pack(e.Subsystem, e.Code)
}

// Sentinels usable with errors.Is.
var (
	ErrInternal             = &Error{Subsystem: SubsystemMist, Code: uint16(InternalError)}
	ErrTimeout              = &Error{Subsystem: SubsystemMist, Code: uint16(Timeout)}
	ErrSubprocessLost       = &Error{Subsystem: SubsystemMist, Code: uint16(SubprocessLost)}
	ErrNotInitialized       = &Error{Subsystem: SubsystemMist, Code: uint16(SubprocessNotInitialized)}
	ErrAlreadyInitialized   = &Error{Subsystem: SubsystemMist, Code: uint16(SubprocessAlreadyInitialized)}
	ErrSpawn                = &Error{Subsystem: SubsystemMist, Code: uint16(SubprocessSpawnError)}
	ErrInitialization       = &Error{Subsystem: SubsystemMist, Code: uint16(SubprocessInitializationError)}
	ErrUnkillable           = &Error{Subsystem: SubsystemMist, Code: uint16(SubprocessUnkillable)}
	ErrNotFound             = &Error{Subsystem: SubsystemMist, Code: uint16(SubprocessNotFound)}
	ErrInvalidString        = &Error{Subsystem: SubsystemMist, Code: uint16(InvalidString)}
	ErrInvalidDlcIndex      = &Error{Subsystem: SubsystemApps, Code: uint16(InvalidDlcIndex)}
	ErrInvalidRichPresence  = &Error{Subsystem: SubsystemFriends, Code: uint16(InvalidRichPresence)}
	ErrBatchAlreadyOpen     = &Error{Subsystem: SubsystemRemoteStorage, Code: uint16(FileWriteBatchAlreadyInProgress)}
	ErrBatchNotOpen         = &Error{Subsystem: SubsystemRemoteStorage, Code: uint16(FileWriteBatchNotInProgress)}
	ErrFileNotFound         = &Error{Subsystem: SubsystemRemoteStorage, Code: uint16(FileNotFound)}
	ErrNoGamepadTextEntered = &Error{Subsystem: SubsystemUtils, Code: uint16(NoGamepadTextEntered)}
	ErrInputNotInitialized  = &Error{Subsystem: SubsystemInput, Code: uint16(InputNotInitialized)}
	ErrInputSharedMemory    = &Error{Subsystem: SubsystemInput, Code: uint16(ShmemError)}
)

// Mist creates a bridge level error.
func Mist(code MistError, detail string) *Error {
	return &Error{Subsystem: SubsystemMist, Code: uint16(code), Detail: detail}
}

// Mistf creates a bridge level error with a formatted detail.
func Mistf(code MistError, format string, args ...any) *Error {
	return Mist(code, fmt.Sprintf(format, args...))
}

// Wrap creates a bridge level error caused by err.
func Wrap(code MistError, err error, detail string) *Error {
	return &Error{Subsystem: SubsystemMist, Code: uint16(code), Detail: detail, Cause: err}
}

// Apps creates an Apps subsystem error.
func Apps(code AppsError, detail string) *Error {
	return &Error{Subsystem: SubsystemApps, Code: uint16(code), Detail: detail}
}

// Friends creates a Friends subsystem error.
func Friends(code FriendsError, detail string) *Error {
	return &Error{Subsystem: SubsystemFriends, Code: uint16(code), Detail: detail}
}

// Input creates an Input subsystem error.
func Input(code InputError, detail string) *Error {
	return &Error{Subsystem: SubsystemInput, Code: uint16(code), Detail: detail}
}

// RemoteStorage creates a RemoteStorage subsystem error.
func RemoteStorage(code RemoteStorageError, detail string) *Error {
	return &Error{Subsystem: SubsystemRemoteStorage, Code: uint16(code), Detail: detail}
}

// Utils creates a Utils subsystem error.
func Utils(code UtilsError, detail string) *Error {
	return &Error{Subsystem: SubsystemUtils, Code: uint16(code), Detail: detail}
}

// FromError converts any error into its wire Result. Errors that are not
// *Error anywhere in their chain fold into Mist/InternalError.
func FromError(err error) Result {
	if err == nil {
		return Success
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Result()
	}
	return Pack(SubsystemMist, uint16(InternalError))
}

// AsError returns the *Error in err's chain, or an InternalError wrapping err.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	return Wrap(InternalError, err, "")
}
