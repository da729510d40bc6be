package result

import "fmt"

// Result is the bit-exact wire form of an operation outcome.
type Result uint32

// Success is the canonical successful result.
const Success Result = 0

const (
	codeMask   = 0xFFFF
	errorShift = 16
)

// Pack combines a subsystem code and a subsystem error into a Result.
func Pack(code Subsystem, domainError uint16) Result {
	return Result(uint32(domainError)<<errorShift | uint32(code))
}

// Unpack splits a Result into its subsystem code and error fields.
func Unpack(r Result) (Subsystem, uint16) {
	return r.Code(), r.DomainError()
}

// Code returns the subsystem code stored in the low 16 bits.
func (r Result) Code() Subsystem {
	return Subsystem(uint32(r) & codeMask)
}

// DomainError returns the subsystem scoped error stored in the high 16 bits.
func (r Result) DomainError() uint16 {
	return uint16(uint32(r) >> errorShift)
}

// IsSuccess reports whether the subsystem code is zero.
func (r Result) IsSuccess() bool {
	return r.Code() == SubsystemNone
}

// IsError is the negation of IsSuccess.
func (r Result) IsError() bool {
	return !r.IsSuccess()
}

// Err converts a failing Result back into its typed error.
// It returns nil for successful results.
func (r Result) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return &Error{Subsystem: r.Code(), Code: r.DomainError()}
}

// String renders the result for logs.
func (r Result) String() string {
	if r.IsSuccess() {
		return "Success"
	}
	return fmt.Sprintf("%s/%s", r.Code(), codeName(r.Code(), r.DomainError()))
}
