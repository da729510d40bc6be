package result

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	values := []uint16{0, 1, 2, 10, 100, 105, 111, 123, 128, 0x7FFF, 0x8000, 0xFFFE, 0xFFFF}

	for _, c := range values {
		for _, e := range values {
			r := Pack(Subsystem(c), e)
			code, domainErr := Unpack(r)
			assert.Equal(t, Subsystem(c), code)
			assert.Equal(t, e, domainErr)
		}
	}
}

func TestPackRoundTripExhaustiveCode(t *testing.T) {
	// Every code against a handful of error values
	for c := 0; c <= 0xFFFF; c++ {
		for _, e := range []uint16{0, 0x1234, 0xFFFF} {
			r := Pack(Subsystem(c), e)
			if r.Code() != Subsystem(c) || r.DomainError() != e {
				t.Fatalf("round trip failed for (%d, %d): got (%d, %d)", c, e, r.Code(), r.DomainError())
			}
		}
	}
}

func TestIsSuccess(t *testing.T) {
	for e := 0; e <= 0xFFFF; e++ {
		if !Pack(SubsystemNone, uint16(e)).IsSuccess() {
			t.Fatalf("code 0 with error %d should be success", e)
		}
	}

	for _, c := range []Subsystem{SubsystemMist, SubsystemApps, SubsystemFriends, SubsystemInput, SubsystemRemoteStorage, SubsystemUtils, 0xFFFF} {
		assert.False(t, Pack(c, 0).IsSuccess(), "code %d", c)
		assert.True(t, Pack(c, 0).IsError())
	}
}

func TestBitLayout(t *testing.T) {
	r := Pack(SubsystemRemoteStorage, uint16(FileWriteBatchNotInProgress))
	assert.Equal(t, Result(1<<16|123), r)
	assert.Equal(t, Result(12<<16|1), ErrAlreadyInitialized.Result())
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Result
	}{
		{name: "nil", err: nil, want: Success},
		{name: "typed", err: ErrTimeout, want: Pack(SubsystemMist, uint16(Timeout))},
		{name: "wrapped typed", err: errors.Wrap(ErrSubprocessLost, "calling helper"), want: Pack(SubsystemMist, uint16(SubprocessLost))},
		{name: "domain", err: Apps(InvalidDlcIndex, "index 9"), want: Pack(SubsystemApps, 0)},
		{name: "foreign", err: errors.New("boom"), want: Pack(SubsystemMist, uint16(InternalError))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromError(tt.err))
		})
	}
}

func TestResultErrRoundTrip(t *testing.T) {
	assert.NoError(t, Success.Err())
	assert.NoError(t, Pack(SubsystemNone, 42).Err())

	err := ErrBatchAlreadyOpen.Result().Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBatchAlreadyOpen))
	assert.False(t, errors.Is(err, ErrBatchNotOpen))
}

func TestErrorIsIgnoresDetail(t *testing.T) {
	err := Mistf(Timeout, "call %s exceeded %s", "apps.get_dlc_count", "100ms")
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, errors.Is(errors.Wrap(err, "outer"), ErrTimeout))
	assert.False(t, errors.Is(err, ErrSubprocessLost))

	// Same numeric code in a different namespace is a different error
	assert.False(t, errors.Is(ErrInvalidDlcIndex, ErrInternal))
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(SubprocessSpawnError, errors.New("permission denied"), "starting mist/mist")
	assert.Equal(t, "Mist/SubprocessSpawnError: starting mist/mist (caused by: permission denied)", err.Error())
	assert.Equal(t, "Apps/InvalidDlcIndex", ErrInvalidDlcIndex.Error())
	assert.Equal(t, "Subsystem(7)/Error(3)", (&Error{Subsystem: 7, Code: 3}).Error())
}

func TestAsError(t *testing.T) {
	assert.Nil(t, AsError(nil))
	assert.Same(t, ErrTimeout, AsError(ErrTimeout))

	re := AsError(errors.New("decode failed"))
	require.NotNil(t, re)
	assert.True(t, errors.Is(re, ErrInternal))
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "Success", Success.String())
	assert.Equal(t, "Utils/NoGamepadTextEntered", ErrNoGamepadTextEntered.Result().String())
}
