package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBuffer struct {
	value    string
	released *int
}

func (b *countingBuffer) String() string { return b.value }
func (b *countingBuffer) Release()       { *b.released++ }

func TestWriteAndRead(t *testing.T) {
	a := New(nil)

	h := a.WriteString(SlotCurrentGameLanguage, "english")
	v, present, err := h.Value()
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "english", v)
	assert.Equal(t, SlotCurrentGameLanguage, h.Slot())
}

func TestAbsentIsNotEmpty(t *testing.T) {
	a := New(nil)

	absent := a.Write(SlotLaunchQueryParam, nil)
	v, present, err := absent.Value()
	require.NoError(t, err)
	assert.False(t, present)
	assert.Empty(t, v)
	assert.Nil(t, a.Current(SlotLaunchQueryParam))

	empty := a.WriteString(SlotLaunchQueryParam, "")
	v, present, err = empty.Value()
	require.NoError(t, err)
	assert.True(t, present)
	assert.Empty(t, v)
	assert.NotNil(t, a.Current(SlotLaunchQueryParam))
}

func TestOverwriteInvalidatesHandle(t *testing.T) {
	a := New(nil)

	first := a.WriteString(SlotCurrentBetaName, "beta1")
	assert.Equal(t, "beta1", first.String())

	second := a.Write(SlotCurrentBetaName, nil)

	_, _, err := first.Value()
	assert.ErrorIs(t, err, ErrStaleHandle)
	assert.False(t, first.Valid())

	v, present, err := second.Value()
	require.NoError(t, err)
	assert.False(t, present)
	assert.NotEqual(t, "beta1", v)
}

func TestSlotsAreIndependent(t *testing.T) {
	a := New(nil)

	dir := a.WriteString(SlotAppInstallDir, "/games/spacewar")
	a.WriteString(SlotDlcName, "Soundtrack")
	a.WriteString(SlotDlcName, "Art Book")

	assert.True(t, dir.Valid())
	assert.Equal(t, "/games/spacewar", dir.String())
}

func TestReleaseOnOverwriteAndReset(t *testing.T) {
	released := 0
	a := New(func(v string) Buffer {
		return &countingBuffer{value: v, released: &released}
	})

	a.WriteString(SlotDlcName, "a")
	a.WriteString(SlotDlcName, "b")
	assert.Equal(t, 1, released)

	a.Write(SlotDlcName, nil)
	assert.Equal(t, 2, released)

	h := a.WriteString(SlotAppInstallDir, "/x")
	a.WriteString(SlotLastError, "boom")
	a.Reset()
	assert.Equal(t, 4, released)
	assert.False(t, h.Valid())
	assert.Nil(t, a.Current(SlotAppInstallDir))
}

func TestResetKeepsSlots(t *testing.T) {
	released := 0
	a := New(func(v string) Buffer {
		return &countingBuffer{value: v, released: &released}
	})

	dir := a.WriteString(SlotAppInstallDir, "/x")
	msg := a.WriteString(SlotLastError, "Apps/InvalidDlcIndex")
	a.Reset(SlotLastError)

	assert.Equal(t, 1, released)
	assert.False(t, dir.Valid())
	assert.True(t, msg.Valid())
	assert.Equal(t, "Apps/InvalidDlcIndex", a.Current(SlotLastError).String())
}

func TestZeroHandleIsStale(t *testing.T) {
	var h Handle
	_, _, err := h.Value()
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestSlotString(t *testing.T) {
	assert.Equal(t, "current_beta_name", SlotCurrentBetaName.String())
	assert.Equal(t, "unknown", Slot(200).String())
}
