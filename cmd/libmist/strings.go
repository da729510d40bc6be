package main

/*
#include "mist_types.h"
*/
import "C"

import (
	"unsafe"

	"github.com/GriffinCanCode/mist/internal/arena"
	"github.com/GriffinCanCode/mist/internal/bridge"
)

// cBuffer is a NUL terminated copy in C memory.
type cBuffer struct {
	ptr   *C.char
	value string
}

func (b *cBuffer) String() string { return b.value }

func (b *cBuffer) Release() {
	C.free(unsafe.Pointer(b.ptr))
	b.ptr = nil
}

func cAllocator(value string) arena.Buffer {
	return &cBuffer{ptr: C.CString(value), value: value}
}

// slotPointer returns the C string currently held by slot, or NULL when the
// slot is empty or holds the absent marker.
func slotPointer(b *bridge.Bridge, slot arena.Slot) *C.char {
	buf, ok := b.Strings().Current(slot).(*cBuffer)
	if !ok || buf == nil {
		return nil
	}
	return buf.ptr
}

// handlePointer resolves a handle just returned by the bridge.
func handlePointer(b *bridge.Bridge, h arena.Handle) *C.char {
	if !h.Valid() {
		return nil
	}
	return slotPointer(b, h.Slot())
}

// goString copies a caller string. NULL becomes "".
func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}
