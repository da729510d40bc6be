// Package arena holds the single-slot string buffers handed out by
// value-returning calls.
//
// Every slot keeps at most one buffer. Writing a slot releases the previous
// buffer and bumps the slot generation, which turns every handle issued for
// the old value stale. Reading through a stale handle reports ErrStaleHandle
// rather than the data of a later call.
package arena

import (
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrStaleHandle is returned when the slot behind a handle has been rewritten.
var ErrStaleHandle = errors.New("string slot has been overwritten")

// Slot identifies one query's buffer.
type Slot uint8

const (
	SlotDlcName Slot = iota
	SlotAppInstallDir
	SlotAvailableLanguages
	SlotCurrentBetaName
	SlotCurrentGameLanguage
	SlotLaunchCommandLine
	SlotLaunchQueryParam
	SlotEnteredGamepadText
	SlotInputOriginString
	SlotInputGlyphPNG
	SlotInputGlyphSVG
	SlotLastError

	slotCount
)

var slotNames = [slotCount]string{
	"dlc_name",
	"app_install_dir",
	"available_languages",
	"current_beta_name",
	"current_game_language",
	"launch_command_line",
	"launch_query_param",
	"entered_gamepad_text",
	"input_origin_string",
	"input_glyph_png",
	"input_glyph_svg",
	"last_error",
}

// String returns the slot name.
func (s Slot) String() string {
	if s < slotCount {
		return slotNames[s]
	}
	return "unknown"
}

// Buffer is storage produced by an Allocator. Release is called exactly once,
// when the slot is overwritten or the arena is reset.
type Buffer interface {
	String() string
	Release()
}

// Allocator turns a value into a Buffer.
type Allocator func(value string) Buffer

type goBuffer string

func (b goBuffer) String() string { return string(b) }
func (goBuffer) Release()         {}

// GoAllocator keeps values on the Go heap.
func GoAllocator(value string) Buffer {
	return goBuffer(value)
}

type entry struct {
	gen uint64
	buf Buffer // nil means absent
}

// Arena owns one buffer per Slot.
type Arena struct {
	alloc Allocator

	mu      sync.Mutex
	entries [slotCount]entry
}

// New creates an arena. A nil allocator uses GoAllocator.
func New(alloc Allocator) *Arena {
	if alloc == nil {
		alloc = GoAllocator
	}
	return &Arena{alloc: alloc}
}

// Write replaces the contents of slot. A nil value stores "absent".
func (a *Arena) Write(slot Slot, value *string) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := &a.entries[slot]
	if e.buf != nil {
		e.buf.Release()
		e.buf = nil
	}
	e.gen++
	if value != nil {
		e.buf = a.alloc(*value)
	}

	return Handle{arena: a, slot: slot, gen: e.gen}
}

// WriteString stores a present value.
func (a *Arena) WriteString(slot Slot, value string) Handle {
	return a.Write(slot, &value)
}

// Current returns the live buffer for slot, or nil when the slot is absent.
func (a *Arena) Current(slot Slot) Buffer {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.entries[slot].buf
}

// Reset releases every buffer except those of keep. Handles issued before
// Reset for the released slots become stale.
func (a *Arena) Reset(keep ...Slot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.entries {
		if slices.Contains(keep, Slot(i)) {
			continue
		}
		e := &a.entries[i]
		if e.buf != nil {
			e.buf.Release()
			e.buf = nil
		}
		e.gen++
	}
}

func (a *Arena) read(slot Slot, gen uint64) (string, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := a.entries[slot]
	if e.gen != gen {
		return "", false, ErrStaleHandle
	}
	if e.buf == nil {
		return "", false, nil
	}
	return e.buf.String(), true, nil
}

// Handle borrows one write of a slot.
type Handle struct {
	arena *Arena
	slot  Slot
	gen   uint64
}

// Slot returns the slot the handle points into.
func (h Handle) Slot() Slot {
	return h.slot
}

// Value returns the borrowed value. present is false for the absent marker.
// err is ErrStaleHandle once the slot has been written again.
func (h Handle) Value() (value string, present bool, err error) {
	if h.arena == nil {
		return "", false, ErrStaleHandle
	}
	return h.arena.read(h.slot, h.gen)
}

// Valid reports whether the slot has not been rewritten since h was issued.
func (h Handle) Valid() bool {
	_, _, err := h.Value()
	return err == nil
}

// String returns the value or "" when absent or stale.
func (h Handle) String() string {
	v, _, _ := h.Value()
	return v
}
