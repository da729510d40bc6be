package main

/*
#include "mist_types.h"
*/
import "C"

import (
	"context"
	"sync"
	"unsafe"

	"github.com/GriffinCanCode/mist/internal/arena"
	"github.com/GriffinCanCode/mist/internal/bridge"
	"github.com/GriffinCanCode/mist/internal/callbacks"
	"github.com/GriffinCanCode/mist/internal/infrastructure/config"
	"github.com/GriffinCanCode/mist/internal/result"
)

var (
	mu      sync.Mutex
	current *bridge.Bridge

	// pending holds events drained by mist_poll until mist_next_callback
	// hands them out.
	pending      []callbacks.Event
	callbackData *C.MistCallbackData
)

// instance returns the process wide bridge, creating it on first use so that
// misuse before init still records an error message. Callers hold mu.
func instance() *bridge.Bridge {
	if current == nil {
		current = bridge.New(config.LoadOrDefault(), bridge.WithAllocator(cAllocator))
	}
	return current
}

func toResult(err error) C.MistResult {
	return C.MistResult(result.FromError(err))
}

func store[T any](p *T, v T) {
	if p != nil {
		*p = v
	}
}

//export mist_subprocess_init
func mist_subprocess_init() C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	return toResult(instance().Init(context.Background()))
}

//export mist_subprocess_deinit
func mist_subprocess_deinit() C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	pending = nil
	return toResult(instance().Deinit(context.Background()))
}

//export mist_poll
func mist_poll() C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	events, err := instance().Poll(context.Background())
	pending = append(pending, events...)
	return toResult(err)
}

//export mist_next_callback
func mist_next_callback(hasCallback *C.bool, msg *C.MistCallbackMsg) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	if len(pending) == 0 {
		store(hasCallback, C.bool(false))
		return toResult(nil)
	}
	ev := pending[0]
	pending = pending[1:]

	if callbackData == nil {
		callbackData = (*C.MistCallbackData)(C.calloc(1, C.sizeof_MistCallbackData))
	}

	var data *C.MistCallbackData
	switch e := ev.(type) {
	case callbacks.DlcInstalled:
		d := (*C.MistCallbackDlcInstalled)(unsafe.Pointer(callbackData))
		d.app_id = C.AppId(e.AppID)
		data = callbackData
	case callbacks.GamepadTextInputDismissed:
		d := (*C.MistCallbackGamepadTextInputDismissed)(unsafe.Pointer(callbackData))
		d.submitted = C.bool(e.Submitted)
		d.submitted_len = C.uint32_t(e.SubmittedLen)
		data = callbackData
	}

	store(hasCallback, C.bool(true))
	if msg != nil {
		msg.callback = C.uint32_t(ev.Callback())
		msg.data = data
	}
	return toResult(nil)
}

//export mist_geterror
func mist_geterror() *C.char {
	mu.Lock()
	defer mu.Unlock()

	return slotPointer(instance(), arena.SlotLastError)
}
