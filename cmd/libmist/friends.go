package main

/*
#include "mist_types.h"
*/
import "C"

import "context"

//export mist_friends_clear_rich_presence
func mist_friends_clear_rich_presence() C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Friends().ClearRichPresence(ctx)
	})
}

//export mist_friends_set_rich_presence
func mist_friends_set_rich_presence(key, value *C.char) C.MistResult {
	var v *string
	if value != nil {
		s := C.GoString(value)
		v = &s
	}
	k := goString(key)
	return command(func(ctx context.Context) error {
		return instance().Friends().SetRichPresence(ctx, k, v)
	})
}
