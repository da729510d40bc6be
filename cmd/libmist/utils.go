package main

/*
#include "mist_types.h"
*/
import "C"

import (
	"context"

	"github.com/GriffinCanCode/mist/internal/protocol"
)

//export mist_utils_get_appid
func mist_utils_get_appid(appID *C.uint32_t) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	v, err := instance().Utils().AppID(context.Background())
	if err == nil {
		store(appID, C.uint32_t(v))
	}
	return toResult(err)
}

//export mist_utils_get_current_battery_power
func mist_utils_get_current_battery_power(battery *C.uint8_t) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	v, err := instance().Utils().CurrentBatteryPower(context.Background())
	if err == nil {
		store(battery, C.uint8_t(v))
	}
	return toResult(err)
}

//export mist_utils_get_entered_gamepad_text_input
func mist_utils_get_entered_gamepad_text_input(text **C.char) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	b := instance()
	h, err := b.Utils().EnteredGamepadTextInput(context.Background())
	if err == nil {
		store(text, handlePointer(b, h))
	}
	return toResult(err)
}

//export mist_utils_is_overlay_enabled
func mist_utils_is_overlay_enabled(out *C.bool) C.MistResult {
	return boolCall(out, func(ctx context.Context) (bool, error) {
		return instance().Utils().IsOverlayEnabled(ctx)
	})
}

//export mist_utils_is_steam_in_big_picture_mode
func mist_utils_is_steam_in_big_picture_mode(out *C.bool) C.MistResult {
	return boolCall(out, func(ctx context.Context) (bool, error) {
		return instance().Utils().IsSteamInBigPictureMode(ctx)
	})
}

//export mist_utils_is_steam_running_in_vr
func mist_utils_is_steam_running_in_vr(out *C.bool) C.MistResult {
	return boolCall(out, func(ctx context.Context) (bool, error) {
		return instance().Utils().IsSteamRunningInVR(ctx)
	})
}

//export mist_utils_is_vr_headset_streaming_enabled
func mist_utils_is_vr_headset_streaming_enabled(out *C.bool) C.MistResult {
	return boolCall(out, func(ctx context.Context) (bool, error) {
		return instance().Utils().IsVRHeadsetStreamingEnabled(ctx)
	})
}

//export mist_utils_is_steam_running_on_steam_deck
func mist_utils_is_steam_running_on_steam_deck(out *C.bool) C.MistResult {
	return boolCall(out, func(ctx context.Context) (bool, error) {
		return instance().Utils().IsSteamRunningOnSteamDeck(ctx)
	})
}

//export mist_utils_set_vr_headset_streaming_enabled
func mist_utils_set_vr_headset_streaming_enabled(enabled C.bool) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Utils().SetVRHeadsetStreamingEnabled(ctx, bool(enabled))
	})
}

//export mist_utils_show_gamepad_text_input
func mist_utils_show_gamepad_text_input(inputMode, lineMode C.uint32_t, description *C.char, charMax C.uint32_t, existingText *C.char, shown *C.bool) C.MistResult {
	args := protocol.GamepadTextInputArgs{
		InputMode:    protocol.GamepadTextInputMode(inputMode),
		LineMode:     protocol.GamepadTextInputLineMode(lineMode),
		Description:  goString(description),
		CharMax:      uint32(charMax),
		ExistingText: goString(existingText),
	}
	return boolCall(shown, func(ctx context.Context) (bool, error) {
		return instance().Utils().ShowGamepadTextInput(ctx, args)
	})
}

//export mist_utils_show_floating_gamepad_text_input
func mist_utils_show_floating_gamepad_text_input(mode C.uint32_t, x, y, width, height C.int32_t, shown *C.bool) C.MistResult {
	args := protocol.FloatingGamepadTextInputArgs{
		Mode:   protocol.FloatingGamepadTextInputMode(mode),
		X:      int32(x),
		Y:      int32(y),
		Width:  int32(width),
		Height: int32(height),
	}
	return boolCall(shown, func(ctx context.Context) (bool, error) {
		return instance().Utils().ShowFloatingGamepadTextInput(ctx, args)
	})
}

//export mist_utils_set_game_launcher_mode
func mist_utils_set_game_launcher_mode(enabled C.bool) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Utils().SetGameLauncherMode(ctx, bool(enabled))
	})
}

//export mist_utils_start_vr_dashboard
func mist_utils_start_vr_dashboard() C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Utils().StartVRDashboard(ctx)
	})
}
