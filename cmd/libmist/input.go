package main

/*
#include "mist_types.h"
*/
import "C"

import (
	"context"
	"unsafe"

	"github.com/GriffinCanCode/mist/internal/arena"
	"github.com/GriffinCanCode/mist/internal/protocol"
)

// Handle lists are written to caller arrays that hold at least the
// MIST_STEAM_INPUT_MAX_* count of entries for the list.

func writeList[T, D any](out *D, count *C.size_t, values []T, conv func(T) D) {
	if out != nil && len(values) > 0 {
		dst := unsafe.Slice(out, len(values))
		for i, v := range values {
			dst[i] = conv(v)
		}
	}
	store(count, C.size_t(len(values)))
}

func inputHandle(v uint64) C.MistInputHandle { return C.MistInputHandle(v) }

func actionOrigin(v uint32) C.MistInputActionOrigin { return C.MistInputActionOrigin(v) }

func uint64Call[T ~uint64](out *T, fn func(context.Context) (uint64, error)) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	v, err := fn(context.Background())
	if err == nil {
		store(out, T(v))
	}
	return toResult(err)
}

func inputText(out **C.char, fn func(context.Context) (arena.Handle, error)) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	h, err := fn(context.Background())
	if err == nil {
		store(out, handlePointer(instance(), h))
	}
	return toResult(err)
}

//export mist_steam_input_init
func mist_steam_input_init(initialized *C.bool) C.MistResult {
	return boolCall(initialized, func(ctx context.Context) (bool, error) {
		return instance().Input().Init(ctx)
	})
}

//export mist_steam_input_shutdown
func mist_steam_input_shutdown(shutdown *C.bool) C.MistResult {
	return boolCall(shutdown, func(ctx context.Context) (bool, error) {
		return instance().Input().Shutdown(ctx)
	})
}

//export mist_steam_input_run_frame
func mist_steam_input_run_frame() C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Input().RunFrame(ctx)
	})
}

//export mist_steam_input_activate_action_set
func mist_steam_input_activate_action_set(input C.MistInputHandle, set C.MistInputActionSetHandle) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Input().ActivateActionSet(ctx, uint64(input), uint64(set))
	})
}

//export mist_steam_input_activate_action_set_layer
func mist_steam_input_activate_action_set_layer(input C.MistInputHandle, layer C.MistInputActionSetHandle) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Input().ActivateActionSetLayer(ctx, uint64(input), uint64(layer))
	})
}

//export mist_steam_input_deactivate_action_set_layer
func mist_steam_input_deactivate_action_set_layer(input C.MistInputHandle, layer C.MistInputActionSetHandle) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Input().DeactivateActionSetLayer(ctx, uint64(input), uint64(layer))
	})
}

//export mist_steam_input_deactivate_all_action_set_layers
func mist_steam_input_deactivate_all_action_set_layers(input C.MistInputHandle) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Input().DeactivateAllActionSetLayers(ctx, uint64(input))
	})
}

//export mist_steam_input_get_active_action_set_layers
func mist_steam_input_get_active_action_set_layers(input C.MistInputHandle, handlesOut *C.MistInputActionSetHandle, handlesCount *C.size_t) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	layers, err := instance().Input().ActiveActionSetLayers(context.Background(), uint64(input))
	if err == nil {
		writeList(handlesOut, handlesCount, layers, func(v uint64) C.MistInputActionSetHandle { return C.MistInputActionSetHandle(v) })
	}
	return toResult(err)
}

//export mist_steam_input_get_action_set_handle
func mist_steam_input_get_action_set_handle(name *C.char, handle *C.MistInputActionSetHandle) C.MistResult {
	return uint64Call(handle, func(ctx context.Context) (uint64, error) {
		return instance().Input().ActionSetHandle(ctx, goString(name))
	})
}

//export mist_steam_input_get_analog_action_data
func mist_steam_input_get_analog_action_data(input C.MistInputHandle, action C.MistInputAnalogActionHandle) C.MistInputAnalogActionData {
	mu.Lock()
	defer mu.Unlock()

	var out C.MistInputAnalogActionData
	if d, err := instance().Input().AnalogActionData(uint64(input), uint64(action)); err == nil {
		out.mode = C.MistControllerSourceMode(d.Mode)
		out.x = C.float(d.X)
		out.y = C.float(d.Y)
		out.active = C.bool(d.Active)
	}
	return out
}

//export mist_steam_input_get_analog_action_handle
func mist_steam_input_get_analog_action_handle(name *C.char, handle *C.MistInputAnalogActionHandle) C.MistResult {
	return uint64Call(handle, func(ctx context.Context) (uint64, error) {
		return instance().Input().AnalogActionHandle(ctx, goString(name))
	})
}

//export mist_steam_input_get_analog_action_origins
func mist_steam_input_get_analog_action_origins(input C.MistInputHandle, set C.MistInputActionSetHandle, action C.MistInputAnalogActionHandle, originsOut *C.MistInputActionOrigin, originsCount *C.size_t) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	origins, err := instance().Input().AnalogActionOrigins(context.Background(), uint64(input), uint64(set), uint64(action))
	if err == nil {
		writeList(originsOut, originsCount, origins, actionOrigin)
	}
	return toResult(err)
}

//export mist_steam_input_get_connected_controllers
func mist_steam_input_get_connected_controllers(handlesOut *C.MistInputHandle, handlesCount *C.size_t) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	handles, err := instance().Input().ConnectedControllers(context.Background())
	if err == nil {
		writeList(handlesOut, handlesCount, handles, inputHandle)
	}
	return toResult(err)
}

//export mist_steam_input_get_controller_for_gamepad_index
func mist_steam_input_get_controller_for_gamepad_index(index C.int, input *C.MistInputHandle) C.MistResult {
	return uint64Call(input, func(ctx context.Context) (uint64, error) {
		return instance().Input().ControllerForGamepadIndex(ctx, int32(index))
	})
}

//export mist_steam_input_get_current_action_set
func mist_steam_input_get_current_action_set(input C.MistInputHandle, set *C.MistInputActionSetHandle) C.MistResult {
	return uint64Call(set, func(ctx context.Context) (uint64, error) {
		return instance().Input().CurrentActionSet(ctx, uint64(input))
	})
}

//export mist_steam_input_get_digital_action_data
func mist_steam_input_get_digital_action_data(input C.MistInputHandle, action C.MistInputDigitalActionHandle) C.MistInputDigitalActionData {
	mu.Lock()
	defer mu.Unlock()

	var out C.MistInputDigitalActionData
	if d, err := instance().Input().DigitalActionData(uint64(input), uint64(action)); err == nil {
		out.state = C.bool(d.State)
		out.active = C.bool(d.Active)
	}
	return out
}

//export mist_steam_input_get_digital_action_handle
func mist_steam_input_get_digital_action_handle(name *C.char, handle *C.MistInputDigitalActionHandle) C.MistResult {
	return uint64Call(handle, func(ctx context.Context) (uint64, error) {
		return instance().Input().DigitalActionHandle(ctx, goString(name))
	})
}

//export mist_steam_input_get_digital_action_origins
func mist_steam_input_get_digital_action_origins(input C.MistInputHandle, set C.MistInputActionSetHandle, action C.MistInputDigitalActionHandle, originsOut *C.MistInputActionOrigin, originsCount *C.size_t) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	origins, err := instance().Input().DigitalActionOrigins(context.Background(), uint64(input), uint64(set), uint64(action))
	if err == nil {
		writeList(originsOut, originsCount, origins, actionOrigin)
	}
	return toResult(err)
}

//export mist_steam_input_get_gamepad_index_for_controller
func mist_steam_input_get_gamepad_index_for_controller(input C.MistInputHandle, index *C.int) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	v, err := instance().Input().GamepadIndexForController(context.Background(), uint64(input))
	if err == nil {
		store(index, C.int(v))
	}
	return toResult(err)
}

//export mist_steam_input_get_glyph_png_for_action_origin
func mist_steam_input_get_glyph_png_for_action_origin(origin C.MistInputActionOrigin, size C.MistSteamInputGlyphSize, flags C.MistSteamInputGlyphStyle, path **C.char) C.MistResult {
	return inputText(path, func(ctx context.Context) (arena.Handle, error) {
		return instance().Input().GlyphPNGForActionOrigin(ctx, uint32(origin), uint32(size), uint32(flags))
	})
}

//export mist_steam_input_get_glyph_svg_for_action_origin
func mist_steam_input_get_glyph_svg_for_action_origin(origin C.MistInputActionOrigin, flags C.MistSteamInputGlyphStyle, path **C.char) C.MistResult {
	return inputText(path, func(ctx context.Context) (arena.Handle, error) {
		return instance().Input().GlyphSVGForActionOrigin(ctx, uint32(origin), uint32(flags))
	})
}

//export mist_steam_input_get_input_type_for_handle
func mist_steam_input_get_input_type_for_handle(input C.MistInputHandle, inputType *C.MistSteamInputType) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	v, err := instance().Input().InputTypeForHandle(context.Background(), uint64(input))
	if err == nil {
		store(inputType, C.MistSteamInputType(v))
	}
	return toResult(err)
}

//export mist_steam_input_get_motion_data
func mist_steam_input_get_motion_data(input C.MistInputHandle) C.MistInputMotionData {
	mu.Lock()
	defer mu.Unlock()

	var out C.MistInputMotionData
	if m, err := instance().Input().MotionData(uint64(input)); err == nil {
		out.rot_quat_x = C.float(m.RotQuatX)
		out.rot_quat_y = C.float(m.RotQuatY)
		out.rot_quat_z = C.float(m.RotQuatZ)
		out.rot_quat_w = C.float(m.RotQuatW)
		out.pos_accel_x = C.float(m.PosAccelX)
		out.pos_accel_y = C.float(m.PosAccelY)
		out.pos_accel_z = C.float(m.PosAccelZ)
		out.rot_vel_x = C.float(m.RotVelX)
		out.rot_vel_y = C.float(m.RotVelY)
		out.rot_vel_z = C.float(m.RotVelZ)
	}
	return out
}

//export mist_steam_input_get_string_for_action_origin
func mist_steam_input_get_string_for_action_origin(origin C.MistInputActionOrigin, str **C.char) C.MistResult {
	return inputText(str, func(ctx context.Context) (arena.Handle, error) {
		return instance().Input().StringForActionOrigin(ctx, uint32(origin))
	})
}

//export mist_steam_input_set_input_action_manifest_file_path
func mist_steam_input_set_input_action_manifest_file_path(path *C.char, set *C.bool) C.MistResult {
	return boolCall(set, func(ctx context.Context) (bool, error) {
		return instance().Input().SetInputActionManifestFilePath(ctx, goString(path))
	})
}

//export mist_steam_input_set_led_color
func mist_steam_input_set_led_color(input C.MistInputHandle, r, g, b C.uint8_t, flags C.MistSteamControllerLEDFlag) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Input().SetLEDColor(ctx, protocol.LEDColorArgs{
			Input: uint64(input), R: uint8(r), G: uint8(g), B: uint8(b), Flags: uint32(flags),
		})
	})
}

//export mist_steam_input_show_binding_panel
func mist_steam_input_show_binding_panel(input C.MistInputHandle, overlayShown *C.bool) C.MistResult {
	return boolCall(overlayShown, func(ctx context.Context) (bool, error) {
		return instance().Input().ShowBindingPanel(ctx, uint64(input))
	})
}

//export mist_steam_input_stop_analog_action_momentum
func mist_steam_input_stop_analog_action_momentum(input C.MistInputHandle, action C.MistInputAnalogActionHandle) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Input().StopAnalogActionMomentum(ctx, uint64(input), uint64(action))
	})
}

//export mist_steam_input_trigger_vibration
func mist_steam_input_trigger_vibration(input C.MistInputHandle, left, right C.ushort) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Input().TriggerVibration(ctx, uint64(input), uint16(left), uint16(right))
	})
}

//export mist_steam_input_trigger_vibration_extended
func mist_steam_input_trigger_vibration_extended(input C.MistInputHandle, left, right, leftTrigger, rightTrigger C.ushort) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Input().TriggerVibrationExtended(ctx, protocol.VibrationArgs{
			Input: uint64(input), Left: uint16(left), Right: uint16(right),
			LeftTrigger: uint16(leftTrigger), RightTrigger: uint16(rightTrigger),
		})
	})
}

//export mist_steam_input_trigger_simple_haptic_event
func mist_steam_input_trigger_simple_haptic_event(input C.MistInputHandle, location C.MistControllerHapticLocation, intensity C.uint8_t, gainDB C.char, otherIntensity C.uint8_t, otherGainDB C.char) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Input().TriggerSimpleHapticEvent(ctx, protocol.HapticEventArgs{
			Input:          uint64(input),
			Location:       uint32(location),
			Intensity:      uint8(intensity),
			GainDB:         int8(gainDB),
			OtherIntensity: uint8(otherIntensity),
			OtherGainDB:    int8(otherGainDB),
		})
	})
}

//export mist_steam_input_translate_action_origin
func mist_steam_input_translate_action_origin(destination C.MistSteamInputType, origin C.MistInputActionOrigin, translated *C.MistInputActionOrigin) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	v, err := instance().Input().TranslateActionOrigin(context.Background(), protocol.InputType(destination), uint32(origin))
	if err == nil {
		store(translated, C.MistInputActionOrigin(v))
	}
	return toResult(err)
}

// mist_steam_input_ex_query_gamepad reports whether a controller occupies the
// gamepad slot as of the last frame.
//
//export mist_steam_input_ex_query_gamepad
func mist_steam_input_ex_query_gamepad(index C.int) C.bool {
	mu.Lock()
	defer mu.Unlock()

	ok, _ := instance().Input().QueryGamepad(int(index))
	return C.bool(ok)
}
