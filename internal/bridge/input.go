package bridge

import (
	"context"
	"slices"

	"github.com/GriffinCanCode/mist/internal/arena"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
)

// inputState is the last frame pulled by RunFrame together with the gamepad
// slot each controller occupies. Slots are stable: a controller keeps its
// slot while it stays connected and a new controller takes the lowest free
// one.
type inputState struct {
	ready bool
	slots [protocol.InputMaxCount]uint64
	pads  [protocol.InputMaxCount]protocol.ControllerState
}

func (s *inputState) reset() {
	*s = inputState{}
}

func (s *inputState) apply(frame protocol.InputFrame) {
	connected := make([]uint64, 0, len(frame.Controllers))
	for _, c := range frame.Controllers {
		connected = append(connected, c.Handle)
	}

	for i, h := range s.slots {
		if h != 0 && !slices.Contains(connected, h) {
			s.slots[i] = 0
			s.pads[i] = protocol.ControllerState{}
		}
	}
	for _, c := range frame.Controllers {
		i := slices.Index(s.slots[:], c.Handle)
		if i < 0 {
			i = slices.Index(s.slots[:], 0)
			if i < 0 {
				continue
			}
			s.slots[i] = c.Handle
		}
		s.pads[i] = c
	}
}

func (s *inputState) pad(input uint64) (protocol.ControllerState, bool) {
	if input == 0 {
		return protocol.ControllerState{}, false
	}
	i := slices.Index(s.slots[:], input)
	if i < 0 {
		return protocol.ControllerState{}, false
	}
	return s.pads[i], true
}

// Input reads controllers through action sets and actions.
//
// Action data and motion data are served from the frame pulled by the last
// RunFrame without a round trip to the helper.
type Input struct{ b *Bridge }

// Input returns the input client.
func (b *Bridge) Input() Input { return Input{b} }

// Init starts controller support. It reports false when the platform has no
// controller support, in which case RunFrame keeps failing with
// Input/NotInitialized.
func (in Input) Init(ctx context.Context) (bool, error) {
	ok, err := call[bool](ctx, in.b, protocol.OpInputInit, protocol.InputInitArgs{ExplicitlyCallRunFrame: true})
	if err != nil {
		return false, err
	}
	if ok {
		in.b.input.ready = true
	}
	return ok, nil
}

// Shutdown stops controller support and drops the last frame.
func (in Input) Shutdown(ctx context.Context) (bool, error) {
	in.b.input.reset()
	return call[bool](ctx, in.b, protocol.OpInputShutdown, nil)
}

// RunFrame samples every controller and replaces the cached frame.
func (in Input) RunFrame(ctx context.Context) error {
	if err := in.ready(); err != nil {
		return err
	}
	frame, err := call[protocol.InputFrame](ctx, in.b, protocol.OpInputRunFrame, nil)
	if err != nil {
		return err
	}
	in.b.input.apply(frame)
	return nil
}

func (in Input) ready() error {
	if !in.b.input.ready {
		return in.b.fail(result.Input(result.InputNotInitialized, "input has not been initialized"))
	}
	return nil
}

// DigitalActionData returns the state of action on the controller as of the
// last frame. Unknown controllers and actions read as zero.
func (in Input) DigitalActionData(input, action uint64) (protocol.DigitalActionData, error) {
	if err := in.ready(); err != nil {
		return protocol.DigitalActionData{}, err
	}
	pad, _ := in.b.input.pad(input)
	return pad.Digital[action], nil
}

// AnalogActionData returns the state of action on the controller as of the
// last frame. Unknown controllers and actions read as zero.
func (in Input) AnalogActionData(input, action uint64) (protocol.AnalogActionData, error) {
	if err := in.ready(); err != nil {
		return protocol.AnalogActionData{}, err
	}
	pad, _ := in.b.input.pad(input)
	return pad.Analog[action], nil
}

// MotionData returns the motion sensors of the controller as of the last frame.
func (in Input) MotionData(input uint64) (protocol.MotionData, error) {
	if err := in.ready(); err != nil {
		return protocol.MotionData{}, err
	}
	pad, _ := in.b.input.pad(input)
	return pad.Motion, nil
}

// QueryGamepad reports whether a known controller occupies the gamepad slot.
func (in Input) QueryGamepad(index int) (bool, error) {
	if err := in.ready(); err != nil {
		return false, err
	}
	if index < 0 || index >= protocol.InputMaxCount {
		return false, nil
	}
	s := in.b.input
	return s.slots[index] != 0 && s.pads[index].Type != protocol.InputTypeUnknown, nil
}

// GamepadSlot returns the controller in the gamepad slot, or 0.
func (in Input) GamepadSlot(index int) uint64 {
	if index < 0 || index >= protocol.InputMaxCount {
		return 0
	}
	return in.b.input.slots[index]
}

func (in Input) ConnectedControllers(ctx context.Context) ([]uint64, error) {
	h, err := call[protocol.InputHandles](ctx, in.b, protocol.OpInputGetConnectedControllers, nil)
	return limit(h.Handles, protocol.InputMaxCount), err
}

func (in Input) ControllerForGamepadIndex(ctx context.Context, index int32) (uint64, error) {
	return call[uint64](ctx, in.b, protocol.OpInputGetControllerForGamepadIndex, protocol.GamepadIndexArgs{Index: index})
}

func (in Input) GamepadIndexForController(ctx context.Context, input uint64) (int32, error) {
	return call[int32](ctx, in.b, protocol.OpInputGetGamepadIndexForController, protocol.InputHandleArgs{Input: input})
}

func (in Input) InputTypeForHandle(ctx context.Context, input uint64) (protocol.InputType, error) {
	return call[protocol.InputType](ctx, in.b, protocol.OpInputGetInputTypeForHandle, protocol.InputHandleArgs{Input: input})
}

// ActionSetHandle returns 0 for unknown action sets.
func (in Input) ActionSetHandle(ctx context.Context, name string) (uint64, error) {
	if err := in.b.checkStrings("action set name", name); err != nil {
		return 0, err
	}
	return call[uint64](ctx, in.b, protocol.OpInputGetActionSetHandle, protocol.ActionNameArgs{Name: name})
}

func (in Input) ActivateActionSet(ctx context.Context, input, set uint64) error {
	return in.b.invoke(ctx, protocol.OpInputActivateActionSet, protocol.ActionSetArgs{Input: input, ActionSet: set}, nil)
}

func (in Input) CurrentActionSet(ctx context.Context, input uint64) (uint64, error) {
	return call[uint64](ctx, in.b, protocol.OpInputGetCurrentActionSet, protocol.InputHandleArgs{Input: input})
}

func (in Input) ActivateActionSetLayer(ctx context.Context, input, layer uint64) error {
	return in.b.invoke(ctx, protocol.OpInputActivateActionSetLayer, protocol.ActionSetArgs{Input: input, ActionSet: layer}, nil)
}

func (in Input) DeactivateActionSetLayer(ctx context.Context, input, layer uint64) error {
	return in.b.invoke(ctx, protocol.OpInputDeactivateActionSetLayer, protocol.ActionSetArgs{Input: input, ActionSet: layer}, nil)
}

func (in Input) DeactivateAllActionSetLayers(ctx context.Context, input uint64) error {
	return in.b.invoke(ctx, protocol.OpInputDeactivateAllActionSetLayers, protocol.InputHandleArgs{Input: input}, nil)
}

func (in Input) ActiveActionSetLayers(ctx context.Context, input uint64) ([]uint64, error) {
	h, err := call[protocol.InputHandles](ctx, in.b, protocol.OpInputGetActiveActionSetLayers, protocol.InputHandleArgs{Input: input})
	return limit(h.Handles, protocol.InputMaxActiveLayers), err
}

// DigitalActionHandle looks up a digital action. From then on every frame
// samples it.
func (in Input) DigitalActionHandle(ctx context.Context, name string) (uint64, error) {
	if err := in.b.checkStrings("action name", name); err != nil {
		return 0, err
	}
	return call[uint64](ctx, in.b, protocol.OpInputGetDigitalActionHandle, protocol.ActionNameArgs{Name: name})
}

// AnalogActionHandle looks up an analog action. From then on every frame
// samples it.
func (in Input) AnalogActionHandle(ctx context.Context, name string) (uint64, error) {
	if err := in.b.checkStrings("action name", name); err != nil {
		return 0, err
	}
	return call[uint64](ctx, in.b, protocol.OpInputGetAnalogActionHandle, protocol.ActionNameArgs{Name: name})
}

func (in Input) DigitalActionOrigins(ctx context.Context, input, set, action uint64) ([]uint32, error) {
	o, err := call[protocol.ActionOrigins](ctx, in.b, protocol.OpInputGetDigitalActionOrigins, protocol.ActionOriginsArgs{Input: input, ActionSet: set, Action: action})
	return limit(o.Origins, protocol.InputMaxOrigins), err
}

func (in Input) AnalogActionOrigins(ctx context.Context, input, set, action uint64) ([]uint32, error) {
	o, err := call[protocol.ActionOrigins](ctx, in.b, protocol.OpInputGetAnalogActionOrigins, protocol.ActionOriginsArgs{Input: input, ActionSet: set, Action: action})
	return limit(o.Origins, protocol.InputMaxOrigins), err
}

func (in Input) StringForActionOrigin(ctx context.Context, origin uint32) (arena.Handle, error) {
	return in.b.text(ctx, arena.SlotInputOriginString, protocol.OpInputGetStringForActionOrigin, protocol.OriginArgs{Origin: origin})
}

// GlyphPNGForActionOrigin returns the path of the glyph image.
func (in Input) GlyphPNGForActionOrigin(ctx context.Context, origin, size, style uint32) (arena.Handle, error) {
	return in.b.text(ctx, arena.SlotInputGlyphPNG, protocol.OpInputGetGlyphPNGForActionOrigin, protocol.GlyphArgs{Origin: origin, Size: size, Style: style})
}

func (in Input) GlyphSVGForActionOrigin(ctx context.Context, origin, style uint32) (arena.Handle, error) {
	return in.b.text(ctx, arena.SlotInputGlyphSVG, protocol.OpInputGetGlyphSVGForActionOrigin, protocol.GlyphArgs{Origin: origin, Style: style})
}

func (in Input) TranslateActionOrigin(ctx context.Context, destination protocol.InputType, origin uint32) (uint32, error) {
	return call[uint32](ctx, in.b, protocol.OpInputTranslateActionOrigin, protocol.TranslateOriginArgs{Destination: destination, Origin: origin})
}

func (in Input) SetInputActionManifestFilePath(ctx context.Context, path string) (bool, error) {
	if err := in.b.checkStrings("manifest path", path); err != nil {
		return false, err
	}
	return call[bool](ctx, in.b, protocol.OpInputSetInputActionManifestFilePath, protocol.ManifestArgs{Path: path})
}

func (in Input) SetLEDColor(ctx context.Context, args protocol.LEDColorArgs) error {
	return in.b.invoke(ctx, protocol.OpInputSetLEDColor, args, nil)
}

func (in Input) ShowBindingPanel(ctx context.Context, input uint64) (bool, error) {
	return call[bool](ctx, in.b, protocol.OpInputShowBindingPanel, protocol.InputHandleArgs{Input: input})
}

func (in Input) StopAnalogActionMomentum(ctx context.Context, input, action uint64) error {
	return in.b.invoke(ctx, protocol.OpInputStopAnalogActionMomentum, protocol.AnalogActionArgs{Input: input, Action: action}, nil)
}

func (in Input) TriggerVibration(ctx context.Context, input uint64, left, right uint16) error {
	return in.b.invoke(ctx, protocol.OpInputTriggerVibration, protocol.VibrationArgs{Input: input, Left: left, Right: right}, nil)
}

func (in Input) TriggerVibrationExtended(ctx context.Context, args protocol.VibrationArgs) error {
	return in.b.invoke(ctx, protocol.OpInputTriggerVibrationExtended, args, nil)
}

func (in Input) TriggerSimpleHapticEvent(ctx context.Context, args protocol.HapticEventArgs) error {
	return in.b.invoke(ctx, protocol.OpInputTriggerSimpleHapticEvent, args, nil)
}

func limit[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
