package helper

import (
	"context"

	"github.com/GriffinCanCode/mist/internal/protocol"
)

// InputPlatform is implemented by platforms with controller support. Calls
// other than InputInit, InputShutdown and SetInputActionManifestFilePath fail with
// Input/NotInitialized until InputInit succeeds.
type InputPlatform interface {
	// InputInit prepares controller sampling. It reports false when the
	// platform has no controller support.
	InputInit(ctx context.Context) (bool, error)
	InputShutdown(ctx context.Context) (bool, error)
	// RunFrame samples every connected controller.
	RunFrame(ctx context.Context) (protocol.InputFrame, error)

	ConnectedControllers(ctx context.Context) ([]uint64, error)
	ControllerForGamepadIndex(ctx context.Context, index int32) (uint64, error)
	GamepadIndexForController(ctx context.Context, input uint64) (int32, error)
	InputTypeForHandle(ctx context.Context, input uint64) (protocol.InputType, error)

	ActionSetHandle(ctx context.Context, name string) (uint64, error)
	ActivateActionSet(ctx context.Context, input, set uint64) error
	CurrentActionSet(ctx context.Context, input uint64) (uint64, error)
	ActivateActionSetLayer(ctx context.Context, input, layer uint64) error
	DeactivateActionSetLayer(ctx context.Context, input, layer uint64) error
	DeactivateAllActionSetLayers(ctx context.Context, input uint64) error
	ActiveActionSetLayers(ctx context.Context, input uint64) ([]uint64, error)

	// DigitalActionHandle and AnalogActionHandle also register the action for
	// sampling by RunFrame.
	DigitalActionHandle(ctx context.Context, name string) (uint64, error)
	AnalogActionHandle(ctx context.Context, name string) (uint64, error)
	DigitalActionOrigins(ctx context.Context, input, set, action uint64) ([]uint32, error)
	AnalogActionOrigins(ctx context.Context, input, set, action uint64) ([]uint32, error)

	StringForActionOrigin(ctx context.Context, origin uint32) (string, error)
	GlyphPNGForActionOrigin(ctx context.Context, origin, size, style uint32) (string, error)
	GlyphSVGForActionOrigin(ctx context.Context, origin, style uint32) (string, error)
	TranslateActionOrigin(ctx context.Context, destination protocol.InputType, origin uint32) (uint32, error)

	SetInputActionManifestFilePath(ctx context.Context, path string) (bool, error)
	SetLEDColor(ctx context.Context, args protocol.LEDColorArgs) error
	ShowBindingPanel(ctx context.Context, input uint64) (bool, error)
	StopAnalogActionMomentum(ctx context.Context, input, action uint64) error
	TriggerVibration(ctx context.Context, args protocol.VibrationArgs) error
	TriggerVibrationExtended(ctx context.Context, args protocol.VibrationArgs) error
	TriggerSimpleHapticEvent(ctx context.Context, args protocol.HapticEventArgs) error
}

func mountInput(s *Server, p InputPlatform) {
	handle(s, protocol.OpInputInit, func(ctx context.Context, _ protocol.InputInitArgs) (bool, error) {
		return p.InputInit(ctx)
	})
	query(s, protocol.OpInputShutdown, p.InputShutdown)
	query(s, protocol.OpInputRunFrame, p.RunFrame)
	query(s, protocol.OpInputGetConnectedControllers, func(ctx context.Context) (protocol.InputHandles, error) {
		h, err := p.ConnectedControllers(ctx)
		return protocol.InputHandles{Handles: truncate(h, protocol.InputMaxCount)}, err
	})
	handle(s, protocol.OpInputGetControllerForGamepadIndex, func(ctx context.Context, a protocol.GamepadIndexArgs) (uint64, error) {
		return p.ControllerForGamepadIndex(ctx, a.Index)
	})
	handle(s, protocol.OpInputGetGamepadIndexForController, func(ctx context.Context, a protocol.InputHandleArgs) (int32, error) {
		return p.GamepadIndexForController(ctx, a.Input)
	})
	handle(s, protocol.OpInputGetInputTypeForHandle, func(ctx context.Context, a protocol.InputHandleArgs) (protocol.InputType, error) {
		return p.InputTypeForHandle(ctx, a.Input)
	})

	handle(s, protocol.OpInputGetActionSetHandle, func(ctx context.Context, a protocol.ActionNameArgs) (uint64, error) {
		return p.ActionSetHandle(ctx, a.Name)
	})
	command(s, protocol.OpInputActivateActionSet, func(ctx context.Context, a protocol.ActionSetArgs) error {
		return p.ActivateActionSet(ctx, a.Input, a.ActionSet)
	})
	handle(s, protocol.OpInputGetCurrentActionSet, func(ctx context.Context, a protocol.InputHandleArgs) (uint64, error) {
		return p.CurrentActionSet(ctx, a.Input)
	})
	command(s, protocol.OpInputActivateActionSetLayer, func(ctx context.Context, a protocol.ActionSetArgs) error {
		return p.ActivateActionSetLayer(ctx, a.Input, a.ActionSet)
	})
	command(s, protocol.OpInputDeactivateActionSetLayer, func(ctx context.Context, a protocol.ActionSetArgs) error {
		return p.DeactivateActionSetLayer(ctx, a.Input, a.ActionSet)
	})
	command(s, protocol.OpInputDeactivateAllActionSetLayers, func(ctx context.Context, a protocol.InputHandleArgs) error {
		return p.DeactivateAllActionSetLayers(ctx, a.Input)
	})
	handle(s, protocol.OpInputGetActiveActionSetLayers, func(ctx context.Context, a protocol.InputHandleArgs) (protocol.InputHandles, error) {
		h, err := p.ActiveActionSetLayers(ctx, a.Input)
		return protocol.InputHandles{Handles: truncate(h, protocol.InputMaxActiveLayers)}, err
	})

	handle(s, protocol.OpInputGetDigitalActionHandle, func(ctx context.Context, a protocol.ActionNameArgs) (uint64, error) {
		return p.DigitalActionHandle(ctx, a.Name)
	})
	handle(s, protocol.OpInputGetAnalogActionHandle, func(ctx context.Context, a protocol.ActionNameArgs) (uint64, error) {
		return p.AnalogActionHandle(ctx, a.Name)
	})
	handle(s, protocol.OpInputGetDigitalActionOrigins, func(ctx context.Context, a protocol.ActionOriginsArgs) (protocol.ActionOrigins, error) {
		o, err := p.DigitalActionOrigins(ctx, a.Input, a.ActionSet, a.Action)
		return protocol.ActionOrigins{Origins: truncate(o, protocol.InputMaxOrigins)}, err
	})
	handle(s, protocol.OpInputGetAnalogActionOrigins, func(ctx context.Context, a protocol.ActionOriginsArgs) (protocol.ActionOrigins, error) {
		o, err := p.AnalogActionOrigins(ctx, a.Input, a.ActionSet, a.Action)
		return protocol.ActionOrigins{Origins: truncate(o, protocol.InputMaxOrigins)}, err
	})

	handle(s, protocol.OpInputGetStringForActionOrigin, func(ctx context.Context, a protocol.OriginArgs) (string, error) {
		return p.StringForActionOrigin(ctx, a.Origin)
	})
	handle(s, protocol.OpInputGetGlyphPNGForActionOrigin, func(ctx context.Context, a protocol.GlyphArgs) (string, error) {
		return p.GlyphPNGForActionOrigin(ctx, a.Origin, a.Size, a.Style)
	})
	handle(s, protocol.OpInputGetGlyphSVGForActionOrigin, func(ctx context.Context, a protocol.GlyphArgs) (string, error) {
		return p.GlyphSVGForActionOrigin(ctx, a.Origin, a.Style)
	})
	handle(s, protocol.OpInputTranslateActionOrigin, func(ctx context.Context, a protocol.TranslateOriginArgs) (uint32, error) {
		return p.TranslateActionOrigin(ctx, a.Destination, a.Origin)
	})

	handle(s, protocol.OpInputSetInputActionManifestFilePath, func(ctx context.Context, a protocol.ManifestArgs) (bool, error) {
		return p.SetInputActionManifestFilePath(ctx, a.Path)
	})
	command(s, protocol.OpInputSetLEDColor, p.SetLEDColor)
	handle(s, protocol.OpInputShowBindingPanel, func(ctx context.Context, a protocol.InputHandleArgs) (bool, error) {
		return p.ShowBindingPanel(ctx, a.Input)
	})
	command(s, protocol.OpInputStopAnalogActionMomentum, func(ctx context.Context, a protocol.AnalogActionArgs) error {
		return p.StopAnalogActionMomentum(ctx, a.Input, a.Action)
	})
	command(s, protocol.OpInputTriggerVibration, p.TriggerVibration)
	command(s, protocol.OpInputTriggerVibrationExtended, p.TriggerVibrationExtended)
	command(s, protocol.OpInputTriggerSimpleHapticEvent, p.TriggerSimpleHapticEvent)
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
