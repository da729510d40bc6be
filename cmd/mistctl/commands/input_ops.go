package commands

import (
	"context"

	"github.com/GriffinCanCode/mist/internal/bridge"
	"github.com/GriffinCanCode/mist/internal/protocol"
)

// Controller handles are parsed with base prefixes, so 0x1001 works.
var inputOperations = map[string]operation{
	protocol.OpInputInit.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Input().Init(ctx)
	}},
	protocol.OpInputShutdown.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Input().Shutdown(ctx)
	}},
	protocol.OpInputRunFrame.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		in := b.Input()
		if err := in.RunFrame(ctx); err != nil {
			return nil, err
		}
		var slots []map[string]any
		for i := 0; i < protocol.InputMaxCount; i++ {
			h := in.GamepadSlot(i)
			if h == 0 {
				continue
			}
			pad, _ := in.QueryGamepad(i)
			slots = append(slots, map[string]any{"slot": i, "input": h, "gamepad": pad})
		}
		return slots, nil
	}},
	protocol.OpInputGetConnectedControllers.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Input().ConnectedControllers(ctx)
	}},
	protocol.OpInputGetControllerForGamepadIndex.String(): {"<index>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().ControllerForGamepadIndex(ctx, a.int32(0))
	}},
	protocol.OpInputGetGamepadIndexForController.String(): {"<input>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().GamepadIndexForController(ctx, a.uint64(0))
	}},
	protocol.OpInputGetInputTypeForHandle.String(): {"<input>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().InputTypeForHandle(ctx, a.uint64(0))
	}},
	protocol.OpInputGetActionSetHandle.String(): {"<name>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().ActionSetHandle(ctx, a.str(0))
	}},
	protocol.OpInputActivateActionSet.String(): {"<input> <set>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Input().ActivateActionSet(ctx, a.uint64(0), a.uint64(1))
	}},
	protocol.OpInputGetCurrentActionSet.String(): {"<input>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().CurrentActionSet(ctx, a.uint64(0))
	}},
	protocol.OpInputActivateActionSetLayer.String(): {"<input> <layer>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Input().ActivateActionSetLayer(ctx, a.uint64(0), a.uint64(1))
	}},
	protocol.OpInputDeactivateActionSetLayer.String(): {"<input> <layer>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Input().DeactivateActionSetLayer(ctx, a.uint64(0), a.uint64(1))
	}},
	protocol.OpInputDeactivateAllActionSetLayers.String(): {"<input>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Input().DeactivateAllActionSetLayers(ctx, a.uint64(0))
	}},
	protocol.OpInputGetActiveActionSetLayers.String(): {"<input>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().ActiveActionSetLayers(ctx, a.uint64(0))
	}},
	protocol.OpInputGetDigitalActionHandle.String(): {"<name>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().DigitalActionHandle(ctx, a.str(0))
	}},
	protocol.OpInputGetAnalogActionHandle.String(): {"<name>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().AnalogActionHandle(ctx, a.str(0))
	}},
	protocol.OpInputGetDigitalActionOrigins.String(): {"<input> <set> <action>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().DigitalActionOrigins(ctx, a.uint64(0), a.uint64(1), a.uint64(2))
	}},
	protocol.OpInputGetAnalogActionOrigins.String(): {"<input> <set> <action>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().AnalogActionOrigins(ctx, a.uint64(0), a.uint64(1), a.uint64(2))
	}},
	protocol.OpInputGetStringForActionOrigin.String(): {"<origin>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return text(b.Input().StringForActionOrigin(ctx, a.uint32(0)))
	}},
	protocol.OpInputGetGlyphPNGForActionOrigin.String(): {"<origin> <size> <style>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return text(b.Input().GlyphPNGForActionOrigin(ctx, a.uint32(0), a.uint32(1), a.uint32(2)))
	}},
	protocol.OpInputGetGlyphSVGForActionOrigin.String(): {"<origin> <style>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return text(b.Input().GlyphSVGForActionOrigin(ctx, a.uint32(0), a.uint32(1)))
	}},
	protocol.OpInputTranslateActionOrigin.String(): {"<input-type> <origin>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().TranslateActionOrigin(ctx, protocol.InputType(a.int32(0)), a.uint32(1))
	}},
	protocol.OpInputSetInputActionManifestFilePath.String(): {"<path>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().SetInputActionManifestFilePath(ctx, a.str(0))
	}},
	protocol.OpInputSetLEDColor.String(): {"<input> <r> <g> <b> [flags]", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		args := protocol.LEDColorArgs{Input: a.uint64(0), R: a.uint8(1), G: a.uint8(2), B: a.uint8(3)}
		if a.has(4) {
			args.Flags = a.uint32(4)
		}
		return nil, b.Input().SetLEDColor(ctx, args)
	}},
	protocol.OpInputShowBindingPanel.String(): {"<input>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Input().ShowBindingPanel(ctx, a.uint64(0))
	}},
	protocol.OpInputStopAnalogActionMomentum.String(): {"<input> <action>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Input().StopAnalogActionMomentum(ctx, a.uint64(0), a.uint64(1))
	}},
	protocol.OpInputTriggerVibration.String(): {"<input> <left> <right>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Input().TriggerVibration(ctx, a.uint64(0), a.uint16(1), a.uint16(2))
	}},
	protocol.OpInputTriggerVibrationExtended.String(): {"<input> <left> <right> <left-trigger> <right-trigger>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Input().TriggerVibrationExtended(ctx, protocol.VibrationArgs{
			Input:        a.uint64(0),
			Left:         a.uint16(1),
			Right:        a.uint16(2),
			LeftTrigger:  a.uint16(3),
			RightTrigger: a.uint16(4),
		})
	}},
	protocol.OpInputTriggerSimpleHapticEvent.String(): {"<input> <location> <intensity> <gain-db> <other-intensity> <other-gain-db>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Input().TriggerSimpleHapticEvent(ctx, protocol.HapticEventArgs{
			Input:          a.uint64(0),
			Location:       a.uint32(1),
			Intensity:      a.uint8(2),
			GainDB:         a.int8(3),
			OtherIntensity: a.uint8(4),
			OtherGainDB:    a.int8(5),
		})
	}},
}

func init() {
	for name, op := range inputOperations {
		operations[name] = op
	}
}
