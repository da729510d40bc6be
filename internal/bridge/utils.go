package bridge

import (
	"context"

	"github.com/GriffinCanCode/mist/internal/arena"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
)

// Utils covers device state, overlays and the on-screen keyboard.
type Utils struct{ b *Bridge }

// Utils returns the utils client.
func (b *Bridge) Utils() Utils { return Utils{b} }

func (u Utils) AppID(ctx context.Context) (uint32, error) {
	return call[uint32](ctx, u.b, protocol.OpUtilsGetAppID, nil)
}

// CurrentBatteryPower returns a percentage, or 255 on AC power.
func (u Utils) CurrentBatteryPower(ctx context.Context) (uint8, error) {
	return call[uint8](ctx, u.b, protocol.OpUtilsGetCurrentBatteryPower, nil)
}

// EnteredGamepadTextInput returns the text submitted through the gamepad
// keyboard. The text can be fetched once; without one the call fails with
// NoGamepadTextEntered.
func (u Utils) EnteredGamepadTextInput(ctx context.Context) (arena.Handle, error) {
	v, err := call[protocol.OptionalString](ctx, u.b, protocol.OpUtilsGetEnteredGamepadTextInput, nil)
	if err != nil {
		return arena.Handle{}, err
	}
	if v.Value == nil {
		return arena.Handle{}, u.b.fail(result.Utils(result.NoGamepadTextEntered, "no gamepad text has been entered"))
	}
	return u.b.strings.Write(arena.SlotEnteredGamepadText, v.Value), nil
}

func (u Utils) IsOverlayEnabled(ctx context.Context) (bool, error) {
	return call[bool](ctx, u.b, protocol.OpUtilsIsOverlayEnabled, nil)
}

func (u Utils) IsSteamInBigPictureMode(ctx context.Context) (bool, error) {
	return call[bool](ctx, u.b, protocol.OpUtilsIsSteamInBigPictureMode, nil)
}

func (u Utils) IsSteamRunningInVR(ctx context.Context) (bool, error) {
	return call[bool](ctx, u.b, protocol.OpUtilsIsSteamRunningInVR, nil)
}

func (u Utils) IsVRHeadsetStreamingEnabled(ctx context.Context) (bool, error) {
	return call[bool](ctx, u.b, protocol.OpUtilsIsVRHeadsetStreamingEnabled, nil)
}

func (u Utils) IsSteamRunningOnSteamDeck(ctx context.Context) (bool, error) {
	return call[bool](ctx, u.b, protocol.OpUtilsIsSteamRunningOnSteamDeck, nil)
}

func (u Utils) SetVRHeadsetStreamingEnabled(ctx context.Context, enabled bool) error {
	return u.b.invoke(ctx, protocol.OpUtilsSetVRHeadsetStreamingEnabled, protocol.BoolArgs{Value: enabled}, nil)
}

// ShowGamepadTextInput opens the big picture keyboard. The result arrives as
// a GamepadTextInputDismissed event.
func (u Utils) ShowGamepadTextInput(ctx context.Context, args protocol.GamepadTextInputArgs) (bool, error) {
	if err := u.b.checkStrings("gamepad text input", args.Description, args.ExistingText); err != nil {
		return false, err
	}
	return call[bool](ctx, u.b, protocol.OpUtilsShowGamepadTextInput, args)
}

// ShowFloatingGamepadTextInput opens the floating keyboard over the given
// field. Dismissal arrives as a FloatingGamepadTextInputDismissed event.
func (u Utils) ShowFloatingGamepadTextInput(ctx context.Context, args protocol.FloatingGamepadTextInputArgs) (bool, error) {
	return call[bool](ctx, u.b, protocol.OpUtilsShowFloatingGamepadTextInput, args)
}

func (u Utils) SetGameLauncherMode(ctx context.Context, enabled bool) error {
	return u.b.invoke(ctx, protocol.OpUtilsSetGameLauncherMode, protocol.BoolArgs{Value: enabled}, nil)
}

func (u Utils) StartVRDashboard(ctx context.Context) error {
	return u.b.invoke(ctx, protocol.OpUtilsStartVRDashboard, nil, nil)
}
