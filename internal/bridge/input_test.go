package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/mist/internal/platform/sim"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
)

const deck = uint64(0x1001)

func startInput(t *testing.T, fx sim.Fixture) (*Bridge, *sim.Platform) {
	t.Helper()

	b, l := startBridge(t, fx)
	ok, err := b.Input().Init(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return b, l.Last().Sim()
}

func TestInputRequiresInit(t *testing.T) {
	ctx := context.Background()
	b, _ := startBridge(t, sim.DefaultFixture())
	in := b.Input()

	assert.ErrorIs(t, in.RunFrame(ctx), result.ErrInputNotInitialized)
	assert.Contains(t, b.LastError(), "Input/NotInitialized")

	_, err := in.DigitalActionData(deck, 1)
	assert.ErrorIs(t, err, result.ErrInputNotInitialized)
	_, err = in.AnalogActionData(deck, 1)
	assert.ErrorIs(t, err, result.ErrInputNotInitialized)
	_, err = in.MotionData(deck)
	assert.ErrorIs(t, err, result.ErrInputNotInitialized)
	_, err = in.QueryGamepad(0)
	assert.ErrorIs(t, err, result.ErrInputNotInitialized)

	// Remote queries are refused by the helper
	_, err = in.ConnectedControllers(ctx)
	assert.ErrorIs(t, err, result.ErrInputNotInitialized)
	_, err = in.ActionSetHandle(ctx, "ship_controls")
	assert.ErrorIs(t, err, result.ErrInputNotInitialized)

	ok, err := in.Init(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, in.RunFrame(ctx))

	ok, err = in.Shutdown(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.ErrorIs(t, in.RunFrame(ctx), result.ErrInputNotInitialized)
}

func TestInputInitFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported", func(t *testing.T) {
		fx := sim.DefaultFixture()
		fx.Input.Unsupported = true
		b, _ := startBridge(t, fx)

		ok, err := b.Input().Init(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.ErrorIs(t, b.Input().RunFrame(ctx), result.ErrInputNotInitialized)
	})

	t.Run("frame state", func(t *testing.T) {
		fx := sim.DefaultFixture()
		fx.Input.StateError = "frame state unavailable"
		b, _ := startBridge(t, fx)

		_, err := b.Input().Init(ctx)
		assert.ErrorIs(t, err, result.ErrInputSharedMemory)
		assert.Contains(t, b.LastError(), "frame state unavailable")
		assert.ErrorIs(t, b.Input().RunFrame(ctx), result.ErrInputNotInitialized)
	})
}

func TestInputActionData(t *testing.T) {
	ctx := context.Background()
	b, _ := startInput(t, sim.DefaultFixture())
	in := b.Input()

	fire, err := in.DigitalActionHandle(ctx, "fire_lasers")
	require.NoError(t, err)
	pause, err := in.DigitalActionHandle(ctx, "pause_menu")
	require.NoError(t, err)
	thrust, err := in.AnalogActionHandle(ctx, "thrust")
	require.NoError(t, err)
	missing, err := in.DigitalActionHandle(ctx, "warp_drive")
	require.NoError(t, err)
	assert.Zero(t, missing)

	// Data reads the last frame, and no frame has run yet
	d, err := in.DigitalActionData(deck, fire)
	require.NoError(t, err)
	assert.Equal(t, protocol.DigitalActionData{}, d)

	require.NoError(t, in.RunFrame(ctx))

	d, err = in.DigitalActionData(deck, fire)
	require.NoError(t, err)
	assert.Equal(t, protocol.DigitalActionData{State: true, Active: true}, d)

	d, err = in.DigitalActionData(deck, pause)
	require.NoError(t, err)
	assert.Equal(t, protocol.DigitalActionData{State: false, Active: true}, d)

	a, err := in.AnalogActionData(deck, thrust)
	require.NoError(t, err)
	assert.Equal(t, protocol.AnalogActionData{Mode: protocol.SourceModeJoystickMove, X: 0.5, Y: -0.25, Active: true}, a)

	m, err := in.MotionData(deck)
	require.NoError(t, err)
	assert.Equal(t, float32(1), m.RotQuatW)

	// Unknown controllers read as zero
	d, err = in.DigitalActionData(0x9999, fire)
	require.NoError(t, err)
	assert.Equal(t, protocol.DigitalActionData{}, d)
}

func TestInputGamepadSlots(t *testing.T) {
	ctx := context.Background()
	b, platform := startInput(t, sim.DefaultFixture())
	in := b.Input()

	require.NoError(t, in.RunFrame(ctx))
	ok, err := in.QueryGamepad(0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, deck, in.GamepadSlot(0))

	platform.ConnectController(sim.Controller{Handle: 0x2002, Type: int32(protocol.InputTypePS5Controller)})
	platform.ConnectController(sim.Controller{Handle: 0x3003})
	require.NoError(t, in.RunFrame(ctx))
	assert.Equal(t, uint64(0x2002), in.GamepadSlot(1))
	assert.Equal(t, uint64(0x3003), in.GamepadSlot(2))

	// A controller of unknown type holds a slot but is not a gamepad
	ok, err = in.QueryGamepad(2)
	require.NoError(t, err)
	assert.False(t, ok)

	// Slots stay put when an earlier controller leaves
	platform.DisconnectController(deck)
	require.NoError(t, in.RunFrame(ctx))
	assert.Zero(t, in.GamepadSlot(0))
	assert.Equal(t, uint64(0x2002), in.GamepadSlot(1))

	platform.ConnectController(sim.Controller{Handle: 0x4004, Type: int32(protocol.InputTypeXBoxOneController)})
	require.NoError(t, in.RunFrame(ctx))
	assert.Equal(t, uint64(0x4004), in.GamepadSlot(0))

	ok, err = in.QueryGamepad(protocol.InputMaxCount)
	require.NoError(t, err)
	assert.False(t, ok)

	handles, err := in.ConnectedControllers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{0x2002, 0x3003, 0x4004}, handles)
}

func TestInputActionSets(t *testing.T) {
	ctx := context.Background()
	b, _ := startInput(t, sim.DefaultFixture())
	in := b.Input()

	ship, err := in.ActionSetHandle(ctx, "ship_controls")
	require.NoError(t, err)
	menu, err := in.ActionSetHandle(ctx, "menu_controls")
	require.NoError(t, err)
	require.NotZero(t, ship)
	require.NotEqual(t, ship, menu)

	require.NoError(t, in.ActivateActionSet(ctx, protocol.InputHandleAllControllers, ship))
	current, err := in.CurrentActionSet(ctx, deck)
	require.NoError(t, err)
	assert.Equal(t, ship, current)

	require.NoError(t, in.ActivateActionSetLayer(ctx, deck, menu))
	require.NoError(t, in.ActivateActionSetLayer(ctx, deck, menu))
	layers, err := in.ActiveActionSetLayers(ctx, deck)
	require.NoError(t, err)
	assert.Equal(t, []uint64{menu}, layers)

	require.NoError(t, in.DeactivateActionSetLayer(ctx, deck, menu))
	layers, err = in.ActiveActionSetLayers(ctx, deck)
	require.NoError(t, err)
	assert.Empty(t, layers)

	require.NoError(t, in.ActivateActionSetLayer(ctx, deck, menu))
	require.NoError(t, in.DeactivateAllActionSetLayers(ctx, deck))
	layers, err = in.ActiveActionSetLayers(ctx, deck)
	require.NoError(t, err)
	assert.Empty(t, layers)
}

func TestInputOriginsAndGlyphs(t *testing.T) {
	ctx := context.Background()
	b, _ := startInput(t, sim.DefaultFixture())
	in := b.Input()

	ship, err := in.ActionSetHandle(ctx, "ship_controls")
	require.NoError(t, err)
	fire, err := in.DigitalActionHandle(ctx, "fire_lasers")
	require.NoError(t, err)
	thrust, err := in.AnalogActionHandle(ctx, "thrust")
	require.NoError(t, err)

	origins, err := in.DigitalActionOrigins(ctx, deck, ship, fire)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, origins)

	origins, err = in.AnalogActionOrigins(ctx, deck, ship, thrust)
	require.NoError(t, err)
	assert.Equal(t, []uint32{20}, origins)

	name, err := in.StringForActionOrigin(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A Button", name.String())

	png, err := in.GlyphPNGForActionOrigin(ctx, 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "/glyphs/png/2/1_0.png", png.String())

	svg, err := in.GlyphSVGForActionOrigin(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "/glyphs/svg/1_0.svg", svg.String())

	// Glyph slots are independent of the origin name slot
	assert.Equal(t, "A Button", name.String())

	translated, err := in.TranslateActionOrigin(ctx, protocol.InputTypePS5Controller, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), translated)

	typ, err := in.InputTypeForHandle(ctx, deck)
	require.NoError(t, err)
	assert.Equal(t, protocol.InputTypeSteamDeckController, typ)

	idx, err := in.GamepadIndexForController(ctx, deck)
	require.NoError(t, err)
	assert.Equal(t, int32(0), idx)

	handle, err := in.ControllerForGamepadIndex(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, deck, handle)
}

func TestInputOutputs(t *testing.T) {
	ctx := context.Background()
	b, platform := startInput(t, sim.DefaultFixture())
	in := b.Input()

	require.NoError(t, in.SetLEDColor(ctx, protocol.LEDColorArgs{Input: deck, R: 255, G: 16, B: 8}))
	assert.Equal(t, [3]uint8{255, 16, 8}, platform.LEDColor(deck))

	require.NoError(t, in.TriggerVibration(ctx, deck, 1000, 2000))
	assert.Equal(t, [2]uint16{1000, 2000}, platform.Rumble(deck))

	require.NoError(t, in.TriggerVibrationExtended(ctx, protocol.VibrationArgs{Input: deck, Left: 10, Right: 20, LeftTrigger: 30}))
	assert.Equal(t, [2]uint16{10, 20}, platform.Rumble(deck))

	require.NoError(t, in.TriggerSimpleHapticEvent(ctx, protocol.HapticEventArgs{Input: deck, Intensity: 3}))
	require.NoError(t, in.StopAnalogActionMomentum(ctx, deck, 1))

	shown, err := in.ShowBindingPanel(ctx, deck)
	require.NoError(t, err)
	assert.True(t, shown)

	ok, err := in.SetInputActionManifestFilePath(ctx, "/games/spacewar/actions.vdf")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/games/spacewar/actions.vdf", platform.Manifest())

	_, err = in.SetInputActionManifestFilePath(ctx, "\xff")
	assert.ErrorIs(t, err, result.ErrInvalidString)
}

func TestDeinitResetsInput(t *testing.T) {
	ctx := context.Background()
	b, _ := startInput(t, sim.DefaultFixture())

	require.NoError(t, b.Input().RunFrame(ctx))
	assert.Equal(t, deck, b.Input().GamepadSlot(0))

	require.NoError(t, b.Deinit(ctx))
	assert.Zero(t, b.Input().GamepadSlot(0))

	require.NoError(t, b.Init(ctx))
	assert.ErrorIs(t, b.Input().RunFrame(ctx), result.ErrInputNotInitialized)
}
