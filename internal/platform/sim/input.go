package sim

import (
	"context"
	"fmt"
	"slices"

	"github.com/GriffinCanCode/mist/internal/helper"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
)

var _ helper.InputPlatform = (*Platform)(nil)

// originNames are the display names of the face buttons. Other origins get a
// generic name.
var originNames = map[uint32]string{
	1: "A Button",
	2: "B Button",
	3: "X Button",
	4: "Y Button",
}

// inputState is the controller side of the simulation. Guarded by
// Platform.mu.
type inputState struct {
	initialized bool
	manifest    string

	// sampled holds the action handles RunFrame reports, in lookup order.
	sampledDigital []uint64
	sampledAnalog  []uint64

	current map[uint64]uint64
	layers  map[uint64][]uint64
	leds    map[uint64][3]uint8
	rumble  map[uint64][2]uint16
}

func newInputState() inputState {
	return inputState{
		current: make(map[uint64]uint64),
		layers:  make(map[uint64][]uint64),
		leds:    make(map[uint64][3]uint8),
		rumble:  make(map[uint64][2]uint16),
	}
}

// inputReady must be called with mu held.
func (p *Platform) inputReady() error {
	if !p.input.initialized {
		return result.Input(result.InputNotInitialized, "input has not been initialized")
	}
	return nil
}

// controller must be called with mu held.
func (p *Platform) controller(handle uint64) (*Controller, int) {
	for i := range p.fx.Input.Controllers {
		if p.fx.Input.Controllers[i].Handle == handle {
			return &p.fx.Input.Controllers[i], i
		}
	}
	return nil, -1
}

// forControllers runs fn for handle, or for every controller when handle is
// InputHandleAllControllers. Must be called with mu held.
func (p *Platform) forControllers(handle uint64, fn func(c *Controller)) {
	for i := range p.fx.Input.Controllers {
		c := &p.fx.Input.Controllers[i]
		if handle == protocol.InputHandleAllControllers || c.Handle == handle {
			fn(c)
		}
	}
}

func lookup(names []string, name string) uint64 {
	if i := slices.Index(names, name); i >= 0 {
		return uint64(i + 1)
	}
	return 0
}

func actionName(names []string, handle uint64) (string, bool) {
	if handle == 0 || handle > uint64(len(names)) {
		return "", false
	}
	return names[handle-1], true
}

func (p *Platform) InputInit(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fx.Input.StateError != "" {
		return false, result.Input(result.ShmemError, p.fx.Input.StateError)
	}
	if p.fx.Input.Unsupported {
		return false, nil
	}
	p.input.initialized = true
	return true, nil
}

// InputShutdown forgets sampled actions and action set state.
func (p *Platform) InputShutdown(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	was := p.input.initialized
	manifest := p.input.manifest
	p.input = newInputState()
	p.input.manifest = manifest
	return was, nil
}

func (p *Platform) RunFrame(context.Context) (protocol.InputFrame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return protocol.InputFrame{}, err
	}

	in := p.fx.Input
	frame := protocol.InputFrame{Controllers: make([]protocol.ControllerState, 0, len(in.Controllers))}
	for _, c := range in.Controllers {
		st := protocol.ControllerState{
			Handle: c.Handle,
			Type:   protocol.InputType(c.Type),
			Motion: protocol.MotionData{RotQuatX: c.Tilt[0], RotQuatY: c.Tilt[1], RotQuatZ: c.Tilt[2], RotQuatW: c.Tilt[3]},
		}
		if st.Type == protocol.InputTypeUnknown {
			frame.Controllers = append(frame.Controllers, st)
			continue
		}

		for _, h := range p.input.sampledDigital {
			n, _ := actionName(in.DigitalActions, h)
			pressed, bound := c.Buttons[n]
			if st.Digital == nil {
				st.Digital = make(map[uint64]protocol.DigitalActionData)
			}
			st.Digital[h] = protocol.DigitalActionData{State: pressed, Active: bound}
		}
		for _, h := range p.input.sampledAnalog {
			n, _ := actionName(in.AnalogActions, h)
			stick, bound := c.Sticks[n]
			if st.Analog == nil {
				st.Analog = make(map[uint64]protocol.AnalogActionData)
			}
			data := protocol.AnalogActionData{X: stick.X, Y: stick.Y, Active: bound}
			if bound {
				data.Mode = protocol.SourceModeJoystickMove
			}
			st.Analog[h] = data
		}
		frame.Controllers = append(frame.Controllers, st)
	}
	return frame, nil
}

func (p *Platform) ConnectedControllers(context.Context) ([]uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return nil, err
	}
	handles := make([]uint64, 0, len(p.fx.Input.Controllers))
	for _, c := range p.fx.Input.Controllers {
		handles = append(handles, c.Handle)
	}
	return handles, nil
}

// ControllerForGamepadIndex returns 0 when no controller sits at index.
func (p *Platform) ControllerForGamepadIndex(_ context.Context, index int32) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return 0, err
	}
	if index < 0 || int(index) >= len(p.fx.Input.Controllers) {
		return 0, nil
	}
	return p.fx.Input.Controllers[index].Handle, nil
}

// GamepadIndexForController returns -1 for unknown controllers.
func (p *Platform) GamepadIndexForController(_ context.Context, input uint64) (int32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return 0, err
	}
	_, i := p.controller(input)
	return int32(i), nil
}

func (p *Platform) InputTypeForHandle(_ context.Context, input uint64) (protocol.InputType, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return 0, err
	}
	c, _ := p.controller(input)
	if c == nil {
		return protocol.InputTypeUnknown, nil
	}
	return protocol.InputType(c.Type), nil
}

func (p *Platform) ActionSetHandle(_ context.Context, name string) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return 0, err
	}
	return lookup(p.fx.Input.ActionSets, name), nil
}

// ActivateActionSet switches the set and drops the active layers.
func (p *Platform) ActivateActionSet(_ context.Context, input, set uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return err
	}
	if _, ok := actionName(p.fx.Input.ActionSets, set); !ok {
		return nil
	}
	p.forControllers(input, func(c *Controller) {
		p.input.current[c.Handle] = set
		delete(p.input.layers, c.Handle)
	})
	return nil
}

func (p *Platform) CurrentActionSet(_ context.Context, input uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return 0, err
	}
	return p.input.current[input], nil
}

func (p *Platform) ActivateActionSetLayer(_ context.Context, input, layer uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return err
	}
	if _, ok := actionName(p.fx.Input.ActionSets, layer); !ok {
		return nil
	}
	p.forControllers(input, func(c *Controller) {
		layers := p.input.layers[c.Handle]
		if !slices.Contains(layers, layer) && len(layers) < protocol.InputMaxActiveLayers {
			p.input.layers[c.Handle] = append(layers, layer)
		}
	})
	return nil
}

func (p *Platform) DeactivateActionSetLayer(_ context.Context, input, layer uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return err
	}
	p.forControllers(input, func(c *Controller) {
		p.input.layers[c.Handle] = slices.DeleteFunc(p.input.layers[c.Handle], func(h uint64) bool { return h == layer })
	})
	return nil
}

func (p *Platform) DeactivateAllActionSetLayers(_ context.Context, input uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return err
	}
	p.forControllers(input, func(c *Controller) {
		delete(p.input.layers, c.Handle)
	})
	return nil
}

func (p *Platform) ActiveActionSetLayers(_ context.Context, input uint64) ([]uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return nil, err
	}
	return slices.Clone(p.input.layers[input]), nil
}

func (p *Platform) DigitalActionHandle(_ context.Context, name string) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return 0, err
	}
	h := lookup(p.fx.Input.DigitalActions, name)
	if h != 0 && !slices.Contains(p.input.sampledDigital, h) {
		p.input.sampledDigital = append(p.input.sampledDigital, h)
	}
	return h, nil
}

func (p *Platform) AnalogActionHandle(_ context.Context, name string) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return 0, err
	}
	h := lookup(p.fx.Input.AnalogActions, name)
	if h != 0 && !slices.Contains(p.input.sampledAnalog, h) {
		p.input.sampledAnalog = append(p.input.sampledAnalog, h)
	}
	return h, nil
}

func (p *Platform) DigitalActionOrigins(_ context.Context, input, _ uint64, action uint64) ([]uint32, error) {
	return p.origins(input, p.fx.Input.DigitalActions, action)
}

func (p *Platform) AnalogActionOrigins(_ context.Context, input, _ uint64, action uint64) ([]uint32, error) {
	return p.origins(input, p.fx.Input.AnalogActions, action)
}

func (p *Platform) origins(input uint64, names []string, action uint64) ([]uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return nil, err
	}
	c, _ := p.controller(input)
	n, ok := actionName(names, action)
	if c == nil || !ok {
		return nil, nil
	}
	return slices.Clone(c.Origins[n]), nil
}

func (p *Platform) StringForActionOrigin(_ context.Context, origin uint32) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return "", err
	}
	if n, ok := originNames[origin]; ok {
		return n, nil
	}
	return fmt.Sprintf("Origin %d", origin), nil
}

func (p *Platform) GlyphPNGForActionOrigin(_ context.Context, origin, size, style uint32) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return "", err
	}
	return fmt.Sprintf("/glyphs/png/%d/%d_%d.png", size, origin, style), nil
}

func (p *Platform) GlyphSVGForActionOrigin(_ context.Context, origin, style uint32) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return "", err
	}
	return fmt.Sprintf("/glyphs/svg/%d_%d.svg", origin, style), nil
}

// TranslateActionOrigin keeps the origin; the simulation has a single origin
// namespace.
func (p *Platform) TranslateActionOrigin(_ context.Context, _ protocol.InputType, origin uint32) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return 0, err
	}
	return origin, nil
}

func (p *Platform) SetInputActionManifestFilePath(_ context.Context, path string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if path == "" {
		return false, nil
	}
	p.input.manifest = path
	return true, nil
}

func (p *Platform) SetLEDColor(_ context.Context, args protocol.LEDColorArgs) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return err
	}
	p.forControllers(args.Input, func(c *Controller) {
		p.input.leds[c.Handle] = [3]uint8{args.R, args.G, args.B}
	})
	return nil
}

// ShowBindingPanel reports whether the overlay could be opened.
func (p *Platform) ShowBindingPanel(_ context.Context, input uint64) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return false, err
	}
	c, _ := p.controller(input)
	return c != nil && p.fx.Overlay, nil
}

func (p *Platform) StopAnalogActionMomentum(context.Context, uint64, uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.inputReady()
}

func (p *Platform) TriggerVibration(_ context.Context, args protocol.VibrationArgs) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.inputReady(); err != nil {
		return err
	}
	p.forControllers(args.Input, func(c *Controller) {
		p.input.rumble[c.Handle] = [2]uint16{args.Left, args.Right}
	})
	return nil
}

// TriggerVibrationExtended records the motor speeds; the simulation has no
// trigger motors.
func (p *Platform) TriggerVibrationExtended(ctx context.Context, args protocol.VibrationArgs) error {
	return p.TriggerVibration(ctx, args)
}

func (p *Platform) TriggerSimpleHapticEvent(context.Context, protocol.HapticEventArgs) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.inputReady()
}

// Input inspection helpers

// ConnectController plugs c in. A controller with the same handle is
// replaced.
func (p *Platform) ConnectController(c Controller) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cur, _ := p.controller(c.Handle); cur != nil {
		*cur = c
		return
	}
	p.fx.Input.Controllers = append(p.fx.Input.Controllers, c)
}

// DisconnectController unplugs the controller with handle.
func (p *Platform) DisconnectController(handle uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fx.Input.Controllers = slices.DeleteFunc(p.fx.Input.Controllers, func(c Controller) bool {
		return c.Handle == handle
	})
}

// LEDColor returns the last color set on the controller.
func (p *Platform) LEDColor(handle uint64) [3]uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.input.leds[handle]
}

// Rumble returns the last left and right motor speeds of the controller.
func (p *Platform) Rumble(handle uint64) [2]uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.input.rumble[handle]
}

// Manifest returns the action manifest path set by the caller.
func (p *Platform) Manifest() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.input.manifest
}
