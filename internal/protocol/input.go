package protocol

import "math"

// Controller input limits.
const (
	InputMaxCount          = 16
	InputMaxAnalogActions  = 16
	InputMaxDigitalActions = 128
	InputMaxOrigins        = 8
	InputMaxActiveLayers   = 16

	// InputHandleAllControllers addresses every connected controller.
	InputHandleAllControllers uint64 = math.MaxUint64
)

// InputType is the kind of a connected controller.
type InputType int32

const (
	InputTypeUnknown InputType = iota
	InputTypeSteamController
	InputTypeXBox360Controller
	InputTypeXBoxOneController
	InputTypeGenericGamepad
	InputTypePS4Controller
	InputTypeAppleMFiController
	InputTypeAndroidController
	InputTypeSwitchJoyConPair
	InputTypeSwitchJoyConSingle
	InputTypeSwitchProController
	InputTypeMobileTouch
	InputTypePS3Controller
	InputTypePS5Controller
	InputTypeSteamDeckController
)

// SourceMode is how an analog action is bound on the controller.
type SourceMode int32

const (
	SourceModeNone SourceMode = iota
	SourceModeDpad
	SourceModeButtons
	SourceModeFourButtons
	SourceModeAbsoluteMouse
	SourceModeRelativeMouse
	SourceModeJoystickMove
	SourceModeJoystickMouse
	SourceModeJoystickCamera
	SourceModeScrollWheel
	SourceModeTrigger
)

type InputInitArgs struct {
	// ExplicitlyCallRunFrame is always true; frames are pulled by the caller.
	ExplicitlyCallRunFrame bool `cbor:"1,keyasint"`
}

type InputHandleArgs struct {
	Input uint64 `cbor:"1,keyasint"`
}

type GamepadIndexArgs struct {
	Index int32 `cbor:"1,keyasint"`
}

type ActionNameArgs struct {
	Name string `cbor:"1,keyasint"`
}

// ActionSetArgs addresses an action set or an action set layer.
type ActionSetArgs struct {
	Input     uint64 `cbor:"1,keyasint"`
	ActionSet uint64 `cbor:"2,keyasint"`
}

type ActionOriginsArgs struct {
	Input     uint64 `cbor:"1,keyasint"`
	ActionSet uint64 `cbor:"2,keyasint"`
	Action    uint64 `cbor:"3,keyasint"`
}

type AnalogActionArgs struct {
	Input  uint64 `cbor:"1,keyasint"`
	Action uint64 `cbor:"2,keyasint"`
}

type OriginArgs struct {
	Origin uint32 `cbor:"1,keyasint"`
}

type GlyphArgs struct {
	Origin uint32 `cbor:"1,keyasint"`
	Size   uint32 `cbor:"2,keyasint"`
	Style  uint32 `cbor:"3,keyasint"`
}

type TranslateOriginArgs struct {
	Destination InputType `cbor:"1,keyasint"`
	Origin      uint32    `cbor:"2,keyasint"`
}

type ManifestArgs struct {
	Path string `cbor:"1,keyasint"`
}

type LEDColorArgs struct {
	Input uint64 `cbor:"1,keyasint"`
	R     uint8  `cbor:"2,keyasint"`
	G     uint8  `cbor:"3,keyasint"`
	B     uint8  `cbor:"4,keyasint"`
	Flags uint32 `cbor:"5,keyasint"`
}

// VibrationArgs drives the rumble motors. The trigger speeds are only used by
// the extended call.
type VibrationArgs struct {
	Input        uint64 `cbor:"1,keyasint"`
	Left         uint16 `cbor:"2,keyasint"`
	Right        uint16 `cbor:"3,keyasint"`
	LeftTrigger  uint16 `cbor:"4,keyasint"`
	RightTrigger uint16 `cbor:"5,keyasint"`
}

type HapticEventArgs struct {
	Input          uint64 `cbor:"1,keyasint"`
	Location       uint32 `cbor:"2,keyasint"`
	Intensity      uint8  `cbor:"3,keyasint"`
	GainDB         int8   `cbor:"4,keyasint"`
	OtherIntensity uint8  `cbor:"5,keyasint"`
	OtherGainDB    int8   `cbor:"6,keyasint"`
}

type InputHandles struct {
	Handles []uint64 `cbor:"1,keyasint"`
}

type ActionOrigins struct {
	Origins []uint32 `cbor:"1,keyasint"`
}

type DigitalActionData struct {
	State  bool `cbor:"1,keyasint"`
	Active bool `cbor:"2,keyasint"`
}

type AnalogActionData struct {
	Mode   SourceMode `cbor:"1,keyasint"`
	X      float32    `cbor:"2,keyasint"`
	Y      float32    `cbor:"3,keyasint"`
	Active bool       `cbor:"4,keyasint"`
}

type MotionData struct {
	RotQuatX  float32 `cbor:"1,keyasint"`
	RotQuatY  float32 `cbor:"2,keyasint"`
	RotQuatZ  float32 `cbor:"3,keyasint"`
	RotQuatW  float32 `cbor:"4,keyasint"`
	PosAccelX float32 `cbor:"5,keyasint"`
	PosAccelY float32 `cbor:"6,keyasint"`
	PosAccelZ float32 `cbor:"7,keyasint"`
	RotVelX   float32 `cbor:"8,keyasint"`
	RotVelY   float32 `cbor:"9,keyasint"`
	RotVelZ   float32 `cbor:"10,keyasint"`
}

// ControllerState is one controller as sampled by a frame. Only actions whose
// handles were requested through the handle lookups are sampled.
type ControllerState struct {
	Handle  uint64                       `cbor:"1,keyasint"`
	Type    InputType                    `cbor:"2,keyasint"`
	Digital map[uint64]DigitalActionData `cbor:"3,keyasint,omitempty"`
	Analog  map[uint64]AnalogActionData  `cbor:"4,keyasint,omitempty"`
	Motion  MotionData                   `cbor:"5,keyasint"`
}

// InputFrame is the reply to a run frame call.
type InputFrame struct {
	Controllers []ControllerState `cbor:"1,keyasint"`
}
