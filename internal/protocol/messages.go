package protocol

// Request arguments. Operations without arguments send an empty payload.

type AppIDArgs struct {
	AppID uint32 `cbor:"1,keyasint"`
}

type DlcIndexArgs struct {
	Index int32 `cbor:"1,keyasint"`
}

type InstalledDepotsArgs struct {
	AppID uint32 `cbor:"1,keyasint"`
	Max   uint32 `cbor:"2,keyasint"`
}

type KeyArgs struct {
	Key string `cbor:"1,keyasint"`
}

type BoolArgs struct {
	Value bool `cbor:"1,keyasint"`
}

// RichPresenceArgs sets Key to Value. A nil Value deletes the key.
type RichPresenceArgs struct {
	Key   string  `cbor:"1,keyasint"`
	Value *string `cbor:"2,keyasint"`
}

type MarkContentCorruptArgs struct {
	MissingFilesOnly bool `cbor:"1,keyasint"`
}

type FileArgs struct {
	Name string `cbor:"1,keyasint"`
}

type FileWriteArgs struct {
	Name string `cbor:"1,keyasint"`
	Data []byte `cbor:"2,keyasint"`
}

// GamepadTextInputMode selects the on-screen keyboard input mode.
type GamepadTextInputMode uint8

const (
	GamepadTextInputModeNormal   GamepadTextInputMode = 0
	GamepadTextInputModePassword GamepadTextInputMode = 1
)

// GamepadTextInputLineMode selects single or multi line entry.
type GamepadTextInputLineMode uint8

const (
	GamepadTextInputLineModeSingleLine    GamepadTextInputLineMode = 0
	GamepadTextInputLineModeMultipleLines GamepadTextInputLineMode = 1
)

// FloatingGamepadTextInputMode selects the floating keyboard layout.
type FloatingGamepadTextInputMode uint8

const (
	FloatingGamepadTextInputModeSingleLine    FloatingGamepadTextInputMode = 0
	FloatingGamepadTextInputModeMultipleLines FloatingGamepadTextInputMode = 1
	FloatingGamepadTextInputModeEmail         FloatingGamepadTextInputMode = 2
	FloatingGamepadTextInputModeNumeric       FloatingGamepadTextInputMode = 3
)

type GamepadTextInputArgs struct {
	InputMode    GamepadTextInputMode     `cbor:"1,keyasint"`
	LineMode     GamepadTextInputLineMode `cbor:"2,keyasint"`
	Description  string                   `cbor:"3,keyasint"`
	CharMax      uint32                   `cbor:"4,keyasint"`
	ExistingText string                   `cbor:"5,keyasint"`
}

type FloatingGamepadTextInputArgs struct {
	Mode   FloatingGamepadTextInputMode `cbor:"1,keyasint"`
	X      int32                        `cbor:"2,keyasint"`
	Y      int32                        `cbor:"3,keyasint"`
	Width  int32                        `cbor:"4,keyasint"`
	Height int32                        `cbor:"5,keyasint"`
}

// Reply data.

type DlcData struct {
	AppID     uint32 `cbor:"1,keyasint"`
	Available bool   `cbor:"2,keyasint"`
	Name      string `cbor:"3,keyasint"`
}

type DownloadProgress struct {
	Downloading bool   `cbor:"1,keyasint"`
	Downloaded  uint64 `cbor:"2,keyasint"`
	Total       uint64 `cbor:"3,keyasint"`
}

// OptionalString carries a value that may be absent, distinct from empty.
type OptionalString struct {
	Value *string `cbor:"1,keyasint,omitempty"`
}

type Depots struct {
	IDs []uint32 `cbor:"1,keyasint"`
}

type FileData struct {
	Data []byte `cbor:"1,keyasint"`
}
