package result

import "strconv"

// Subsystem identifies an error namespace. Its value is the low half of a
// Result.
type Subsystem uint16

const (
	SubsystemNone          Subsystem = 0
	SubsystemMist          Subsystem = 1
	SubsystemApps          Subsystem = 100
	SubsystemFriends       Subsystem = 105
	SubsystemInput         Subsystem = 111
	SubsystemRemoteStorage Subsystem = 123
	SubsystemUtils         Subsystem = 128
)

// String returns the subsystem name.
func (s Subsystem) String() string {
	switch s {
	case SubsystemNone:
		return "None"
	case SubsystemMist:
		return "Mist"
	case SubsystemApps:
		return "Apps"
	case SubsystemFriends:
		return "Friends"
	case SubsystemInput:
		return "Input"
	case SubsystemRemoteStorage:
		return "RemoteStorage"
	case SubsystemUtils:
		return "Utils"
	default:
		return "Subsystem(" + strconv.Itoa(int(s)) + ")"
	}
}

// MistError enumerates bridge level failures.
type MistError uint16

const (
	InternalError MistError = 0
	Timeout       MistError = 1

	SubprocessLost                MistError = 10
	SubprocessNotInitialized      MistError = 11
	SubprocessAlreadyInitialized  MistError = 12
	SubprocessSpawnError          MistError = 13
	SubprocessInitializationError MistError = 14
	SubprocessUnkillable          MistError = 15
	SubprocessNotFound            MistError = 16

	InvalidString MistError = 20
)

// AppsError enumerates Apps subsystem failures.
type AppsError uint16

const (
	InvalidDlcIndex AppsError = 0
)

// FriendsError enumerates Friends subsystem failures.
type FriendsError uint16

const (
	InvalidRichPresence FriendsError = 0
)

// InputError enumerates Input subsystem failures.
type InputError uint16

const (
	InputNotInitialized InputError = 0
	ShmemError          InputError = 1
)

// RemoteStorageError enumerates RemoteStorage subsystem failures.
type RemoteStorageError uint16

const (
	FileWriteBatchAlreadyInProgress RemoteStorageError = 0
	FileWriteBatchNotInProgress     RemoteStorageError = 1
	FileNotFound                    RemoteStorageError = 2
)

// UtilsError enumerates Utils subsystem failures.
type UtilsError uint16

const (
	NoGamepadTextEntered UtilsError = 0
)

var codeNames = map[Subsystem]map[uint16]string{
	SubsystemMist: {
		uint16(InternalError):                 "InternalError",
		uint16(Timeout):                       "Timeout",
		uint16(SubprocessLost):                "SubprocessLost",
		uint16(SubprocessNotInitialized):      "SubprocessNotInitialized",
		uint16(SubprocessAlreadyInitialized):  "SubprocessAlreadyInitialized",
		uint16(SubprocessSpawnError):          "SubprocessSpawnError",
		uint16(SubprocessInitializationError): "SubprocessInitializationError",
		uint16(SubprocessUnkillable):          "SubprocessUnkillable",
		uint16(SubprocessNotFound):            "SubprocessNotFound",
		uint16(InvalidString):                 "InvalidString",
	},
	SubsystemApps: {
		uint16(InvalidDlcIndex): "InvalidDlcIndex",
	},
	SubsystemFriends: {
		uint16(InvalidRichPresence): "InvalidRichPresence",
	},
	SubsystemInput: {
		uint16(InputNotInitialized): "NotInitialized",
		uint16(ShmemError):          "ShmemError",
	},
	SubsystemRemoteStorage: {
		uint16(FileWriteBatchAlreadyInProgress): "FileWriteBatchAlreadyInProgress",
		uint16(FileWriteBatchNotInProgress):     "FileWriteBatchNotInProgress",
		uint16(FileNotFound):                    "FileNotFound",
	},
	SubsystemUtils: {
		uint16(NoGamepadTextEntered): "NoGamepadTextEntered",
	},
}

// codeName looks up the symbolic name of an error inside its namespace.
func codeName(s Subsystem, code uint16) string {
	if names, ok := codeNames[s]; ok {
		if name, ok := names[code]; ok {
			return name
		}
	}
	return "Error(" + strconv.Itoa(int(code)) + ")"
}
