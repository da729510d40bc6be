// Package callbacks holds the unsolicited events emitted by the helper and
// the queue that buffers them between polls.
package callbacks

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/GriffinCanCode/mist/internal/protocol"
)

// ErrUnknownCallback is returned when decoding an event id with no known shape.
var ErrUnknownCallback = errors.New("unknown callback id")

// ID is the stable tag of an event. It travels as the frame tag.
type ID uint32

const (
	IDSteamShutdown                     ID = 704
	IDGamepadTextInputDismissed         ID = 714
	IDAppResumingFromSuspend            ID = 736
	IDFloatingGamepadTextInputDismissed ID = 738
	IDDlcInstalled                      ID = 1005
	IDRemoteStorageLocalFileChange      ID = 1333
)

// String returns the event name.
func (id ID) String() string {
	switch id {
	case IDSteamShutdown:
		return "SteamShutdown"
	case IDGamepadTextInputDismissed:
		return "GamepadTextInputDismissed"
	case IDAppResumingFromSuspend:
		return "AppResumingFromSuspend"
	case IDFloatingGamepadTextInputDismissed:
		return "FloatingGamepadTextInputDismissed"
	case IDDlcInstalled:
		return "DlcInstalled"
	case IDRemoteStorageLocalFileChange:
		return "RemoteStorageLocalFileChange"
	default:
		return fmt.Sprintf("Callback(%d)", uint32(id))
	}
}

// Event is one callback delivered by Poll.
type Event interface {
	Callback() ID
}

type DlcInstalled struct {
	AppID uint32 `cbor:"1,keyasint"`
}

type RemoteStorageLocalFileChange struct{}

type GamepadTextInputDismissed struct {
	Submitted    bool   `cbor:"1,keyasint"`
	SubmittedLen uint32 `cbor:"2,keyasint"`
}

type FloatingGamepadTextInputDismissed struct{}

type AppResumingFromSuspend struct{}

type SteamShutdown struct{}

func (DlcInstalled) Callback() ID                      { return IDDlcInstalled }
func (RemoteStorageLocalFileChange) Callback() ID      { return IDRemoteStorageLocalFileChange }
func (GamepadTextInputDismissed) Callback() ID         { return IDGamepadTextInputDismissed }
func (FloatingGamepadTextInputDismissed) Callback() ID { return IDFloatingGamepadTextInputDismissed }
func (AppResumingFromSuspend) Callback() ID            { return IDAppResumingFromSuspend }
func (SteamShutdown) Callback() ID                     { return IDSteamShutdown }

// Encode returns the frame tag and payload for e. Events without fields
// produce an empty payload.
func Encode(e Event) (uint32, []byte, error) {
	switch ev := e.(type) {
	case DlcInstalled, GamepadTextInputDismissed:
		b, err := protocol.Marshal(ev)
		if err != nil {
			return 0, nil, err
		}
		return uint32(e.Callback()), b, nil
	case nil:
		return 0, nil, errors.New("nil event")
	default:
		return uint32(e.Callback()), nil, nil
	}
}

// Decode rebuilds an event from its frame tag and payload.
func Decode(tag uint32, payload []byte) (Event, error) {
	switch ID(tag) {
	case IDDlcInstalled:
		var ev DlcInstalled
		if err := protocol.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case IDGamepadTextInputDismissed:
		var ev GamepadTextInputDismissed
		if err := protocol.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case IDRemoteStorageLocalFileChange:
		return RemoteStorageLocalFileChange{}, nil
	case IDFloatingGamepadTextInputDismissed:
		return FloatingGamepadTextInputDismissed{}, nil
	case IDAppResumingFromSuspend:
		return AppResumingFromSuspend{}, nil
	case IDSteamShutdown:
		return SteamShutdown{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownCallback, "%d", tag)
	}
}
