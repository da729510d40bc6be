package callbacks

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		tag   uint32
	}{
		{name: "dlc installed", event: DlcInstalled{AppID: 480}, tag: 1005},
		{name: "file change", event: RemoteStorageLocalFileChange{}, tag: 1333},
		{name: "gamepad text", event: GamepadTextInputDismissed{Submitted: true, SubmittedLen: 12}, tag: 714},
		{name: "floating gamepad text", event: FloatingGamepadTextInputDismissed{}, tag: 738},
		{name: "resuming", event: AppResumingFromSuspend{}, tag: 736},
		{name: "shutdown", event: SteamShutdown{}, tag: 704},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, payload, err := Encode(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.tag, tag)

			got, err := Decode(tag, payload)
			require.NoError(t, err)
			assert.Equal(t, tt.event, got)
		})
	}
}

func TestDecodeUnknown(t *testing.T) {
	_, err := Decode(9999, nil)
	assert.True(t, errors.Is(err, ErrUnknownCallback))
}

func TestDecodeMalformedPayload(t *testing.T) {
	_, err := Decode(uint32(IDDlcInstalled), []byte{0xff, 0xff})
	assert.Error(t, err)
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "DlcInstalled", IDDlcInstalled.String())
	assert.Equal(t, "Callback(1)", ID(1).String())
}

func TestQueueOrderAndDrain(t *testing.T) {
	q := NewQueue()
	q.Push(DlcInstalled{AppID: 1})
	q.Push(SteamShutdown{})
	q.Push(DlcInstalled{AppID: 3})

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []Event{DlcInstalled{AppID: 1}, SteamShutdown{}, DlcInstalled{AppID: 3}}, q.Drain())
	assert.Empty(t, q.Drain())
	assert.Zero(t, q.Len())
}

func TestQueueClear(t *testing.T) {
	q := NewQueue()
	q.Push(AppResumingFromSuspend{})
	q.Clear()
	assert.Nil(t, q.Drain())
}

func TestQueueConcurrentPush(t *testing.T) {
	q := NewQueue()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(DlcInstalled{AppID: uint32(i*100 + j)})
			}
		}(i)
	}
	wg.Wait()

	events := q.Drain()
	require.Len(t, events, 800)

	// Per producer order is preserved
	last := make(map[uint32]uint32)
	for _, e := range events {
		id := e.(DlcInstalled).AppID
		producer := id / 100
		if prev, ok := last[producer]; ok {
			assert.Greater(t, id, prev)
		}
		last[producer] = id
	}
}
