package sim

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/mist/internal/callbacks"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
)

type recorder struct {
	mu     sync.Mutex
	events []callbacks.Event
}

func (r *recorder) Emit(ev callbacks.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) take() []callbacks.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func started(t *testing.T, fx Fixture) (*Platform, *recorder) {
	t.Helper()
	p := New(fx)
	rec := &recorder{}
	require.NoError(t, p.Init(context.Background(), rec))
	return p, rec
}

func TestParseYAML(t *testing.T) {
	src := `
app_id: 1234
build_id: 42
languages: [english, polish]
language: polish
beta: staging
launch_query_params:
  level: "3"
dlcs:
  - app_id: 1
    name: First
    available: true
  - app_id: 2
    name: Second
files:
  save.dat: hello
startup_events:
  - callback: DlcInstalled
    app_id: 2
`
	fx, err := Parse(".yaml", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, uint32(1234), fx.AppID)
	assert.Equal(t, int32(42), fx.BuildID)
	assert.Equal(t, []string{"english", "polish"}, fx.Languages)
	assert.Equal(t, "staging", fx.Beta)
	assert.Equal(t, "3", fx.LaunchQueryParams["level"])
	require.Len(t, fx.Dlcs, 2)
	assert.Equal(t, "Second", fx.Dlcs[1].Name)
	assert.Equal(t, "hello", fx.Files["save.dat"])
	require.Len(t, fx.StartupEvents, 1)

	// Untouched fields keep their defaults
	assert.Equal(t, uint8(255), fx.Battery)
	assert.True(t, fx.Overlay)
}

func TestParseTOML(t *testing.T) {
	src := `
app_id = 99
battery = 40
steam_deck = true
gamepad_text = "hunter2"

[[apps]]
id = 99
installed = true
install_dir = "/opt/game"
depots = [100, 101, 102]
`
	fx, err := Parse(".toml", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, uint32(99), fx.AppID)
	assert.Equal(t, uint8(40), fx.Battery)
	assert.True(t, fx.SteamDeck)
	assert.Equal(t, "hunter2", fx.GamepadText)
	require.Len(t, fx.Apps, 1)
	assert.Equal(t, []uint32{100, 101, 102}, fx.Apps[0].Depots)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse(".ini", []byte("a=b"))
	assert.Error(t, err)
}

func TestInitFailure(t *testing.T) {
	fx := DefaultFixture()
	fx.FailInit = "platform client not running"

	err := New(fx).Init(context.Background(), &recorder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestInitStartupEvents(t *testing.T) {
	fx := DefaultFixture()
	fx.StartupEvents = []EventSpec{
		{Callback: "DlcInstalled", AppID: 7},
		{Callback: "SteamShutdown"},
	}
	_, rec := started(t, fx)

	assert.Equal(t, []callbacks.Event{
		callbacks.DlcInstalled{AppID: 7},
		callbacks.SteamShutdown{},
	}, rec.take())
}

func TestInitUnknownStartupEvent(t *testing.T) {
	fx := DefaultFixture()
	fx.StartupEvents = []EventSpec{{Callback: "Nope"}}

	assert.Error(t, New(fx).Init(context.Background(), &recorder{}))
}

func TestDlcDataByIndex(t *testing.T) {
	ctx := context.Background()
	p, _ := started(t, DefaultFixture())

	d, err := p.DlcDataByIndex(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(110902), d.AppID)
	assert.True(t, d.Available)

	for _, idx := range []int32{-1, 1, 100} {
		_, err := p.DlcDataByIndex(ctx, idx)
		assert.True(t, errors.Is(err, result.ErrInvalidDlcIndex), "index %d", idx)
	}
}

func TestInstallDlcEmitsEvent(t *testing.T) {
	ctx := context.Background()
	p, rec := started(t, DefaultFixture())

	installed, err := p.IsDlcInstalled(ctx, 110902)
	require.NoError(t, err)
	assert.False(t, installed)

	require.NoError(t, p.InstallDlc(ctx, 110902))
	installed, err = p.IsDlcInstalled(ctx, 110902)
	require.NoError(t, err)
	assert.True(t, installed)
	assert.Equal(t, []callbacks.Event{callbacks.DlcInstalled{AppID: 110902}}, rec.take())

	require.NoError(t, p.UninstallDlc(ctx, 110902))
	installed, _ = p.IsDlcInstalled(ctx, 110902)
	assert.False(t, installed)
}

func TestOptionalQueries(t *testing.T) {
	ctx := context.Background()
	fx := DefaultFixture()
	fx.LaunchQueryParams = map[string]string{"empty": ""}
	p, _ := started(t, fx)

	dir, err := p.AppInstallDir(ctx, 480)
	require.NoError(t, err)
	require.NotNil(t, dir)
	assert.Equal(t, "/games/spacewar", *dir)

	dir, err = p.AppInstallDir(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, dir)

	beta, err := p.CurrentBetaName(ctx)
	require.NoError(t, err)
	assert.Nil(t, beta)

	v, err := p.LaunchQueryParam(ctx, "empty")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "", *v)

	v, err = p.LaunchQueryParam(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestInstalledDepotsTruncates(t *testing.T) {
	ctx := context.Background()
	fx := DefaultFixture()
	fx.Apps[0].Depots = []uint32{1, 2, 3, 4}
	p, _ := started(t, fx)

	ids, err := p.InstalledDepots(ctx, 480, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, ids)

	ids, err = p.InstalledDepots(ctx, 480, 10)
	require.NoError(t, err)
	assert.Len(t, ids, 4)
}

func TestRichPresence(t *testing.T) {
	ctx := context.Background()
	p, _ := started(t, DefaultFixture())

	status := "In menu"
	require.NoError(t, p.SetRichPresence(ctx, "status", &status))
	assert.Equal(t, map[string]string{"status": "In menu"}, p.RichPresence())

	// Nil and empty values delete the key
	require.NoError(t, p.SetRichPresence(ctx, "status", nil))
	assert.Empty(t, p.RichPresence())

	empty := ""
	require.NoError(t, p.SetRichPresence(ctx, "status", &status))
	require.NoError(t, p.SetRichPresence(ctx, "status", &empty))
	assert.Empty(t, p.RichPresence())

	require.NoError(t, p.SetRichPresence(ctx, "a", &status))
	require.NoError(t, p.ClearRichPresence(ctx))
	assert.Empty(t, p.RichPresence())
}

func TestRichPresenceLimits(t *testing.T) {
	ctx := context.Background()
	p, _ := started(t, DefaultFixture())
	v := "x"

	err := p.SetRichPresence(ctx, "", &v)
	assert.True(t, errors.Is(err, result.ErrInvalidRichPresence))

	err = p.SetRichPresence(ctx, strings.Repeat("k", MaxRichPresenceKeyLength), &v)
	assert.True(t, errors.Is(err, result.ErrInvalidRichPresence))

	long := strings.Repeat("v", MaxRichPresenceValueLength)
	err = p.SetRichPresence(ctx, "k", &long)
	assert.True(t, errors.Is(err, result.ErrInvalidRichPresence))

	for i := 0; i < MaxRichPresenceKeys; i++ {
		require.NoError(t, p.SetRichPresence(ctx, string(rune('A'+i)), &v))
	}
	err = p.SetRichPresence(ctx, "overflow", &v)
	assert.True(t, errors.Is(err, result.ErrInvalidRichPresence))

	// Existing keys can still be updated at the limit
	updated := "updated"
	assert.NoError(t, p.SetRichPresence(ctx, "A", &updated))
}

func TestFileWriteBatch(t *testing.T) {
	ctx := context.Background()
	p, rec := started(t, DefaultFixture())

	require.NoError(t, p.FileWrite(ctx, "a", []byte("1")))
	assert.Equal(t, []callbacks.Event{callbacks.RemoteStorageLocalFileChange{}}, rec.take())

	require.NoError(t, p.BeginFileWriteBatch(ctx))
	err := p.BeginFileWriteBatch(ctx)
	assert.True(t, errors.Is(err, result.ErrBatchAlreadyOpen))

	require.NoError(t, p.FileWrite(ctx, "b", []byte("2")))
	require.NoError(t, p.FileWrite(ctx, "c", []byte("3")))
	assert.Empty(t, rec.take(), "writes inside a batch are reported at the end")

	require.NoError(t, p.EndFileWriteBatch(ctx))
	assert.Equal(t, []callbacks.Event{callbacks.RemoteStorageLocalFileChange{}}, rec.take())

	err = p.EndFileWriteBatch(ctx)
	assert.True(t, errors.Is(err, result.ErrBatchNotOpen))

	// An empty batch changes nothing
	require.NoError(t, p.BeginFileWriteBatch(ctx))
	require.NoError(t, p.EndFileWriteBatch(ctx))
	assert.Empty(t, rec.take())

	assert.Equal(t, []string{"a", "b", "c"}, p.FileNames())
}

func TestFileReadExistsDelete(t *testing.T) {
	ctx := context.Background()
	fx := DefaultFixture()
	fx.Files = map[string]string{"save.dat": "progress"}
	p, _ := started(t, fx)

	data, err := p.FileRead(ctx, "save.dat")
	require.NoError(t, err)
	assert.Equal(t, []byte("progress"), data)

	_, err = p.FileRead(ctx, "other.dat")
	assert.True(t, errors.Is(err, result.ErrFileNotFound))

	ok, err := p.FileExists(ctx, "save.dat")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.FileDelete(ctx, "save.dat")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.FileDelete(ctx, "save.dat")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGamepadTextInput(t *testing.T) {
	ctx := context.Background()
	fx := DefaultFixture()
	fx.GamepadText = "héllo world"
	p, rec := started(t, fx)

	text, err := p.EnteredGamepadTextInput(ctx)
	require.NoError(t, err)
	assert.Nil(t, text, "nothing entered yet")

	shown, err := p.ShowGamepadTextInput(ctx, protocol.GamepadTextInputArgs{CharMax: 2})
	require.NoError(t, err)
	assert.True(t, shown)

	// Truncation never splits the two byte rune
	assert.Equal(t, []callbacks.Event{
		callbacks.GamepadTextInputDismissed{Submitted: true, SubmittedLen: 1},
	}, rec.take())

	text, err = p.EnteredGamepadTextInput(ctx)
	require.NoError(t, err)
	require.NotNil(t, text)
	assert.Equal(t, "h", *text)

	// The text is handed out once
	text, err = p.EnteredGamepadTextInput(ctx)
	require.NoError(t, err)
	assert.Nil(t, text)
}

func TestGamepadTextInputExistingAndCancel(t *testing.T) {
	ctx := context.Background()
	p, rec := started(t, DefaultFixture())

	_, err := p.ShowGamepadTextInput(ctx, protocol.GamepadTextInputArgs{ExistingText: "keep"})
	require.NoError(t, err)
	text, _ := p.EnteredGamepadTextInput(ctx)
	require.NotNil(t, text)
	assert.Equal(t, "keep", *text)
	rec.take()

	fx := DefaultFixture()
	fx.GamepadCancel = true
	p, rec = started(t, fx)

	_, err = p.ShowGamepadTextInput(ctx, protocol.GamepadTextInputArgs{ExistingText: "keep"})
	require.NoError(t, err)
	assert.Equal(t, []callbacks.Event{callbacks.GamepadTextInputDismissed{}}, rec.take())
	text, _ = p.EnteredGamepadTextInput(ctx)
	assert.Nil(t, text)
}

func TestFloatingGamepadTextInput(t *testing.T) {
	p, rec := started(t, DefaultFixture())

	shown, err := p.ShowFloatingGamepadTextInput(context.Background(), protocol.FloatingGamepadTextInputArgs{
		Mode: protocol.FloatingGamepadTextInputModeEmail,
	})
	require.NoError(t, err)
	assert.True(t, shown)
	assert.Equal(t, []callbacks.Event{callbacks.FloatingGamepadTextInputDismissed{}}, rec.take())
}

func TestSetters(t *testing.T) {
	ctx := context.Background()
	p, _ := started(t, DefaultFixture())

	require.NoError(t, p.SetVRHeadsetStreamingEnabled(ctx, true))
	on, err := p.IsVRHeadsetStreamingEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, p.SetGameLauncherMode(ctx, true))
	assert.True(t, p.LauncherMode())

	require.NoError(t, p.MarkContentCorrupt(ctx, true))
	require.NoError(t, p.MarkContentCorrupt(ctx, false))
	assert.Equal(t, []bool{true, false}, p.CorruptMarks())
}

func TestDownloadProgress(t *testing.T) {
	ctx := context.Background()
	fx := DefaultFixture()
	fx.Dlcs[0].Downloaded = 10
	fx.Dlcs[0].Total = 40
	p, _ := started(t, fx)

	prog, err := p.DlcDownloadProgress(ctx, 110902)
	require.NoError(t, err)
	assert.Equal(t, protocol.DownloadProgress{Downloading: true, Downloaded: 10, Total: 40}, prog)

	require.NoError(t, p.InstallDlc(ctx, 110902))
	prog, err = p.DlcDownloadProgress(ctx, 110902)
	require.NoError(t, err)
	assert.False(t, prog.Downloading)
}

func TestNewCopiesFixture(t *testing.T) {
	fx := DefaultFixture()
	p := New(fx)

	require.NoError(t, p.InstallDlc(context.Background(), 110902))
	assert.False(t, fx.Dlcs[0].Installed)
}

func TestInputRequiresInit(t *testing.T) {
	ctx := context.Background()
	p, _ := started(t, DefaultFixture())

	_, err := p.RunFrame(ctx)
	assert.ErrorIs(t, err, result.ErrInputNotInitialized)
	_, err = p.ConnectedControllers(ctx)
	assert.ErrorIs(t, err, result.ErrInputNotInitialized)

	// The manifest can be set before init
	ok, err := p.SetInputActionManifestFilePath(ctx, "actions.vdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.InputInit(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.InputShutdown(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "actions.vdf", p.Manifest())

	_, err = p.RunFrame(ctx)
	assert.ErrorIs(t, err, result.ErrInputNotInitialized)
}

func TestInputStateError(t *testing.T) {
	fx := DefaultFixture()
	fx.Input.StateError = "no frame state"
	p, _ := started(t, fx)

	_, err := p.InputInit(context.Background())
	assert.ErrorIs(t, err, result.ErrInputSharedMemory)
}

func TestRunFrameSamplesRequestedActions(t *testing.T) {
	ctx := context.Background()
	p, _ := started(t, DefaultFixture())
	_, err := p.InputInit(ctx)
	require.NoError(t, err)

	frame, err := p.RunFrame(ctx)
	require.NoError(t, err)
	require.Len(t, frame.Controllers, 1)
	assert.Empty(t, frame.Controllers[0].Digital)

	fire, err := p.DigitalActionHandle(ctx, "fire_lasers")
	require.NoError(t, err)
	menu, err := p.DigitalActionHandle(ctx, "menu_select")
	require.NoError(t, err)
	thrust, err := p.AnalogActionHandle(ctx, "thrust")
	require.NoError(t, err)

	frame, err = p.RunFrame(ctx)
	require.NoError(t, err)
	st := frame.Controllers[0]
	assert.Equal(t, protocol.DigitalActionData{State: true, Active: true}, st.Digital[fire])
	assert.Equal(t, protocol.DigitalActionData{}, st.Digital[menu])
	assert.Equal(t, protocol.SourceModeJoystickMove, st.Analog[thrust].Mode)
	assert.Equal(t, float32(1), st.Motion.RotQuatW)
}

func TestActionSetLayersCapped(t *testing.T) {
	ctx := context.Background()
	fx := DefaultFixture()
	fx.Input.ActionSets = nil
	for i := 0; i < protocol.InputMaxActiveLayers+2; i++ {
		fx.Input.ActionSets = append(fx.Input.ActionSets, strings.Repeat("l", i+1))
	}
	p, _ := started(t, fx)
	_, err := p.InputInit(ctx)
	require.NoError(t, err)

	for h := uint64(0); h < uint64(protocol.InputMaxActiveLayers+2); h++ {
		require.NoError(t, p.ActivateActionSetLayer(ctx, 0x1001, h+1))
	}
	layers, err := p.ActiveActionSetLayers(ctx, 0x1001)
	require.NoError(t, err)
	assert.Len(t, layers, protocol.InputMaxActiveLayers)

	// Switching the action set drops the layers
	require.NoError(t, p.ActivateActionSet(ctx, protocol.InputHandleAllControllers, 1))
	layers, err = p.ActiveActionSetLayers(ctx, 0x1001)
	require.NoError(t, err)
	assert.Empty(t, layers)
}
