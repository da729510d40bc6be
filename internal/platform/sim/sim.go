// Package sim is a fixture driven Platform. The helper uses it when no real
// platform service is available, and tests use it to exercise the bridge end
// to end.
package sim

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/GriffinCanCode/mist/internal/callbacks"
	"github.com/GriffinCanCode/mist/internal/helper"
	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
)

// Rich presence limits of the platform.
const (
	MaxRichPresenceKeys        = 30
	MaxRichPresenceKeyLength   = 64
	MaxRichPresenceValueLength = 256
)

var _ helper.Platform = (*Platform)(nil)

// Platform simulates the platform service from a Fixture.
type Platform struct {
	mu sync.Mutex
	fx Fixture

	emit helper.Emitter

	presence     map[string]string
	files        map[string][]byte
	batchOpen    bool
	batchDirty   bool
	enteredText  *string
	launcherMode bool
	corrupt      []bool
	input        inputState
}

// New creates a platform backed by fx.
func New(fx Fixture) *Platform {
	p := &Platform{
		fx:       fx,
		presence: make(map[string]string),
		files:    make(map[string][]byte, len(fx.Files)),
		input:    newInputState(),
	}
	for name, content := range fx.Files {
		p.files[name] = []byte(content)
	}
	p.fx.Apps = append([]App(nil), fx.Apps...)
	p.fx.Dlcs = append([]Dlc(nil), fx.Dlcs...)
	p.fx.Input.Controllers = append([]Controller(nil), fx.Input.Controllers...)
	return p
}

// Init records the emitter and sends the fixture's startup events.
func (p *Platform) Init(ctx context.Context, emit helper.Emitter) error {
	if p.fx.FailInit != "" {
		return errors.New(p.fx.FailInit)
	}

	events := make([]callbacks.Event, 0, len(p.fx.StartupEvents))
	for _, spec := range p.fx.StartupEvents {
		ev, err := spec.event()
		if err != nil {
			return err
		}
		events = append(events, ev)
	}

	p.mu.Lock()
	p.emit = emit
	p.mu.Unlock()

	p.send(events...)
	return nil
}

func (s EventSpec) event() (callbacks.Event, error) {
	switch s.Callback {
	case "DlcInstalled":
		return callbacks.DlcInstalled{AppID: s.AppID}, nil
	case "RemoteStorageLocalFileChange":
		return callbacks.RemoteStorageLocalFileChange{}, nil
	case "GamepadTextInputDismissed":
		return callbacks.GamepadTextInputDismissed{}, nil
	case "FloatingGamepadTextInputDismissed":
		return callbacks.FloatingGamepadTextInputDismissed{}, nil
	case "AppResumingFromSuspend":
		return callbacks.AppResumingFromSuspend{}, nil
	case "SteamShutdown":
		return callbacks.SteamShutdown{}, nil
	default:
		return nil, errors.Newf("unknown startup event %q", s.Callback)
	}
}

// send emits events outside the lock.
func (p *Platform) send(events ...callbacks.Event) {
	p.mu.Lock()
	emit := p.emit
	p.mu.Unlock()

	if emit == nil {
		return
	}
	for _, ev := range events {
		// Emit only fails when the channel is gone, which ends Serve anyway
		_ = emit.Emit(ev)
	}
}

func (p *Platform) app(appID uint32) (App, bool) {
	for _, a := range p.fx.Apps {
		if a.ID == appID {
			return a, true
		}
	}
	return App{}, false
}

func (p *Platform) dlc(appID uint32) (*Dlc, bool) {
	for i := range p.fx.Dlcs {
		if p.fx.Dlcs[i].AppID == appID {
			return &p.fx.Dlcs[i], true
		}
	}
	return nil, false
}

func (p *Platform) get(fn func(fx *Fixture) bool) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return fn(&p.fx), nil
}

// Apps

func (p *Platform) DlcDataByIndex(_ context.Context, index int32) (protocol.DlcData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || int(index) >= len(p.fx.Dlcs) {
		return protocol.DlcData{}, result.Apps(result.InvalidDlcIndex, "no dlc at that index")
	}
	d := p.fx.Dlcs[index]
	return protocol.DlcData{AppID: d.AppID, Available: d.Available, Name: d.Name}, nil
}

func (p *Platform) IsAppInstalled(_ context.Context, appID uint32) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	a, ok := p.app(appID)
	return ok && a.Installed, nil
}

func (p *Platform) IsCybercafe(context.Context) (bool, error) {
	return p.get(func(fx *Fixture) bool { return fx.Cybercafe })
}

func (p *Platform) IsDlcInstalled(_ context.Context, appID uint32) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	d, ok := p.dlc(appID)
	return ok && d.Installed, nil
}

func (p *Platform) IsLowViolence(context.Context) (bool, error) {
	return p.get(func(fx *Fixture) bool { return fx.LowViolence })
}

func (p *Platform) IsSubscribed(context.Context) (bool, error) {
	return p.get(func(fx *Fixture) bool { return fx.Subscribed })
}

func (p *Platform) IsSubscribedApp(_ context.Context, appID uint32) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if appID == p.fx.AppID {
		return p.fx.Subscribed, nil
	}
	if a, ok := p.app(appID); ok {
		return a.Subscribed, nil
	}
	if d, ok := p.dlc(appID); ok {
		return d.Available, nil
	}
	return false, nil
}

func (p *Platform) IsSubscribedFromFamilySharing(context.Context) (bool, error) {
	return p.get(func(fx *Fixture) bool { return fx.FamilySharing })
}

func (p *Platform) IsSubscribedFromFreeWeekend(context.Context) (bool, error) {
	return p.get(func(fx *Fixture) bool { return fx.FreeWeekend })
}

func (p *Platform) IsVACBanned(context.Context) (bool, error) {
	return p.get(func(fx *Fixture) bool { return fx.VACBanned })
}

func (p *Platform) AppBuildID(context.Context) (int32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.fx.BuildID, nil
}

func (p *Platform) AppInstallDir(_ context.Context, appID uint32) (*string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	a, ok := p.app(appID)
	if !ok || !a.Installed {
		return nil, nil
	}
	dir := a.InstallDir
	return &dir, nil
}

func (p *Platform) AppOwner(context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.fx.Owner, nil
}

func (p *Platform) AvailableGameLanguages(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return strings.Join(p.fx.Languages, ","), nil
}

func (p *Platform) CurrentBetaName(context.Context) (*string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fx.Beta == "" {
		return nil, nil
	}
	beta := p.fx.Beta
	return &beta, nil
}

func (p *Platform) CurrentGameLanguage(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.fx.Language, nil
}

func (p *Platform) DlcCount(context.Context) (int32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return int32(len(p.fx.Dlcs)), nil
}

func (p *Platform) DlcDownloadProgress(_ context.Context, appID uint32) (protocol.DownloadProgress, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	d, ok := p.dlc(appID)
	if !ok || d.Total == 0 || d.Downloaded >= d.Total {
		return protocol.DownloadProgress{}, nil
	}
	return protocol.DownloadProgress{Downloading: true, Downloaded: d.Downloaded, Total: d.Total}, nil
}

func (p *Platform) EarliestPurchaseUnixTime(_ context.Context, appID uint32) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	a, _ := p.app(appID)
	return a.PurchaseTime, nil
}

func (p *Platform) InstalledDepots(_ context.Context, appID uint32, max uint32) ([]uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	a, ok := p.app(appID)
	if !ok || !a.Installed {
		return nil, nil
	}
	depots := a.Depots
	if uint32(len(depots)) > max {
		depots = depots[:max]
	}
	return append([]uint32(nil), depots...), nil
}

func (p *Platform) LaunchCommandLine(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.fx.LaunchCommandLine, nil
}

func (p *Platform) LaunchQueryParam(_ context.Context, key string) (*string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.fx.LaunchQueryParams[key]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (p *Platform) InstallDlc(_ context.Context, appID uint32) error {
	p.mu.Lock()
	d, ok := p.dlc(appID)
	if ok {
		d.Installed = true
		d.Downloaded = d.Total
	}
	p.mu.Unlock()

	if ok {
		p.send(callbacks.DlcInstalled{AppID: appID})
	}
	return nil
}

func (p *Platform) MarkContentCorrupt(_ context.Context, missingFilesOnly bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.corrupt = append(p.corrupt, missingFilesOnly)
	return nil
}

func (p *Platform) UninstallDlc(_ context.Context, appID uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if d, ok := p.dlc(appID); ok {
		d.Installed = false
	}
	return nil
}

// Friends

func (p *Platform) ClearRichPresence(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.presence = make(map[string]string)
	return nil
}

func (p *Platform) SetRichPresence(_ context.Context, key string, value *string) error {
	switch {
	case key == "":
		return result.Friends(result.InvalidRichPresence, "key must not be empty")
	case len(key) >= MaxRichPresenceKeyLength:
		return result.Friends(result.InvalidRichPresence, "key too long")
	case value != nil && len(*value) >= MaxRichPresenceValueLength:
		return result.Friends(result.InvalidRichPresence, "value too long")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if value == nil || *value == "" {
		delete(p.presence, key)
		return nil
	}
	if _, exists := p.presence[key]; !exists && len(p.presence) >= MaxRichPresenceKeys {
		return result.Friends(result.InvalidRichPresence, "too many keys")
	}
	p.presence[key] = *value
	return nil
}

// RemoteStorage

func (p *Platform) BeginFileWriteBatch(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.batchOpen {
		return result.RemoteStorage(result.FileWriteBatchAlreadyInProgress, "")
	}
	p.batchOpen = true
	p.batchDirty = false
	return nil
}

func (p *Platform) EndFileWriteBatch(context.Context) error {
	p.mu.Lock()
	if !p.batchOpen {
		p.mu.Unlock()
		return result.RemoteStorage(result.FileWriteBatchNotInProgress, "")
	}
	dirty := p.batchDirty
	p.batchOpen = false
	p.batchDirty = false
	p.mu.Unlock()

	if dirty {
		p.send(callbacks.RemoteStorageLocalFileChange{})
	}
	return nil
}

func (p *Platform) FileWrite(_ context.Context, name string, data []byte) error {
	if name == "" {
		return result.Mist(result.InternalError, "file name must not be empty")
	}

	p.mu.Lock()
	p.files[name] = append([]byte(nil), data...)
	batched := p.batchOpen
	if batched {
		p.batchDirty = true
	}
	p.mu.Unlock()

	if !batched {
		p.send(callbacks.RemoteStorageLocalFileChange{})
	}
	return nil
}

func (p *Platform) FileRead(_ context.Context, name string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, ok := p.files[name]
	if !ok {
		return nil, result.RemoteStorage(result.FileNotFound, name)
	}
	return append([]byte(nil), data...), nil
}

func (p *Platform) FileExists(_ context.Context, name string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.files[name]
	return ok, nil
}

func (p *Platform) FileDelete(_ context.Context, name string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.files[name]
	delete(p.files, name)
	return ok, nil
}

// Utils

func (p *Platform) AppID(context.Context) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.fx.AppID, nil
}

func (p *Platform) CurrentBatteryPower(context.Context) (uint8, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.fx.Battery, nil
}

// EnteredGamepadTextInput hands out the entered text once.
func (p *Platform) EnteredGamepadTextInput(context.Context) (*string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	text := p.enteredText
	p.enteredText = nil
	return text, nil
}

func (p *Platform) IsOverlayEnabled(context.Context) (bool, error) {
	return p.get(func(fx *Fixture) bool { return fx.Overlay })
}

func (p *Platform) IsSteamInBigPictureMode(context.Context) (bool, error) {
	return p.get(func(fx *Fixture) bool { return fx.BigPicture })
}

func (p *Platform) IsSteamRunningInVR(context.Context) (bool, error) {
	return p.get(func(fx *Fixture) bool { return fx.RunningInVR })
}

func (p *Platform) IsVRHeadsetStreamingEnabled(context.Context) (bool, error) {
	return p.get(func(fx *Fixture) bool { return fx.VRStreaming })
}

func (p *Platform) IsSteamRunningOnSteamDeck(context.Context) (bool, error) {
	return p.get(func(fx *Fixture) bool { return fx.SteamDeck })
}

func (p *Platform) SetVRHeadsetStreamingEnabled(_ context.Context, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fx.VRStreaming = enabled
	return nil
}

// ShowGamepadTextInput simulates the user typing the fixture text (or
// keeping the existing text) and confirming, then dismisses the keyboard.
func (p *Platform) ShowGamepadTextInput(_ context.Context, args protocol.GamepadTextInputArgs) (bool, error) {
	p.mu.Lock()
	var ev callbacks.GamepadTextInputDismissed
	if p.fx.GamepadCancel {
		p.enteredText = nil
	} else {
		text := p.fx.GamepadText
		if text == "" {
			text = args.ExistingText
		}
		text = truncateUTF8(text, int(args.CharMax))
		p.enteredText = &text
		ev = callbacks.GamepadTextInputDismissed{Submitted: true, SubmittedLen: uint32(len(text))}
	}
	p.mu.Unlock()

	p.send(ev)
	return true, nil
}

func (p *Platform) ShowFloatingGamepadTextInput(context.Context, protocol.FloatingGamepadTextInputArgs) (bool, error) {
	p.send(callbacks.FloatingGamepadTextInputDismissed{})
	return true, nil
}

func (p *Platform) SetGameLauncherMode(_ context.Context, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.launcherMode = enabled
	return nil
}

func (p *Platform) StartVRDashboard(context.Context) error {
	return nil
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
// A max of zero means unlimited.
func truncateUTF8(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

// Inspection helpers

// RichPresence returns a copy of the rich presence store.
func (p *Platform) RichPresence() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]string, len(p.presence))
	for k, v := range p.presence {
		out[k] = v
	}
	return out
}

// FileNames returns the stored file names, sorted.
func (p *Platform) FileNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.files))
	for name := range p.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LauncherMode reports the last SetGameLauncherMode value.
func (p *Platform) LauncherMode() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.launcherMode
}

// CorruptMarks returns the arguments of every MarkContentCorrupt call.
func (p *Platform) CorruptMarks() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]bool(nil), p.corrupt...)
}
