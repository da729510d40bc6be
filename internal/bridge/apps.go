package bridge

import (
	"context"

	"github.com/GriffinCanCode/mist/internal/arena"
	"github.com/GriffinCanCode/mist/internal/protocol"
)

// DlcData describes one DLC. Name is valid until the next DlcDataByIndex.
type DlcData struct {
	AppID     uint32
	Available bool
	Name      arena.Handle
}

// Apps queries ownership, installation and launch details of applications.
type Apps struct{ b *Bridge }

// Apps returns the apps client.
func (b *Bridge) Apps() Apps { return Apps{b} }

// DlcDataByIndex returns the DLC at index, which ranges over [0, DlcCount).
func (a Apps) DlcDataByIndex(ctx context.Context, index int32) (DlcData, error) {
	d, err := call[protocol.DlcData](ctx, a.b, protocol.OpAppsGetDlcDataByIndex, protocol.DlcIndexArgs{Index: index})
	if err != nil {
		return DlcData{}, err
	}
	return DlcData{
		AppID:     d.AppID,
		Available: d.Available,
		Name:      a.b.strings.WriteString(arena.SlotDlcName, d.Name),
	}, nil
}

func (a Apps) IsAppInstalled(ctx context.Context, appID uint32) (bool, error) {
	return call[bool](ctx, a.b, protocol.OpAppsIsAppInstalled, protocol.AppIDArgs{AppID: appID})
}

func (a Apps) IsCybercafe(ctx context.Context) (bool, error) {
	return call[bool](ctx, a.b, protocol.OpAppsIsCybercafe, nil)
}

func (a Apps) IsDlcInstalled(ctx context.Context, appID uint32) (bool, error) {
	return call[bool](ctx, a.b, protocol.OpAppsIsDlcInstalled, protocol.AppIDArgs{AppID: appID})
}

func (a Apps) IsLowViolence(ctx context.Context) (bool, error) {
	return call[bool](ctx, a.b, protocol.OpAppsIsLowViolence, nil)
}

func (a Apps) IsSubscribed(ctx context.Context) (bool, error) {
	return call[bool](ctx, a.b, protocol.OpAppsIsSubscribed, nil)
}

func (a Apps) IsSubscribedApp(ctx context.Context, appID uint32) (bool, error) {
	return call[bool](ctx, a.b, protocol.OpAppsIsSubscribedApp, protocol.AppIDArgs{AppID: appID})
}

func (a Apps) IsSubscribedFromFamilySharing(ctx context.Context) (bool, error) {
	return call[bool](ctx, a.b, protocol.OpAppsIsSubscribedFromFamilySharing, nil)
}

func (a Apps) IsSubscribedFromFreeWeekend(ctx context.Context) (bool, error) {
	return call[bool](ctx, a.b, protocol.OpAppsIsSubscribedFromFreeWeekend, nil)
}

func (a Apps) IsVACBanned(ctx context.Context) (bool, error) {
	return call[bool](ctx, a.b, protocol.OpAppsIsVACBanned, nil)
}

func (a Apps) AppBuildID(ctx context.Context) (int32, error) {
	return call[int32](ctx, a.b, protocol.OpAppsGetAppBuildID, nil)
}

// AppInstallDir returns the install folder of appID, absent when the app is
// not installed.
func (a Apps) AppInstallDir(ctx context.Context, appID uint32) (arena.Handle, error) {
	return a.b.optional(ctx, arena.SlotAppInstallDir, protocol.OpAppsGetAppInstallDir, protocol.AppIDArgs{AppID: appID})
}

// AppOwner returns the steam id of the account that owns the app.
func (a Apps) AppOwner(ctx context.Context) (uint64, error) {
	return call[uint64](ctx, a.b, protocol.OpAppsGetAppOwner, nil)
}

// AvailableGameLanguages returns a comma separated list of languages.
func (a Apps) AvailableGameLanguages(ctx context.Context) (arena.Handle, error) {
	return a.b.text(ctx, arena.SlotAvailableLanguages, protocol.OpAppsGetAvailableGameLanguages, nil)
}

// CurrentBetaName is absent on the default branch.
func (a Apps) CurrentBetaName(ctx context.Context) (arena.Handle, error) {
	return a.b.optional(ctx, arena.SlotCurrentBetaName, protocol.OpAppsGetCurrentBetaName, nil)
}

func (a Apps) CurrentGameLanguage(ctx context.Context) (arena.Handle, error) {
	return a.b.text(ctx, arena.SlotCurrentGameLanguage, protocol.OpAppsGetCurrentGameLanguage, nil)
}

func (a Apps) DlcCount(ctx context.Context) (int32, error) {
	return call[int32](ctx, a.b, protocol.OpAppsGetDlcCount, nil)
}

// DlcDownloadProgress reports Downloading false when appID is not being
// downloaded.
func (a Apps) DlcDownloadProgress(ctx context.Context, appID uint32) (protocol.DownloadProgress, error) {
	return call[protocol.DownloadProgress](ctx, a.b, protocol.OpAppsGetDlcDownloadProgress, protocol.AppIDArgs{AppID: appID})
}

func (a Apps) EarliestPurchaseUnixTime(ctx context.Context, appID uint32) (uint32, error) {
	return call[uint32](ctx, a.b, protocol.OpAppsGetEarliestPurchaseUnixTime, protocol.AppIDArgs{AppID: appID})
}

// InstalledDepots returns at most limit depot ids, in mount order.
func (a Apps) InstalledDepots(ctx context.Context, appID uint32, limit uint32) ([]uint32, error) {
	d, err := call[protocol.Depots](ctx, a.b, protocol.OpAppsGetInstalledDepots, protocol.InstalledDepotsArgs{AppID: appID, Max: limit})
	if err != nil {
		return nil, err
	}
	if uint32(len(d.IDs)) > limit {
		d.IDs = d.IDs[:limit]
	}
	return d.IDs, nil
}

func (a Apps) LaunchCommandLine(ctx context.Context) (arena.Handle, error) {
	return a.b.text(ctx, arena.SlotLaunchCommandLine, protocol.OpAppsGetLaunchCommandLine, nil)
}

// LaunchQueryParam is absent when key was not set.
func (a Apps) LaunchQueryParam(ctx context.Context, key string) (arena.Handle, error) {
	if err := a.b.checkStrings("launch query key", key); err != nil {
		return arena.Handle{}, err
	}
	return a.b.optional(ctx, arena.SlotLaunchQueryParam, protocol.OpAppsGetLaunchQueryParam, protocol.KeyArgs{Key: key})
}

func (a Apps) InstallDlc(ctx context.Context, appID uint32) error {
	return a.b.invoke(ctx, protocol.OpAppsInstallDlc, protocol.AppIDArgs{AppID: appID}, nil)
}

func (a Apps) MarkContentCorrupt(ctx context.Context, missingFilesOnly bool) error {
	return a.b.invoke(ctx, protocol.OpAppsMarkContentCorrupt, protocol.MarkContentCorruptArgs{MissingFilesOnly: missingFilesOnly}, nil)
}

func (a Apps) UninstallDlc(ctx context.Context, appID uint32) error {
	return a.b.invoke(ctx, protocol.OpAppsUninstallDlc, protocol.AppIDArgs{AppID: appID}, nil)
}

// text stores a string reply in slot.
func (b *Bridge) text(ctx context.Context, slot arena.Slot, op protocol.Op, args any) (arena.Handle, error) {
	v, err := call[string](ctx, b, op, args)
	if err != nil {
		return arena.Handle{}, err
	}
	return b.strings.WriteString(slot, v), nil
}

// optional stores a possibly absent string reply in slot.
func (b *Bridge) optional(ctx context.Context, slot arena.Slot, op protocol.Op, args any) (arena.Handle, error) {
	v, err := call[protocol.OptionalString](ctx, b, op, args)
	if err != nil {
		return arena.Handle{}, err
	}
	return b.strings.Write(slot, v.Value), nil
}
