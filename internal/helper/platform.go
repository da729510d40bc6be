package helper

import (
	"context"

	"github.com/GriffinCanCode/mist/internal/callbacks"
	"github.com/GriffinCanCode/mist/internal/protocol"
)

// Platform is the backend the helper serves requests from. Methods return
// *result.Error values for subsystem failures; any other error is reported
// to the bridge as an internal error.
type Platform interface {
	// Apps
	DlcDataByIndex(ctx context.Context, index int32) (protocol.DlcData, error)
	IsAppInstalled(ctx context.Context, appID uint32) (bool, error)
	IsCybercafe(ctx context.Context) (bool, error)
	IsDlcInstalled(ctx context.Context, appID uint32) (bool, error)
	IsLowViolence(ctx context.Context) (bool, error)
	IsSubscribed(ctx context.Context) (bool, error)
	IsSubscribedApp(ctx context.Context, appID uint32) (bool, error)
	IsSubscribedFromFamilySharing(ctx context.Context) (bool, error)
	IsSubscribedFromFreeWeekend(ctx context.Context) (bool, error)
	IsVACBanned(ctx context.Context) (bool, error)
	AppBuildID(ctx context.Context) (int32, error)
	AppInstallDir(ctx context.Context, appID uint32) (*string, error)
	AppOwner(ctx context.Context) (uint64, error)
	AvailableGameLanguages(ctx context.Context) (string, error)
	CurrentBetaName(ctx context.Context) (*string, error)
	CurrentGameLanguage(ctx context.Context) (string, error)
	DlcCount(ctx context.Context) (int32, error)
	DlcDownloadProgress(ctx context.Context, appID uint32) (protocol.DownloadProgress, error)
	EarliestPurchaseUnixTime(ctx context.Context, appID uint32) (uint32, error)
	InstalledDepots(ctx context.Context, appID uint32, max uint32) ([]uint32, error)
	LaunchCommandLine(ctx context.Context) (string, error)
	LaunchQueryParam(ctx context.Context, key string) (*string, error)
	InstallDlc(ctx context.Context, appID uint32) error
	MarkContentCorrupt(ctx context.Context, missingFilesOnly bool) error
	UninstallDlc(ctx context.Context, appID uint32) error

	// Friends
	ClearRichPresence(ctx context.Context) error
	SetRichPresence(ctx context.Context, key string, value *string) error

	// RemoteStorage
	BeginFileWriteBatch(ctx context.Context) error
	EndFileWriteBatch(ctx context.Context) error
	FileWrite(ctx context.Context, name string, data []byte) error
	FileRead(ctx context.Context, name string) ([]byte, error)
	FileExists(ctx context.Context, name string) (bool, error)
	FileDelete(ctx context.Context, name string) (bool, error)

	// Utils
	AppID(ctx context.Context) (uint32, error)
	CurrentBatteryPower(ctx context.Context) (uint8, error)
	EnteredGamepadTextInput(ctx context.Context) (*string, error)
	IsOverlayEnabled(ctx context.Context) (bool, error)
	IsSteamInBigPictureMode(ctx context.Context) (bool, error)
	IsSteamRunningInVR(ctx context.Context) (bool, error)
	IsVRHeadsetStreamingEnabled(ctx context.Context) (bool, error)
	IsSteamRunningOnSteamDeck(ctx context.Context) (bool, error)
	SetVRHeadsetStreamingEnabled(ctx context.Context, enabled bool) error
	ShowGamepadTextInput(ctx context.Context, args protocol.GamepadTextInputArgs) (bool, error)
	ShowFloatingGamepadTextInput(ctx context.Context, args protocol.FloatingGamepadTextInputArgs) (bool, error)
	SetGameLauncherMode(ctx context.Context, enabled bool) error
	StartVRDashboard(ctx context.Context) error
}

// Emitter sends unsolicited events to the bridge.
type Emitter interface {
	Emit(callbacks.Event) error
}

// Initializer is implemented by platforms that need setup before the
// handshake. A failing Init is reported to the bridge as an InitError.
type Initializer interface {
	Init(ctx context.Context, emit Emitter) error
}

// Closer is implemented by platforms holding resources.
type Closer interface {
	Close() error
}

// Mount registers a handler for every operation of p, including the input
// operations when p is also an InputPlatform.
func Mount(s *Server, p Platform) {
	// Apps
	handle(s, protocol.OpAppsGetDlcDataByIndex, func(ctx context.Context, a protocol.DlcIndexArgs) (protocol.DlcData, error) {
		return p.DlcDataByIndex(ctx, a.Index)
	})
	handle(s, protocol.OpAppsIsAppInstalled, func(ctx context.Context, a protocol.AppIDArgs) (bool, error) {
		return p.IsAppInstalled(ctx, a.AppID)
	})
	query(s, protocol.OpAppsIsCybercafe, p.IsCybercafe)
	handle(s, protocol.OpAppsIsDlcInstalled, func(ctx context.Context, a protocol.AppIDArgs) (bool, error) {
		return p.IsDlcInstalled(ctx, a.AppID)
	})
	query(s, protocol.OpAppsIsLowViolence, p.IsLowViolence)
	query(s, protocol.OpAppsIsSubscribed, p.IsSubscribed)
	handle(s, protocol.OpAppsIsSubscribedApp, func(ctx context.Context, a protocol.AppIDArgs) (bool, error) {
		return p.IsSubscribedApp(ctx, a.AppID)
	})
	query(s, protocol.OpAppsIsSubscribedFromFamilySharing, p.IsSubscribedFromFamilySharing)
	query(s, protocol.OpAppsIsSubscribedFromFreeWeekend, p.IsSubscribedFromFreeWeekend)
	query(s, protocol.OpAppsIsVACBanned, p.IsVACBanned)
	query(s, protocol.OpAppsGetAppBuildID, p.AppBuildID)
	handle(s, protocol.OpAppsGetAppInstallDir, func(ctx context.Context, a protocol.AppIDArgs) (protocol.OptionalString, error) {
		v, err := p.AppInstallDir(ctx, a.AppID)
		return protocol.OptionalString{Value: v}, err
	})
	query(s, protocol.OpAppsGetAppOwner, p.AppOwner)
	query(s, protocol.OpAppsGetAvailableGameLanguages, p.AvailableGameLanguages)
	query(s, protocol.OpAppsGetCurrentBetaName, func(ctx context.Context) (protocol.OptionalString, error) {
		v, err := p.CurrentBetaName(ctx)
		return protocol.OptionalString{Value: v}, err
	})
	query(s, protocol.OpAppsGetCurrentGameLanguage, p.CurrentGameLanguage)
	query(s, protocol.OpAppsGetDlcCount, p.DlcCount)
	handle(s, protocol.OpAppsGetDlcDownloadProgress, func(ctx context.Context, a protocol.AppIDArgs) (protocol.DownloadProgress, error) {
		return p.DlcDownloadProgress(ctx, a.AppID)
	})
	handle(s, protocol.OpAppsGetEarliestPurchaseUnixTime, func(ctx context.Context, a protocol.AppIDArgs) (uint32, error) {
		return p.EarliestPurchaseUnixTime(ctx, a.AppID)
	})
	handle(s, protocol.OpAppsGetInstalledDepots, func(ctx context.Context, a protocol.InstalledDepotsArgs) (protocol.Depots, error) {
		ids, err := p.InstalledDepots(ctx, a.AppID, a.Max)
		if uint32(len(ids)) > a.Max {
			ids = ids[:a.Max]
		}
		return protocol.Depots{IDs: ids}, err
	})
	query(s, protocol.OpAppsGetLaunchCommandLine, p.LaunchCommandLine)
	handle(s, protocol.OpAppsGetLaunchQueryParam, func(ctx context.Context, a protocol.KeyArgs) (protocol.OptionalString, error) {
		v, err := p.LaunchQueryParam(ctx, a.Key)
		return protocol.OptionalString{Value: v}, err
	})
	command(s, protocol.OpAppsInstallDlc, func(ctx context.Context, a protocol.AppIDArgs) error {
		return p.InstallDlc(ctx, a.AppID)
	})
	command(s, protocol.OpAppsMarkContentCorrupt, func(ctx context.Context, a protocol.MarkContentCorruptArgs) error {
		return p.MarkContentCorrupt(ctx, a.MissingFilesOnly)
	})
	command(s, protocol.OpAppsUninstallDlc, func(ctx context.Context, a protocol.AppIDArgs) error {
		return p.UninstallDlc(ctx, a.AppID)
	})

	// Friends
	action(s, protocol.OpFriendsClearRichPresence, p.ClearRichPresence)
	command(s, protocol.OpFriendsSetRichPresence, func(ctx context.Context, a protocol.RichPresenceArgs) error {
		return p.SetRichPresence(ctx, a.Key, a.Value)
	})

	// RemoteStorage
	action(s, protocol.OpRemoteStorageBeginFileWriteBatch, p.BeginFileWriteBatch)
	action(s, protocol.OpRemoteStorageEndFileWriteBatch, p.EndFileWriteBatch)
	command(s, protocol.OpRemoteStorageFileWrite, func(ctx context.Context, a protocol.FileWriteArgs) error {
		return p.FileWrite(ctx, a.Name, a.Data)
	})
	handle(s, protocol.OpRemoteStorageFileRead, func(ctx context.Context, a protocol.FileArgs) (protocol.FileData, error) {
		data, err := p.FileRead(ctx, a.Name)
		return protocol.FileData{Data: data}, err
	})
	handle(s, protocol.OpRemoteStorageFileExists, func(ctx context.Context, a protocol.FileArgs) (bool, error) {
		return p.FileExists(ctx, a.Name)
	})
	handle(s, protocol.OpRemoteStorageFileDelete, func(ctx context.Context, a protocol.FileArgs) (bool, error) {
		return p.FileDelete(ctx, a.Name)
	})

	// Utils
	query(s, protocol.OpUtilsGetAppID, p.AppID)
	query(s, protocol.OpUtilsGetCurrentBatteryPower, p.CurrentBatteryPower)
	query(s, protocol.OpUtilsGetEnteredGamepadTextInput, func(ctx context.Context) (protocol.OptionalString, error) {
		v, err := p.EnteredGamepadTextInput(ctx)
		return protocol.OptionalString{Value: v}, err
	})
	query(s, protocol.OpUtilsIsOverlayEnabled, p.IsOverlayEnabled)
	query(s, protocol.OpUtilsIsSteamInBigPictureMode, p.IsSteamInBigPictureMode)
	query(s, protocol.OpUtilsIsSteamRunningInVR, p.IsSteamRunningInVR)
	query(s, protocol.OpUtilsIsVRHeadsetStreamingEnabled, p.IsVRHeadsetStreamingEnabled)
	query(s, protocol.OpUtilsIsSteamRunningOnSteamDeck, p.IsSteamRunningOnSteamDeck)
	command(s, protocol.OpUtilsSetVRHeadsetStreamingEnabled, func(ctx context.Context, a protocol.BoolArgs) error {
		return p.SetVRHeadsetStreamingEnabled(ctx, a.Value)
	})
	handle(s, protocol.OpUtilsShowGamepadTextInput, p.ShowGamepadTextInput)
	handle(s, protocol.OpUtilsShowFloatingGamepadTextInput, p.ShowFloatingGamepadTextInput)
	command(s, protocol.OpUtilsSetGameLauncherMode, func(ctx context.Context, a protocol.BoolArgs) error {
		return p.SetGameLauncherMode(ctx, a.Value)
	})
	action(s, protocol.OpUtilsStartVRDashboard, p.StartVRDashboard)

	if ip, ok := p.(InputPlatform); ok {
		mountInput(s, ip)
	}
}
