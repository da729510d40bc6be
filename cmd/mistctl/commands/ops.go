package commands

import (
	"context"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/GriffinCanCode/mist/internal/arena"
	"github.com/GriffinCanCode/mist/internal/bridge"
	"github.com/GriffinCanCode/mist/internal/protocol"
)

// operation is one bridge call reachable from the command line.
type operation struct {
	usage string
	run   func(ctx context.Context, b *bridge.Bridge, args argList) (any, error)
}

var operations = map[string]operation{
	protocol.OpAppsGetDlcDataByIndex.String(): {"<index>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		d, err := b.Apps().DlcDataByIndex(ctx, a.int32(0))
		if err != nil {
			return nil, err
		}
		return map[string]any{"app_id": d.AppID, "available": d.Available, "name": handleValue(d.Name)}, nil
	}},
	protocol.OpAppsIsAppInstalled.String(): {"<appid>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Apps().IsAppInstalled(ctx, a.uint32(0))
	}},
	protocol.OpAppsIsCybercafe.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Apps().IsCybercafe(ctx)
	}},
	protocol.OpAppsIsDlcInstalled.String(): {"<appid>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Apps().IsDlcInstalled(ctx, a.uint32(0))
	}},
	protocol.OpAppsIsLowViolence.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Apps().IsLowViolence(ctx)
	}},
	protocol.OpAppsIsSubscribed.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Apps().IsSubscribed(ctx)
	}},
	protocol.OpAppsIsSubscribedApp.String(): {"<appid>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Apps().IsSubscribedApp(ctx, a.uint32(0))
	}},
	protocol.OpAppsIsSubscribedFromFamilySharing.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Apps().IsSubscribedFromFamilySharing(ctx)
	}},
	protocol.OpAppsIsSubscribedFromFreeWeekend.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Apps().IsSubscribedFromFreeWeekend(ctx)
	}},
	protocol.OpAppsIsVACBanned.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Apps().IsVACBanned(ctx)
	}},
	protocol.OpAppsGetAppBuildID.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Apps().AppBuildID(ctx)
	}},
	protocol.OpAppsGetAppInstallDir.String(): {"<appid>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return text(b.Apps().AppInstallDir(ctx, a.uint32(0)))
	}},
	protocol.OpAppsGetAppOwner.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Apps().AppOwner(ctx)
	}},
	protocol.OpAppsGetAvailableGameLanguages.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return text(b.Apps().AvailableGameLanguages(ctx))
	}},
	protocol.OpAppsGetCurrentBetaName.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return text(b.Apps().CurrentBetaName(ctx))
	}},
	protocol.OpAppsGetCurrentGameLanguage.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return text(b.Apps().CurrentGameLanguage(ctx))
	}},
	protocol.OpAppsGetDlcCount.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Apps().DlcCount(ctx)
	}},
	protocol.OpAppsGetDlcDownloadProgress.String(): {"<appid>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		p, err := b.Apps().DlcDownloadProgress(ctx, a.uint32(0))
		if err != nil {
			return nil, err
		}
		return map[string]any{"downloading": p.Downloading, "downloaded": p.Downloaded, "total": p.Total}, nil
	}},
	protocol.OpAppsGetEarliestPurchaseUnixTime.String(): {"<appid>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Apps().EarliestPurchaseUnixTime(ctx, a.uint32(0))
	}},
	protocol.OpAppsGetInstalledDepots.String(): {"<appid> [max]", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		limit := uint32(32)
		if a.has(1) {
			limit = a.uint32(1)
		}
		return b.Apps().InstalledDepots(ctx, a.uint32(0), limit)
	}},
	protocol.OpAppsGetLaunchCommandLine.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return text(b.Apps().LaunchCommandLine(ctx))
	}},
	protocol.OpAppsGetLaunchQueryParam.String(): {"<key>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return text(b.Apps().LaunchQueryParam(ctx, a.str(0)))
	}},
	protocol.OpAppsInstallDlc.String(): {"<appid>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Apps().InstallDlc(ctx, a.uint32(0))
	}},
	protocol.OpAppsMarkContentCorrupt.String(): {"<missing-files-only>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Apps().MarkContentCorrupt(ctx, a.bool(0))
	}},
	protocol.OpAppsUninstallDlc.String(): {"<appid>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Apps().UninstallDlc(ctx, a.uint32(0))
	}},

	protocol.OpFriendsClearRichPresence.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return nil, b.Friends().ClearRichPresence(ctx)
	}},
	protocol.OpFriendsSetRichPresence.String(): {"<key> [value]", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		var value *string
		if a.has(1) {
			v := a.str(1)
			value = &v
		}
		return nil, b.Friends().SetRichPresence(ctx, a.str(0), value)
	}},

	protocol.OpRemoteStorageBeginFileWriteBatch.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return nil, b.RemoteStorage().BeginFileWriteBatch(ctx)
	}},
	protocol.OpRemoteStorageEndFileWriteBatch.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return nil, b.RemoteStorage().EndFileWriteBatch(ctx)
	}},
	protocol.OpRemoteStorageFileWrite.String(): {"<name> <data>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.RemoteStorage().FileWrite(ctx, a.str(0), []byte(a.str(1)))
	}},
	protocol.OpRemoteStorageFileRead.String(): {"<name>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		data, err := b.RemoteStorage().FileRead(ctx, a.str(0))
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}},
	protocol.OpRemoteStorageFileExists.String(): {"<name>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.RemoteStorage().FileExists(ctx, a.str(0))
	}},
	protocol.OpRemoteStorageFileDelete.String(): {"<name>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.RemoteStorage().FileDelete(ctx, a.str(0))
	}},

	protocol.OpUtilsGetAppID.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Utils().AppID(ctx)
	}},
	protocol.OpUtilsGetCurrentBatteryPower.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Utils().CurrentBatteryPower(ctx)
	}},
	protocol.OpUtilsGetEnteredGamepadTextInput.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return text(b.Utils().EnteredGamepadTextInput(ctx))
	}},
	protocol.OpUtilsIsOverlayEnabled.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Utils().IsOverlayEnabled(ctx)
	}},
	protocol.OpUtilsIsSteamInBigPictureMode.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Utils().IsSteamInBigPictureMode(ctx)
	}},
	protocol.OpUtilsIsSteamRunningInVR.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Utils().IsSteamRunningInVR(ctx)
	}},
	protocol.OpUtilsIsVRHeadsetStreamingEnabled.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Utils().IsVRHeadsetStreamingEnabled(ctx)
	}},
	protocol.OpUtilsIsSteamRunningOnSteamDeck.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return b.Utils().IsSteamRunningOnSteamDeck(ctx)
	}},
	protocol.OpUtilsSetVRHeadsetStreamingEnabled.String(): {"<enabled>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Utils().SetVRHeadsetStreamingEnabled(ctx, a.bool(0))
	}},
	protocol.OpUtilsShowGamepadTextInput.String(): {"[char-max] [existing-text]", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		args := protocol.GamepadTextInputArgs{CharMax: 256}
		if a.has(0) {
			args.CharMax = a.uint32(0)
		}
		if a.has(1) {
			args.ExistingText = a.str(1)
		}
		return b.Utils().ShowGamepadTextInput(ctx, args)
	}},
	protocol.OpUtilsShowFloatingGamepadTextInput.String(): {"<mode> <x> <y> <width> <height>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return b.Utils().ShowFloatingGamepadTextInput(ctx, protocol.FloatingGamepadTextInputArgs{
			Mode:   protocol.FloatingGamepadTextInputMode(a.uint32(0)),
			X:      a.int32(1),
			Y:      a.int32(2),
			Width:  a.int32(3),
			Height: a.int32(4),
		})
	}},
	protocol.OpUtilsSetGameLauncherMode.String(): {"<enabled>", func(ctx context.Context, b *bridge.Bridge, a argList) (any, error) {
		return nil, b.Utils().SetGameLauncherMode(ctx, a.bool(0))
	}},
	protocol.OpUtilsStartVRDashboard.String(): {"", func(ctx context.Context, b *bridge.Bridge, _ argList) (any, error) {
		return nil, b.Utils().StartVRDashboard(ctx)
	}},
}

// operationNames returns the operation names in sorted order.
func operationNames() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runOperation parses args for name and calls the bridge.
func runOperation(ctx context.Context, b *bridge.Bridge, name string, args []string) (value any, err error) {
	op, ok := operations[name]
	if !ok {
		return nil, errors.Newf("unknown operation %q", name)
	}

	a := argList{args: args}
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(argError)
			if !ok {
				panic(r)
			}
			value, err = nil, errors.Wrapf(perr.err, "usage: %s %s", name, op.usage)
		}
	}()
	return op.run(ctx, b, a)
}

type argError struct{ err error }

// argList reads positional arguments. Bad input panics with argError, which
// runOperation turns into an error.
type argList struct {
	args []string
}

func (a argList) has(i int) bool { return i < len(a.args) }

func (a argList) str(i int) string {
	if !a.has(i) {
		panic(argError{errors.Newf("missing argument %d", i+1)})
	}
	return a.args[i]
}

func (a argList) uint32(i int) uint32 {
	v, err := strconv.ParseUint(a.str(i), 10, 32)
	if err != nil {
		panic(argError{errors.Wrapf(err, "argument %d", i+1)})
	}
	return uint32(v)
}

func (a argList) uint64(i int) uint64 {
	v, err := strconv.ParseUint(a.str(i), 0, 64)
	if err != nil {
		panic(argError{errors.Wrapf(err, "argument %d", i+1)})
	}
	return v
}

func (a argList) uint16(i int) uint16 {
	v, err := strconv.ParseUint(a.str(i), 10, 16)
	if err != nil {
		panic(argError{errors.Wrapf(err, "argument %d", i+1)})
	}
	return uint16(v)
}

func (a argList) uint8(i int) uint8 {
	v, err := strconv.ParseUint(a.str(i), 10, 8)
	if err != nil {
		panic(argError{errors.Wrapf(err, "argument %d", i+1)})
	}
	return uint8(v)
}

func (a argList) int8(i int) int8 {
	v, err := strconv.ParseInt(a.str(i), 10, 8)
	if err != nil {
		panic(argError{errors.Wrapf(err, "argument %d", i+1)})
	}
	return int8(v)
}

func (a argList) int32(i int) int32 {
	v, err := strconv.ParseInt(a.str(i), 10, 32)
	if err != nil {
		panic(argError{errors.Wrapf(err, "argument %d", i+1)})
	}
	return int32(v)
}

func (a argList) bool(i int) bool {
	v, err := strconv.ParseBool(a.str(i))
	if err != nil {
		panic(argError{errors.Wrapf(err, "argument %d", i+1)})
	}
	return v
}

// handleValue converts a handle to a string, or nil when absent.
func handleValue(h arena.Handle) any {
	v, present, err := h.Value()
	if err != nil || !present {
		return nil
	}
	return v
}

func text(h arena.Handle, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return handleValue(h), nil
}
