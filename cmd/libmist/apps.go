package main

/*
#include "mist_types.h"
*/
import "C"

import (
	"context"
	"unsafe"
)

//export mist_apps_get_dlc_data_by_index
func mist_apps_get_dlc_data_by_index(dlc C.int32_t, dlcData *C.MistDlcData) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	b := instance()
	d, err := b.Apps().DlcDataByIndex(context.Background(), int32(dlc))
	if err != nil {
		return toResult(err)
	}
	if dlcData != nil {
		dlcData.app_id = C.AppId(d.AppID)
		dlcData.available = C.bool(d.Available)
		dlcData.name = handlePointer(b, d.Name)
	}
	return toResult(nil)
}

//export mist_apps_is_app_installed
func mist_apps_is_app_installed(appID C.AppId, installed *C.bool) C.MistResult {
	return boolCall(installed, func(ctx context.Context) (bool, error) {
		return instance().Apps().IsAppInstalled(ctx, uint32(appID))
	})
}

//export mist_apps_is_cybercafe
func mist_apps_is_cybercafe(isCybercafe *C.bool) C.MistResult {
	return boolCall(isCybercafe, func(ctx context.Context) (bool, error) {
		return instance().Apps().IsCybercafe(ctx)
	})
}

//export mist_apps_is_dlc_installed
func mist_apps_is_dlc_installed(appID C.AppId, installed *C.bool) C.MistResult {
	return boolCall(installed, func(ctx context.Context) (bool, error) {
		return instance().Apps().IsDlcInstalled(ctx, uint32(appID))
	})
}

//export mist_apps_is_low_violence
func mist_apps_is_low_violence(isLowViolence *C.bool) C.MistResult {
	return boolCall(isLowViolence, func(ctx context.Context) (bool, error) {
		return instance().Apps().IsLowViolence(ctx)
	})
}

//export mist_apps_is_subscribed
func mist_apps_is_subscribed(isSubscribed *C.bool) C.MistResult {
	return boolCall(isSubscribed, func(ctx context.Context) (bool, error) {
		return instance().Apps().IsSubscribed(ctx)
	})
}

//export mist_apps_is_subscribed_app
func mist_apps_is_subscribed_app(appID C.AppId, isSubscribed *C.bool) C.MistResult {
	return boolCall(isSubscribed, func(ctx context.Context) (bool, error) {
		return instance().Apps().IsSubscribedApp(ctx, uint32(appID))
	})
}

//export mist_apps_is_subscribed_from_family_sharing
func mist_apps_is_subscribed_from_family_sharing(out *C.bool) C.MistResult {
	return boolCall(out, func(ctx context.Context) (bool, error) {
		return instance().Apps().IsSubscribedFromFamilySharing(ctx)
	})
}

//export mist_apps_is_subscribed_from_free_weekend
func mist_apps_is_subscribed_from_free_weekend(out *C.bool) C.MistResult {
	return boolCall(out, func(ctx context.Context) (bool, error) {
		return instance().Apps().IsSubscribedFromFreeWeekend(ctx)
	})
}

//export mist_apps_is_vac_banned
func mist_apps_is_vac_banned(isVACBanned *C.bool) C.MistResult {
	return boolCall(isVACBanned, func(ctx context.Context) (bool, error) {
		return instance().Apps().IsVACBanned(ctx)
	})
}

//export mist_apps_get_app_build_id
func mist_apps_get_app_build_id(buildID *C.BuildId) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	v, err := instance().Apps().AppBuildID(context.Background())
	if err == nil {
		store(buildID, C.BuildId(v))
	}
	return toResult(err)
}

//export mist_apps_get_app_install_dir
func mist_apps_get_app_install_dir(appID C.AppId, appInstallDir **C.char) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	b := instance()
	h, err := b.Apps().AppInstallDir(context.Background(), uint32(appID))
	if err == nil {
		store(appInstallDir, handlePointer(b, h))
	}
	return toResult(err)
}

//export mist_apps_get_app_owner
func mist_apps_get_app_owner(steamID *C.SteamId) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	v, err := instance().Apps().AppOwner(context.Background())
	if err == nil {
		store(steamID, C.SteamId(v))
	}
	return toResult(err)
}

//export mist_apps_get_available_game_languages
func mist_apps_get_available_game_languages(languages **C.char) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	b := instance()
	h, err := b.Apps().AvailableGameLanguages(context.Background())
	if err == nil {
		store(languages, handlePointer(b, h))
	}
	return toResult(err)
}

//export mist_apps_get_current_beta_name
func mist_apps_get_current_beta_name(currentBetaName **C.char) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	b := instance()
	h, err := b.Apps().CurrentBetaName(context.Background())
	if err == nil {
		store(currentBetaName, handlePointer(b, h))
	}
	return toResult(err)
}

//export mist_apps_get_current_game_language
func mist_apps_get_current_game_language(language **C.char) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	b := instance()
	h, err := b.Apps().CurrentGameLanguage(context.Background())
	if err == nil {
		store(language, handlePointer(b, h))
	}
	return toResult(err)
}

//export mist_apps_get_dlc_count
func mist_apps_get_dlc_count(dlcCount *C.int32_t) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	v, err := instance().Apps().DlcCount(context.Background())
	if err == nil {
		store(dlcCount, C.int32_t(v))
	}
	return toResult(err)
}

//export mist_apps_get_dlc_download_progress
func mist_apps_get_dlc_download_progress(appID C.AppId, downloading *C.bool, downloaded, total *C.uint64_t) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	p, err := instance().Apps().DlcDownloadProgress(context.Background(), uint32(appID))
	if err == nil {
		store(downloading, C.bool(p.Downloading))
		store(downloaded, C.uint64_t(p.Downloaded))
		store(total, C.uint64_t(p.Total))
	}
	return toResult(err)
}

//export mist_apps_get_earliest_purchase_unix_time
func mist_apps_get_earliest_purchase_unix_time(appID C.AppId, purchaseTime *C.uint32_t) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	v, err := instance().Apps().EarliestPurchaseUnixTime(context.Background(), uint32(appID))
	if err == nil {
		store(purchaseTime, C.uint32_t(v))
	}
	return toResult(err)
}

//export mist_apps_get_installed_depots
func mist_apps_get_installed_depots(appID C.AppId, depots *C.DepotId, depotsSize C.uint32_t, installedDepots *C.uint32_t) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	limit := uint32(depotsSize)
	if depots == nil {
		limit = 0
	}
	ids, err := instance().Apps().InstalledDepots(context.Background(), uint32(appID), limit)
	if err != nil {
		return toResult(err)
	}
	if len(ids) > 0 {
		out := unsafe.Slice(depots, len(ids))
		for i, id := range ids {
			out[i] = C.DepotId(id)
		}
	}
	store(installedDepots, C.uint32_t(len(ids)))
	return toResult(nil)
}

//export mist_apps_get_launch_command_line
func mist_apps_get_launch_command_line(commandLine **C.char) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	b := instance()
	h, err := b.Apps().LaunchCommandLine(context.Background())
	if err == nil {
		store(commandLine, handlePointer(b, h))
	}
	return toResult(err)
}

//export mist_apps_get_launch_query_param
func mist_apps_get_launch_query_param(key *C.char, value **C.char) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	b := instance()
	h, err := b.Apps().LaunchQueryParam(context.Background(), goString(key))
	if err == nil {
		store(value, handlePointer(b, h))
	}
	return toResult(err)
}

//export mist_apps_install_dlc
func mist_apps_install_dlc(appID C.AppId) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Apps().InstallDlc(ctx, uint32(appID))
	})
}

//export mist_apps_mark_content_corrupt
func mist_apps_mark_content_corrupt(missingFilesOnly C.bool) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Apps().MarkContentCorrupt(ctx, bool(missingFilesOnly))
	})
}

//export mist_apps_uninstall_dlc
func mist_apps_uninstall_dlc(appID C.AppId) C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().Apps().UninstallDlc(ctx, uint32(appID))
	})
}

// boolCall runs a boolean query under the lock.
func boolCall(out *C.bool, fn func(context.Context) (bool, error)) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	v, err := fn(context.Background())
	if err == nil {
		store(out, C.bool(v))
	}
	return toResult(err)
}

// command runs a call without outputs under the lock.
func command(fn func(context.Context) error) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	return toResult(fn(context.Background()))
}
