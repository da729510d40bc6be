package protocol

import (
	"fmt"

	"github.com/GriffinCanCode/mist/internal/result"
)

// Op tags a request frame with the operation it invokes.
type Op uint32

func op(s result.Subsystem, index uint16) Op {
	return Op(uint32(s)<<16 | uint32(index))
}

// Subsystem returns the namespace encoded in the tag.
func (o Op) Subsystem() result.Subsystem {
	return result.Subsystem(uint32(o) >> 16)
}

// String returns a stable dotted name such as "apps.get_dlc_count".
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d:%d)", o.Subsystem(), uint32(o)&0xFFFF)
}

// Apps
var (
	OpAppsGetDlcDataByIndex             = op(result.SubsystemApps, 1)
	OpAppsIsAppInstalled                = op(result.SubsystemApps, 2)
	OpAppsIsCybercafe                   = op(result.SubsystemApps, 3)
	OpAppsIsDlcInstalled                = op(result.SubsystemApps, 4)
	OpAppsIsLowViolence                 = op(result.SubsystemApps, 5)
	OpAppsIsSubscribed                  = op(result.SubsystemApps, 6)
	OpAppsIsSubscribedApp               = op(result.SubsystemApps, 7)
	OpAppsIsSubscribedFromFamilySharing = op(result.SubsystemApps, 8)
	OpAppsIsSubscribedFromFreeWeekend   = op(result.SubsystemApps, 9)
	OpAppsIsVACBanned                   = op(result.SubsystemApps, 10)
	OpAppsGetAppBuildID                 = op(result.SubsystemApps, 11)
	OpAppsGetAppInstallDir              = op(result.SubsystemApps, 12)
	OpAppsGetAppOwner                   = op(result.SubsystemApps, 13)
	OpAppsGetAvailableGameLanguages     = op(result.SubsystemApps, 14)
	OpAppsGetCurrentBetaName            = op(result.SubsystemApps, 15)
	OpAppsGetCurrentGameLanguage        = op(result.SubsystemApps, 16)
	OpAppsGetDlcCount                   = op(result.SubsystemApps, 17)
	OpAppsGetDlcDownloadProgress        = op(result.SubsystemApps, 18)
	OpAppsGetEarliestPurchaseUnixTime   = op(result.SubsystemApps, 19)
	OpAppsGetInstalledDepots            = op(result.SubsystemApps, 20)
	OpAppsGetLaunchCommandLine          = op(result.SubsystemApps, 21)
	OpAppsGetLaunchQueryParam           = op(result.SubsystemApps, 22)
	OpAppsInstallDlc                    = op(result.SubsystemApps, 23)
	OpAppsMarkContentCorrupt            = op(result.SubsystemApps, 24)
	OpAppsUninstallDlc                  = op(result.SubsystemApps, 25)
)

// Friends
var (
	OpFriendsClearRichPresence = op(result.SubsystemFriends, 1)
	OpFriendsSetRichPresence   = op(result.SubsystemFriends, 2)
)

// Input
var (
	OpInputInit                           = op(result.SubsystemInput, 1)
	OpInputShutdown                       = op(result.SubsystemInput, 2)
	OpInputRunFrame                       = op(result.SubsystemInput, 3)
	OpInputGetConnectedControllers        = op(result.SubsystemInput, 4)
	OpInputGetControllerForGamepadIndex   = op(result.SubsystemInput, 5)
	OpInputGetGamepadIndexForController   = op(result.SubsystemInput, 6)
	OpInputGetInputTypeForHandle          = op(result.SubsystemInput, 7)
	OpInputGetActionSetHandle             = op(result.SubsystemInput, 8)
	OpInputActivateActionSet              = op(result.SubsystemInput, 9)
	OpInputGetCurrentActionSet            = op(result.SubsystemInput, 10)
	OpInputActivateActionSetLayer         = op(result.SubsystemInput, 11)
	OpInputDeactivateActionSetLayer       = op(result.SubsystemInput, 12)
	OpInputDeactivateAllActionSetLayers   = op(result.SubsystemInput, 13)
	OpInputGetActiveActionSetLayers       = op(result.SubsystemInput, 14)
	OpInputGetDigitalActionHandle         = op(result.SubsystemInput, 15)
	OpInputGetAnalogActionHandle          = op(result.SubsystemInput, 16)
	OpInputGetDigitalActionOrigins        = op(result.SubsystemInput, 17)
	OpInputGetAnalogActionOrigins         = op(result.SubsystemInput, 18)
	OpInputGetStringForActionOrigin       = op(result.SubsystemInput, 19)
	OpInputGetGlyphPNGForActionOrigin     = op(result.SubsystemInput, 20)
	OpInputGetGlyphSVGForActionOrigin     = op(result.SubsystemInput, 21)
	OpInputTranslateActionOrigin          = op(result.SubsystemInput, 22)
	OpInputSetInputActionManifestFilePath = op(result.SubsystemInput, 23)
	OpInputSetLEDColor                    = op(result.SubsystemInput, 24)
	OpInputShowBindingPanel               = op(result.SubsystemInput, 25)
	OpInputStopAnalogActionMomentum       = op(result.SubsystemInput, 26)
	OpInputTriggerVibration               = op(result.SubsystemInput, 27)
	OpInputTriggerVibrationExtended       = op(result.SubsystemInput, 28)
	OpInputTriggerSimpleHapticEvent       = op(result.SubsystemInput, 29)
)

// RemoteStorage
var (
	OpRemoteStorageBeginFileWriteBatch = op(result.SubsystemRemoteStorage, 1)
	OpRemoteStorageEndFileWriteBatch   = op(result.SubsystemRemoteStorage, 2)
	OpRemoteStorageFileWrite           = op(result.SubsystemRemoteStorage, 3)
	OpRemoteStorageFileRead            = op(result.SubsystemRemoteStorage, 4)
	OpRemoteStorageFileExists          = op(result.SubsystemRemoteStorage, 5)
	OpRemoteStorageFileDelete          = op(result.SubsystemRemoteStorage, 6)
)

// Utils
var (
	OpUtilsGetAppID                     = op(result.SubsystemUtils, 1)
	OpUtilsGetCurrentBatteryPower       = op(result.SubsystemUtils, 2)
	OpUtilsGetEnteredGamepadTextInput   = op(result.SubsystemUtils, 3)
	OpUtilsIsOverlayEnabled             = op(result.SubsystemUtils, 4)
	OpUtilsIsSteamInBigPictureMode      = op(result.SubsystemUtils, 5)
	OpUtilsIsSteamRunningInVR           = op(result.SubsystemUtils, 6)
	OpUtilsIsVRHeadsetStreamingEnabled  = op(result.SubsystemUtils, 7)
	OpUtilsIsSteamRunningOnSteamDeck    = op(result.SubsystemUtils, 8)
	OpUtilsSetVRHeadsetStreamingEnabled = op(result.SubsystemUtils, 9)
	OpUtilsShowGamepadTextInput         = op(result.SubsystemUtils, 10)
	OpUtilsShowFloatingGamepadTextInput = op(result.SubsystemUtils, 11)
	OpUtilsSetGameLauncherMode          = op(result.SubsystemUtils, 12)
	OpUtilsStartVRDashboard             = op(result.SubsystemUtils, 13)
)

var opNames = map[Op]string{
	OpAppsGetDlcDataByIndex:             "apps.get_dlc_data_by_index",
	OpAppsIsAppInstalled:                "apps.is_app_installed",
	OpAppsIsCybercafe:                   "apps.is_cybercafe",
	OpAppsIsDlcInstalled:                "apps.is_dlc_installed",
	OpAppsIsLowViolence:                 "apps.is_low_violence",
	OpAppsIsSubscribed:                  "apps.is_subscribed",
	OpAppsIsSubscribedApp:               "apps.is_subscribed_app",
	OpAppsIsSubscribedFromFamilySharing: "apps.is_subscribed_from_family_sharing",
	OpAppsIsSubscribedFromFreeWeekend:   "apps.is_subscribed_from_free_weekend",
	OpAppsIsVACBanned:                   "apps.is_vac_banned",
	OpAppsGetAppBuildID:                 "apps.get_app_build_id",
	OpAppsGetAppInstallDir:              "apps.get_app_install_dir",
	OpAppsGetAppOwner:                   "apps.get_app_owner",
	OpAppsGetAvailableGameLanguages:     "apps.get_available_game_languages",
	OpAppsGetCurrentBetaName:            "apps.get_current_beta_name",
	OpAppsGetCurrentGameLanguage:        "apps.get_current_game_language",
	OpAppsGetDlcCount:                   "apps.get_dlc_count",
	OpAppsGetDlcDownloadProgress:        "apps.get_dlc_download_progress",
	OpAppsGetEarliestPurchaseUnixTime:   "apps.get_earliest_purchase_unix_time",
	OpAppsGetInstalledDepots:            "apps.get_installed_depots",
	OpAppsGetLaunchCommandLine:          "apps.get_launch_command_line",
	OpAppsGetLaunchQueryParam:           "apps.get_launch_query_param",
	OpAppsInstallDlc:                    "apps.install_dlc",
	OpAppsMarkContentCorrupt:            "apps.mark_content_corrupt",
	OpAppsUninstallDlc:                  "apps.uninstall_dlc",

	OpFriendsClearRichPresence: "friends.clear_rich_presence",
	OpFriendsSetRichPresence:   "friends.set_rich_presence",

	OpInputInit:                           "input.init",
	OpInputShutdown:                       "input.shutdown",
	OpInputRunFrame:                       "input.run_frame",
	OpInputGetConnectedControllers:        "input.get_connected_controllers",
	OpInputGetControllerForGamepadIndex:   "input.get_controller_for_gamepad_index",
	OpInputGetGamepadIndexForController:   "input.get_gamepad_index_for_controller",
	OpInputGetInputTypeForHandle:          "input.get_input_type_for_handle",
	OpInputGetActionSetHandle:             "input.get_action_set_handle",
	OpInputActivateActionSet:              "input.activate_action_set",
	OpInputGetCurrentActionSet:            "input.get_current_action_set",
	OpInputActivateActionSetLayer:         "input.activate_action_set_layer",
	OpInputDeactivateActionSetLayer:       "input.deactivate_action_set_layer",
	OpInputDeactivateAllActionSetLayers:   "input.deactivate_all_action_set_layers",
	OpInputGetActiveActionSetLayers:       "input.get_active_action_set_layers",
	OpInputGetDigitalActionHandle:         "input.get_digital_action_handle",
	OpInputGetAnalogActionHandle:          "input.get_analog_action_handle",
	OpInputGetDigitalActionOrigins:        "input.get_digital_action_origins",
	OpInputGetAnalogActionOrigins:         "input.get_analog_action_origins",
	OpInputGetStringForActionOrigin:       "input.get_string_for_action_origin",
	OpInputGetGlyphPNGForActionOrigin:     "input.get_glyph_png_for_action_origin",
	OpInputGetGlyphSVGForActionOrigin:     "input.get_glyph_svg_for_action_origin",
	OpInputTranslateActionOrigin:          "input.translate_action_origin",
	OpInputSetInputActionManifestFilePath: "input.set_input_action_manifest_file_path",
	OpInputSetLEDColor:                    "input.set_led_color",
	OpInputShowBindingPanel:               "input.show_binding_panel",
	OpInputStopAnalogActionMomentum:       "input.stop_analog_action_momentum",
	OpInputTriggerVibration:               "input.trigger_vibration",
	OpInputTriggerVibrationExtended:       "input.trigger_vibration_extended",
	OpInputTriggerSimpleHapticEvent:       "input.trigger_simple_haptic_event",

	OpRemoteStorageBeginFileWriteBatch: "remote_storage.begin_file_write_batch",
	OpRemoteStorageEndFileWriteBatch:   "remote_storage.end_file_write_batch",
	OpRemoteStorageFileWrite:           "remote_storage.file_write",
	OpRemoteStorageFileRead:            "remote_storage.file_read",
	OpRemoteStorageFileExists:          "remote_storage.file_exists",
	OpRemoteStorageFileDelete:          "remote_storage.file_delete",

	OpUtilsGetAppID:                     "utils.get_appid",
	OpUtilsGetCurrentBatteryPower:       "utils.get_current_battery_power",
	OpUtilsGetEnteredGamepadTextInput:   "utils.get_entered_gamepad_text_input",
	OpUtilsIsOverlayEnabled:             "utils.is_overlay_enabled",
	OpUtilsIsSteamInBigPictureMode:      "utils.is_steam_in_big_picture_mode",
	OpUtilsIsSteamRunningInVR:           "utils.is_steam_running_in_vr",
	OpUtilsIsVRHeadsetStreamingEnabled:  "utils.is_vr_headset_streaming_enabled",
	OpUtilsIsSteamRunningOnSteamDeck:    "utils.is_steam_running_on_steam_deck",
	OpUtilsSetVRHeadsetStreamingEnabled: "utils.set_vr_headset_streaming_enabled",
	OpUtilsShowGamepadTextInput:         "utils.show_gamepad_text_input",
	OpUtilsShowFloatingGamepadTextInput: "utils.show_floating_gamepad_text_input",
	OpUtilsSetGameLauncherMode:          "utils.set_game_launcher_mode",
	OpUtilsStartVRDashboard:             "utils.start_vr_dashboard",
}

// Ops returns every known operation.
func Ops() []Op {
	ops := make([]Op, 0, len(opNames))
	for o := range opNames {
		ops = append(ops, o)
	}
	return ops
}

// Control tags travel in KindControl frames.
type Control uint32

const (
	// ControlInitialized is the helper's handshake; payload is the launch token.
	ControlInitialized Control = 1
	// ControlInitError reports a helper side startup failure; payload is a message.
	ControlInitError Control = 2
	// ControlExit asks the helper to shut down.
	ControlExit Control = 3
)
