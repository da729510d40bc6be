package sim

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Fixture describes the simulated platform state.
type Fixture struct {
	AppID         uint32 `yaml:"app_id" toml:"app_id"`
	Owner         uint64 `yaml:"owner" toml:"owner"`
	BuildID       int32  `yaml:"build_id" toml:"build_id"`
	Cybercafe     bool   `yaml:"cybercafe" toml:"cybercafe"`
	LowViolence   bool   `yaml:"low_violence" toml:"low_violence"`
	Subscribed    bool   `yaml:"subscribed" toml:"subscribed"`
	FamilySharing bool   `yaml:"family_sharing" toml:"family_sharing"`
	FreeWeekend   bool   `yaml:"free_weekend" toml:"free_weekend"`
	VACBanned     bool   `yaml:"vac_banned" toml:"vac_banned"`

	Languages []string `yaml:"languages" toml:"languages"`
	Language  string   `yaml:"language" toml:"language"`
	// Beta is the current branch; empty means the default branch.
	Beta              string            `yaml:"beta" toml:"beta"`
	LaunchCommandLine string            `yaml:"launch_command_line" toml:"launch_command_line"`
	LaunchQueryParams map[string]string `yaml:"launch_query_params" toml:"launch_query_params"`

	Apps []App `yaml:"apps" toml:"apps"`
	Dlcs []Dlc `yaml:"dlcs" toml:"dlcs"`

	// Battery is a percentage, or 255 when on AC power.
	Battery     uint8 `yaml:"battery" toml:"battery"`
	Overlay     bool  `yaml:"overlay" toml:"overlay"`
	BigPicture  bool  `yaml:"big_picture" toml:"big_picture"`
	RunningInVR bool  `yaml:"running_in_vr" toml:"running_in_vr"`
	SteamDeck   bool  `yaml:"steam_deck" toml:"steam_deck"`
	VRStreaming bool  `yaml:"vr_streaming" toml:"vr_streaming"`

	// GamepadText is what the simulated user types into the on-screen
	// keyboard. GamepadCancel makes the user dismiss it instead.
	GamepadText   string `yaml:"gamepad_text" toml:"gamepad_text"`
	GamepadCancel bool   `yaml:"gamepad_cancel" toml:"gamepad_cancel"`

	Files map[string]string `yaml:"files" toml:"files"`

	Input InputFixture `yaml:"input" toml:"input"`

	// StartupEvents are emitted once the helper is initialized.
	StartupEvents []EventSpec `yaml:"startup_events" toml:"startup_events"`

	// FailInit makes initialization fail with this message.
	FailInit string `yaml:"fail_init" toml:"fail_init"`
}

// App is another application known to the platform.
type App struct {
	ID           uint32   `yaml:"id" toml:"id"`
	Installed    bool     `yaml:"installed" toml:"installed"`
	Subscribed   bool     `yaml:"subscribed" toml:"subscribed"`
	InstallDir   string   `yaml:"install_dir" toml:"install_dir"`
	PurchaseTime uint32   `yaml:"purchase_time" toml:"purchase_time"`
	Depots       []uint32 `yaml:"depots" toml:"depots"`
}

// Dlc is downloadable content of the running app.
type Dlc struct {
	AppID      uint32 `yaml:"app_id" toml:"app_id"`
	Name       string `yaml:"name" toml:"name"`
	Available  bool   `yaml:"available" toml:"available"`
	Installed  bool   `yaml:"installed" toml:"installed"`
	Downloaded uint64 `yaml:"downloaded" toml:"downloaded"`
	Total      uint64 `yaml:"total" toml:"total"`
}

// InputFixture describes the controllers and the action manifest. Handles of
// action sets and actions are their position in the list plus one.
type InputFixture struct {
	// Unsupported makes input init report false.
	Unsupported bool `yaml:"unsupported" toml:"unsupported"`
	// StateError makes input init fail to set up its frame state.
	StateError string `yaml:"state_error" toml:"state_error"`

	ActionSets     []string     `yaml:"action_sets" toml:"action_sets"`
	DigitalActions []string     `yaml:"digital_actions" toml:"digital_actions"`
	AnalogActions  []string     `yaml:"analog_actions" toml:"analog_actions"`
	Controllers    []Controller `yaml:"controllers" toml:"controllers"`
}

// Controller is a connected controller and what its user is doing. Actions
// missing from Buttons and Sticks are reported inactive.
type Controller struct {
	Handle  uint64              `yaml:"handle" toml:"handle"`
	Type    int32               `yaml:"type" toml:"type"`
	Buttons map[string]bool     `yaml:"buttons" toml:"buttons"`
	Sticks  map[string]Stick    `yaml:"sticks" toml:"sticks"`
	Origins map[string][]uint32 `yaml:"origins" toml:"origins"`
	// Tilt is the rotation quaternion reported as motion data.
	Tilt [4]float32 `yaml:"tilt" toml:"tilt"`
}

// Stick is the position of an analog action.
type Stick struct {
	X float32 `yaml:"x" toml:"x"`
	Y float32 `yaml:"y" toml:"y"`
}

// EventSpec names a callback to emit.
type EventSpec struct {
	Callback string `yaml:"callback" toml:"callback"`
	AppID    uint32 `yaml:"app_id" toml:"app_id"`
}

// DefaultFixture returns the platform state used when no fixture is given.
func DefaultFixture() Fixture {
	return Fixture{
		AppID:             480,
		Owner:             76561197960287930,
		BuildID:           1,
		Subscribed:        true,
		Languages:         []string{"english", "german", "french"},
		Language:          "english",
		LaunchCommandLine: "",
		LaunchQueryParams: map[string]string{},
		Apps: []App{
			{ID: 480, Installed: true, Subscribed: true, InstallDir: "/games/spacewar", Depots: []uint32{481}},
		},
		Dlcs: []Dlc{
			{AppID: 110902, Name: "Pieterw test DLC", Available: true},
		},
		Battery: 255,
		Overlay: true,
		Files:   map[string]string{},
		Input: InputFixture{
			ActionSets:     []string{"ship_controls", "menu_controls"},
			DigitalActions: []string{"fire_lasers", "pause_menu", "menu_select"},
			AnalogActions:  []string{"thrust", "analog_controls"},
			Controllers: []Controller{{
				Handle:  0x1001,
				Type:    14,
				Buttons: map[string]bool{"fire_lasers": true, "pause_menu": false},
				Sticks:  map[string]Stick{"thrust": {X: 0.5, Y: -0.25}},
				Origins: map[string][]uint32{"fire_lasers": {1}, "thrust": {20}},
				Tilt:    [4]float32{0, 0, 0, 1},
			}},
		},
	}
}

// Load reads a fixture from a YAML (.yaml, .yml, .json) or TOML (.toml) file.
// Fields missing from the file keep their DefaultFixture values.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, errors.Wrap(err, "reading fixture")
	}
	return Parse(filepath.Ext(path), data)
}

// Parse decodes a fixture. ext selects the format the way Load does.
func Parse(ext string, data []byte) (Fixture, error) {
	fx := DefaultFixture()

	switch strings.ToLower(ext) {
	case ".yaml", ".yml", ".json":
		if err := yaml.Unmarshal(data, &fx); err != nil {
			return Fixture{}, errors.Wrap(err, "decoding YAML fixture")
		}
	case ".toml":
		if err := toml.Unmarshal(data, &fx); err != nil {
			return Fixture{}, errors.Wrap(err, "decoding TOML fixture")
		}
	default:
		return Fixture{}, errors.Newf("unsupported fixture format %q", ext)
	}

	return fx, nil
}
