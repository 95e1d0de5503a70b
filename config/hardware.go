package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HardwareProfile holds the device selectors the backend needs when it is
// asked for a snapshot or a reading. The devices themselves stay owned by the
// backend; the front-end only names which one to use.
type HardwareProfile struct {
	ItemCamera      CameraProfile `yaml:"item_camera"`
	CustomerCamera  CameraProfile `yaml:"customer_camera"`
	IDCardReader    ReaderProfile `yaml:"id_card_reader"`
	Scale           ScaleProfile  `yaml:"scale"`
	PhotoRequired   bool          `yaml:"photo_required"`
	DefaultRounding string        `yaml:"default_rounding"`
}

type CameraProfile struct {
	DeviceIndex int    `yaml:"device_index"`
	Warmup      int    `yaml:"warmup"`
	Backend     string `yaml:"backend"`
}

type ReaderProfile struct {
	ReaderIndex int  `yaml:"reader_index"`
	WithPhoto   bool `yaml:"with_photo"`
}

type ScaleProfile struct {
	TimeoutMS int `yaml:"timeout_ms"`
	Lines     int `yaml:"lines"`
}

// DefaultHardwareProfile mirrors what the shop counter uses out of the box.
func DefaultHardwareProfile() HardwareProfile {
	return HardwareProfile{
		ItemCamera:      CameraProfile{DeviceIndex: 0, Warmup: 3},
		CustomerCamera:  CameraProfile{DeviceIndex: 0, Warmup: 8},
		IDCardReader:    ReaderProfile{ReaderIndex: 0, WithPhoto: true},
		Scale:           ScaleProfile{TimeoutMS: 500, Lines: 5},
		PhotoRequired:   true,
		DefaultRounding: "none",
	}
}

// LoadHardwareProfile parses a YAML profile on top of the defaults. A missing
// file returns the defaults together with the read error.
func LoadHardwareProfile(path string) (HardwareProfile, error) {
	profile := DefaultHardwareProfile()
	if path == "" {
		return profile, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return profile, err
	}

	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return DefaultHardwareProfile(), fmt.Errorf("parse %s: %w", path, err)
	}

	if profile.Scale.TimeoutMS <= 0 {
		profile.Scale.TimeoutMS = 500
	}
	if profile.Scale.Lines <= 0 {
		profile.Scale.Lines = 5
	}
	if profile.DefaultRounding != "half_up" {
		profile.DefaultRounding = "none"
	}
	return profile, nil
}
