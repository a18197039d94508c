package uaparser

import "strings"

// Device types bound by the built-in rules.
const (
	DeviceConsole  = "console"
	DeviceMobile   = "mobile"
	DeviceTablet   = "tablet"
	DeviceSmartTV  = "smarttv"
	DeviceWearable = "wearable"
	DeviceEmbedded = "embedded"
)

type Device struct {
	Vendor string `json:"vendor"`
	Model  string `json:"model"`
	Type   string `json:"type"`
}

func newDevice(rec Record) *Device {
	return &Device{
		Vendor: rec[FieldVendor],
		Model:  rec[FieldModel],
		Type:   strings.TrimSpace(rec[FieldType]),
	}
}

// IsMobile reports whether the device is a phone or tablet.
func (dvc *Device) IsMobile() bool {
	return dvc.Type == DeviceMobile || dvc.Type == DeviceTablet
}

func (dvc *Device) ToString() string {
	return strings.TrimSpace(dvc.Vendor + " " + dvc.Model)
}
