package sonoff

import (
	"encoding/json"
	"fmt"
)

// Info is the result of the /info query.
//
// The fields shared by every device kind are decoded once. Extra holds the
// whole data object so each variant can decode its own status from it.
type Info struct {
	DeviceID       string  `json:"deviceid"`
	BSSID          *string `json:"bssid,omitempty"`
	SSID           *string `json:"ssid,omitempty"`
	SignalStrength *int    `json:"signalStrength,omitempty"`
	FWVersion      *string `json:"fwVersion,omitempty"`
	OTAUnlock      *bool   `json:"otaUnlock,omitempty"`

	Extra json.RawMessage `json:"-"`
}

type infoFields Info

// UnmarshalJSON decodes the common fields and keeps the raw object in Extra
func (i *Info) UnmarshalJSON(data []byte) error {
	var fields infoFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*i = Info(fields)
	i.Extra = append(json.RawMessage(nil), data...)
	return nil
}

// DecodeExtra decodes the per-device part of the info into out
func (i *Info) DecodeExtra(out any) error {
	if len(i.Extra) == 0 {
		return NewEmptyDataError("/info")
	}
	if err := json.Unmarshal(i.Extra, out); err != nil {
		return NewSerializationError(fmt.Sprintf("failed to decode %T from device info", out), err)
	}
	return nil
}

// WiFiRequest is the payload of /wifi
type WiFiRequest struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// OTAFlashRequest is the payload of /ota_flash
type OTAFlashRequest struct {
	DownloadURL string `json:"downloadUrl"`
	SHA256Sum   string `json:"sha256sum"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Fields returns the common info as ordered key/value pairs, absent values empty
func (i *Info) Fields() [][2]string {
	return [][2]string{
		{"deviceid", i.DeviceID},
		{"ssid", deref(i.SSID)},
		{"bssid", deref(i.BSSID)},
		{"signal_strength", fmt.Sprint(deref(i.SignalStrength))},
		{"fw_version", deref(i.FWVersion)},
		{"ota_unlock", fmt.Sprint(deref(i.OTAUnlock))},
	}
}
