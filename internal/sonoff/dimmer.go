package sonoff

import "context"

// DimmerStatus is the per-device part of a dimmer's /info response
type DimmerStatus struct {
	Switch     SwitchState  `json:"switch"`
	Startup    StartupState `json:"startup"`
	Brightness uint8        `json:"brightness"`
	Mode       uint8        `json:"mode"`
	BrightMin  uint8        `json:"brightmin"`
	BrightMax  uint8        `json:"brightmax"`
}

// DimmerRequest is the payload of /dimmable for dimmers.
// Unset optional fields are left to the device's defaults.
type DimmerRequest struct {
	Switch     SwitchState `json:"switch"`
	Brightness uint8       `json:"brightness"`
	Mode       *uint8      `json:"mode,omitempty"`
	BrightMin  *uint8      `json:"brightmin,omitempty"`
	BrightMax  *uint8      `json:"brightmax,omitempty"`
}

// Dimmer is a wall dimmer (e.g. D1)
type Dimmer struct {
	dev Device
}

// NewDimmer wraps dev as a dimmer
func NewDimmer(dev Device) *Dimmer {
	return &Dimmer{dev: dev}
}

// Device returns the handle the dimmer talks through
func (d *Dimmer) Device() Device { return d.dev }

// Status returns brightness and the dimmer's mode and range
func (d *Dimmer) Status(ctx context.Context) (*DimmerStatus, error) {
	info, err := d.dev.Info(ctx)
	if err != nil {
		return nil, err
	}
	var status DimmerStatus
	if err := info.DecodeExtra(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Switch reports whether the dimmer is on
func (d *Dimmer) Switch(ctx context.Context) (bool, error) {
	status, err := d.Status(ctx)
	if err != nil {
		return false, err
	}
	return status.Switch.On(), nil
}

// Dim sets the brightness. Setting a brightness always switches the dimmer on.
func (d *Dimmer) Dim(ctx context.Context, brightness uint8) (*Response, error) {
	return d.dev.RawRequest(ctx, "/dimmable", DimmerRequest{
		Switch:     SwitchOn,
		Brightness: brightness,
	})
}
