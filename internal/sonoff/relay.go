package sonoff

import "context"

// OutletSwitch is the switch state of one outlet
type OutletSwitch struct {
	Outlet uint8       `json:"outlet"`
	Switch SwitchState `json:"switch"`
}

// OutletStartup is the power-on behaviour of one outlet
type OutletStartup struct {
	Outlet  uint8        `json:"outlet"`
	Startup StartupState `json:"startup"`
}

// OutletPulse is the inching configuration of one outlet
type OutletPulse struct {
	Outlet uint8       `json:"outlet"`
	Pulse  SwitchState `json:"pulse"`
	Switch SwitchState `json:"switch"`
	Width  uint32      `json:"width"`
}

// RelayData is the per-device part of a relay's /info response
type RelayData struct {
	Switches  []OutletSwitch  `json:"switches,omitempty"`
	Configure []OutletStartup `json:"configure,omitempty"`
	Pulses    []OutletPulse   `json:"pulses,omitempty"`
}

// Each endpoint's key is always sent, as [] when no outlet is listed.
type (
	relaySwitchesRequest struct {
		Switches []OutletSwitch `json:"switches"`
	}
	relayStartupsRequest struct {
		Configure []OutletStartup `json:"configure"`
	}
	relayPulsesRequest struct {
		Pulses []OutletPulse `json:"pulses"`
	}
)

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

// Outlet returns the switch record for outlet, if the device reported it.
// Outlet indexes are not necessarily contiguous.
func (d *RelayData) Outlet(outlet uint8) (OutletSwitch, bool) {
	for _, s := range d.Switches {
		if s.Outlet == outlet {
			return s, true
		}
	}
	return OutletSwitch{}, false
}

// Relay is a multi-outlet relay (e.g. Mini R3, 4CH)
//
// Each call changes only the outlets listed; omitted outlets are assumed to be
// left alone by the firmware.
type Relay struct {
	dev Device
}

// NewRelay wraps dev as a multi-outlet relay
func NewRelay(dev Device) *Relay {
	return &Relay{dev: dev}
}

// Device returns the handle the relay talks through
func (r *Relay) Device() Device { return r.dev }

// Status returns the outlet switch, startup and pulse records
func (r *Relay) Status(ctx context.Context) (*RelayData, error) {
	info, err := r.dev.Info(ctx)
	if err != nil {
		return nil, err
	}
	var status RelayData
	if err := info.DecodeExtra(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetSwitches sets the switch state of the listed outlets
func (r *Relay) SetSwitches(ctx context.Context, switches []OutletSwitch) (*Response, error) {
	return r.dev.RawRequest(ctx, "/switches", relaySwitchesRequest{Switches: nonNil(switches)})
}

// SetStartups sets the power-on behaviour of the listed outlets
func (r *Relay) SetStartups(ctx context.Context, startups []OutletStartup) (*Response, error) {
	return r.dev.RawRequest(ctx, "/startups", relayStartupsRequest{Configure: nonNil(startups)})
}

// SetPulses sets the inching configuration of the listed outlets
func (r *Relay) SetPulses(ctx context.Context, pulses []OutletPulse) (*Response, error) {
	return r.dev.RawRequest(ctx, "/pulses", relayPulsesRequest{Pulses: nonNil(pulses)})
}
