package sonoff

import "context"

// SwitchStatus is the per-device part of a switch's /info response
type SwitchStatus struct {
	Switch     SwitchState  `json:"switch"`
	Startup    StartupState `json:"startup"`
	Pulse      SwitchState  `json:"pulse"`
	PulseWidth uint32       `json:"pulseWidth"`
}

// PulseRequest is the payload of /pulse
type PulseRequest struct {
	Pulse      SwitchState `json:"pulse"`
	PulseWidth uint32      `json:"pulseWidth"`
}

// Switch is a single-channel relay (e.g. Basic R3, Mini)
type Switch struct {
	dev Device
}

// NewSwitch wraps dev as a switch
func NewSwitch(dev Device) *Switch {
	return &Switch{dev: dev}
}

// Device returns the handle the switch talks through
func (s *Switch) Device() Device { return s.dev }

// Status returns the switch's current state and configuration
func (s *Switch) Status(ctx context.Context) (*SwitchStatus, error) {
	info, err := s.dev.Info(ctx)
	if err != nil {
		return nil, err
	}
	var status SwitchStatus
	if err := info.DecodeExtra(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Switch reports whether the switch is on
func (s *Switch) Switch(ctx context.Context) (bool, error) {
	status, err := s.Status(ctx)
	if err != nil {
		return false, err
	}
	return status.Switch.On(), nil
}

// Pulse arms an inching pulse of the given width in milliseconds. The device
// only accepts multiples of 500; 0 disables the pulse.
func (s *Switch) Pulse(ctx context.Context, milliseconds uint32) (*Response, error) {
	req := PulseRequest{Pulse: SwitchOn, PulseWidth: milliseconds}
	if milliseconds == 0 {
		req.Pulse = SwitchOff
	}
	return s.dev.RawRequest(ctx, "/pulse", req)
}
