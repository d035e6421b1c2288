package sonoff

import (
	"context"
	"fmt"
	"strings"
)

// SwitchState is the on/off state of a switch or outlet
type SwitchState string

const (
	SwitchOn  SwitchState = "on"
	SwitchOff SwitchState = "off"
)

// StartupState is the state a device assumes after power loss
type StartupState string

const (
	StartupOn  StartupState = "on"
	StartupOff StartupState = "off"
	// StartupStay restores the state the device had when power was lost
	StartupStay StartupState = "stay"
)

// ParseSwitchState parses "on" or "off"
func ParseSwitchState(s string) (SwitchState, error) {
	switch SwitchState(strings.ToLower(s)) {
	case SwitchOn:
		return SwitchOn, nil
	case SwitchOff:
		return SwitchOff, nil
	}
	return "", NewInvalidCommandError(fmt.Sprintf("invalid switch state %q (use on or off)", s))
}

// ParseStartupState parses "on", "off" or "stay"
func ParseStartupState(s string) (StartupState, error) {
	switch StartupState(strings.ToLower(s)) {
	case StartupOn:
		return StartupOn, nil
	case StartupOff:
		return StartupOff, nil
	case StartupStay:
		return StartupStay, nil
	}
	return "", NewInvalidCommandError(fmt.Sprintf("invalid startup state %q (use on, off or stay)", s))
}

// On reports whether the state is SwitchOn
func (s SwitchState) On() bool { return s == SwitchOn }

// SwitchRequest is the payload of /switch
type SwitchRequest struct {
	Switch SwitchState `json:"switch"`
}

// StartupRequest is the payload of /startup
type StartupRequest struct {
	Startup StartupState `json:"startup"`
}

// Switchable is implemented by devices with a single binary switch.
// Switch re-derives the current state from the variant's own status schema.
type Switchable interface {
	Device() Device
	Switch(ctx context.Context) (bool, error)
}

// SetSwitch sets the switch to state
func SetSwitch(ctx context.Context, s Switchable, state SwitchState) (*Response, error) {
	return s.Device().RawRequest(ctx, "/switch", SwitchRequest{Switch: state})
}

// On switches the device on
func On(ctx context.Context, s Switchable) (*Response, error) {
	return SetSwitch(ctx, s, SwitchOn)
}

// Off switches the device off
func Off(ctx context.Context, s Switchable) (*Response, error) {
	return SetSwitch(ctx, s, SwitchOff)
}

// Toggle reads the current state and then writes the opposite one.
//
// The read and the write are separate round trips. A change made by someone
// else in between is not detected, and two concurrent toggles on the same
// device can leave it in either state.
func Toggle(ctx context.Context, s Switchable) (*Response, error) {
	on, err := s.Switch(ctx)
	if err != nil {
		return nil, err
	}
	if on {
		return Off(ctx, s)
	}
	return On(ctx, s)
}

// SetStartup sets the power-on behaviour. Bulbs do not support it and answer
// with a device-level error code.
func SetStartup(ctx context.Context, s Switchable, state StartupState) (*Response, error) {
	return s.Device().RawRequest(ctx, "/startup", StartupRequest{Startup: state})
}
